package graphql

import (
	"context"

	graphqlgo "github.com/graph-gophers/graphql-go"

	"department-graphql/internal/core/auth"
	"department-graphql/internal/core/paging"
	"department-graphql/internal/domain"
	"department-graphql/internal/service"
)

type userResolver struct{ u *domain.User }

func (u *userResolver) ID() graphqlgo.ID          { return graphqlgo.ID(u.u.ID) }
func (u *userResolver) Username() string          { return u.u.Username }
func (u *userResolver) CreatedAt() graphqlgo.Time { return graphqlgo.Time{Time: u.u.CreatedAt} }
func (u *userResolver) UpdatedAt() graphqlgo.Time { return graphqlgo.Time{Time: u.u.UpdatedAt} }

type authPayloadResolver struct{ t *service.Token }

func (a *authPayloadResolver) AccessToken() string       { return a.t.AccessToken }
func (a *authPayloadResolver) TokenType() string         { return a.t.TokenType }
func (a *authPayloadResolver) ExpiresAt() graphqlgo.Time { return graphqlgo.Time{Time: a.t.ExpiresAt} }
func (a *authPayloadResolver) User() *userResolver       { return &userResolver{u: a.t.User} }

// departmentResolver subsLoaded=false 表示 d 来自子部门的预加载，子部门列表需要回查
type departmentResolver struct {
	r          *Resolver
	d          *domain.Department
	subsLoaded bool
}

func (r *Resolver) department(d *domain.Department) *departmentResolver {
	return &departmentResolver{r: r, d: d, subsLoaded: true}
}

func (d *departmentResolver) ID() graphqlgo.ID          { return graphqlgo.ID(d.d.ID) }
func (d *departmentResolver) Name() string              { return d.d.Name }
func (d *departmentResolver) CreatedAt() graphqlgo.Time { return graphqlgo.Time{Time: d.d.CreatedAt} }
func (d *departmentResolver) UpdatedAt() graphqlgo.Time { return graphqlgo.Time{Time: d.d.UpdatedAt} }

func (d *departmentResolver) CreatedBy(ctx context.Context) (*userResolver, error) {
	if d.d.CreatedBy != nil {
		return &userResolver{u: d.d.CreatedBy}, nil
	}
	u, err := d.r.auth.UserByID(ctx, d.d.CreatedByID)
	if err != nil {
		return nil, err
	}
	return &userResolver{u: u}, nil
}

func (d *departmentResolver) SubDepartments(ctx context.Context) ([]*subDepartmentResolver, error) {
	subs := d.d.SubDepartments
	if !d.subsLoaded {
		caller, err := auth.CallerFrom(ctx)
		if err != nil {
			return nil, err
		}
		full, err := d.r.depts.Get(ctx, caller, d.d.ID)
		if err != nil {
			return nil, err
		}
		subs = full.SubDepartments
	}
	out := make([]*subDepartmentResolver, 0, len(subs))
	for i := range subs {
		out = append(out, d.r.subDepartment(&subs[i], d))
	}
	return out, nil
}

type subDepartmentResolver struct {
	r      *Resolver
	s      *domain.SubDepartment
	parent *departmentResolver
}

func (r *Resolver) subDepartment(s *domain.SubDepartment, parent *departmentResolver) *subDepartmentResolver {
	return &subDepartmentResolver{r: r, s: s, parent: parent}
}

func (s *subDepartmentResolver) ID() graphqlgo.ID           { return graphqlgo.ID(s.s.ID) }
func (s *subDepartmentResolver) Name() string               { return s.s.Name }
func (s *subDepartmentResolver) DepartmentID() graphqlgo.ID { return graphqlgo.ID(s.s.DepartmentID) }
func (s *subDepartmentResolver) CreatedAt() graphqlgo.Time  { return graphqlgo.Time{Time: s.s.CreatedAt} }
func (s *subDepartmentResolver) UpdatedAt() graphqlgo.Time  { return graphqlgo.Time{Time: s.s.UpdatedAt} }

func (s *subDepartmentResolver) Department(ctx context.Context) (*departmentResolver, error) {
	if s.parent != nil {
		return s.parent, nil
	}
	if s.s.Department != nil {
		return &departmentResolver{r: s.r, d: s.s.Department}, nil
	}
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	d, err := s.r.depts.Get(ctx, caller, s.s.DepartmentID)
	if err != nil {
		return nil, err
	}
	return s.r.department(d), nil
}

type departmentPageResolver struct {
	r *Resolver
	p paging.Page[domain.Department]
}

func (p *departmentPageResolver) Items() []*departmentResolver {
	out := make([]*departmentResolver, 0, len(p.p.Items))
	for i := range p.p.Items {
		out = append(out, p.r.department(&p.p.Items[i]))
	}
	return out
}

func (p *departmentPageResolver) Total() int32      { return int32(p.p.Total) }
func (p *departmentPageResolver) Page() int32       { return int32(p.p.Page) }
func (p *departmentPageResolver) Limit() int32      { return int32(p.p.Limit) }
func (p *departmentPageResolver) TotalPages() int32 { return int32(p.p.TotalPages) }

type subDepartmentPageResolver struct {
	r *Resolver
	p paging.Page[domain.SubDepartment]
}

func (p *subDepartmentPageResolver) Items() []*subDepartmentResolver {
	out := make([]*subDepartmentResolver, 0, len(p.p.Items))
	for i := range p.p.Items {
		out = append(out, p.r.subDepartment(&p.p.Items[i], nil))
	}
	return out
}

func (p *subDepartmentPageResolver) Total() int32      { return int32(p.p.Total) }
func (p *subDepartmentPageResolver) Page() int32       { return int32(p.p.Page) }
func (p *subDepartmentPageResolver) Limit() int32      { return int32(p.p.Limit) }
func (p *subDepartmentPageResolver) TotalPages() int32 { return int32(p.p.TotalPages) }
