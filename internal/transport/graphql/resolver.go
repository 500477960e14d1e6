package graphql

import (
	"context"

	graphqlgo "github.com/graph-gophers/graphql-go"

	"department-graphql/internal/core/auth"
	"department-graphql/internal/service"
)

// Resolver Query 与 Mutation 的根解析器
type Resolver struct {
	auth  *service.AuthService
	depts *service.DepartmentService
	subs  *service.SubDepartmentService
}

func NewResolver(a *service.AuthService, d *service.DepartmentService, s *service.SubDepartmentService) *Resolver {
	return &Resolver{auth: a, depts: d, subs: s}
}

type paginationInput struct {
	Page  *int32
	Limit *int32
}

func (p *paginationInput) values() (page, limit *int) {
	if p == nil {
		return nil, nil
	}
	return widen(p.Page), widen(p.Limit)
}

func widen(v *int32) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}

func idPtr(id *graphqlgo.ID) *string {
	if id == nil {
		return nil
	}
	s := string(*id)
	return &s
}

// ---------- Query ----------

func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	markRoot(ctx, "me")
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	u, err := r.auth.CurrentUser(ctx, caller)
	if err != nil {
		return nil, err
	}
	return &userResolver{u: u}, nil
}

func (r *Resolver) Departments(ctx context.Context, args struct{ Pagination *paginationInput }) (*departmentPageResolver, error) {
	markRoot(ctx, "departments")
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	page, limit := args.Pagination.values()
	p, err := r.depts.List(ctx, caller, page, limit)
	if err != nil {
		return nil, err
	}
	return &departmentPageResolver{r: r, p: p}, nil
}

func (r *Resolver) Department(ctx context.Context, args struct{ ID graphqlgo.ID }) (*departmentResolver, error) {
	markRoot(ctx, "department")
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	d, err := r.depts.Get(ctx, caller, string(args.ID))
	if err != nil {
		return nil, err
	}
	return r.department(d), nil
}

func (r *Resolver) SubDepartments(ctx context.Context, args struct {
	Pagination   *paginationInput
	DepartmentID *graphqlgo.ID
}) (*subDepartmentPageResolver, error) {
	markRoot(ctx, "subDepartments")
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	page, limit := args.Pagination.values()
	p, err := r.subs.List(ctx, caller, page, limit, idPtr(args.DepartmentID))
	if err != nil {
		return nil, err
	}
	return &subDepartmentPageResolver{r: r, p: p}, nil
}

func (r *Resolver) SubDepartment(ctx context.Context, args struct{ ID graphqlgo.ID }) (*subDepartmentResolver, error) {
	markRoot(ctx, "subDepartment")
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	s, err := r.subs.Get(ctx, caller, string(args.ID))
	if err != nil {
		return nil, err
	}
	return r.subDepartment(s, nil), nil
}

// ---------- Mutation ----------

type credentialsInput struct {
	Username string
	Password string
}

func (r *Resolver) Register(ctx context.Context, args struct{ Input credentialsInput }) (*userResolver, error) {
	markRoot(ctx, "register")
	u, err := r.auth.Register(ctx, args.Input.Username, args.Input.Password)
	if err != nil {
		return nil, err
	}
	return &userResolver{u: u}, nil
}

func (r *Resolver) Login(ctx context.Context, args struct{ Input credentialsInput }) (*authPayloadResolver, error) {
	markRoot(ctx, "login")
	tok, err := r.auth.SignIn(ctx, args.Input.Username, args.Input.Password)
	if err != nil {
		return nil, err
	}
	return &authPayloadResolver{t: tok}, nil
}

type createDepartmentInput struct {
	Name           string
	SubDepartments *[]struct{ Name string }
}

func (r *Resolver) CreateDepartment(ctx context.Context, args struct{ Input createDepartmentInput }) (*departmentResolver, error) {
	markRoot(ctx, "createDepartment")
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	in := service.CreateDepartmentInput{Name: args.Input.Name}
	if args.Input.SubDepartments != nil {
		for _, s := range *args.Input.SubDepartments {
			in.SubDepartments = append(in.SubDepartments, s.Name)
		}
	}
	d, err := r.depts.Create(ctx, caller, in)
	if err != nil {
		return nil, err
	}
	return r.department(d), nil
}

type renameInput struct{ Name string }

func (r *Resolver) UpdateDepartment(ctx context.Context, args struct {
	ID    graphqlgo.ID
	Input renameInput
}) (*departmentResolver, error) {
	markRoot(ctx, "updateDepartment")
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	d, err := r.depts.Update(ctx, caller, string(args.ID), args.Input.Name)
	if err != nil {
		return nil, err
	}
	return r.department(d), nil
}

func (r *Resolver) RemoveDepartment(ctx context.Context, args struct{ ID graphqlgo.ID }) (*departmentResolver, error) {
	markRoot(ctx, "removeDepartment")
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	d, err := r.depts.Remove(ctx, caller, string(args.ID))
	if err != nil {
		return nil, err
	}
	return r.department(d), nil
}

func (r *Resolver) CreateSubDepartment(ctx context.Context, args struct {
	Input struct {
		DepartmentID graphqlgo.ID
		Name         string
	}
}) (*subDepartmentResolver, error) {
	markRoot(ctx, "createSubDepartment")
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	s, err := r.subs.Create(ctx, caller, string(args.Input.DepartmentID), args.Input.Name)
	if err != nil {
		return nil, err
	}
	return r.subDepartment(s, nil), nil
}

func (r *Resolver) UpdateSubDepartment(ctx context.Context, args struct {
	ID    graphqlgo.ID
	Input renameInput
}) (*subDepartmentResolver, error) {
	markRoot(ctx, "updateSubDepartment")
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	s, err := r.subs.Update(ctx, caller, string(args.ID), args.Input.Name)
	if err != nil {
		return nil, err
	}
	return r.subDepartment(s, nil), nil
}

func (r *Resolver) RemoveSubDepartment(ctx context.Context, args struct{ ID graphqlgo.ID }) (*subDepartmentResolver, error) {
	markRoot(ctx, "removeSubDepartment")
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	s, err := r.subs.Remove(ctx, caller, string(args.ID))
	if err != nil {
		return nil, err
	}
	return r.subDepartment(s, nil), nil
}
