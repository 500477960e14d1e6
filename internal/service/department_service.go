package service

import (
	"context"

	"go.uber.org/zap"

	"department-graphql/internal/core/auth"
	"department-graphql/internal/core/paging"
	"department-graphql/internal/domain"
)

type CreateDepartmentInput struct {
	Name           string
	SubDepartments []string
}

type DepartmentService struct {
	repo  domain.DepartmentRepository
	authz *Authorizer
	log   *zap.Logger
}

func NewDepartmentService(repo domain.DepartmentRepository, authz *Authorizer, l *zap.Logger) *DepartmentService {
	return &DepartmentService{repo: repo, authz: authz, log: l.Named("department")}
}

func (s *DepartmentService) Create(ctx context.Context, caller auth.Caller, in CreateDepartmentInput) (*domain.Department, error) {
	name, err := normalizeName("name", in.Name)
	if err != nil {
		return nil, err
	}
	subNames, err := normalizeNames("subDepartments.name", in.SubDepartments)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, caller, CreateDepartment, ""); err != nil {
		return nil, err
	}
	d, err := s.repo.Create(ctx, name, caller.ID, subNames)
	if err != nil {
		return nil, err
	}
	s.log.Info("department created",
		zap.String("id", d.ID), zap.String("owner", caller.ID), zap.Int("sub_departments", len(d.SubDepartments)))
	return d, nil
}

// List 只列出调用方自己的部门
func (s *DepartmentService) List(ctx context.Context, caller auth.Caller, page, limit *int) (paging.Page[domain.Department], error) {
	if err := requireCaller(caller); err != nil {
		return paging.Page[domain.Department]{}, err
	}
	p, err := paging.New(page, limit)
	if err != nil {
		return paging.Page[domain.Department]{}, err
	}
	items, total, err := s.repo.FindAll(ctx, caller.ID, p)
	if err != nil {
		return paging.Page[domain.Department]{}, err
	}
	return paging.NewPage(items, total, p), nil
}

func (s *DepartmentService) Get(ctx context.Context, caller auth.Caller, id string) (*domain.Department, error) {
	if err := s.authz.Authorize(ctx, caller, ReadDepartment, id); err != nil {
		return nil, err
	}
	return s.repo.FindOne(ctx, id)
}

func (s *DepartmentService) Update(ctx context.Context, caller auth.Caller, id, rawName string) (*domain.Department, error) {
	name, err := normalizeName("name", rawName)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, caller, UpdateDepartment, id); err != nil {
		return nil, err
	}
	d, err := s.repo.Update(ctx, id, name)
	if err != nil {
		return nil, err
	}
	s.log.Info("department updated", zap.String("id", id), zap.String("owner", caller.ID))
	return d, nil
}

// Remove 级联删除子部门，返回删除前快照
func (s *DepartmentService) Remove(ctx context.Context, caller auth.Caller, id string) (*domain.Department, error) {
	if err := s.authz.Authorize(ctx, caller, DeleteDepartment, id); err != nil {
		return nil, err
	}
	d, err := s.repo.Remove(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("department removed",
		zap.String("id", id), zap.String("owner", caller.ID), zap.Int("sub_departments", len(d.SubDepartments)))
	return d, nil
}
