package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"department-graphql/internal/core/auth"
	"department-graphql/internal/core/paging"
	"department-graphql/internal/domain"
)

type SubDepartmentService struct {
	repo  domain.SubDepartmentRepository
	authz *Authorizer
	log   *zap.Logger
}

func NewSubDepartmentService(repo domain.SubDepartmentRepository, authz *Authorizer, l *zap.Logger) *SubDepartmentService {
	return &SubDepartmentService{repo: repo, authz: authz, log: l.Named("sub_department")}
}

func (s *SubDepartmentService) Create(ctx context.Context, caller auth.Caller, departmentID, rawName string) (*domain.SubDepartment, error) {
	name, err := normalizeName("name", rawName)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, caller, CreateSubDepartment, departmentID); err != nil {
		return nil, err
	}
	sd, err := s.repo.Create(ctx, departmentID, name)
	if err != nil {
		return nil, err
	}
	s.log.Info("sub-department created",
		zap.String("id", sd.ID), zap.String("department_id", departmentID), zap.String("owner", caller.ID))
	return sd, nil
}

// List departmentID 为空时列出调用方全部部门下的子部门
func (s *SubDepartmentService) List(ctx context.Context, caller auth.Caller, page, limit *int, departmentID *string) (paging.Page[domain.SubDepartment], error) {
	if err := requireCaller(caller); err != nil {
		return paging.Page[domain.SubDepartment]{}, err
	}
	p, err := paging.New(page, limit)
	if err != nil {
		return paging.Page[domain.SubDepartment]{}, err
	}
	f := domain.SubDepartmentFilter{OwnerID: caller.ID}
	if departmentID != nil && strings.TrimSpace(*departmentID) != "" {
		f.DepartmentID = strings.TrimSpace(*departmentID)
		if err := s.authz.Authorize(ctx, caller, ReadDepartment, f.DepartmentID); err != nil {
			return paging.Page[domain.SubDepartment]{}, err
		}
	}
	items, total, err := s.repo.FindAll(ctx, f, p)
	if err != nil {
		return paging.Page[domain.SubDepartment]{}, err
	}
	return paging.NewPage(items, total, p), nil
}

func (s *SubDepartmentService) Get(ctx context.Context, caller auth.Caller, id string) (*domain.SubDepartment, error) {
	if err := s.authz.Authorize(ctx, caller, ReadSubDepartment, id); err != nil {
		return nil, err
	}
	return s.repo.FindOne(ctx, id)
}

func (s *SubDepartmentService) Update(ctx context.Context, caller auth.Caller, id, rawName string) (*domain.SubDepartment, error) {
	name, err := normalizeName("name", rawName)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, caller, UpdateSubDepartment, id); err != nil {
		return nil, err
	}
	sd, err := s.repo.Update(ctx, id, name)
	if err != nil {
		return nil, err
	}
	s.log.Info("sub-department updated", zap.String("id", id), zap.String("owner", caller.ID))
	return sd, nil
}

func (s *SubDepartmentService) Remove(ctx context.Context, caller auth.Caller, id string) (*domain.SubDepartment, error) {
	if err := s.authz.Authorize(ctx, caller, DeleteSubDepartment, id); err != nil {
		return nil, err
	}
	sd, err := s.repo.Remove(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("sub-department removed", zap.String("id", id), zap.String("owner", caller.ID))
	return sd, nil
}
