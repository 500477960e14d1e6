package service

import (
	"context"
	"fmt"

	"department-graphql/internal/core/apperr"
	"department-graphql/internal/core/auth"
	"department-graphql/internal/domain"
)

// Operation 需要鉴权的操作
type Operation int

const (
	CreateDepartment Operation = iota + 1
	ReadDepartment
	UpdateDepartment
	DeleteDepartment
	CreateSubDepartment
	ReadSubDepartment
	UpdateSubDepartment
	DeleteSubDepartment
)

var operationNames = map[Operation]string{
	CreateDepartment:    "create-department",
	ReadDepartment:      "read-department",
	UpdateDepartment:    "update-department",
	DeleteDepartment:    "delete-department",
	CreateSubDepartment: "create-sub-department",
	ReadSubDepartment:   "read-sub-department",
	UpdateSubDepartment: "update-sub-department",
	DeleteSubDepartment: "delete-sub-department",
}

func (o Operation) String() string {
	if s, ok := operationNames[o]; ok {
		return s
	}
	return fmt.Sprintf("operation(%d)", int(o))
}

// Authorizer 所有权判定的唯一入口：资源不存在报 NotFound，不是自己的报 Forbidden
type Authorizer struct {
	depts domain.DepartmentRepository
	subs  domain.SubDepartmentRepository
}

func NewAuthorizer(depts domain.DepartmentRepository, subs domain.SubDepartmentRepository) *Authorizer {
	return &Authorizer{depts: depts, subs: subs}
}

// Authorize targetID 含义随操作变化：
// 部门操作为部门 ID；CreateSubDepartment 为父部门 ID；其余子部门操作为子部门 ID
func (a *Authorizer) Authorize(ctx context.Context, caller auth.Caller, op Operation, targetID string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	switch op {
	case CreateDepartment:
		return nil
	case ReadDepartment, UpdateDepartment, DeleteDepartment, CreateSubDepartment:
		d, err := a.depts.FindOne(ctx, targetID)
		if err != nil {
			return err
		}
		return checkOwner(caller, op, d)
	case ReadSubDepartment, UpdateSubDepartment, DeleteSubDepartment:
		s, err := a.subs.FindOne(ctx, targetID)
		if err != nil {
			return err
		}
		d := s.Department
		if d == nil {
			if d, err = a.depts.FindOne(ctx, s.DepartmentID); err != nil {
				return err
			}
		}
		return checkOwner(caller, op, d)
	default:
		return apperr.New(apperr.Internal, "unknown operation %s", op)
	}
}

func requireCaller(caller auth.Caller) error {
	if caller.ID == "" {
		return apperr.New(apperr.MissingToken, "authentication required")
	}
	return nil
}

func checkOwner(caller auth.Caller, op Operation, d *domain.Department) error {
	if d.CreatedByID != caller.ID {
		return apperr.New(apperr.Forbidden, "you do not own this department").
			WithDetails(map[string]any{"operation": op.String(), "departmentId": d.ID})
	}
	return nil
}
