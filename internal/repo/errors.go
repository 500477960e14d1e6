package repo

import (
	"department-graphql/internal/core/apperr"
	"department-graphql/internal/core/database"
)

func departmentNameConflict(name string) *apperr.Error {
	return apperr.New(apperr.NameConflict, "department %q already exists", name).
		WithDetails(map[string]any{"name": name})
}

func subDepartmentNameConflict(name string) *apperr.Error {
	return apperr.New(apperr.NameConflict, "sub-department %q already exists in this department", name).
		WithDetails(map[string]any{"name": name})
}

func departmentNotFound(id string) *apperr.Error {
	return apperr.New(apperr.DepartmentNotFound, "department not found").
		WithDetails(map[string]any{"id": id})
}

func subDepartmentNotFound(id string) *apperr.Error {
	return apperr.New(apperr.SubDepartmentNotFound, "sub-department not found").
		WithDetails(map[string]any{"id": id})
}

// translate 唯一约束冲突 → conflict，其余未分类错误 → Internal
func translate(err error, conflict *apperr.Error, op string) error {
	if err == nil {
		return nil
	}
	if database.IsDuplicateKey(err) {
		cp := *conflict
		cp.Err = err
		return &cp
	}
	return apperr.Wrap(err, op)
}
