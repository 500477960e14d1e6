package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"department-graphql/internal/core/apperr"
	"department-graphql/internal/core/paging"
	"department-graphql/internal/domain"
)

type SubDepartmentRepo struct{ db *gorm.DB }

func NewSubDepartmentRepo(db *gorm.DB) *SubDepartmentRepo { return &SubDepartmentRepo{db: db} }

func (r *SubDepartmentRepo) Create(ctx context.Context, departmentID, name string) (*domain.SubDepartment, error) {
	s := &domain.SubDepartment{Name: name, DepartmentID: departmentID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := departmentExists(tx, departmentID); err != nil {
			return err
		}
		taken, err := subDepartmentNameTaken(tx, departmentID, name, "")
		if err != nil {
			return err
		}
		if taken {
			return subDepartmentNameConflict(name)
		}
		err = tx.Omit(clause.Associations).Create(s).Error
		return translate(err, subDepartmentNameConflict(name), "create sub-department")
	})
	if err != nil {
		return nil, err
	}
	return r.FindOne(ctx, s.ID)
}

// FindAll 只列出 OwnerID 名下部门的子部门；DepartmentID 不存在时返回 DepartmentNotFound
func (r *SubDepartmentRepo) FindAll(ctx context.Context, f domain.SubDepartmentFilter, p paging.Request) ([]domain.SubDepartment, int64, error) {
	db := r.db.WithContext(ctx)
	if f.DepartmentID != "" {
		if err := departmentExists(db, f.DepartmentID); err != nil {
			return nil, 0, err
		}
	}
	base := func() *gorm.DB {
		q := db.Model(&domain.SubDepartment{}).
			Joins("JOIN departments ON departments.id = sub_departments.department_id").
			Where("departments.created_by_id = ?", f.OwnerID)
		if f.DepartmentID != "" {
			q = q.Where("sub_departments.department_id = ?", f.DepartmentID)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "count sub-departments")
	}
	if total == 0 || p.Skip() >= int(total) {
		return []domain.SubDepartment{}, total, nil
	}
	var items []domain.SubDepartment
	err := base().
		Preload("Department").
		Order("sub_departments.created_at DESC").Order("sub_departments.id DESC").
		Offset(p.Skip()).Limit(p.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, apperr.Wrap(err, "list sub-departments")
	}
	return items, total, nil
}

func (r *SubDepartmentRepo) FindOne(ctx context.Context, id string) (*domain.SubDepartment, error) {
	return findSubDepartment(r.db.WithContext(ctx), id)
}

func (r *SubDepartmentRepo) Update(ctx context.Context, id, name string) (*domain.SubDepartment, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur domain.SubDepartment
		if err := tx.First(&cur, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return subDepartmentNotFound(id)
			}
			return apperr.Wrap(err, "load sub-department")
		}
		if cur.Name == name {
			return nil
		}
		taken, err := subDepartmentNameTaken(tx, cur.DepartmentID, name, id)
		if err != nil {
			return err
		}
		if taken {
			return subDepartmentNameConflict(name)
		}
		err = tx.Model(&domain.SubDepartment{}).Where("id = ?", id).Update("name", name).Error
		return translate(err, subDepartmentNameConflict(name), "update sub-department")
	})
	if err != nil {
		return nil, err
	}
	return r.FindOne(ctx, id)
}

func (r *SubDepartmentRepo) Remove(ctx context.Context, id string) (*domain.SubDepartment, error) {
	var snapshot *domain.SubDepartment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := findSubDepartment(tx, id)
		if err != nil {
			return err
		}
		snapshot = s
		if err := tx.Where("id = ?", id).Delete(&domain.SubDepartment{}).Error; err != nil {
			return apperr.Wrap(err, "delete sub-department")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func findSubDepartment(db *gorm.DB, id string) (*domain.SubDepartment, error) {
	var s domain.SubDepartment
	err := db.Preload("Department").First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, subDepartmentNotFound(id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, "load sub-department")
	}
	return &s, nil
}

func departmentExists(db *gorm.DB, id string) error {
	var n int64
	if err := db.Model(&domain.Department{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return apperr.Wrap(err, "check department")
	}
	if n == 0 {
		return departmentNotFound(id)
	}
	return nil
}

func subDepartmentNameTaken(tx *gorm.DB, departmentID, name, excludeID string) (bool, error) {
	q := tx.Model(&domain.SubDepartment{}).Where("department_id = ? AND name = ?", departmentID, name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, apperr.Wrap(err, "check sub-department name")
	}
	return n > 0, nil
}
