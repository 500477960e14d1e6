package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"department-graphql/internal/core/apperr"
	"department-graphql/internal/core/paging"
	"department-graphql/internal/domain"
)

type DepartmentRepo struct{ db *gorm.DB }

func NewDepartmentRepo(db *gorm.DB) *DepartmentRepo { return &DepartmentRepo{db: db} }

func orderedSubDepartments(db *gorm.DB) *gorm.DB {
	return db.Order("sub_departments.created_at ASC").Order("sub_departments.id ASC")
}

func (r *DepartmentRepo) Create(ctx context.Context, name, ownerID string, subNames []string) (*domain.Department, error) {
	if dup, ok := firstDuplicate(subNames); ok {
		return nil, subDepartmentNameConflict(dup)
	}

	d := &domain.Department{Name: name, CreatedByID: ownerID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := departmentNameTaken(tx, ownerID, name, "")
		if err != nil {
			return err
		}
		if taken {
			return departmentNameConflict(name)
		}
		if err := tx.Omit(clause.Associations).Create(d).Error; err != nil {
			return translate(err, departmentNameConflict(name), "create department")
		}

		// 同批次子部门按输入顺序排列
		base := tx.NowFunc()
		for i, sn := range subNames {
			s := domain.SubDepartment{
				Name:         sn,
				DepartmentID: d.ID,
				CreatedAt:    base.Add(time.Duration(i) * time.Microsecond),
			}
			if err := tx.Omit(clause.Associations).Create(&s).Error; err != nil {
				return translate(err, subDepartmentNameConflict(sn), "create sub-department")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindOne(ctx, d.ID)
}

func (r *DepartmentRepo) FindAll(ctx context.Context, ownerID string, p paging.Request) ([]domain.Department, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.Department{}).Where("created_by_id = ?", ownerID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(err, "count departments")
	}
	var items []domain.Department
	if total == 0 || p.Skip() >= int(total) {
		return []domain.Department{}, total, nil
	}
	err := base().
		Preload("CreatedBy").
		Preload("SubDepartments", orderedSubDepartments).
		Order("created_at DESC").Order("id DESC").
		Offset(p.Skip()).Limit(p.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, apperr.Wrap(err, "list departments")
	}
	return items, total, nil
}

func (r *DepartmentRepo) FindOne(ctx context.Context, id string) (*domain.Department, error) {
	return findDepartment(r.db.WithContext(ctx), id)
}

func (r *DepartmentRepo) Update(ctx context.Context, id, name string) (*domain.Department, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur domain.Department
		if err := tx.First(&cur, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return departmentNotFound(id)
			}
			return apperr.Wrap(err, "load department")
		}
		// 改成自己当前的名字不算冲突
		if cur.Name == name {
			return nil
		}
		taken, err := departmentNameTaken(tx, cur.CreatedByID, name, id)
		if err != nil {
			return err
		}
		if taken {
			return departmentNameConflict(name)
		}
		err = tx.Model(&domain.Department{}).Where("id = ?", id).Update("name", name).Error
		return translate(err, departmentNameConflict(name), "update department")
	})
	if err != nil {
		return nil, err
	}
	return r.FindOne(ctx, id)
}

// Remove 删除前先取快照；删除后关联数据已不可读
func (r *DepartmentRepo) Remove(ctx context.Context, id string) (*domain.Department, error) {
	var snapshot *domain.Department
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d, err := findDepartment(tx, id)
		if err != nil {
			return err
		}
		snapshot = d
		// 外键已配置级联；这里显式删除，不依赖方言是否开启外键
		if err := tx.Where("department_id = ?", id).Delete(&domain.SubDepartment{}).Error; err != nil {
			return apperr.Wrap(err, "delete sub-departments")
		}
		if err := tx.Where("id = ?", id).Delete(&domain.Department{}).Error; err != nil {
			return apperr.Wrap(err, "delete department")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func findDepartment(db *gorm.DB, id string) (*domain.Department, error) {
	var d domain.Department
	err := db.
		Preload("CreatedBy").
		Preload("SubDepartments", orderedSubDepartments).
		First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, departmentNotFound(id)
	}
	if err != nil {
		return nil, apperr.Wrap(err, "load department")
	}
	return &d, nil
}

// departmentNameTaken 同一创建者下是否已有同名部门（excludeID 为空表示不排除）
func departmentNameTaken(tx *gorm.DB, ownerID, name, excludeID string) (bool, error) {
	q := tx.Model(&domain.Department{}).Where("created_by_id = ? AND name = ?", ownerID, name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, apperr.Wrap(err, "check department name")
	}
	return n > 0, nil
}

func firstDuplicate(names []string) (string, bool) {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return n, true
		}
		seen[n] = struct{}{}
	}
	return "", false
}
