package domain

import (
	"context"
	"time"

	"gorm.io/gorm"

	"department-graphql/internal/core/paging"
	"department-graphql/pkg/utils"
)

// Department 名称在同一创建者下唯一
type Department struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	Name           string          `gorm:"size:100;not null;uniqueIndex:idx_departments_owner_name,priority:2" json:"name"`
	CreatedByID    string          `gorm:"size:36;not null;uniqueIndex:idx_departments_owner_name,priority:1" json:"createdById"`
	CreatedBy      *User           `gorm:"foreignKey:CreatedByID;constraint:OnDelete:RESTRICT" json:"createdBy,omitempty"`
	SubDepartments []SubDepartment `gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE" json:"subDepartments"`
	CreatedAt      time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (Department) TableName() string { return "departments" }

func (d *Department) BeforeCreate(*gorm.DB) error {
	if d.ID == "" {
		d.ID = utils.NewID()
	}
	return nil
}

// SubDepartment 名称在同一父部门下唯一
type SubDepartment struct {
	ID           string      `gorm:"primaryKey;size:36" json:"id"`
	Name         string      `gorm:"size:100;not null;uniqueIndex:idx_sub_departments_parent_name,priority:2" json:"name"`
	DepartmentID string      `gorm:"size:36;not null;uniqueIndex:idx_sub_departments_parent_name,priority:1" json:"departmentId"`
	Department   *Department `gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE" json:"department,omitempty"`
	CreatedAt    time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (SubDepartment) TableName() string { return "sub_departments" }

func (s *SubDepartment) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = utils.NewID()
	}
	return nil
}

// DepartmentRepository 失败统一返回 *apperr.Error
type DepartmentRepository interface {
	// Create 部门与初始子部门在同一事务内写入
	Create(ctx context.Context, name, ownerID string, subDepartments []string) (*Department, error)
	// FindAll 只返回 ownerID 名下的部门，按创建时间倒序
	FindAll(ctx context.Context, ownerID string, p paging.Request) ([]Department, int64, error)
	FindOne(ctx context.Context, id string) (*Department, error)
	Update(ctx context.Context, id, name string) (*Department, error)
	// Remove 返回删除前的快照（含子部门与创建者）
	Remove(ctx context.Context, id string) (*Department, error)
}

// SubDepartmentFilter OwnerID 必填；DepartmentID 可选
type SubDepartmentFilter struct {
	OwnerID      string
	DepartmentID string
}

type SubDepartmentRepository interface {
	Create(ctx context.Context, departmentID, name string) (*SubDepartment, error)
	FindAll(ctx context.Context, f SubDepartmentFilter, p paging.Request) ([]SubDepartment, int64, error)
	FindOne(ctx context.Context, id string) (*SubDepartment, error)
	Update(ctx context.Context, id, name string) (*SubDepartment, error)
	Remove(ctx context.Context, id string) (*SubDepartment, error)
}
