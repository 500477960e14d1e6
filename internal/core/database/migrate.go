package database

import (
	"errors"

	"gorm.io/gorm"
)

// Migrate 按传入顺序建表（被引用的表在前），唯一索引与外键来自模型上的 gorm 标签
func Migrate(db *gorm.DB, models ...any) error {
	if len(models) == 0 {
		return errors.New("migrate: no models")
	}
	return db.AutoMigrate(models...)
}
