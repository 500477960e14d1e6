package utils

import "github.com/google/uuid"

// NewID 主键生成（UUIDv4 字符串）
func NewID() string { return uuid.NewString() }
