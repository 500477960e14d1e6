package domain

// Models 需要迁移的全部表，顺序即依赖顺序
func Models() []any {
	return []any{&User{}, &Department{}, &SubDepartment{}}
}
