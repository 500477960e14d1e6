package graphql

import (
	"context"
	"sync"
)

// rootFields 记录一次请求里实际执行过的根字段；字段名来自 schema，取值集合封闭，可直接做指标标签
type rootFields struct {
	mu    sync.Mutex
	names []string
}

type rootFieldsKey struct{}

func withRootFields(ctx context.Context) (context.Context, *rootFields) {
	rf := &rootFields{}
	return context.WithValue(ctx, rootFieldsKey{}, rf), rf
}

// markRoot 查询的根字段可能并发执行
func markRoot(ctx context.Context, name string) {
	rf, ok := ctx.Value(rootFieldsKey{}).(*rootFields)
	if !ok {
		return
	}
	rf.mu.Lock()
	defer rf.mu.Unlock()
	for _, n := range rf.names {
		if n == name {
			return
		}
	}
	rf.names = append(rf.names, name)
}

// label 未执行任何根字段（请求错误、纯 __typename/内省）为 none，多个根字段为 multiple
func (rf *rootFields) label() string {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	switch len(rf.names) {
	case 0:
		return "none"
	case 1:
		return rf.names[0]
	default:
		return "multiple"
	}
}
