package graphql

import (
	"context"
	_ "embed"
	"fmt"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"
)

//go:embed schema.graphql
var schemaSDL string

type SchemaOptions struct {
	Introspection bool
	MaxDepth      int
}

// NewSchema 解析 SDL 并绑定解析器；SDL 与解析器不匹配时返回错误
func NewSchema(r *Resolver, opts SchemaOptions, l *zap.Logger) (*graphqlgo.Schema, error) {
	so := []graphqlgo.SchemaOpt{
		graphqlgo.Logger(panicLogger{l: l.Named("graphql")}),
	}
	if opts.MaxDepth > 0 {
		so = append(so, graphqlgo.MaxDepth(opts.MaxDepth))
	}
	if !opts.Introspection {
		so = append(so, graphqlgo.DisableIntrospection())
	}
	s, err := graphqlgo.ParseSchema(schemaSDL, r, so...)
	if err != nil {
		return nil, fmt.Errorf("parse graphql schema: %w", err)
	}
	return s, nil
}

// panicLogger 解析器 panic 交给 zap
type panicLogger struct{ l *zap.Logger }

func (p panicLogger) LogPanic(_ context.Context, value interface{}) {
	p.l.Error("graphql resolver panic", zap.Any("panic", value), zap.Stack("stack"))
}
