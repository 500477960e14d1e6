package paging

import (
	"department-graphql/internal/core/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxPage      = 1000
	MaxLimit     = 100
)

// Request 已校验的分页参数
type Request struct {
	Page  int
	Limit int
}

// New 缺省值补齐；越界直接拒绝（LimitOutOfRange），不做静默修正
func New(page, limit *int) (Request, error) {
	r := Request{Page: DefaultPage, Limit: DefaultLimit}
	if page != nil {
		r.Page = *page
	}
	if limit != nil {
		r.Limit = *limit
	}
	if r.Page < 1 || r.Page > MaxPage {
		return Request{}, apperr.New(apperr.LimitOutOfRange, "page must be between 1 and %d", MaxPage).
			WithDetails(map[string]any{"page": r.Page})
	}
	if r.Limit < 1 || r.Limit > MaxLimit {
		return Request{}, apperr.New(apperr.LimitOutOfRange, "limit must be between 1 and %d", MaxLimit).
			WithDetails(map[string]any{"limit": r.Limit})
	}
	return r, nil
}

func (r Request) Skip() int { return (r.Page - 1) * r.Limit }

// TotalPages ceil(total/limit)；total 为 0 时返回 0
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Page 分页结果
type Page[T any] struct {
	Items      []T
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

func NewPage[T any](items []T, total int64, r Request) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       r.Page,
		Limit:      r.Limit,
		TotalPages: TotalPages(total, r.Limit),
	}
}
