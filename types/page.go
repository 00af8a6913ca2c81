package types

import "time"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ClampSize 页大小限制在 [1,100]，非正数取默认值
func ClampSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// CursorTime 游标为创建时间的纳秒时间戳，0 表示第一页
func CursorTime(cursor int64) *time.Time {
	if cursor <= 0 {
		return nil
	}
	t := time.Unix(0, cursor).UTC()
	return &t
}

// NoTotal 非首页不统计总数
const NoTotal int64 = -1

// CursorPage 游标分页结果，total 只在第一页统计
type CursorPage[T any] struct {
	List       []T   `json:"list"`
	NextCursor int64 `json:"nextCursor,string"`
	HasNext    bool  `json:"hasNext"`
	Total      int64 `json:"total"`
}

func NewCursorPage[T any](capacity int) *CursorPage[T] {
	return &CursorPage[T]{List: make([]T, 0, capacity), Total: NoTotal}
}

// EmptyPage 空页，total 为 0
func EmptyPage[T any]() *CursorPage[T] {
	return &CursorPage[T]{List: make([]T, 0)}
}

// PageResult 偏移分页结果
type PageResult[T any] struct {
	Total   int64 `json:"total"`
	Records []T   `json:"records"`
}
