package domain

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number to >= 1 and size to [1, MaxPageSize], using
// DefaultPageSize when size is unset. Number is capped so the offset
// cannot overflow.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if maxNumber := math.MaxInt/size + 1; number > maxNumber {
		number = maxNumber
	}
	return Page{Number: number, Size: size}
}

func (p Page) normalized() Page {
	return NewPage(p.Number, p.Size)
}

// Limit is the row limit for the page.
func (p Page) Limit() int {
	return p.normalized().Size
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	n := p.normalized()
	return (n.Number - 1) * n.Size
}

// PageResult is one page of items plus the totals needed to navigate.
type PageResult[T any] struct {
	Items      []T
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

func NewPageResult[T any](items []T, total int, p Page) PageResult[T] {
	n := p.normalized()
	pages := 0
	if total > 0 {
		pages = (total + n.Size - 1) / n.Size
	}
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       n.Number,
		PageSize:   n.Size,
		TotalPages: pages,
	}
}

// Paginate slices an already-ordered in-memory collection.
func Paginate[T any](all []T, p Page) []T {
	off := p.Offset()
	if off < 0 || off >= len(all) {
		return []T{}
	}
	end := off + p.Limit()
	if end < off || end > len(all) {
		end = len(all)
	}
	return all[off:end]
}
