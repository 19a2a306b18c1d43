package domain

import "math"

// HolderPageSize is the fixed number of holders per page of search results.
const HolderPageSize = 5

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from an optional page number
// and a page size. A nil or non-positive page falls back to the first page;
// a non-positive size falls back to HolderPageSize. The page is capped so
// Offset cannot overflow; a capped page is still past any real result set.
func NewPaginationParams(page *int, size int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: size}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if p.Limit < 1 {
		p.Limit = HolderPageSize
	}
	if maxPage := math.MaxInt / p.Limit; p.Page > maxPage {
		p.Page = maxPage
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one slice of a larger result set together with the numbers a
// caller needs to render navigation.
type Page[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int64
}

// NewPage assembles a Page from a query result.
// Items is never nil so callers can range over it or encode it as [].
func NewPage[T any](items []T, p PaginationParams, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Page: p.Page, Limit: p.Limit, Total: total}
}

// TotalPages returns the number of pages needed to hold Total items.
func (p Page[T]) TotalPages() int {
	if p.Limit < 1 || p.Total == 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

// IsEmpty reports whether the page holds no items.
func (p Page[T]) IsEmpty() bool {
	return len(p.Items) == 0
}
