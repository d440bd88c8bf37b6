package shared

// Default paging applied to list queries
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter narrows and orders a document listing. Filters holds exact-match
// column conditions; Search is a free-text match on the document number and
// client name.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
}

// DefaultFilter lists the newest documents first, one page at a time
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: DefaultPageSize, OrderBy: "created_at", OrderDir: "desc", Filters: map[string]any{}}
}

// Limit is the page size clamped to MaxPageSize; zero means DefaultPageSize
func (f Filter) Limit() int {
	switch {
	case f.PageSize <= 0:
		return DefaultPageSize
	case f.PageSize > MaxPageSize:
		return MaxPageSize
	}
	return f.PageSize
}

// Offset is the number of rows before the filter's page
func (f Filter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}
