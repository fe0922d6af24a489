package news

// Page sizes used by the listing endpoints.
const (
	AdminPageSize  = 10
	PublicPageSize = 20
)

// Pagination holds offset-based paging parameters.
type Pagination struct {
	Page     int
	PageSize int
}

func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	return Pagination{Page: page, PageSize: pageSize}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p Pagination) Limit() int {
	return p.PageSize
}

// TotalPages returns the number of pages needed for totalCount rows.
func (p Pagination) TotalPages(totalCount int) int {
	if totalCount <= 0 {
		return 0
	}
	return (totalCount + p.PageSize - 1) / p.PageSize
}
