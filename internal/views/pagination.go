package views

// Pagination contains metadata for the page controls.
type Pagination struct {
	Page       int
	Limit      int
	TotalCount int
	TotalPages int
	HasPrev    bool
	HasNext    bool
}

// NewPagination computes pagination metadata. There is always at least one page.
func NewPagination(page, limit, totalCount int) Pagination {
	if limit <= 0 {
		limit = 1
	}
	if page <= 0 {
		page = 1
	}
	totalPages := (totalCount + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		TotalCount: totalCount,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page*limit < totalCount,
	}
}

// Clamp bounds a requested page to [1, TotalPages].
func (p Pagination) Clamp(page int) int {
	if page < 1 {
		return 1
	}
	if page > p.TotalPages {
		return p.TotalPages
	}
	return page
}
