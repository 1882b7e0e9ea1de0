package lighting

// Pagination defaults and bounds shared by list operations.
const (
	DefaultPage    = 1
	DefaultPerPage = 50
	MaxPerPage     = 100
)

// Pagination describes one page of a list response.
type Pagination struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PerPage    int  `json:"perPage"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

// NormalizePage clamps caller-supplied paging values: page floors at 1,
// perPage floors at 1 and ceilings at MaxPerPage. Zero means "use default".
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// PageOf computes pagination metadata for a list of total items.
func PageOf(total, page, perPage int) Pagination {
	page, perPage = NormalizePage(page, perPage)
	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}
	return Pagination{
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

// SlicePage returns the bounds [start, end) of the given page over a list of
// length total. Both bounds are clamped to the list.
func SlicePage(total, page, perPage int) (int, int) {
	page, perPage = NormalizePage(page, perPage)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return start, end
}
