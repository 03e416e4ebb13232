package pagination

const (
	// DefaultPageSize is the standard page size when none is provided.
	DefaultPageSize = 25
	// MaxPageSize caps how many rows any list query can request.
	MaxPageSize = 100
)

// Params holds page-based pagination inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Pagination describes the page window returned alongside list results.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// Normalize clamps the inputs to sane defaults and caps.
func Normalize(params Params) Params {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = DefaultPageSize
	}
	if params.PageSize > MaxPageSize {
		params.PageSize = MaxPageSize
	}
	return params
}

// Offset returns the row offset for the normalized page window.
func (p Params) Offset() int {
	n := Normalize(p)
	return (n.Page - 1) * n.PageSize
}

// Build assembles the response pagination block for a total row count.
func Build(params Params, totalItems int64) Pagination {
	n := Normalize(params)
	totalPages := int(totalItems / int64(n.PageSize))
	if totalItems%int64(n.PageSize) != 0 {
		totalPages++
	}
	return Pagination{
		Page:       n.Page,
		PageSize:   n.PageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}
