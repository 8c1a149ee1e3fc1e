package pagination

// Meta is the pagination block returned with every list response.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

func NewMeta(total int64, page, limit int) Meta {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Meta{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

// Offset converts a 1-based page into a row offset.
func Offset(page, limit int) int {
	return (page - 1) * limit
}
