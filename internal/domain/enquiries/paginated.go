package enquiries

import "math"

// PaginatedResult represents a cursor paginated response with data and metadata
type PaginatedResult struct {
	Data       []*Enquiry `json:"data"`
	PageSize   int        `json:"pageSize"`
	Total      int64      `json:"totalItems"`
	TotalPages int        `json:"totalPages"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// TotalPages is ceil(total / pageSize)
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}
