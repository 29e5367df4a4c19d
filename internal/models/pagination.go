package models

// Pagination describes the page window of a list response.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// ListQuery captures the generic list parameters forwarded to the upstream
// API: page window, sorting, and free-form filter keys.
type ListQuery struct {
	Page     int
	PageSize int
	SortBy   string
	Desc     bool
	Filters  map[string][]string
}
