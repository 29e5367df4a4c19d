package models

import (
	"encoding/json"
	"time"
)

// TableViewState is the per-table UI state the dashboard persists between
// sessions: page window, sort order, and selected filters.
type TableViewState struct {
	Pagination PaginationState `json:"pagination"`
	Sorting    SortingState    `json:"sorting"`
	Filters    FilterValues    `json:"filters"`
}

// PaginationState is the persisted page window.
type PaginationState struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// SortingState is the persisted sort order.
type SortingState struct {
	SortBy string `json:"sort_by"`
	Desc   bool   `json:"desc"`
}

// ViewStateRecord is the stored row: one state blob per user and table key.
type ViewStateRecord struct {
	UserID    string          `db:"user_id" json:"user_id"`
	TableKey  string          `db:"table_key" json:"table_key"`
	State     json.RawMessage `db:"state" json:"state"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
