// Package dto contains Data Transfer Objects for API request and response structures
package dto

import "time"

// AccountForm carries the editable fields of a vault entry. The same shape
// serves create and update; the flow layer normalizes the username and splits
// the tag input before anything is persisted.
type AccountForm struct {
	Username   string  `json:"username" validate:"required,max=255"`
	Platform   string  `json:"platform" validate:"required,platform"`
	Followers  int64   `json:"followers" validate:"gte=0"`
	Engagement float64 `json:"engagement" validate:"gte=0,lte=100"`
	Status     string  `json:"status" validate:"omitempty,account_status"`

	Bio      string `json:"bio" validate:"omitempty,max=4096"`
	Category string `json:"category" validate:"omitempty,max=255"`
	Notes    string `json:"notes" validate:"omitempty,max=4096"`

	RealName      *string `json:"real_name,omitempty" validate:"omitempty,max=255"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Password      *string `json:"password,omitempty" validate:"omitempty,max=255"`
	TwoFactorSeed *string `json:"two_factor_seed,omitempty" validate:"omitempty,max=255"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Website       *string `json:"website,omitempty" validate:"omitempty,url,max=512"`

	Country        *string `json:"country,omitempty" validate:"omitempty,max=128"`
	TagsInput      string  `json:"tags,omitempty"` // Comma-separated, split and trimmed server-side
	IsFavorite     bool    `json:"is_favorite"`
	Manager        *string `json:"manager,omitempty" validate:"omitempty,max=255"`
	TargetAudience *string `json:"target_audience,omitempty" validate:"omitempty,max=255"`

	LastPostedAt *time.Time `json:"last_posted_at,omitempty"`
}

// AccountDTO represents a vault entry for API responses. This is an admin
// console: stored contact and secret fields round-trip through the edit form,
// so they appear here deliberately.
type AccountDTO struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Platform   string  `json:"platform"`
	AvatarURL  string  `json:"avatar_url"`
	Followers  int64   `json:"followers"`
	Engagement float64 `json:"engagement"`
	Status     string  `json:"status"`

	Bio      string `json:"bio"`
	Category string `json:"category"`
	Notes    string `json:"notes"`

	RealName      *string `json:"real_name,omitempty"`
	Email         *string `json:"email,omitempty"`
	Password      *string `json:"password,omitempty"`
	TwoFactorSeed *string `json:"two_factor_seed,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Website       *string `json:"website,omitempty"`

	Country        *string    `json:"country,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	IsFavorite     bool       `json:"is_favorite"`
	IsArchived     bool       `json:"is_archived"`
	Manager        *string    `json:"manager,omitempty"`
	TargetAudience *string    `json:"target_audience,omitempty"`
	LastPostedAt   *time.Time `json:"last_posted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActivityEntryDTO represents one history line, presented newest-first
type ActivityEntryDTO struct {
	Action    string    `json:"action"`
	Details   *string   `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountDetailResponse is one entry plus its full history
type AccountDetailResponse struct {
	Account  AccountDTO         `json:"account"`
	Activity []ActivityEntryDTO `json:"activity"`
}

// ListAccountsRequest represents the collection view query
type ListAccountsRequest struct {
	View          string `json:"view" query:"view" validate:"omitempty,oneof=active archived"`
	Search        string `json:"search" query:"search" validate:"omitempty,max=255"`
	FavoritesOnly bool   `json:"favorites_only" query:"favorites_only"`
	SortKey       string `json:"sort" query:"sort" validate:"omitempty,oneof=username platform followers engagement status manager created_at"`
	SortDir       string `json:"dir" query:"dir" validate:"omitempty,oneof=asc desc"`
	Page          int    `json:"page" query:"page" validate:"omitempty,min=1"`
	PageSize      int    `json:"page_size" query:"page_size" validate:"omitempty,min=1,max=100"`
}

// PaginationInfo represents pagination metadata for the collection view
type PaginationInfo struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// ListAccountsResponse is one page of the derived view plus selection state
type ListAccountsResponse struct {
	Items      []AccountDTO   `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
	Selected   []string       `json:"selected"`
}

// ToggleSelectionRequest targets a single row
type ToggleSelectionRequest struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
}

// TogglePageSelectionRequest re-states the view so the server derives the
// same current page the console is showing
type TogglePageSelectionRequest struct {
	ListAccountsRequest
}

// SelectionResponse is the selection set after a toggle
type SelectionResponse struct {
	Selected []string `json:"selected"`
}

// BulkRequest targets a set of rows by identifier. An empty list falls back
// to the session's current selection. The embedded view state drives the
// refreshed collection returned after the mutation commits.
type BulkRequest struct {
	AccountIDs []string `json:"account_ids" validate:"omitempty,dive,uuid"`
	ListAccountsRequest
}

// BulkResponse reports the refreshed collection after a bulk mutation
type BulkResponse struct {
	Message  string `json:"message"`
	Affected int    `json:"affected"`
	ListAccountsResponse
}

// ExportRequest selects the rows to export: the current selection when
// Selected is true, otherwise the full filtered view
type ExportRequest struct {
	Selected bool `json:"selected" query:"selected"`
	ListAccountsRequest
}
