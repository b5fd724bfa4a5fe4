// Package viewmodel derives the visible slice of the account collection.
// Everything here is a pure function of (collection, state): the result of
// View must always match a from-scratch recomputation, so callers are free to
// re-derive on every request.
package viewmodel

import (
	"math"
	"sort"
	"strings"

	"github.com/arashpm/Kitsune-Vault/models"
)

// Mode selects one side of the archived partition. Exactly one side is
// visible at a time; together the two modes cover the collection with no
// overlap and no omission.
type Mode string

const (
	ModeActive   Mode = "active"
	ModeArchived Mode = "archived"
)

// Valid checks if the mode is one of the two partition sides
func (m Mode) Valid() bool {
	return m == ModeActive || m == ModeArchived
}

// SortKey names a sortable account field
type SortKey string

const (
	SortByUsername   SortKey = "username"
	SortByPlatform   SortKey = "platform"
	SortByFollowers  SortKey = "followers"
	SortByEngagement SortKey = "engagement"
	SortByStatus     SortKey = "status"
	SortByManager    SortKey = "manager"
	SortByCreatedAt  SortKey = "created_at"
)

// Valid checks if the sort key is supported
func (k SortKey) Valid() bool {
	switch k {
	case SortByUsername, SortByPlatform, SortByFollowers,
		SortByEngagement, SortByStatus, SortByManager, SortByCreatedAt:
		return true
	default:
		return false
	}
}

// SortDir is an ascending or descending sort direction
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// State is the full filter/sort/search input to View
type State struct {
	Mode          Mode
	Search        string
	FavoritesOnly bool
	SortKey       SortKey
	SortDir       SortDir
}

// View filters and orders the collection. Order of operations: partition by
// archived flag, free-text search, favorites filter, then sort. An empty sort
// key keeps store-fetch order. The input slice is never mutated.
func View(collection []*models.Account, state State) []*models.Account {
	mode := state.Mode
	if !mode.Valid() {
		mode = ModeActive
	}

	view := make([]*models.Account, 0, len(collection))
	term := strings.ToLower(strings.TrimSpace(state.Search))
	for _, a := range collection {
		if a == nil {
			continue
		}
		if a.IsArchived != (mode == ModeArchived) {
			continue
		}
		if term != "" && !matchesSearch(a, term) {
			continue
		}
		if state.FavoritesOnly && !a.IsFavorite {
			continue
		}
		view = append(view, a)
	}

	if state.SortKey.Valid() {
		sortView(view, state.SortKey, state.SortDir)
	}

	return view
}

// matchesSearch reports whether any searchable field contains the lowercased
// term. Fields are unioned with OR semantics; absent optional fields compare
// as the empty string and therefore never match a non-empty term.
func matchesSearch(a *models.Account, term string) bool {
	candidates := []string{
		a.Username,
		a.Platform.DisplayName(),
		a.RealNameOrEmpty(),
		a.EmailOrEmpty(),
		a.ManagerOrEmpty(),
	}
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), term) {
			return true
		}
	}
	return false
}

// sortView orders the slice in place with a stable sort, so records that
// compare equal keep their pre-sort relative order.
func sortView(view []*models.Account, key SortKey, dir SortDir) {
	desc := dir == SortDesc

	sort.SliceStable(view, func(i, j int) bool {
		less := lessByKey(view[i], view[j], key)
		if desc {
			return lessByKey(view[j], view[i], key)
		}
		return less
	})
}

func lessByKey(a, b *models.Account, key SortKey) bool {
	switch key {
	case SortByFollowers:
		return a.Followers < b.Followers
	case SortByEngagement:
		return a.Engagement < b.Engagement
	case SortByCreatedAt:
		return a.CreatedAt.Before(b.CreatedAt)
	default:
		return strings.ToLower(stringByKey(a, key)) < strings.ToLower(stringByKey(b, key))
	}
}

// stringByKey extracts the comparable string for a key; missing optional
// values are treated as the empty string.
func stringByKey(a *models.Account, key SortKey) string {
	switch key {
	case SortByUsername:
		return a.Username
	case SortByPlatform:
		return a.Platform.String()
	case SortByStatus:
		return a.Status.String()
	case SortByManager:
		return a.ManagerOrEmpty()
	default:
		return ""
	}
}

// Page is one window over a view
type Page struct {
	Items      []*models.Account
	Number     int
	PageSize   int
	Total      int
	TotalPages int
}

// Paginate slices the view into the requested 1-indexed page. TotalPages is
// never below 1 so an empty view still renders as a single empty page. An
// out-of-range page number clamps into range.
func Paginate(view []*models.Account, number, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	totalPages := int(math.Ceil(float64(len(view)) / float64(pageSize)))
	if totalPages < 1 {
		totalPages = 1
	}

	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	start := (number - 1) * pageSize
	end := start + pageSize
	if start > len(view) {
		start = len(view)
	}
	if end > len(view) {
		end = len(view)
	}

	return Page{
		Items:      view[start:end],
		Number:     number,
		PageSize:   pageSize,
		Total:      len(view),
		TotalPages: totalPages,
	}
}

// DefaultPageSize matches the console's fixed table height
const DefaultPageSize = 10
