package viewmodel

import (
	"github.com/arashpm/Kitsune-Vault/models"
)

// AllSelected reports whether every row on the page slice is already in the
// selection set. An empty page is never considered fully selected.
func AllSelected(selection map[string]bool, page []*models.Account) bool {
	if len(page) == 0 {
		return false
	}
	for _, a := range page {
		if !selection[a.UUID.String()] {
			return false
		}
	}
	return true
}

// PageUUIDs returns the identifiers of the rows on a page slice
func PageUUIDs(page []*models.Account) []string {
	ids := make([]string, 0, len(page))
	for _, a := range page {
		ids = append(ids, a.UUID.String())
	}
	return ids
}
