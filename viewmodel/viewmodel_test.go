package viewmodel

import (
	"fmt"
	"testing"
	"time"

	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/arashpm/Kitsune-Vault/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAccount(username string, archived bool, mutate ...func(*models.Account)) *models.Account {
	a := &models.Account{
		UUID:       uuid.New(),
		Username:   username,
		Platform:   models.PlatformTwitter,
		Status:     models.AccountStatusActive,
		IsArchived: archived,
		CreatedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, m := range mutate {
		m(a)
	}
	return a
}

func TestViewPartitionsCollection(t *testing.T) {
	collection := []*models.Account{
		makeAccount("@a", false),
		makeAccount("@b", true),
		makeAccount("@c", false),
		makeAccount("@d", true),
		makeAccount("@e", false),
	}

	active := View(collection, State{Mode: ModeActive})
	archived := View(collection, State{Mode: ModeArchived})

	assert.Len(t, active, 3)
	assert.Len(t, archived, 2)
	assert.Equal(t, len(collection), len(active)+len(archived))

	seen := map[string]bool{}
	for _, a := range append(active, archived...) {
		assert.False(t, seen[a.UUID.String()], "account appears in both views")
		seen[a.UUID.String()] = true
	}
}

func TestViewSearch(t *testing.T) {
	collection := []*models.Account{
		makeAccount("@fashionista", false),
		makeAccount("@techguru", false, func(a *models.Account) {
			a.RealName = utils.ToPtr("Grace Hopper")
		}),
		makeAccount("@foodie", false, func(a *models.Account) {
			a.Email = utils.ToPtr("contact@foodie.example.com")
		}),
		makeAccount("@traveler", false, func(a *models.Account) {
			a.Manager = utils.ToPtr("Dana")
			a.Platform = models.PlatformLinkedIn
		}),
	}

	tests := []struct {
		name     string
		search   string
		expected []string
	}{
		{"empty matches all", "", []string{"@fashionista", "@techguru", "@foodie", "@traveler"}},
		{"username substring", "fashion", []string{"@fashionista"}},
		{"case insensitive", "FASHION", []string{"@fashionista"}},
		{"real name", "hopper", []string{"@techguru"}},
		{"email", "foodie.example", []string{"@foodie"}},
		{"manager", "dana", []string{"@traveler"}},
		{"platform display name", "linkedin", []string{"@traveler"}},
		{"no match", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := View(collection, State{Mode: ModeActive, Search: tt.search})
			got := make([]string, 0, len(view))
			for _, a := range view {
				got = append(got, a.Username)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestViewFavoritesOnly(t *testing.T) {
	collection := []*models.Account{
		makeAccount("@a", false, func(a *models.Account) { a.IsFavorite = true }),
		makeAccount("@b", false),
		makeAccount("@c", false, func(a *models.Account) { a.IsFavorite = true }),
	}

	view := View(collection, State{Mode: ModeActive, FavoritesOnly: true})
	require.Len(t, view, 2)
	assert.Equal(t, "@a", view[0].Username)
	assert.Equal(t, "@c", view[1].Username)
}

func TestViewSortEngagementStable(t *testing.T) {
	collection := []*models.Account{
		makeAccount("@first", false, func(a *models.Account) { a.Engagement = 5.0 }),
		makeAccount("@close", false, func(a *models.Account) { a.Engagement = 4.999 }),
		makeAccount("@second", false, func(a *models.Account) { a.Engagement = 5.0 }),
		makeAccount("@third", false, func(a *models.Account) { a.Engagement = 5.0 }),
	}

	view := View(collection, State{Mode: ModeActive, SortKey: SortByEngagement, SortDir: SortAsc})
	require.Len(t, view, 4)

	// 4.999 orders before 5.0
	assert.Equal(t, "@close", view[0].Username)

	// ties keep their pre-sort relative order
	assert.Equal(t, "@first", view[1].Username)
	assert.Equal(t, "@second", view[2].Username)
	assert.Equal(t, "@third", view[3].Username)
}

func TestViewSortMissingValuesAsEmpty(t *testing.T) {
	collection := []*models.Account{
		makeAccount("@managed", false, func(a *models.Account) { a.Manager = utils.ToPtr("Alex") }),
		makeAccount("@orphan", false),
	}

	asc := View(collection, State{Mode: ModeActive, SortKey: SortByManager, SortDir: SortAsc})
	require.Len(t, asc, 2)
	assert.Equal(t, "@orphan", asc[0].Username, "nil manager compares as empty string")

	desc := View(collection, State{Mode: ModeActive, SortKey: SortByManager, SortDir: SortDesc})
	assert.Equal(t, "@managed", desc[0].Username)
}

func TestViewNoSortKeepsFetchOrder(t *testing.T) {
	collection := []*models.Account{
		makeAccount("@z", false),
		makeAccount("@a", false),
		makeAccount("@m", false),
	}

	view := View(collection, State{Mode: ModeActive})
	require.Len(t, view, 3)
	assert.Equal(t, "@z", view[0].Username)
	assert.Equal(t, "@a", view[1].Username)
	assert.Equal(t, "@m", view[2].Username)
}

func TestViewDoesNotMutateInput(t *testing.T) {
	collection := []*models.Account{
		makeAccount("@b", false, func(a *models.Account) { a.Followers = 2 }),
		makeAccount("@a", false, func(a *models.Account) { a.Followers = 1 }),
	}

	_ = View(collection, State{Mode: ModeActive, SortKey: SortByFollowers, SortDir: SortAsc})
	assert.Equal(t, "@b", collection[0].Username)
	assert.Equal(t, "@a", collection[1].Username)
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		page           int
		pageSize       int
		wantItems      int
		wantPage       int
		wantTotalPages int
	}{
		{"empty view renders one page", 0, 1, 10, 0, 1, 1},
		{"single partial page", 7, 1, 10, 7, 1, 1},
		{"exact multiple", 20, 2, 10, 10, 2, 2},
		{"last partial page", 25, 3, 10, 5, 3, 3},
		{"page clamps high", 25, 99, 10, 5, 3, 3},
		{"page clamps low", 25, 0, 10, 10, 1, 3},
		{"zero page size falls back to default", 15, 1, 0, 10, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := make([]*models.Account, 0, tt.total)
			for i := 0; i < tt.total; i++ {
				view = append(view, makeAccount(fmt.Sprintf("@u%03d", i), false))
			}

			page := Paginate(view, tt.page, tt.pageSize)
			assert.Len(t, page.Items, tt.wantItems)
			assert.Equal(t, tt.wantPage, page.Number)
			assert.Equal(t, tt.wantTotalPages, page.TotalPages)
			assert.Equal(t, tt.total, page.Total)
		})
	}
}

func TestAllSelected(t *testing.T) {
	page := []*models.Account{
		makeAccount("@a", false),
		makeAccount("@b", false),
	}

	selection := map[string]bool{}
	assert.False(t, AllSelected(selection, page))

	selection[page[0].UUID.String()] = true
	assert.False(t, AllSelected(selection, page))

	selection[page[1].UUID.String()] = true
	assert.True(t, AllSelected(selection, page))

	assert.False(t, AllSelected(selection, nil), "empty page is never fully selected")
}
