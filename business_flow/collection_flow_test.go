package businessflow

import (
	"context"
	"fmt"
	"testing"

	"github.com/arashpm/Kitsune-Vault/app/dto"
	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/arashpm/Kitsune-Vault/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionID = "session-1"

func newTestCollectionFlow() (CollectionFlow, *memoryAccountRepo, *memorySelectionStore, *memoryAuditRepo) {
	accountRepo := newMemoryAccountRepo()
	activityRepo := newMemoryActivityRepo()
	auditRepo := newMemoryAuditRepo()
	selections := newMemorySelectionStore()
	flow := NewCollectionFlow(accountRepo, activityRepo, auditRepo, selections, nil)
	return flow, accountRepo, selections, auditRepo
}

func seedAccounts(t *testing.T, repo *memoryAccountRepo, n int, archived int) []*models.Account {
	t.Helper()
	var out []*models.Account
	for i := 0; i < n; i++ {
		a := &models.Account{
			UUID:       uuid.New(),
			Username:   fmt.Sprintf("@user%02d", i),
			Platform:   models.PlatformInstagram,
			Status:     models.AccountStatusActive,
			Followers:  int64(100 * (i + 1)),
			IsArchived: i < archived,
			CreatedAt:  utils.UTCNow(),
			UpdatedAt:  utils.UTCNow(),
		}
		require.NoError(t, repo.Save(context.Background(), a))
		out = append(out, a)
	}
	return out
}

func TestListCollectionPartition(t *testing.T) {
	flow, repo, _, _ := newTestCollectionFlow()
	seedAccounts(t, repo, 12, 4)

	active, err := flow.ListCollection(context.Background(), &dto.ListAccountsRequest{View: "active"}, testSessionID)
	require.NoError(t, err)
	archived, err := flow.ListCollection(context.Background(), &dto.ListAccountsRequest{View: "archived"}, testSessionID)
	require.NoError(t, err)

	// Both sides together cover the collection with no overlap
	assert.Equal(t, 8, active.Pagination.Total)
	assert.Equal(t, 4, archived.Pagination.Total)
	assert.Equal(t, 12, active.Pagination.Total+archived.Pagination.Total)

	for _, item := range active.Items {
		assert.False(t, item.IsArchived)
	}
	for _, item := range archived.Items {
		assert.True(t, item.IsArchived)
	}
}

func TestListCollectionDefaultsAndPaging(t *testing.T) {
	flow, repo, _, _ := newTestCollectionFlow()
	seedAccounts(t, repo, 25, 0)

	resp, err := flow.ListCollection(context.Background(), &dto.ListAccountsRequest{}, testSessionID)
	require.NoError(t, err)

	assert.Len(t, resp.Items, 10)
	assert.Equal(t, 1, resp.Pagination.Page)
	assert.Equal(t, 10, resp.Pagination.PageSize)
	assert.Equal(t, 25, resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.NotNil(t, resp.Selected)

	last, err := flow.ListCollection(context.Background(), &dto.ListAccountsRequest{Page: 3}, testSessionID)
	require.NoError(t, err)
	assert.Len(t, last.Items, 5)

	// Out-of-range page clamps instead of erroring
	beyond, err := flow.ListCollection(context.Background(), &dto.ListAccountsRequest{Page: 99}, testSessionID)
	require.NoError(t, err)
	assert.Equal(t, 3, beyond.Pagination.Page)
}

func TestListCollectionInvalidState(t *testing.T) {
	flow, repo, _, _ := newTestCollectionFlow()
	seedAccounts(t, repo, 3, 0)

	tests := []struct {
		name  string
		req   dto.ListAccountsRequest
		check func(error) bool
	}{
		{"bad view", dto.ListAccountsRequest{View: "trash"}, IsInvalidViewMode},
		{"bad sort key", dto.ListAccountsRequest{SortKey: "height"}, IsInvalidSortKey},
		{"negative page", dto.ListAccountsRequest{Page: -1}, IsInvalidPage},
		{"oversized page size", dto.ListAccountsRequest{PageSize: 500}, IsInvalidPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := flow.ListCollection(context.Background(), &tt.req, testSessionID)
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.True(t, tt.check(err))
		})
	}
}

func TestToggleSelection(t *testing.T) {
	flow, repo, _, _ := newTestCollectionFlow()
	accounts := seedAccounts(t, repo, 3, 0)
	target := accounts[0].UUID.String()

	resp, err := flow.ToggleSelection(context.Background(), testSessionID, &dto.ToggleSelectionRequest{AccountID: target})
	require.NoError(t, err)
	assert.Equal(t, []string{target}, resp.Selected)

	// A second toggle removes the row again
	resp, err = flow.ToggleSelection(context.Background(), testSessionID, &dto.ToggleSelectionRequest{AccountID: target})
	require.NoError(t, err)
	assert.Empty(t, resp.Selected)
}

func TestSelectionReadAndClear(t *testing.T) {
	flow, repo, _, _ := newTestCollectionFlow()
	accounts := seedAccounts(t, repo, 3, 0)

	_, err := flow.ToggleSelection(context.Background(), testSessionID, &dto.ToggleSelectionRequest{AccountID: accounts[0].UUID.String()})
	require.NoError(t, err)
	_, err = flow.ToggleSelection(context.Background(), testSessionID, &dto.ToggleSelectionRequest{AccountID: accounts[2].UUID.String()})
	require.NoError(t, err)

	resp, err := flow.Selection(context.Background(), testSessionID)
	require.NoError(t, err)
	assert.Len(t, resp.Selected, 2)

	cleared, err := flow.ClearSelection(context.Background(), testSessionID)
	require.NoError(t, err)
	assert.Empty(t, cleared.Selected)

	resp, err = flow.Selection(context.Background(), testSessionID)
	require.NoError(t, err)
	assert.Empty(t, resp.Selected)
}

func TestTogglePageSelectionSymmetric(t *testing.T) {
	flow, repo, _, _ := newTestCollectionFlow()
	seedAccounts(t, repo, 15, 0)

	req := &dto.TogglePageSelectionRequest{}

	// First toggle selects the whole first page
	resp, err := flow.TogglePageSelection(context.Background(), testSessionID, req)
	require.NoError(t, err)
	assert.Len(t, resp.Selected, 10)

	// Second toggle deselects exactly that page
	resp, err = flow.TogglePageSelection(context.Background(), testSessionID, req)
	require.NoError(t, err)
	assert.Empty(t, resp.Selected)
}

func TestTogglePageSelectionPartialSelectsAll(t *testing.T) {
	flow, repo, _, _ := newTestCollectionFlow()
	accounts := seedAccounts(t, repo, 10, 0)

	_, err := flow.ToggleSelection(context.Background(), testSessionID, &dto.ToggleSelectionRequest{AccountID: accounts[2].UUID.String()})
	require.NoError(t, err)

	// With a partial selection the page toggle completes it
	resp, err := flow.TogglePageSelection(context.Background(), testSessionID, &dto.TogglePageSelectionRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Selected, 10)
}

func TestTogglePageSelectionLeavesOtherPagesAlone(t *testing.T) {
	flow, repo, _, _ := newTestCollectionFlow()
	accounts := seedAccounts(t, repo, 15, 0)

	// Select one row that lives on page two
	offPage := accounts[12].UUID.String()
	_, err := flow.ToggleSelection(context.Background(), testSessionID, &dto.ToggleSelectionRequest{AccountID: offPage})
	require.NoError(t, err)

	resp, err := flow.TogglePageSelection(context.Background(), testSessionID, &dto.TogglePageSelectionRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Selected, 11)
	assert.Contains(t, resp.Selected, offPage)

	resp, err = flow.TogglePageSelection(context.Background(), testSessionID, &dto.TogglePageSelectionRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{offPage}, resp.Selected)
}

func TestBulkArchiveAndRestore(t *testing.T) {
	flow, repo, selections, auditRepo := newTestCollectionFlow()
	accounts := seedAccounts(t, repo, 5, 0)

	targets := []string{accounts[0].UUID.String(), accounts[1].UUID.String()}
	resp, err := flow.BulkArchive(context.Background(), testSessionID, &dto.BulkRequest{AccountIDs: targets}, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Affected)
	// The refreshed view is the active side minus the archived rows
	assert.Equal(t, 3, resp.Pagination.Total)
	assert.Empty(t, resp.Selected)

	archived, err := flow.ListCollection(context.Background(), &dto.ListAccountsRequest{View: "archived"}, testSessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, archived.Pagination.Total)

	restoreReq := &dto.BulkRequest{AccountIDs: targets}
	restoreReq.View = "archived"
	restored, err := flow.BulkRestore(context.Background(), testSessionID, restoreReq, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Affected)
	assert.Equal(t, 0, restored.Pagination.Total)

	entries, err := auditRepo.ListByAction(context.Background(), models.AuditActionBulkArchived, 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	members, err := selections.Members(context.Background(), testSessionID)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestBulkDeleteUsesSelection(t *testing.T) {
	flow, repo, selections, _ := newTestCollectionFlow()
	accounts := seedAccounts(t, repo, 5, 0)

	require.NoError(t, selections.AddAll(context.Background(), testSessionID, []string{
		accounts[0].UUID.String(),
		accounts[3].UUID.String(),
	}))

	resp, err := flow.BulkDelete(context.Background(), testSessionID, &dto.BulkRequest{}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Affected)
	assert.Equal(t, 3, resp.Pagination.Total)
	assert.Empty(t, resp.Selected)

	remaining, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, remaining, 3)
}

func TestBulkEmptySelection(t *testing.T) {
	flow, repo, _, _ := newTestCollectionFlow()
	seedAccounts(t, repo, 3, 0)

	resp, err := flow.BulkArchive(context.Background(), testSessionID, &dto.BulkRequest{}, 1, nil)
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, IsEmptySelection(err))
}

func TestBulkAllOrNothing(t *testing.T) {
	flow, repo, _, _ := newTestCollectionFlow()
	accounts := seedAccounts(t, repo, 3, 0)
	repo.fail = true

	targets := []string{accounts[0].UUID.String(), accounts[1].UUID.String()}
	resp, err := flow.BulkDelete(context.Background(), testSessionID, &dto.BulkRequest{AccountIDs: targets}, 1, nil)
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, IsStoreUnavailable(err))

	repo.fail = false
	remaining, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, remaining, 3)
}
