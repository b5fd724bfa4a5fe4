package repository_test

import (
	"context"
	"testing"

	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/arashpm/Kitsune-Vault/repository"
	vaulttesting "github.com/arashpm/Kitsune-Vault/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// setupRepoTest provisions a throwaway database, or skips when no Postgres
// server is reachable (TEST_DB_HOST et al).
func setupRepoTest(t *testing.T) (*vaulttesting.TestDB, *vaulttesting.TestFixtures) {
	t.Helper()

	tdb, err := vaulttesting.SetupTestDB()
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = tdb.TeardownTestDB()
	})

	return tdb, vaulttesting.NewTestFixtures(tdb)
}

func TestAccountRepositoryListAllOrdersByID(t *testing.T) {
	tdb, fixtures := setupRepoTest(t)
	ctx := context.Background()

	created, err := fixtures.CreateTestAccounts()
	require.NoError(t, err)

	repo := repository.NewAccountRepository(tdb.DB)
	rows, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, len(created))

	for i := 1; i < len(rows); i++ {
		require.Less(t, rows[i-1].ID, rows[i].ID)
	}
}

func TestAccountRepositoryByUUID(t *testing.T) {
	tdb, fixtures := setupRepoTest(t)
	ctx := context.Background()

	account, err := fixtures.CreateTestAccount("@lookup_me", models.PlatformInstagram)
	require.NoError(t, err)

	repo := repository.NewAccountRepository(tdb.DB)

	found, err := repo.ByUUID(ctx, account.UUID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "@lookup_me", found.Username)

	missing, err := repo.ByUUID(ctx, uuid.New())
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestAccountRepositorySetArchivedByUUIDs(t *testing.T) {
	tdb, fixtures := setupRepoTest(t)
	ctx := context.Background()

	accounts, err := fixtures.CreateTestAccounts()
	require.NoError(t, err)

	repo := repository.NewAccountRepository(tdb.DB)
	targets := []uuid.UUID{accounts[0].UUID, accounts[1].UUID}

	require.NoError(t, repo.SetArchivedByUUIDs(ctx, targets, true))

	for _, target := range targets {
		row, err := repo.ByUUID(ctx, target)
		require.NoError(t, err)
		require.True(t, row.IsArchived)
	}
	untouched, err := repo.ByUUID(ctx, accounts[2].UUID)
	require.NoError(t, err)
	require.False(t, untouched.IsArchived)

	require.NoError(t, repo.SetArchivedByUUIDs(ctx, targets, false))
	restored, err := repo.ByUUID(ctx, targets[0])
	require.NoError(t, err)
	require.False(t, restored.IsArchived)
}

func TestAccountRepositoryDeleteByUUIDs(t *testing.T) {
	tdb, fixtures := setupRepoTest(t)
	ctx := context.Background()

	accounts, err := fixtures.CreateTestAccounts()
	require.NoError(t, err)

	repo := repository.NewAccountRepository(tdb.DB)
	activityRepo := repository.NewActivityEntryRepository(tdb.DB)

	_, err = fixtures.CreateTestActivityEntry(accounts[0].ID, models.ActivityActionCreated)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByUUIDs(ctx, []uuid.UUID{accounts[0].UUID}))

	gone, err := repo.ByUUID(ctx, accounts[0].UUID)
	require.NoError(t, err)
	require.Nil(t, gone)

	// Deleting an account removes its history as well
	entries, err := activityRepo.ListByAccount(ctx, accounts[0].ID)
	require.NoError(t, err)
	require.Empty(t, entries)

	remaining, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, len(accounts)-1)
}

func TestActivityEntryRepositoryListByAccountNewestFirst(t *testing.T) {
	tdb, fixtures := setupRepoTest(t)
	ctx := context.Background()

	account, err := fixtures.CreateTestAccount("@with_history", models.PlatformTwitter)
	require.NoError(t, err)

	for _, action := range []string{
		models.ActivityActionCreated,
		models.ActivityActionUpdated,
		models.ActivityActionArchived,
	} {
		_, err = fixtures.CreateTestActivityEntry(account.ID, action)
		require.NoError(t, err)
	}

	repo := repository.NewActivityEntryRepository(tdb.DB)
	entries, err := repo.ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, models.ActivityActionArchived, entries[0].Action)
	require.Equal(t, models.ActivityActionCreated, entries[2].Action)
}

func TestUserRepositoryByEmailIsCaseInsensitive(t *testing.T) {
	tdb, fixtures := setupRepoTest(t)
	ctx := context.Background()

	user, err := fixtures.CreateTestUser("Operator@Example.COM", "sup3rsecret")
	require.NoError(t, err)

	repo := repository.NewUserRepository(tdb.DB)
	found, err := repo.ByEmail(ctx, "operator@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, user.ID, found.ID)
}

func TestUserSessionRepositoryDeactivateSession(t *testing.T) {
	tdb, fixtures := setupRepoTest(t)
	ctx := context.Background()

	user, err := fixtures.CreateTestUser("sessions@example.com", "sup3rsecret")
	require.NoError(t, err)
	session, err := fixtures.CreateTestSession(user.ID)
	require.NoError(t, err)

	repo := repository.NewUserSessionRepository(tdb.DB)
	require.NoError(t, repo.DeactivateSession(ctx, session.ID))

	active, err := repo.ListActiveSessionsByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, active)
}
