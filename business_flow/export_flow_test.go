package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/arashpm/Kitsune-Vault/app/dto"
	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/arashpm/Kitsune-Vault/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestExportFlow() (ExportFlow, *memoryAccountRepo, *memorySelectionStore) {
	accountRepo := newMemoryAccountRepo()
	auditRepo := newMemoryAuditRepo()
	selections := newMemorySelectionStore()
	flow := NewExportFlow(accountRepo, auditRepo, selections)
	return flow, accountRepo, selections
}

func TestExportCSVColumns(t *testing.T) {
	flow, repo, _ := newTestExportFlow()

	account := &models.Account{
		UUID:      uuid.New(),
		Username:  "@alice",
		Platform:  models.PlatformInstagram,
		Status:    models.AccountStatusVerified,
		Followers: 1200,
		Manager:   utils.ToPtr("Dana"),
		Email:     utils.ToPtr("alice@example.com"),
		CreatedAt: utils.UTCNow(),
	}
	require.NoError(t, repo.Save(context.Background(), account))

	filename, data, err := flow.ExportCSV(context.Background(), &dto.ExportRequest{}, testSessionID, 1, nil)
	require.NoError(t, err)
	assert.Contains(t, filename, ".csv")

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"id", "username", "platform", "followers", "manager", "status", "email"}, records[0])
	assert.Equal(t, []string{
		account.UUID.String(), "@alice", "Instagram", "1200", "Dana", "verified", "alice@example.com",
	}, records[1])
}

func TestExportCSVEscapesCommas(t *testing.T) {
	flow, repo, _ := newTestExportFlow()

	account := &models.Account{
		UUID:      uuid.New(),
		Username:  `@tricky,"name`,
		Platform:  models.PlatformTwitter,
		Status:    models.AccountStatusActive,
		Manager:   utils.ToPtr("Smith, Jane"),
		CreatedAt: utils.UTCNow(),
	}
	require.NoError(t, repo.Save(context.Background(), account))

	_, data, err := flow.ExportCSV(context.Background(), &dto.ExportRequest{}, testSessionID, 1, nil)
	require.NoError(t, err)

	// The embedded comma and quote survive a standard CSV round trip
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `@tricky,"name`, records[1][1])
	assert.Equal(t, "Smith, Jane", records[1][4])
}

func TestExportCSVMissingOptionalsAsEmpty(t *testing.T) {
	flow, repo, _ := newTestExportFlow()

	account := &models.Account{
		UUID:      uuid.New(),
		Username:  "@bare",
		Platform:  models.PlatformTikTok,
		Status:    models.AccountStatusActive,
		CreatedAt: utils.UTCNow(),
	}
	require.NoError(t, repo.Save(context.Background(), account))

	_, data, err := flow.ExportCSV(context.Background(), &dto.ExportRequest{}, testSessionID, 1, nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "", records[1][4])
	assert.Equal(t, "", records[1][6])
}

func TestExportSelectedSubset(t *testing.T) {
	flow, repo, selections := newTestExportFlow()

	var accounts []*models.Account
	for _, name := range []string{"@a", "@b", "@c"} {
		a := &models.Account{
			UUID:      uuid.New(),
			Username:  name,
			Platform:  models.PlatformLinkedIn,
			Status:    models.AccountStatusActive,
			CreatedAt: utils.UTCNow(),
		}
		require.NoError(t, repo.Save(context.Background(), a))
		accounts = append(accounts, a)
	}

	require.NoError(t, selections.AddAll(context.Background(), testSessionID, []string{accounts[1].UUID.String()}))

	_, data, err := flow.ExportCSV(context.Background(), &dto.ExportRequest{Selected: true}, testSessionID, 1, nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "@b", records[1][1])
}

func TestExportNothingToExport(t *testing.T) {
	flow, _, _ := newTestExportFlow()

	_, _, err := flow.ExportCSV(context.Background(), &dto.ExportRequest{}, testSessionID, 1, nil)
	require.Error(t, err)
	assert.True(t, IsNothingToExport(err))
}

func TestExportXLSX(t *testing.T) {
	flow, repo, _ := newTestExportFlow()

	account := &models.Account{
		UUID:      uuid.New(),
		Username:  "@sheet",
		Platform:  models.PlatformInstagram,
		Status:    models.AccountStatusActive,
		Followers: 42,
		CreatedAt: utils.UTCNow(),
	}
	require.NoError(t, repo.Save(context.Background(), account))

	filename, data, err := flow.ExportXLSX(context.Background(), &dto.ExportRequest{}, testSessionID, 1, nil)
	require.NoError(t, err)
	assert.Contains(t, filename, ".xlsx")

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	rows, err := xl.GetRows("Accounts")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "@sheet", rows[1][1])
	assert.Equal(t, "42", rows[1][3])
}
