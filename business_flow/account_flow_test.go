package businessflow

import (
	"context"
	"testing"

	"github.com/arashpm/Kitsune-Vault/app/dto"
	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/arashpm/Kitsune-Vault/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccountFlow() (AccountFlow, *memoryAccountRepo, *memoryActivityRepo, *memoryAuditRepo) {
	accountRepo := newMemoryAccountRepo()
	activityRepo := newMemoryActivityRepo()
	auditRepo := newMemoryAuditRepo()
	flow := NewAccountFlow(accountRepo, activityRepo, auditRepo, nil)
	return flow, accountRepo, activityRepo, auditRepo
}

func validForm() *dto.AccountForm {
	return &dto.AccountForm{
		Username:   "alice",
		Platform:   "instagram",
		Followers:  1200,
		Engagement: 4.5,
	}
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"alice", "@alice"},
		{"@bob", "@bob"},
		{"  carol  ", "@carol"},
		{"  @dave ", "@dave"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeUsername(tt.input))
	}
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"simple", "fashion,travel", []string{"fashion", "travel"}},
		{"trims whitespace", " fashion , travel ", []string{"fashion", "travel"}},
		{"drops empty segments", "fashion,,travel,", []string{"fashion", "travel"}},
		{"dedupes keeping first", "a,b,a,c,b", []string{"a", "b", "c"}},
		{"blank input", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitTags(tt.input)
			assert.Equal(t, len(tt.expected), len(got))
			for i := range tt.expected {
				assert.Equal(t, tt.expected[i], got[i])
			}
		})
	}
}

func TestAvatarURLDeterministic(t *testing.T) {
	first := AvatarURLFor("@alice")
	second := AvatarURLFor("@alice")
	other := AvatarURLFor("@bob")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.NotContains(t, first, "@")
}

func TestCreateAccount(t *testing.T) {
	flow, _, activityRepo, auditRepo := newTestAccountFlow()

	form := validForm()
	form.TagsInput = "fashion, travel, fashion"
	resp, err := flow.CreateAccount(context.Background(), form, 1, NewClientMetadata("10.0.0.1", "test-agent"))
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, "@alice", resp.Account.Username)
	assert.Equal(t, "instagram", resp.Account.Platform)
	assert.Equal(t, "active", resp.Account.Status)
	assert.Equal(t, []string{"fashion", "travel"}, resp.Account.Tags)
	assert.NotEmpty(t, resp.Account.AvatarURL)
	assert.NotEmpty(t, resp.Account.ID)

	// Exactly one seeded history line
	require.Len(t, resp.Activity, 1)
	assert.Equal(t, models.ActivityActionCreated, resp.Activity[0].Action)
	assert.Len(t, activityRepo.entries, 1)

	entries, err := auditRepo.ListByAction(context.Background(), models.AuditActionAccountCreated, 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCreateAccountValidation(t *testing.T) {
	flow, _, _, _ := newTestAccountFlow()

	tests := []struct {
		name   string
		mutate func(*dto.AccountForm)
		check  func(error) bool
	}{
		{"empty username", func(f *dto.AccountForm) { f.Username = "   " }, IsUsernameRequired},
		{"unknown platform", func(f *dto.AccountForm) { f.Platform = "myspace" }, IsInvalidPlatform},
		{"unknown status", func(f *dto.AccountForm) { f.Status = "banned" }, IsInvalidStatus},
		{"negative followers", func(f *dto.AccountForm) { f.Followers = -1 }, IsNegativeFollowers},
		{"engagement above range", func(f *dto.AccountForm) { f.Engagement = 101 }, IsEngagementOutOfRange},
		{"engagement below range", func(f *dto.AccountForm) { f.Engagement = -0.1 }, IsEngagementOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(form)
			resp, err := flow.CreateAccount(context.Background(), form, 1, nil)
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.True(t, tt.check(err))
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestUpdateAccount(t *testing.T) {
	flow, accountRepo, _, _ := newTestAccountFlow()

	created, err := flow.CreateAccount(context.Background(), validForm(), 1, nil)
	require.NoError(t, err)

	form := validForm()
	form.Username = "alice_second"
	form.Followers = 5000
	form.Status = "verified"
	form.Manager = utils.ToPtr("Dana")

	updated, err := flow.UpdateAccount(context.Background(), created.Account.ID, form, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, "@alice_second", updated.Account.Username)
	assert.Equal(t, int64(5000), updated.Account.Followers)
	assert.Equal(t, "verified", updated.Account.Status)
	require.NotNil(t, updated.Account.Manager)
	assert.Equal(t, "Dana", *updated.Account.Manager)

	// Identifier and history survive, one line appended newest-first
	assert.Equal(t, created.Account.ID, updated.Account.ID)
	require.Len(t, updated.Activity, 2)
	assert.Equal(t, models.ActivityActionUpdated, updated.Activity[0].Action)
	assert.Equal(t, models.ActivityActionCreated, updated.Activity[1].Action)

	stored, err := accountRepo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, created.Account.ID, stored[0].UUID.String())
}

func TestUpdateAccountClearsMissingOptionals(t *testing.T) {
	flow, _, _, _ := newTestAccountFlow()

	form := validForm()
	form.Email = utils.ToPtr("alice@example.com")
	form.TagsInput = "fashion"
	created, err := flow.CreateAccount(context.Background(), form, 1, nil)
	require.NoError(t, err)
	require.NotNil(t, created.Account.Email)

	// Full-record replace: an absent optional clears the stored value
	updated, err := flow.UpdateAccount(context.Background(), created.Account.ID, validForm(), 1, nil)
	require.NoError(t, err)
	assert.Nil(t, updated.Account.Email)
	assert.Empty(t, updated.Account.Tags)
}

func TestGetAccountNotFound(t *testing.T) {
	flow, _, _, _ := newTestAccountFlow()

	resp, err := flow.GetAccount(context.Background(), uuid.NewString())
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, IsAccountNotFound(err))

	resp, err = flow.GetAccount(context.Background(), "not-a-uuid")
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, IsAccountUUIDRequired(err))
}

func TestDeleteAccount(t *testing.T) {
	flow, accountRepo, _, auditRepo := newTestAccountFlow()

	created, err := flow.CreateAccount(context.Background(), validForm(), 1, nil)
	require.NoError(t, err)

	err = flow.DeleteAccount(context.Background(), created.Account.ID, 1, nil)
	require.NoError(t, err)

	remaining, err := accountRepo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remaining)

	// The identifier is gone from every subsequent query
	resp, err := flow.GetAccount(context.Background(), created.Account.ID)
	assert.Nil(t, resp)
	assert.True(t, IsAccountNotFound(err))

	entries, err := auditRepo.ListByAction(context.Background(), models.AuditActionAccountDeleted, 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCreateAccountStoreFailure(t *testing.T) {
	flow, accountRepo, _, _ := newTestAccountFlow()
	accountRepo.fail = true

	resp, err := flow.CreateAccount(context.Background(), validForm(), 1, nil)
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, IsStoreUnavailable(err))
}
