package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/arashpm/Kitsune-Vault/app/services"
	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/arashpm/Kitsune-Vault/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubInsightsClient returns canned results or a canned failure
type stubInsightsClient struct {
	insights *services.AccountInsights
	report   *services.TrendsReport
	err      error
}

func (s *stubInsightsClient) Analyze(ctx context.Context, account *models.Account) (*services.AccountInsights, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.insights, nil
}

func (s *stubInsightsClient) Trends(ctx context.Context, platform models.Platform) (*services.TrendsReport, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func newTestInsightsFlow(client services.InsightsClient) (InsightsFlow, *memoryAccountRepo) {
	accountRepo := newMemoryAccountRepo()
	return NewInsightsFlow(accountRepo, client), accountRepo
}

func seedOneAccount(t *testing.T, repo *memoryAccountRepo) *models.Account {
	t.Helper()
	a := &models.Account{
		UUID:      uuid.New(),
		Username:  "@alice",
		Platform:  models.PlatformInstagram,
		Status:    models.AccountStatusActive,
		CreatedAt: utils.UTCNow(),
	}
	require.NoError(t, repo.Save(context.Background(), a))
	return a
}

func TestAnalyzeSuccess(t *testing.T) {
	client := &stubInsightsClient{insights: &services.AccountInsights{
		Sentiment:      "positive",
		Strengths:      []string{"consistent posting"},
		Weaknesses:     []string{"low reply rate"},
		GrowthStrategy: "post more reels",
	}}
	flow, repo := newTestInsightsFlow(client)
	account := seedOneAccount(t, repo)

	resp, err := flow.Analyze(context.Background(), account.UUID.String())
	require.NoError(t, err)
	require.NotNil(t, resp.Insights)
	assert.Equal(t, "positive", resp.Insights.Sentiment)
	assert.Equal(t, account.UUID.String(), resp.AccountID)
}

func TestAnalyzeFailureYieldsNullInsights(t *testing.T) {
	client := &stubInsightsClient{err: errors.New("upstream timeout")}
	flow, repo := newTestInsightsFlow(client)
	account := seedOneAccount(t, repo)

	// Upstream failure degrades silently: success with a null payload
	resp, err := flow.Analyze(context.Background(), account.UUID.String())
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Nil(t, resp.Insights)
	assert.Equal(t, account.UUID.String(), resp.AccountID)
}

func TestAnalyzeUnknownAccount(t *testing.T) {
	flow, _ := newTestInsightsFlow(&stubInsightsClient{})

	resp, err := flow.Analyze(context.Background(), uuid.NewString())
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, IsAccountNotFound(err))
}

func TestTrendsSuccess(t *testing.T) {
	client := &stubInsightsClient{report: &services.TrendsReport{
		Text:    "Short-form video keeps growing.",
		Sources: []string{"https://example.com/report"},
	}}
	flow, _ := newTestInsightsFlow(client)

	resp, err := flow.Trends(context.Background(), "Instagram")
	require.NoError(t, err)
	assert.Equal(t, "instagram", resp.Platform)
	assert.Equal(t, "Short-form video keeps growing.", resp.Text)
	assert.Equal(t, []string{"https://example.com/report"}, resp.Sources)
}

func TestTrendsFailureYieldsFallbackReport(t *testing.T) {
	client := &stubInsightsClient{err: errors.New("upstream down")}
	flow, _ := newTestInsightsFlow(client)

	// The payload is never null; failures collapse to the fallback
	resp, err := flow.Trends(context.Background(), "tiktok")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, TrendsFallbackText, resp.Text)
	assert.NotNil(t, resp.Sources)
	assert.Empty(t, resp.Sources)
}

func TestTrendsUnknownPlatform(t *testing.T) {
	flow, _ := newTestInsightsFlow(&stubInsightsClient{})

	resp, err := flow.Trends(context.Background(), "myspace")
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, IsInvalidPlatform(err))
}
