// Package businessflow contains the core business logic for AI-assisted analysis
package businessflow

import (
	"context"

	"github.com/arashpm/Kitsune-Vault/app/dto"
	"github.com/arashpm/Kitsune-Vault/app/services"
	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/arashpm/Kitsune-Vault/repository"
)

// TrendsFallbackText replaces the report body whenever the lookup fails.
// The caller always receives a well-formed report, never a null payload.
const TrendsFallbackText = "Trend data is currently unavailable. Please try again later."

// InsightsFlow drives the generative-text augmentation. The two operations
// degrade differently on upstream failure: analysis collapses to a null
// insights payload while the trend lookup collapses to a fixed fallback
// report. Neither ever raises an alert.
type InsightsFlow interface {
	Analyze(ctx context.Context, accountID string) (*dto.AnalyzeResponse, error)
	Trends(ctx context.Context, platform string) (*dto.TrendsDTO, error)
}

// InsightsFlowImpl implements the insights business flow
type InsightsFlowImpl struct {
	accountRepo repository.AccountRepository
	client      services.InsightsClient
}

// NewInsightsFlow creates a new insights flow instance
func NewInsightsFlow(accountRepo repository.AccountRepository, client services.InsightsClient) InsightsFlow {
	return &InsightsFlowImpl{
		accountRepo: accountRepo,
		client:      client,
	}
}

// Analyze runs one single-shot analysis of the account profile. An unknown
// account is an error; an upstream failure is not, it yields a response with
// a null insights payload.
func (f *InsightsFlowImpl) Analyze(ctx context.Context, accountID string) (*dto.AnalyzeResponse, error) {
	account, err := f.lookupAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	resp := &dto.AnalyzeResponse{AccountID: accountID}

	insights, err := f.client.Analyze(ctx, account)
	if err != nil {
		return resp, nil
	}

	resp.Insights = &dto.InsightsDTO{
		Sentiment:      insights.Sentiment,
		Strengths:      insights.Strengths,
		Weaknesses:     insights.Weaknesses,
		GrowthStrategy: insights.GrowthStrategy,
	}
	return resp, nil
}

// Trends looks up current trends for one platform. An unsupported platform
// is an error; an upstream failure is not, it yields the fallback report.
func (f *InsightsFlowImpl) Trends(ctx context.Context, platform string) (*dto.TrendsDTO, error) {
	p, ok := models.ParsePlatform(platform)
	if !ok {
		return nil, NewBusinessError("INVALID_PLATFORM", "Unsupported platform", ErrInvalidPlatform)
	}

	report, err := f.client.Trends(ctx, p)
	if err != nil {
		return &dto.TrendsDTO{
			Platform: p.String(),
			Text:     TrendsFallbackText,
			Sources:  []string{},
		}, nil
	}

	return &dto.TrendsDTO{
		Platform: p.String(),
		Text:     report.Text,
		Sources:  report.Sources,
	}, nil
}

func (f *InsightsFlowImpl) lookupAccount(ctx context.Context, accountID string) (*models.Account, error) {
	accountUUID, err := parseAccountUUID(accountID)
	if err != nil {
		return nil, err
	}

	account, err := f.accountRepo.ByUUID(ctx, accountUUID)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to look up account", ErrStoreUnavailable)
	}
	if account == nil {
		return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", ErrAccountNotFound)
	}
	return account, nil
}
