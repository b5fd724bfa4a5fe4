// Package services provides external service integrations and technical concerns like tokens and AI insights
package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arashpm/Kitsune-Vault/models"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCompleter returns a canned completion or error
type stubCompleter struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (s *stubCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func newStubbedClient(stub *stubCompleter) *InsightsClientImpl {
	return &InsightsClientImpl{
		client:  stub,
		model:   "gpt-4o-mini",
		timeout: 5 * time.Second,
	}
}

func testAccount() *models.Account {
	return &models.Account{
		Username:   "@fashionista",
		Platform:   models.PlatformInstagram,
		Followers:  125000,
		Engagement: 4.7,
		Category:   "Fashion",
		Bio:        "Daily outfit inspiration",
	}
}

func TestAnalyzeParsesStructuredResponse(t *testing.T) {
	stub := &stubCompleter{content: `{
		"sentiment": "positive",
		"strengths": ["consistent posting", "strong engagement"],
		"weaknesses": ["narrow audience"],
		"growth_strategy": "Expand into video content."
	}`}
	client := newStubbedClient(stub)

	insights, err := client.Analyze(context.Background(), testAccount())
	require.NoError(t, err)
	require.NotNil(t, insights)

	assert.Equal(t, "positive", insights.Sentiment)
	assert.Len(t, insights.Strengths, 2)
	assert.Len(t, insights.Weaknesses, 1)
	assert.NotEmpty(t, insights.GrowthStrategy)

	// Request carries the profile fields and asks for a JSON object
	require.Len(t, stub.lastReq.Messages, 2)
	assert.Contains(t, stub.lastReq.Messages[1].Content, "@fashionista")
	assert.Contains(t, stub.lastReq.Messages[1].Content, "Instagram")
	require.NotNil(t, stub.lastReq.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, stub.lastReq.ResponseFormat.Type)
}

func TestAnalyzeFailures(t *testing.T) {
	tests := []struct {
		name string
		stub *stubCompleter
	}{
		{"transport error", &stubCompleter{err: errors.New("connection refused")}},
		{"malformed JSON", &stubCompleter{content: "not json at all"}},
		{"empty content", &stubCompleter{content: ""}},
		{"missing sentiment", &stubCompleter{content: `{"strengths": []}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newStubbedClient(tt.stub)
			insights, err := client.Analyze(context.Background(), testAccount())
			assert.Error(t, err)
			assert.Nil(t, insights)
		})
	}
}

func TestTrendsParsesStructuredResponse(t *testing.T) {
	stub := &stubCompleter{content: `{
		"text": "Short-form video dominates.",
		"sources": ["creator-weekly"]
	}`}
	client := newStubbedClient(stub)

	report, err := client.Trends(context.Background(), models.PlatformTikTok)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, "Short-form video dominates.", report.Text)
	assert.Equal(t, []string{"creator-weekly"}, report.Sources)
	assert.Contains(t, stub.lastReq.Messages[1].Content, "TikTok")
}

func TestTrendsNormalizesNilSources(t *testing.T) {
	stub := &stubCompleter{content: `{"text": "Livestreams are up."}`}
	client := newStubbedClient(stub)

	report, err := client.Trends(context.Background(), models.PlatformTwitter)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.NotNil(t, report.Sources)
	assert.Empty(t, report.Sources)
}

func TestTrendsFailures(t *testing.T) {
	tests := []struct {
		name string
		stub *stubCompleter
	}{
		{"transport error", &stubCompleter{err: errors.New("timeout")}},
		{"malformed JSON", &stubCompleter{content: "{broken"}},
		{"missing text", &stubCompleter{content: `{"sources": []}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newStubbedClient(tt.stub)
			report, err := client.Trends(context.Background(), models.PlatformLinkedIn)
			assert.Error(t, err)
			assert.Nil(t, report)
		})
	}
}
