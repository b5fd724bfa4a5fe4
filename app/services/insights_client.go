// Package services provides external service integrations and technical concerns like tokens and AI insights
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arashpm/Kitsune-Vault/models"
	openai "github.com/sashabaranov/go-openai"
)

// AccountInsights is the structured result of a profile analysis
type AccountInsights struct {
	Sentiment      string   `json:"sentiment"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	GrowthStrategy string   `json:"growth_strategy"`
}

// TrendsReport is the result of a platform trend lookup
type TrendsReport struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources"`
}

// InsightsClient performs single-shot generative-text calls. Both operations
// are stateless request/response; nothing is retried and nothing streams.
type InsightsClient interface {
	Analyze(ctx context.Context, account *models.Account) (*AccountInsights, error)
	Trends(ctx context.Context, platform models.Platform) (*TrendsReport, error)
}

// chatCompleter is the slice of the OpenAI client the insights client uses
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// InsightsClientImpl implements InsightsClient against an OpenAI-compatible endpoint
type InsightsClientImpl struct {
	client      chatCompleter
	model       string
	timeout     time.Duration
	temperature float32
}

// NewInsightsClient creates an insights client. baseURL may point at any
// OpenAI-compatible endpoint; an empty baseURL uses the default API host.
func NewInsightsClient(apiKey, baseURL, model string, timeout time.Duration) *InsightsClientImpl {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &InsightsClientImpl{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		timeout:     timeout,
		temperature: 0.3,
	}
}

const analyzeSystemPrompt = `You are a social media audit assistant. Given a profile summary, respond with a JSON object containing exactly these keys:
"sentiment": one word describing the overall audience sentiment (e.g. "positive", "neutral", "negative"),
"strengths": an array of short strings naming what the profile does well,
"weaknesses": an array of short strings naming what holds the profile back,
"growth_strategy": one paragraph of concrete advice.
Respond with JSON only.`

const trendsSystemPrompt = `You are a social media trends researcher. Given a platform name, respond with a JSON object containing exactly these keys:
"text": one paragraph summarizing what is currently trending on that platform for content creators,
"sources": an array of short source names or URLs backing the summary.
Respond with JSON only.`

// Analyze runs a sentiment/strengths/weaknesses audit of one account
func (c *InsightsClientImpl) Analyze(ctx context.Context, account *models.Account) (*AccountInsights, error) {
	userPrompt := fmt.Sprintf(
		"Profile: %s on %s. Followers: %d. Engagement rate: %.2f%%. Category: %s. Bio: %s. Notes: %s.",
		account.Username,
		account.Platform.DisplayName(),
		account.Followers,
		account.Engagement,
		account.Category,
		account.Bio,
		account.Notes,
	)

	raw, err := c.complete(ctx, analyzeSystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	var insights AccountInsights
	if err := json.Unmarshal([]byte(raw), &insights); err != nil {
		return nil, fmt.Errorf("malformed analysis response: %w", err)
	}
	if insights.Sentiment == "" {
		return nil, fmt.Errorf("analysis response missing sentiment")
	}

	return &insights, nil
}

// Trends looks up what is currently working on a platform
func (c *InsightsClientImpl) Trends(ctx context.Context, platform models.Platform) (*TrendsReport, error) {
	userPrompt := fmt.Sprintf("Platform: %s.", platform.DisplayName())

	raw, err := c.complete(ctx, trendsSystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	var report TrendsReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, fmt.Errorf("malformed trends response: %w", err)
	}
	if report.Text == "" {
		return nil, fmt.Errorf("trends response missing text")
	}
	if report.Sources == nil {
		report.Sources = []string{}
	}

	return &report, nil
}

// complete issues one chat completion and returns the raw message content
func (c *InsightsClientImpl) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("completion returned empty content")
	}

	return content, nil
}
