// Package dto contains Data Transfer Objects for API request and response structures
package dto

// InsightsDTO is the structured result of a profile analysis. A failed
// analysis yields a null insights payload, never an error response.
type InsightsDTO struct {
	Sentiment      string   `json:"sentiment"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	GrowthStrategy string   `json:"growth_strategy"`
}

// AnalyzeResponse wraps the nullable analysis result
type AnalyzeResponse struct {
	AccountID string       `json:"account_id"`
	Insights  *InsightsDTO `json:"insights"`
}

// TrendsDTO is a platform trend report. A failed lookup degrades to a fixed
// fallback text with empty sources; the payload itself is never null.
type TrendsDTO struct {
	Platform string   `json:"platform"`
	Text     string   `json:"text"`
	Sources  []string `json:"sources"`
}
