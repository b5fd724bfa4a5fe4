// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"
	"time"

	"github.com/arashpm/Kitsune-Vault/app/dto"
	"github.com/arashpm/Kitsune-Vault/app/middleware"
	businessflow "github.com/arashpm/Kitsune-Vault/business_flow"
	"github.com/gofiber/fiber/v3"
)

// InsightsHandlerInterface defines the contract for AI augmentation handlers
type InsightsHandlerInterface interface {
	Analyze(c fiber.Ctx) error
	Trends(c fiber.Ctx) error
}

// InsightsHandler handles AI-assisted analysis HTTP requests
type InsightsHandler struct {
	insightsFlow businessflow.InsightsFlow
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(insightsFlow businessflow.InsightsFlow) *InsightsHandler {
	return &InsightsHandler{insightsFlow: insightsFlow}
}

func (h *InsightsHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *InsightsHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Analyze runs a single-shot profile analysis. Upstream failures still
// come back as 200 with a null insights payload.
func (h *InsightsHandler) Analyze(c fiber.Ctx) error {
	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	// Generative calls are slower than store lookups
	ctx := createRequestContextWithTimeout(c, "/api/v1/accounts/:uuid/insights", 60*time.Second)

	result, err := h.insightsFlow.Analyze(ctx, c.Params("uuid"))
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			middleware.InsightsRequestsTotal.WithLabelValues("analyze", "rejected").Inc()
			return h.ErrorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsValidationError(err) {
			middleware.InsightsRequestsTotal.WithLabelValues("analyze", "rejected").Inc()
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			middleware.InsightsRequestsTotal.WithLabelValues("analyze", "error").Inc()
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Could not reach the data store. Please retry.", "STORE_UNAVAILABLE", nil)
		}

		middleware.InsightsRequestsTotal.WithLabelValues("analyze", "error").Inc()
		log.Println("Analyze failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Analysis failed", "ANALYZE_FAILED", nil)
	}

	outcome := "ok"
	if result.Insights == nil {
		outcome = "degraded"
	}
	middleware.InsightsRequestsTotal.WithLabelValues("analyze", outcome).Inc()

	return h.SuccessResponse(c, fiber.StatusOK, "Analysis completed", result)
}

// Trends looks up current trends for one platform. Upstream failures come
// back as 200 with the fallback report.
func (h *InsightsHandler) Trends(c fiber.Ctx) error {
	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	ctx := createRequestContextWithTimeout(c, "/api/v1/trends/:platform", 60*time.Second)

	result, err := h.insightsFlow.Trends(ctx, c.Params("platform"))
	if err != nil {
		if businessflow.IsValidationError(err) {
			middleware.InsightsRequestsTotal.WithLabelValues("trends", "rejected").Inc()
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}

		middleware.InsightsRequestsTotal.WithLabelValues("trends", "error").Inc()
		log.Println("Trends lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Trend lookup failed", "TRENDS_FAILED", nil)
	}

	outcome := "ok"
	if result.Text == businessflow.TrendsFallbackText {
		outcome = "degraded"
	}
	middleware.InsightsRequestsTotal.WithLabelValues("trends", outcome).Inc()

	return h.SuccessResponse(c, fiber.StatusOK, "Trends loaded", result)
}
