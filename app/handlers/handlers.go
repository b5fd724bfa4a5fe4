// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"fmt"
	"time"

	businessflow "github.com/arashpm/Kitsune-Vault/business_flow"
	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "eqfield":
		return err.Field() + " must match " + err.Param()
	case "uuid":
		return err.Field() + " must be a valid UUID"
	case "url":
		return err.Field() + " must be a valid URL"
	case "platform":
		return err.Field() + " must be one of: twitter, instagram, linkedin, tiktok"
	case "account_status":
		return err.Field() + " must be one of: active, shadowbanned, suspended, verified"
	case "password_strength":
		return "Password must contain at least one letter and one number"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

// newRequestValidator builds a validator with the domain validations shared by
// every handler
func newRequestValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		_, ok := models.ParsePlatform(fl.Field().String())
		return ok
	})

	_ = v.RegisterValidation("account_status", func(fl validator.FieldLevel) bool {
		return models.AccountStatus(fl.Field().String()).Valid()
	})

	_ = v.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		hasLetter := false
		hasDigit := false
		for _, char := range value {
			switch {
			case char >= 'a' && char <= 'z', char >= 'A' && char <= 'Z':
				hasLetter = true
			case char >= '0' && char <= '9':
				hasDigit = true
			}
		}
		return hasLetter && hasDigit
	})

	return v
}

func validationMessages(err error) []string {
	var messages []string
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			messages = append(messages, getValidationErrorMessage(fe))
		}
	} else {
		messages = append(messages, err.Error())
	}
	return messages
}

// createRequestContext builds a bounded context carrying request-scoped
// values for observability
func createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Stored for cleanup

	return ctx
}

// clientMetadata collects the audit-relevant request attributes
func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if requestID := c.Get("X-Request-ID"); requestID != "" {
		metadata.SetRequestID(requestID)
	}
	return metadata
}
