// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/arashpm/Kitsune-Vault/app/dto"
	"github.com/arashpm/Kitsune-Vault/app/middleware"
	businessflow "github.com/arashpm/Kitsune-Vault/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AuthHandlerInterface defines the contract for authentication handlers
type AuthHandlerInterface interface {
	Signup(c fiber.Ctx) error
	Signin(c fiber.Ctx) error
	Signout(c fiber.Ctx) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	signupFlow businessflow.SignupFlow
	loginFlow  businessflow.LoginFlow
	validator  *validator.Validate
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(signupFlow businessflow.SignupFlow, loginFlow businessflow.LoginFlow) *AuthHandler {
	return &AuthHandler{
		signupFlow: signupFlow,
		loginFlow:  loginFlow,
		validator:  newRequestValidator(),
	}
}

func (h *AuthHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AuthHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Signup registers a new console operator
func (h *AuthHandler) Signup(c fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.signupFlow.Signup(createRequestContext(c, "/api/v1/auth/signup"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsEmailAlreadyRegistered(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "This email is already registered", "EMAIL_ALREADY_REGISTERED", nil)
		}
		if businessflow.IsWeakPassword(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Password does not meet strength requirements", "WEAK_PASSWORD", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Service temporarily unavailable", "STORE_UNAVAILABLE", nil)
		}

		log.Println("Signup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Something went wrong. Please try again.", "SIGNUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Signup completed successfully", result)
}

// Signin authenticates an operator and issues a session
func (h *AuthHandler) Signin(c fiber.Ctx) error {
	var req dto.SigninRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.loginFlow.Signin(createRequestContext(c, "/api/v1/auth/signin"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsInvalidCredentials(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Service temporarily unavailable", "STORE_UNAVAILABLE", nil)
		}

		log.Println("Signin failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Something went wrong. Please try again.", "SIGNIN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Signed in successfully", result)
}

// Signout tears down the current session and revokes its token
func (h *AuthHandler) Signout(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	sessionToken, ok := middleware.GetSessionTokenFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.loginFlow.Signout(createRequestContext(c, "/api/v1/auth/signout"), sessionToken, userID, clientMetadata(c))
	if err != nil {
		if businessflow.IsSessionNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Session not found", "SESSION_NOT_FOUND", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Service temporarily unavailable", "STORE_UNAVAILABLE", nil)
		}

		log.Println("Signout failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Something went wrong. Please try again.", "SIGNOUT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Signed out successfully", result)
}
