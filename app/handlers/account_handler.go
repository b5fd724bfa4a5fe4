// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"

	"github.com/arashpm/Kitsune-Vault/app/dto"
	"github.com/arashpm/Kitsune-Vault/app/middleware"
	businessflow "github.com/arashpm/Kitsune-Vault/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AccountHandlerInterface defines the contract for vault entry handlers
type AccountHandlerInterface interface {
	List(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	GetSelection(c fiber.Ctx) error
	ClearSelection(c fiber.Ctx) error
	ToggleSelection(c fiber.Ctx) error
	TogglePageSelection(c fiber.Ctx) error
	BulkArchive(c fiber.Ctx) error
	BulkRestore(c fiber.Ctx) error
	BulkDelete(c fiber.Ctx) error
	ExportCSV(c fiber.Ctx) error
	ExportXLSX(c fiber.Ctx) error
}

// AccountHandler handles vault entry HTTP requests
type AccountHandler struct {
	accountFlow    businessflow.AccountFlow
	collectionFlow businessflow.CollectionFlow
	exportFlow     businessflow.ExportFlow
	validator      *validator.Validate
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(
	accountFlow businessflow.AccountFlow,
	collectionFlow businessflow.CollectionFlow,
	exportFlow businessflow.ExportFlow,
) *AccountHandler {
	return &AccountHandler{
		accountFlow:    accountFlow,
		collectionFlow: collectionFlow,
		exportFlow:     exportFlow,
		validator:      newRequestValidator(),
	}
}

func (h *AccountHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AccountHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// identity pulls the authenticated operator and selection-session key
func (h *AccountHandler) identity(c fiber.Ctx) (uint, string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return 0, "", false
	}
	sessionID, ok := middleware.GetTokenIDFromContext(c)
	if !ok {
		return 0, "", false
	}
	return userID, sessionID, true
}

// domainError maps the shared business errors every account endpoint can hit.
// The bool reports whether the error was handled.
func (h *AccountHandler) domainError(c fiber.Ctx, err error) (error, bool) {
	switch {
	case businessflow.IsAccountNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil), true
	case businessflow.IsValidationError(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil), true
	case businessflow.IsStoreUnavailable(err):
		return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Could not reach the data store. Please retry.", "STORE_UNAVAILABLE", nil), true
	case businessflow.IsCacheNotAvailable(err):
		return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Selection storage is unavailable. Please retry.", "CACHE_UNAVAILABLE", nil), true
	default:
		return nil, false
	}
}

// List renders one page of the derived collection view
func (h *AccountHandler) List(c fiber.Ctx) error {
	_, sessionID, ok := h.identity(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.ListAccountsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.collectionFlow.ListCollection(createRequestContext(c, "/api/v1/accounts"), &req, sessionID)
	if err != nil {
		if resp, handled := h.domainError(c, err); handled {
			return resp
		}
		log.Println("List accounts failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list accounts", "LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Accounts listed successfully", result)
}

// Create adds a new vault entry
func (h *AccountHandler) Create(c fiber.Ctx) error {
	userID, _, ok := h.identity(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.AccountForm
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.accountFlow.CreateAccount(createRequestContext(c, "/api/v1/accounts"), &req, userID, clientMetadata(c))
	if err != nil {
		if resp, handled := h.domainError(c, err); handled {
			return resp
		}
		log.Println("Create account failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create account", "CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Account created successfully", result)
}

// Get returns one vault entry with its history
func (h *AccountHandler) Get(c fiber.Ctx) error {
	if _, _, ok := h.identity(c); !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.accountFlow.GetAccount(createRequestContext(c, "/api/v1/accounts/:uuid"), c.Params("uuid"))
	if err != nil {
		if resp, handled := h.domainError(c, err); handled {
			return resp
		}
		log.Println("Get account failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load account", "GET_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Account loaded successfully", result)
}

// Update replaces the editable fields of one vault entry
func (h *AccountHandler) Update(c fiber.Ctx) error {
	userID, _, ok := h.identity(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.AccountForm
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.accountFlow.UpdateAccount(createRequestContext(c, "/api/v1/accounts/:uuid"), c.Params("uuid"), &req, userID, clientMetadata(c))
	if err != nil {
		if resp, handled := h.domainError(c, err); handled {
			return resp
		}
		log.Println("Update account failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update account", "UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Account updated successfully", result)
}

// Delete removes one vault entry permanently
func (h *AccountHandler) Delete(c fiber.Ctx) error {
	userID, _, ok := h.identity(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	err := h.accountFlow.DeleteAccount(createRequestContext(c, "/api/v1/accounts/:uuid"), c.Params("uuid"), userID, clientMetadata(c))
	if err != nil {
		if resp, handled := h.domainError(c, err); handled {
			return resp
		}
		log.Println("Delete account failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete account", "DELETE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Account deleted successfully", nil)
}

// ToggleSelection flips one row in the session's selection set
// GetSelection returns the session's current selection set
func (h *AccountHandler) GetSelection(c fiber.Ctx) error {
	_, sessionID, ok := h.identity(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.collectionFlow.Selection(createRequestContext(c, "/api/v1/accounts/selection"), sessionID)
	if err != nil {
		if resp, handled := h.domainError(c, err); handled {
			return resp
		}
		log.Println("Get selection failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read selection", "SELECTION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Selection retrieved", result)
}

// ClearSelection empties the session's selection set
func (h *AccountHandler) ClearSelection(c fiber.Ctx) error {
	_, sessionID, ok := h.identity(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.collectionFlow.ClearSelection(createRequestContext(c, "/api/v1/accounts/selection"), sessionID)
	if err != nil {
		if resp, handled := h.domainError(c, err); handled {
			return resp
		}
		log.Println("Clear selection failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to clear selection", "SELECTION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Selection cleared", result)
}

func (h *AccountHandler) ToggleSelection(c fiber.Ctx) error {
	_, sessionID, ok := h.identity(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.ToggleSelectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.collectionFlow.ToggleSelection(createRequestContext(c, "/api/v1/accounts/selection/toggle"), sessionID, &req)
	if err != nil {
		if resp, handled := h.domainError(c, err); handled {
			return resp
		}
		log.Println("Toggle selection failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update selection", "SELECTION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Selection updated", result)
}

// TogglePageSelection selects or deselects the whole current page
func (h *AccountHandler) TogglePageSelection(c fiber.Ctx) error {
	_, sessionID, ok := h.identity(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.TogglePageSelectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.collectionFlow.TogglePageSelection(createRequestContext(c, "/api/v1/accounts/selection/toggle-page"), sessionID, &req)
	if err != nil {
		if resp, handled := h.domainError(c, err); handled {
			return resp
		}
		log.Println("Toggle page selection failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update selection", "SELECTION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Selection updated", result)
}

// BulkArchive archives the targeted entries as one unit
func (h *AccountHandler) BulkArchive(c fiber.Ctx) error {
	return h.bulk(c, "/api/v1/accounts/bulk/archive", h.collectionFlow.BulkArchive)
}

// BulkRestore restores the targeted entries as one unit
func (h *AccountHandler) BulkRestore(c fiber.Ctx) error {
	return h.bulk(c, "/api/v1/accounts/bulk/restore", h.collectionFlow.BulkRestore)
}

// BulkDelete permanently removes the targeted entries as one unit
func (h *AccountHandler) BulkDelete(c fiber.Ctx) error {
	return h.bulk(c, "/api/v1/accounts/bulk/delete", h.collectionFlow.BulkDelete)
}

type bulkOp func(ctx context.Context, sessionID string, req *dto.BulkRequest, userID uint, metadata *businessflow.ClientMetadata) (*dto.BulkResponse, error)

func (h *AccountHandler) bulk(c fiber.Ctx, endpoint string, op bulkOp) error {
	userID, sessionID, ok := h.identity(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.BulkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := op(createRequestContext(c, endpoint), sessionID, &req, userID, clientMetadata(c))
	if err != nil {
		if businessflow.IsEmptySelection(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "No accounts selected", "EMPTY_SELECTION", nil)
		}
		if resp, handled := h.domainError(c, err); handled {
			return resp
		}
		log.Println("Bulk operation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Bulk operation failed", "BULK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ExportCSV downloads the current view or selection as CSV
func (h *AccountHandler) ExportCSV(c fiber.Ctx) error {
	return h.export(c, "/api/v1/accounts/export/csv", "csv", "text/csv; charset=utf-8", h.exportFlow.ExportCSV)
}

// ExportXLSX downloads the current view or selection as a workbook
func (h *AccountHandler) ExportXLSX(c fiber.Ctx) error {
	return h.export(c, "/api/v1/accounts/export/xlsx", "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", h.exportFlow.ExportXLSX)
}

type exportOp func(ctx context.Context, req *dto.ExportRequest, sessionID string, userID uint, metadata *businessflow.ClientMetadata) (string, []byte, error)

func (h *AccountHandler) export(c fiber.Ctx, endpoint, format, contentType string, op exportOp) error {
	userID, sessionID, ok := h.identity(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.ExportRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	filename, data, err := op(createRequestContext(c, endpoint), &req, sessionID, userID, clientMetadata(c))
	if err != nil {
		if businessflow.IsNothingToExport(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "There are no accounts to export", "NOTHING_TO_EXPORT", nil)
		}
		if resp, handled := h.domainError(c, err); handled {
			return resp
		}
		log.Println("Export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Export failed", "EXPORT_FAILED", nil)
	}

	middleware.ExportsTotal.WithLabelValues(format).Inc()

	c.Set("Content-Type", contentType)
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}
