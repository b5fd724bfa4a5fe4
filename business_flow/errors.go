// Package businessflow contains the core business logic and use cases for the vault console
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User/auth errors
	ErrUserNotFound           = errors.New("user not found")
	ErrUserInactive           = errors.New("user is inactive")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrWeakPassword           = errors.New("password does not meet strength requirements")
	ErrSessionNotFound        = errors.New("session not found")

	// Account (vault entry) errors
	ErrAccountNotFound        = errors.New("account not found")
	ErrUsernameRequired       = errors.New("username is required")
	ErrInvalidPlatform        = errors.New("platform must be one of twitter, instagram, linkedin, tiktok")
	ErrInvalidStatus          = errors.New("status must be one of active, shadowbanned, suspended, verified")
	ErrNegativeFollowers      = errors.New("follower count must be zero or positive")
	ErrEngagementOutOfRange   = errors.New("engagement rate must be between 0 and 100")
	ErrEmptySelection         = errors.New("no accounts selected")
	ErrAccountUUIDRequired    = errors.New("account UUID is required")
	ErrNothingToExport        = errors.New("nothing to export")
	ErrInvalidViewMode        = errors.New("view mode must be active or archived")
	ErrInvalidSortKey         = errors.New("unsupported sort key")
	ErrInvalidPage            = errors.New("page must be at least 1")
	ErrInvalidPageSize        = errors.New("page size must be between 1 and 100")

	// Store errors
	ErrStoreUnavailable = errors.New("backing store unavailable")

	// Cache errors
	ErrCacheNotAvailable = errors.New("cache not available")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsUserInactive(err error) bool {
	return errors.Is(err, ErrUserInactive)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsEmailAlreadyRegistered(err error) bool {
	return errors.Is(err, ErrEmailAlreadyRegistered)
}

func IsWeakPassword(err error) bool {
	return errors.Is(err, ErrWeakPassword)
}

func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func IsUsernameRequired(err error) bool {
	return errors.Is(err, ErrUsernameRequired)
}

func IsInvalidPlatform(err error) bool {
	return errors.Is(err, ErrInvalidPlatform)
}

func IsInvalidStatus(err error) bool {
	return errors.Is(err, ErrInvalidStatus)
}

func IsNegativeFollowers(err error) bool {
	return errors.Is(err, ErrNegativeFollowers)
}

func IsEngagementOutOfRange(err error) bool {
	return errors.Is(err, ErrEngagementOutOfRange)
}

func IsEmptySelection(err error) bool {
	return errors.Is(err, ErrEmptySelection)
}

func IsAccountUUIDRequired(err error) bool {
	return errors.Is(err, ErrAccountUUIDRequired)
}

func IsNothingToExport(err error) bool {
	return errors.Is(err, ErrNothingToExport)
}

func IsInvalidViewMode(err error) bool {
	return errors.Is(err, ErrInvalidViewMode)
}

func IsInvalidSortKey(err error) bool {
	return errors.Is(err, ErrInvalidSortKey)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

func IsCacheNotAvailable(err error) bool {
	return errors.Is(err, ErrCacheNotAvailable)
}

// IsValidationError reports whether the failure is a form-level violation
// that should block submission rather than surface as a store alert.
func IsValidationError(err error) bool {
	return IsUsernameRequired(err) ||
		IsInvalidPlatform(err) ||
		IsInvalidStatus(err) ||
		IsNegativeFollowers(err) ||
		IsEngagementOutOfRange(err) ||
		IsInvalidViewMode(err) ||
		IsInvalidSortKey(err) ||
		IsInvalidPage(err) ||
		IsInvalidPageSize(err) ||
		IsAccountUUIDRequired(err) ||
		IsEmptySelection(err)
}
