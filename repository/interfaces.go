// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// AccountRepository defines operations for vault entries
type AccountRepository interface {
	Repository[models.Account, models.AccountFilter]
	// ListAll returns the complete collection in store-fetch order. The view
	// pipeline filters and pages in memory, so there is no pushdown variant.
	ListAll(ctx context.Context) ([]*models.Account, error)
	ByUUID(ctx context.Context, accountUUID uuid.UUID) (*models.Account, error)
	ByUUIDs(ctx context.Context, accountUUIDs []uuid.UUID) ([]*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	SetArchivedByUUIDs(ctx context.Context, accountUUIDs []uuid.UUID, archived bool) error
	DeleteByUUIDs(ctx context.Context, accountUUIDs []uuid.UUID) error
}

// ActivityEntryRepository defines operations for per-account history.
// Entries are append-only; there is deliberately no update or delete method.
type ActivityEntryRepository interface {
	Repository[models.ActivityEntry, models.ActivityEntryFilter]
	ListByAccount(ctx context.Context, accountID uint) ([]*models.ActivityEntry, error)
}

// UserRepository defines operations for console operators
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByUUID(ctx context.Context, userUUID uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID uint) error
}

// UserSessionRepository defines operations for operator sessions
type UserSessionRepository interface {
	Repository[models.UserSession, models.UserSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.UserSession, error)
	ListActiveSessionsByUser(ctx context.Context, userID uint) ([]*models.UserSession, error)
	DeactivateSession(ctx context.Context, sessionID uint) error
	DeactivateAllUserSessions(ctx context.Context, userID uint) error
	CleanupExpiredSessions(ctx context.Context) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
