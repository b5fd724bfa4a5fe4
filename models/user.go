// Package models contains domain entities and business models for the vault console
package models

import (
	"strings"
	"time"

	"github.com/arashpm/Kitsune-Vault/utils"
	"github.com/google/uuid"
)

// User is a console operator account. Email is stored lowercased and is the
// sign-in identifier.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:idx_users_email" json:"email"`
	DisplayName  string    `gorm:"size:255;not null" json:"display_name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"` // Never serialize password hash

	IsActive *bool `gorm:"default:true;index:idx_users_is_active" json:"is_active"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_users_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	LastLoginAt *time.Time `gorm:"index:idx_users_last_login_at" json:"last_login_at,omitempty"`

	// Relations
	Sessions  []UserSession `gorm:"foreignKey:UserID" json:"-"`
	AuditLogs []AuditLog    `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Email         *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (u *User) CanSignIn() bool {
	return utils.IsTrue(u.IsActive)
}

// NormalizeEmail lowercases and trims a sign-in email
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
