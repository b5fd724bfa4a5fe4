// Package models contains domain entities and business models for the vault console
package models

import (
	"time"
)

// ActivityEntry is one line of an account's administrative history.
// Entries are append-only: the repository exposes no update or delete path,
// so the stored sequence is always the full history in append order.
type ActivityEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"not null;index:idx_activity_entries_account_id" json:"-"`
	Account   *Account  `gorm:"foreignKey:AccountID;references:ID" json:"-"`
	Action    string    `gorm:"size:255;not null" json:"action"`
	Details   *string   `gorm:"type:text" json:"details,omitempty"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_activity_entries_created_at" json:"created_at"`
}

func (ActivityEntry) TableName() string {
	return "account_activity_entries"
}

// Activity action constants
const (
	ActivityActionCreated       = "Account Created"
	ActivityActionUpdated       = "Profile Updated"
	ActivityActionArchived      = "Account Archived"
	ActivityActionRestored      = "Account Restored"
	ActivityActionFavoriteFlip  = "Favorite Toggled"
	ActivityActionStatusChanged = "Status Changed"
)

// ActivityEntryFilter represents filter criteria for activity queries
type ActivityEntryFilter struct {
	ID            *uint
	AccountID     *uint
	Action        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
