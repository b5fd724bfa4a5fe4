// Package models contains domain entities and business models for the vault console
package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/arashpm/Kitsune-Vault/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Platform represents the social network an account belongs to
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTikTok    Platform = "tiktok"
)

// String returns the string representation of the platform
func (p Platform) String() string {
	return string(p)
}

// Valid checks if the platform is one of the supported networks
func (p Platform) Valid() bool {
	switch p {
	case PlatformTwitter, PlatformInstagram, PlatformLinkedIn, PlatformTikTok:
		return true
	default:
		return false
	}
}

// DisplayName returns the capitalized form used in exports and search
func (p Platform) DisplayName() string {
	switch p {
	case PlatformTwitter:
		return "Twitter"
	case PlatformInstagram:
		return "Instagram"
	case PlatformLinkedIn:
		return "LinkedIn"
	case PlatformTikTok:
		return "TikTok"
	default:
		return string(p)
	}
}

// ParsePlatform maps a case-insensitive name to a Platform
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

// Scan implements the sql.Scanner interface for Platform
func (p *Platform) Scan(value any) error {
	if value == nil {
		*p = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*p = Platform(v)
	case []byte:
		*p = Platform(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Platform", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for Platform
func (p Platform) Value() (driver.Value, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid Platform: %s", p)
	}
	return string(p), nil
}

// AccountStatus represents the moderation state of an account
type AccountStatus string

const (
	AccountStatusActive       AccountStatus = "active"
	AccountStatusShadowbanned AccountStatus = "shadowbanned"
	AccountStatusSuspended    AccountStatus = "suspended"
	AccountStatusVerified     AccountStatus = "verified"
)

// String returns the string representation of the status
func (s AccountStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusShadowbanned,
		AccountStatusSuspended, AccountStatusVerified:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for AccountStatus
func (s *AccountStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = AccountStatus(v)
	case []byte:
		*s = AccountStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into AccountStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for AccountStatus
func (s AccountStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid AccountStatus: %s", s)
	}
	return string(s), nil
}

// Account represents one managed social-media identity (a vault entry).
// The UUID is assigned once at creation and never mutated afterwards.
type Account struct {
	ID   uint      `gorm:"primaryKey" json:"-"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_accounts_uuid" json:"id"`

	// Identity
	Username  string   `gorm:"size:255;not null;index:idx_accounts_username" json:"username"`
	Platform  Platform `gorm:"size:32;not null;index:idx_accounts_platform" json:"platform"`
	AvatarURL string   `gorm:"size:512;not null" json:"avatar_url"`

	// Metrics, stored raw; display formatting is a presentation concern
	Followers  int64   `gorm:"not null;default:0" json:"followers"`
	Engagement float64 `gorm:"not null;default:0" json:"engagement"`

	Status AccountStatus `gorm:"size:32;not null;index:idx_accounts_status" json:"status"`

	// Free text
	Bio      string `gorm:"type:text" json:"bio"`
	Category string `gorm:"size:255" json:"category"`
	Notes    string `gorm:"type:text" json:"notes"`

	// Contact and secret fields
	RealName      *string `gorm:"size:255" json:"real_name,omitempty"`
	Email         *string `gorm:"size:255" json:"email,omitempty"`
	Password      *string `gorm:"size:255" json:"-"` // Never serialize stored secrets
	TwoFactorSeed *string `gorm:"size:255" json:"-"`
	Phone         *string `gorm:"size:32" json:"phone,omitempty"`
	Website       *string `gorm:"size:512" json:"website,omitempty"`

	Country        *string        `gorm:"size:128" json:"country,omitempty"`
	Tags           pq.StringArray `gorm:"type:text[]" json:"tags,omitempty"`
	IsFavorite     bool           `gorm:"not null;default:false;index:idx_accounts_is_favorite" json:"is_favorite"`
	IsArchived     bool           `gorm:"not null;default:false;index:idx_accounts_is_archived" json:"is_archived"`
	Manager        *string        `gorm:"size:255" json:"manager,omitempty"`
	TargetAudience *string        `gorm:"size:255" json:"target_audience,omitempty"`
	LastPostedAt   *time.Time     `json:"last_posted_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_accounts_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	ActivityEntries []ActivityEntry `gorm:"foreignKey:AccountID" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

// AccountFilter represents filter criteria for account queries
type AccountFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	UUIDs         []uuid.UUID
	Platform      *Platform
	Status        *AccountStatus
	IsArchived    *bool
	IsFavorite    *bool
	Manager       *string
	Country       *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *Account) RealNameOrEmpty() string {
	return utils.DerefString(a.RealName)
}

func (a *Account) EmailOrEmpty() string {
	return utils.DerefString(a.Email)
}

func (a *Account) ManagerOrEmpty() string {
	return utils.DerefString(a.Manager)
}
