// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/arashpm/Kitsune-Vault/app/dto"
	"github.com/arashpm/Kitsune-Vault/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToUserDTO converts a user model for authentication responses
func ToUserDTO(user models.User) dto.UserDTO {
	return dto.UserDTO{
		ID:          user.ID,
		UUID:        user.UUID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
		LastLoginAt: user.LastLoginAt,
	}
}

// ToSessionDTO converts a session model for authentication responses
func ToSessionDTO(session models.UserSession) dto.SessionDTO {
	return dto.SessionDTO{
		SessionToken: session.SessionToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    int(time.Until(session.ExpiresAt).Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

// ToAccountDTO converts an account model for API responses
func ToAccountDTO(account models.Account) dto.AccountDTO {
	return dto.AccountDTO{
		ID:             account.UUID.String(),
		Username:       account.Username,
		Platform:       account.Platform.String(),
		AvatarURL:      account.AvatarURL,
		Followers:      account.Followers,
		Engagement:     account.Engagement,
		Status:         account.Status.String(),
		Bio:            account.Bio,
		Category:       account.Category,
		Notes:          account.Notes,
		RealName:       account.RealName,
		Email:          account.Email,
		Password:       account.Password,
		TwoFactorSeed:  account.TwoFactorSeed,
		Phone:          account.Phone,
		Website:        account.Website,
		Country:        account.Country,
		Tags:           account.Tags,
		IsFavorite:     account.IsFavorite,
		IsArchived:     account.IsArchived,
		Manager:        account.Manager,
		TargetAudience: account.TargetAudience,
		LastPostedAt:   account.LastPostedAt,
		CreatedAt:      account.CreatedAt,
		UpdatedAt:      account.UpdatedAt,
	}
}

// ToAccountDTOs converts a slice of account models
func ToAccountDTOs(accounts []*models.Account) []dto.AccountDTO {
	out := make([]dto.AccountDTO, 0, len(accounts))
	for _, a := range accounts {
		if a == nil {
			continue
		}
		out = append(out, ToAccountDTO(*a))
	}
	return out
}

// ToActivityEntryDTO converts an activity entry model
func ToActivityEntryDTO(entry models.ActivityEntry) dto.ActivityEntryDTO {
	return dto.ActivityEntryDTO{
		Action:    entry.Action,
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt,
	}
}
