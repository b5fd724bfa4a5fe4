// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/arashpm/Kitsune-Vault/app/dto"
	"github.com/arashpm/Kitsune-Vault/app/services"
	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/arashpm/Kitsune-Vault/repository"
	"github.com/arashpm/Kitsune-Vault/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoginFlow handles sign-in and sign-out.
// The session is an explicit object with an explicit lifecycle: acquired at
// sign-in, carried on requests as a bearer token, torn down at sign-out.
type LoginFlow interface {
	Signin(ctx context.Context, req *dto.SigninRequest, metadata *ClientMetadata) (*dto.SigninResponse, error)
	Signout(ctx context.Context, sessionToken string, userID uint, metadata *ClientMetadata) (*dto.SignoutResponse, error)
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.UserSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(
	userRepo repository.UserRepository,
	sessionRepo repository.UserSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) LoginFlow {
	return &LoginFlowImpl{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Signin verifies credentials and issues a session. Wrong email, wrong
// password and deactivated users are indistinguishable to the caller.
func (l *LoginFlowImpl) Signin(ctx context.Context, req *dto.SigninRequest, metadata *ClientMetadata) (*dto.SigninResponse, error) {
	user, err := l.userRepo.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to look up user", ErrStoreUnavailable)
	}

	if user == nil || !user.CanSignIn() {
		l.auditFailedLogin(ctx, user, req.Email, metadata)
		return nil, NewBusinessError("INVALID_CREDENTIALS", "Invalid email or password", ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		l.auditFailedLogin(ctx, user, req.Email, metadata)
		return nil, NewBusinessError("INVALID_CREDENTIALS", "Invalid email or password", ErrInvalidCredentials)
	}

	var session *models.UserSession
	err = repository.WithTransaction(ctx, l.db, func(txCtx context.Context) error {
		var err error
		session, err = createUserSession(txCtx, l.sessionRepo, l.tokenService, user.ID, metadata)
		if err != nil {
			return err
		}
		return l.userRepo.UpdateLastLogin(txCtx, user.ID)
	})
	if err != nil {
		return nil, NewBusinessError("SESSION_CREATE_FAILED", "Failed to create session", err)
	}

	msg := fmt.Sprintf("Login successful: %d", user.ID)
	_ = createAuditLog(ctx, l.auditRepo, user, models.AuditActionLoginSuccessful, msg, true, nil, metadata)

	return &dto.SigninResponse{
		Message: "Signed in successfully.",
		User:    ToUserDTO(*user),
		Session: ToSessionDTO(*session),
	}, nil
}

// Signout tears the session down: the row is deactivated and the token ID
// lands on the revocation list so the bearer token dies before its expiry.
func (l *LoginFlowImpl) Signout(ctx context.Context, sessionToken string, userID uint, metadata *ClientMetadata) (*dto.SignoutResponse, error) {
	session, err := l.sessionRepo.BySessionToken(ctx, sessionToken)
	if err != nil {
		return nil, NewBusinessError("SESSION_LOOKUP_FAILED", "Failed to look up session", ErrStoreUnavailable)
	}
	if session == nil || session.UserID != userID {
		return nil, NewBusinessError("SESSION_NOT_FOUND", "Session not found", ErrSessionNotFound)
	}

	err = repository.WithTransaction(ctx, l.db, func(txCtx context.Context) error {
		return l.sessionRepo.DeactivateSession(txCtx, session.ID)
	})
	if err != nil {
		return nil, NewBusinessError("SIGNOUT_FAILED", "Failed to sign out", err)
	}

	if err := l.tokenService.RevokeToken(ctx, sessionToken); err != nil {
		// The session row is already inactive, so a cache hiccup during
		// revocation does not fail the sign-out. It still gets audited.
		errMsg := fmt.Sprintf("Token revocation failed: %v", err)
		_ = createAuditLog(ctx, l.auditRepo, nil, models.AuditActionLogout, errMsg, false, &errMsg, metadata)
	}

	user, _ := l.userRepo.ByID(ctx, userID)
	msg := fmt.Sprintf("Logout: %d", userID)
	_ = createAuditLog(ctx, l.auditRepo, user, models.AuditActionLogout, msg, true, nil, metadata)

	return &dto.SignoutResponse{Message: "Signed out successfully."}, nil
}

func (l *LoginFlowImpl) auditFailedLogin(ctx context.Context, user *models.User, email string, metadata *ClientMetadata) {
	errMsg := fmt.Sprintf("Failed login attempt for %s", email)
	_ = createAuditLog(ctx, l.auditRepo, user, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)
}

// createUserSession issues a token pair and persists the session row
func createUserSession(ctx context.Context, sessionRepo repository.UserSessionRepository, tokenService services.TokenService, userID uint, metadata *ClientMetadata) (*models.UserSession, error) {
	accessToken, refreshToken, err := tokenService.GenerateTokens(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	session := &models.UserSession{
		CorrelationID: uuid.New(),
		UserID:        userID,
		SessionToken:  accessToken,
		RefreshToken:  &refreshToken,
		IsActive:      utils.ToPtr(true),
		CreatedAt:     utils.UTCNow(),
		ExpiresAt:     utils.UTCNowAdd(utils.SessionTimeout),
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			session.IPAddress = &metadata.IPAddress
		}
		if metadata.UserAgent != "" {
			session.UserAgent = &metadata.UserAgent
		}
	}

	if err := sessionRepo.Save(ctx, session); err != nil {
		return nil, NewBusinessError("SESSION_SAVE_FAILED", "Failed to save session", ErrStoreUnavailable)
	}

	return session, nil
}

// createAuditLog writes one audit entry; failures are swallowed by callers
// since auditing never blocks the main operation
func createAuditLog(ctx context.Context, auditRepo repository.AuditLogRepository, user *models.User, action, description string, success bool, errorMessage *string, metadata *ClientMetadata) error {
	entry := &models.AuditLog{
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		ErrorMessage: errorMessage,
		CreatedAt:    utils.UTCNow(),
	}

	if user != nil {
		entry.UserID = &user.ID
	}

	if metadata != nil {
		if metadata.IPAddress != "" {
			entry.IPAddress = &metadata.IPAddress
		}
		if metadata.UserAgent != "" {
			entry.UserAgent = &metadata.UserAgent
		}
		if metadata.RequestID != "" {
			entry.RequestID = &metadata.RequestID
		}
		if len(metadata.Additional) > 0 {
			if raw, err := json.Marshal(metadata.Additional); err == nil {
				entry.Metadata = raw
			}
		}
	}

	return auditRepo.Save(ctx, entry)
}
