// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/arashpm/Kitsune-Vault/app/dto"
	"github.com/arashpm/Kitsune-Vault/app/services"
	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/arashpm/Kitsune-Vault/repository"
	"github.com/arashpm/Kitsune-Vault/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SignupFlow handles operator registration
type SignupFlow interface {
	Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error)
}

// SignupFlowImpl implements the signup business flow
type SignupFlowImpl struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.UserSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewSignupFlow creates a new signup flow instance
func NewSignupFlow(
	userRepo repository.UserRepository,
	sessionRepo repository.UserSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) SignupFlow {
	return &SignupFlowImpl{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Signup registers a new operator and issues a first session
func (s *SignupFlowImpl) Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error) {
	if err := s.validateSignupRequest(ctx, req); err != nil {
		return nil, NewBusinessError("SIGNUP_VALIDATION_FAILED", "Signup validation failed", err)
	}

	var user *models.User
	var session *models.UserSession

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		user, err = s.createUser(txCtx, req)
		if err != nil {
			return err
		}

		session, err = createUserSession(txCtx, s.sessionRepo, s.tokenService, user.ID, metadata)
		return err
	})

	if err != nil {
		errMsg := fmt.Sprintf("Signup failed: %s", err.Error())
		_ = createAuditLog(ctx, s.auditRepo, user, models.AuditActionSignupCompleted, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("SIGNUP_FAILED", "Signup failed", err)
	}

	msg := fmt.Sprintf("Signup completed successfully: %d", user.ID)
	_ = createAuditLog(ctx, s.auditRepo, user, models.AuditActionSignupCompleted, msg, true, nil, metadata)

	return &dto.SignupResponse{
		Message: "Signup completed successfully.",
		User:    ToUserDTO(*user),
		Session: ToSessionDTO(*session),
	}, nil
}

// validateSignupRequest enforces business rules on top of DTO validation
func (s *SignupFlowImpl) validateSignupRequest(ctx context.Context, req *dto.SignupRequest) error {
	if !isPasswordStrong(req.Password) {
		return ErrWeakPassword
	}

	existing, err := s.userRepo.ByEmail(ctx, req.Email)
	if err != nil {
		return NewBusinessError("USER_LOOKUP_FAILED", "Failed to check existing email", ErrStoreUnavailable)
	}
	if existing != nil {
		return ErrEmailAlreadyRegistered
	}

	return nil
}

// createUser persists the operator with a bcrypt password hash
func (s *SignupFlowImpl) createUser(ctx context.Context, req *dto.SignupRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		UUID:         uuid.New(),
		Email:        models.NormalizeEmail(req.Email),
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, NewBusinessError("USER_CREATE_FAILED", "Failed to create user", ErrStoreUnavailable)
	}

	return user, nil
}

// isPasswordStrong requires at least 8 characters with a letter and a digit
func isPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	return hasLetter && hasDigit
}
