// Package testing provides test utilities and database setup for integration tests
package testing

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	mrand "math/rand"

	businessflow "github.com/arashpm/Kitsune-Vault/business_flow"
	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/arashpm/Kitsune-Vault/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates an active console operator with a known password
func (tf *TestFixtures) CreateTestUser(email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		UUID:         uuid.New(),
		Email:        models.NormalizeEmail(email),
		DisplayName:  "Test Operator",
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateTestSession creates an active session for the given user
func (tf *TestFixtures) CreateTestSession(userID uint) (*models.UserSession, error) {
	sessionToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, err
	}
	refreshToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, err
	}

	session := &models.UserSession{
		CorrelationID: uuid.New(),
		UserID:        userID,
		SessionToken:  sessionToken,
		RefreshToken:  &refreshToken,
		IsActive:      utils.ToPtr(true),
		CreatedAt:     utils.UTCNow(),
		ExpiresAt:     utils.UTCNowAdd(utils.SessionTimeout),
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	return session, nil
}

// CreateTestAccount creates one vault entry on the given platform
func (tf *TestFixtures) CreateTestAccount(username string, platform models.Platform) (*models.Account, error) {
	normalized := businessflow.NormalizeUsername(username)
	account := &models.Account{
		UUID:       uuid.New(),
		Username:   normalized,
		Platform:   platform,
		AvatarURL:  businessflow.AvatarURLFor(normalized),
		Followers:  int64(mrand.Intn(100000)),
		Engagement: float64(mrand.Intn(1000)) / 10,
		Status:     models.AccountStatusActive,
		CreatedAt:  utils.UTCNow(),
		UpdatedAt:  utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create test account: %w", err)
	}

	return account, nil
}

// CreateTestAccounts creates one account per supported platform
func (tf *TestFixtures) CreateTestAccounts() ([]*models.Account, error) {
	platforms := []models.Platform{
		models.PlatformTwitter,
		models.PlatformInstagram,
		models.PlatformLinkedIn,
		models.PlatformTikTok,
	}

	var accounts []*models.Account
	for i, platform := range platforms {
		account, err := tf.CreateTestAccount(fmt.Sprintf("@fixture_%s_%d", platform, i), platform)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

// CreateTestActivityEntry appends one history line to an account
func (tf *TestFixtures) CreateTestActivityEntry(accountID uint, action string) (*models.ActivityEntry, error) {
	entry := &models.ActivityEntry{
		AccountID: accountID,
		Action:    action,
		CreatedAt: utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create test activity entry: %w", err)
	}

	return entry, nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(userID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test audit log for action: %s", action)
	ip := "192.168.1.1"
	userAgent := "Test-Agent/1.0"

	auditLog := &models.AuditLog{
		UserID:      userID,
		Action:      action,
		Description: &description,
		IPAddress:   &ip,
		UserAgent:   &userAgent,
		Success:     utils.ToPtr(success),
		CreatedAt:   utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(auditLog).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}

	return auditLog, nil
}

// GenerateSecureToken creates a random URL-safe token string
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
