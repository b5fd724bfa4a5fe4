// Package businessflow contains the core business logic for vault entry management
package businessflow

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/arashpm/Kitsune-Vault/app/dto"
	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/arashpm/Kitsune-Vault/repository"
	"github.com/arashpm/Kitsune-Vault/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// AccountFlow handles the lifecycle of a single vault entry. Bulk mutation
// and the derived collection view live in CollectionFlow.
type AccountFlow interface {
	CreateAccount(ctx context.Context, req *dto.AccountForm, userID uint, metadata *ClientMetadata) (*dto.AccountDetailResponse, error)
	UpdateAccount(ctx context.Context, accountID string, req *dto.AccountForm, userID uint, metadata *ClientMetadata) (*dto.AccountDetailResponse, error)
	GetAccount(ctx context.Context, accountID string) (*dto.AccountDetailResponse, error)
	DeleteAccount(ctx context.Context, accountID string, userID uint, metadata *ClientMetadata) error
}

// AccountFlowImpl implements the account business flow
type AccountFlowImpl struct {
	accountRepo  repository.AccountRepository
	activityRepo repository.ActivityEntryRepository
	auditRepo    repository.AuditLogRepository
	db           *gorm.DB
}

// NewAccountFlow creates a new account flow instance
func NewAccountFlow(
	accountRepo repository.AccountRepository,
	activityRepo repository.ActivityEntryRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) AccountFlow {
	return &AccountFlowImpl{
		accountRepo:  accountRepo,
		activityRepo: activityRepo,
		auditRepo:    auditRepo,
		db:           db,
	}
}

// CreateAccount validates and normalizes the form, persists the entry and
// seeds its history with exactly one creation line, all in one transaction.
func (a *AccountFlowImpl) CreateAccount(ctx context.Context, req *dto.AccountForm, userID uint, metadata *ClientMetadata) (*dto.AccountDetailResponse, error) {
	platform, status, err := validateAccountForm(req)
	if err != nil {
		return nil, err
	}

	username := NormalizeUsername(req.Username)
	account := &models.Account{
		UUID:      uuid.New(),
		Username:  username,
		Platform:  platform,
		AvatarURL: AvatarURLFor(username),
		Status:    status,
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}
	overlayForm(account, req, platform, status)

	err = repository.WithTransaction(ctx, a.db, func(txCtx context.Context) error {
		if err := a.accountRepo.Save(txCtx, account); err != nil {
			return err
		}
		return a.activityRepo.Save(txCtx, &models.ActivityEntry{
			AccountID: account.ID,
			Action:    models.ActivityActionCreated,
			CreatedAt: utils.UTCNow(),
		})
	})
	if err != nil {
		a.recordAudit(ctx, userID, models.AuditActionAccountCreated, fmt.Sprintf("Failed to create account %s", username), false, err, metadata)
		return nil, NewBusinessError("ACCOUNT_CREATE_FAILED", "Failed to create account", ErrStoreUnavailable)
	}

	a.recordAudit(ctx, userID, models.AuditActionAccountCreated, fmt.Sprintf("Created account %s on %s", username, platform.DisplayName()), true, nil, metadata)

	return a.detail(ctx, account)
}

// UpdateAccount overlays the form on the stored record and appends exactly
// one update line. The identifier, creation time, avatar and prior history
// are never touched.
func (a *AccountFlowImpl) UpdateAccount(ctx context.Context, accountID string, req *dto.AccountForm, userID uint, metadata *ClientMetadata) (*dto.AccountDetailResponse, error) {
	account, err := a.lookup(ctx, accountID)
	if err != nil {
		return nil, err
	}

	platform, status, err := validateAccountForm(req)
	if err != nil {
		return nil, err
	}

	account.Username = NormalizeUsername(req.Username)
	overlayForm(account, req, platform, status)

	err = repository.WithTransaction(ctx, a.db, func(txCtx context.Context) error {
		if err := a.accountRepo.Update(txCtx, account); err != nil {
			return err
		}
		return a.activityRepo.Save(txCtx, &models.ActivityEntry{
			AccountID: account.ID,
			Action:    models.ActivityActionUpdated,
			CreatedAt: utils.UTCNow(),
		})
	})
	if err != nil {
		a.recordAudit(ctx, userID, models.AuditActionAccountUpdated, fmt.Sprintf("Failed to update account %s", account.UUID), false, err, metadata)
		return nil, NewBusinessError("ACCOUNT_UPDATE_FAILED", "Failed to update account", ErrStoreUnavailable)
	}

	a.recordAudit(ctx, userID, models.AuditActionAccountUpdated, fmt.Sprintf("Updated account %s", account.UUID), true, nil, metadata)

	return a.detail(ctx, account)
}

// GetAccount returns one entry together with its history, newest first
func (a *AccountFlowImpl) GetAccount(ctx context.Context, accountID string) (*dto.AccountDetailResponse, error) {
	account, err := a.lookup(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return a.detail(ctx, account)
}

// DeleteAccount removes the entry and its history permanently. There is no
// tombstone; a deleted identifier is gone from every subsequent query.
func (a *AccountFlowImpl) DeleteAccount(ctx context.Context, accountID string, userID uint, metadata *ClientMetadata) error {
	account, err := a.lookup(ctx, accountID)
	if err != nil {
		return err
	}

	err = repository.WithTransaction(ctx, a.db, func(txCtx context.Context) error {
		return a.accountRepo.DeleteByUUIDs(txCtx, []uuid.UUID{account.UUID})
	})
	if err != nil {
		a.recordAudit(ctx, userID, models.AuditActionAccountDeleted, fmt.Sprintf("Failed to delete account %s", account.UUID), false, err, metadata)
		return NewBusinessError("ACCOUNT_DELETE_FAILED", "Failed to delete account", ErrStoreUnavailable)
	}

	a.recordAudit(ctx, userID, models.AuditActionAccountDeleted, fmt.Sprintf("Deleted account %s (%s)", account.Username, account.UUID), true, nil, metadata)
	return nil
}

func parseAccountUUID(accountID string) (uuid.UUID, error) {
	accountUUID, err := uuid.Parse(accountID)
	if err != nil {
		return uuid.Nil, NewBusinessError("ACCOUNT_ID_REQUIRED", "A valid account identifier is required", ErrAccountUUIDRequired)
	}
	return accountUUID, nil
}

func (a *AccountFlowImpl) lookup(ctx context.Context, accountID string) (*models.Account, error) {
	accountUUID, err := parseAccountUUID(accountID)
	if err != nil {
		return nil, err
	}

	account, err := a.accountRepo.ByUUID(ctx, accountUUID)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to look up account", ErrStoreUnavailable)
	}
	if account == nil {
		return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", ErrAccountNotFound)
	}
	return account, nil
}

func (a *AccountFlowImpl) detail(ctx context.Context, account *models.Account) (*dto.AccountDetailResponse, error) {
	entries, err := a.activityRepo.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, NewBusinessError("ACTIVITY_LOOKUP_FAILED", "Failed to look up account activity", ErrStoreUnavailable)
	}

	activity := make([]dto.ActivityEntryDTO, 0, len(entries))
	for _, e := range entries {
		activity = append(activity, ToActivityEntryDTO(*e))
	}

	return &dto.AccountDetailResponse{
		Account:  ToAccountDTO(*account),
		Activity: activity,
	}, nil
}

func (a *AccountFlowImpl) recordAudit(ctx context.Context, userID uint, action, description string, success bool, opErr error, metadata *ClientMetadata) {
	var errMsg *string
	if opErr != nil {
		errMsg = utils.ToPtr(opErr.Error())
	}
	entry := &models.AuditLog{
		UserID:       &userID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		ErrorMessage: errMsg,
		CreatedAt:    utils.UTCNow(),
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
	}
	_ = a.auditRepo.Save(ctx, entry)
}

// validateAccountForm checks the domain rules the validator tags cannot
// express on their own and resolves the enum fields
func validateAccountForm(req *dto.AccountForm) (models.Platform, models.AccountStatus, error) {
	if strings.TrimSpace(req.Username) == "" {
		return "", "", NewBusinessError("USERNAME_REQUIRED", "Username is required", ErrUsernameRequired)
	}

	platform, ok := models.ParsePlatform(req.Platform)
	if !ok {
		return "", "", NewBusinessError("INVALID_PLATFORM", "Unsupported platform", ErrInvalidPlatform)
	}

	status := models.AccountStatusActive
	if req.Status != "" {
		status = models.AccountStatus(strings.ToLower(strings.TrimSpace(req.Status)))
		if !status.Valid() {
			return "", "", NewBusinessError("INVALID_STATUS", "Unsupported account status", ErrInvalidStatus)
		}
	}

	if req.Followers < 0 {
		return "", "", NewBusinessError("NEGATIVE_FOLLOWERS", "Follower count cannot be negative", ErrNegativeFollowers)
	}
	if req.Engagement < 0 || req.Engagement > 100 {
		return "", "", NewBusinessError("ENGAGEMENT_OUT_OF_RANGE", "Engagement must be between 0 and 100", ErrEngagementOutOfRange)
	}

	return platform, status, nil
}

// overlayForm replaces every editable field with the form value. Missing
// optional fields clear the stored value; this is a full-record replace,
// not a patch.
func overlayForm(account *models.Account, req *dto.AccountForm, platform models.Platform, status models.AccountStatus) {
	account.Platform = platform
	account.Status = status
	account.Followers = req.Followers
	account.Engagement = req.Engagement
	account.Bio = req.Bio
	account.Category = req.Category
	account.Notes = req.Notes
	account.RealName = req.RealName
	account.Email = req.Email
	account.Password = req.Password
	account.TwoFactorSeed = req.TwoFactorSeed
	account.Phone = req.Phone
	account.Website = req.Website
	account.Country = req.Country
	account.Tags = SplitTags(req.TagsInput)
	account.IsFavorite = req.IsFavorite
	account.Manager = req.Manager
	account.TargetAudience = req.TargetAudience
	account.LastPostedAt = req.LastPostedAt
}

// NormalizeUsername trims the handle and guarantees a single leading @
func NormalizeUsername(raw string) string {
	username := strings.TrimSpace(raw)
	if username == "" {
		return username
	}
	if !strings.HasPrefix(username, "@") {
		username = "@" + username
	}
	return username
}

// SplitTags turns a comma-separated input into a trimmed, empty-filtered,
// de-duplicated tag set that preserves first-seen order
func SplitTags(input string) pq.StringArray {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	seen := make(map[string]bool)
	var tags pq.StringArray
	for _, raw := range strings.Split(input, ",") {
		tag := strings.TrimSpace(raw)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// AvatarURLFor derives a stable avatar address from the normalized handle.
// The same username always yields the same URL.
func AvatarURLFor(username string) string {
	seed := strings.TrimPrefix(username, "@")
	return fmt.Sprintf("https://api.dicebear.com/9.x/identicon/svg?seed=%s", url.QueryEscape(seed))
}
