package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/arashpm/Kitsune-Vault/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountRepositoryImpl implements AccountRepository interface
type AccountRepositoryImpl struct {
	*BaseRepository[models.Account, models.AccountFilter]
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &AccountRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Account, models.AccountFilter](db),
	}
}

// ListAll returns every account in store-fetch order (oldest first)
func (r *AccountRepositoryImpl) ListAll(ctx context.Context) ([]*models.Account, error) {
	db := r.getDB(ctx)
	var rows []*models.Account
	if err := db.Model(&models.Account{}).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return rows, nil
}

// ByUUID retrieves an account by its public identifier
func (r *AccountRepositoryImpl) ByUUID(ctx context.Context, accountUUID uuid.UUID) (*models.Account, error) {
	db := r.getDB(ctx)
	var row models.Account
	if err := db.Where("uuid = ?", accountUUID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ByUUIDs retrieves the accounts whose identifiers appear in the given set
func (r *AccountRepositoryImpl) ByUUIDs(ctx context.Context, accountUUIDs []uuid.UUID) ([]*models.Account, error) {
	if len(accountUUIDs) == 0 {
		return []*models.Account{}, nil
	}
	db := r.getDB(ctx)
	var rows []*models.Account
	if err := db.Where("uuid IN ?", accountUUIDs).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the full editable state of an existing account
func (r *AccountRepositoryImpl) Update(ctx context.Context, account *models.Account) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	account.UpdatedAt = utils.UTCNow()
	err = db.Save(account).Error
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	return nil
}

// SetArchivedByUUIDs flips the archived flag for the given set in one statement
func (r *AccountRepositoryImpl) SetArchivedByUUIDs(ctx context.Context, accountUUIDs []uuid.UUID, archived bool) error {
	if len(accountUUIDs) == 0 {
		return nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Model(&models.Account{}).
		Where("uuid IN ?", accountUUIDs).
		Updates(map[string]any{"is_archived": archived, "updated_at": utils.UTCNow()}).Error
	if err != nil {
		return fmt.Errorf("failed to set archived flag: %w", err)
	}

	return nil
}

// DeleteByUUIDs removes the given accounts and their activity history.
// Removal is permanent; no tombstone remains queryable afterwards.
func (r *AccountRepositoryImpl) DeleteByUUIDs(ctx context.Context, accountUUIDs []uuid.UUID) error {
	if len(accountUUIDs) == 0 {
		return nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Where("account_id IN (?)",
		db.Session(&gorm.Session{NewDB: true}).Model(&models.Account{}).Select("id").Where("uuid IN ?", accountUUIDs),
	).Delete(&models.ActivityEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete activity entries: %w", err)
	}

	err = db.Where("uuid IN ?", accountUUIDs).Delete(&models.Account{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete accounts: %w", err)
	}

	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *AccountRepositoryImpl) applyFilter(query *gorm.DB, filter models.AccountFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if len(filter.UUIDs) > 0 {
		query = query.Where("uuid IN ?", filter.UUIDs)
	}
	if filter.Platform != nil {
		query = query.Where("platform = ?", *filter.Platform)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.IsArchived != nil {
		query = query.Where("is_archived = ?", *filter.IsArchived)
	}
	if filter.IsFavorite != nil {
		query = query.Where("is_favorite = ?", *filter.IsFavorite)
	}
	if filter.Manager != nil {
		query = query.Where("manager = ?", *filter.Manager)
	}
	if filter.Country != nil {
		query = query.Where("country = ?", *filter.Country)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves accounts based on filter criteria
func (r *AccountRepositoryImpl) ByFilter(ctx context.Context, filter models.AccountFilter, orderBy string, limit, offset int) ([]*models.Account, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Account{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Account
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of accounts matching the filter
func (r *AccountRepositoryImpl) Count(ctx context.Context, filter models.AccountFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Account{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any account matching the filter exists
func (r *AccountRepositoryImpl) Exists(ctx context.Context, filter models.AccountFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
