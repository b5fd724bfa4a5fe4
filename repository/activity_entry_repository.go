package repository

import (
	"context"

	"github.com/arashpm/Kitsune-Vault/models"
	"gorm.io/gorm"
)

// ActivityEntryRepositoryImpl implements ActivityEntryRepository interface
type ActivityEntryRepositoryImpl struct {
	*BaseRepository[models.ActivityEntry, models.ActivityEntryFilter]
}

// NewActivityEntryRepository creates a new activity entry repository
func NewActivityEntryRepository(db *gorm.DB) ActivityEntryRepository {
	return &ActivityEntryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ActivityEntry, models.ActivityEntryFilter](db),
	}
}

// ListByAccount returns the full history of an account, newest first.
// Rows are stored in append order; the descending sort is display order only.
func (r *ActivityEntryRepositoryImpl) ListByAccount(ctx context.Context, accountID uint) ([]*models.ActivityEntry, error) {
	db := r.getDB(ctx)
	var rows []*models.ActivityEntry
	err := db.Model(&models.ActivityEntry{}).
		Where("account_id = ?", accountID).
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *ActivityEntryRepositoryImpl) applyFilter(query *gorm.DB, filter models.ActivityEntryFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves activity entries based on filter criteria
func (r *ActivityEntryRepositoryImpl) ByFilter(ctx context.Context, filter models.ActivityEntryFilter, orderBy string, limit, offset int) ([]*models.ActivityEntry, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ActivityEntry{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.ActivityEntry
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of activity entries matching the filter
func (r *ActivityEntryRepositoryImpl) Count(ctx context.Context, filter models.ActivityEntryFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ActivityEntry{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any activity entry matching the filter exists
func (r *ActivityEntryRepositoryImpl) Exists(ctx context.Context, filter models.ActivityEntryFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
