// Package businessflow contains the core business logic for the collection view and bulk mutation
package businessflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/arashpm/Kitsune-Vault/app/dto"
	"github.com/arashpm/Kitsune-Vault/app/services"
	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/arashpm/Kitsune-Vault/repository"
	"github.com/arashpm/Kitsune-Vault/utils"
	"github.com/arashpm/Kitsune-Vault/viewmodel"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CollectionFlow derives the visible page of the collection and applies bulk
// mutations against it. The derived view is recomputed from the store on
// every request; no materialized view exists anywhere.
type CollectionFlow interface {
	ListCollection(ctx context.Context, req *dto.ListAccountsRequest, sessionID string) (*dto.ListAccountsResponse, error)
	Selection(ctx context.Context, sessionID string) (*dto.SelectionResponse, error)
	ClearSelection(ctx context.Context, sessionID string) (*dto.SelectionResponse, error)
	ToggleSelection(ctx context.Context, sessionID string, req *dto.ToggleSelectionRequest) (*dto.SelectionResponse, error)
	TogglePageSelection(ctx context.Context, sessionID string, req *dto.TogglePageSelectionRequest) (*dto.SelectionResponse, error)
	BulkArchive(ctx context.Context, sessionID string, req *dto.BulkRequest, userID uint, metadata *ClientMetadata) (*dto.BulkResponse, error)
	BulkRestore(ctx context.Context, sessionID string, req *dto.BulkRequest, userID uint, metadata *ClientMetadata) (*dto.BulkResponse, error)
	BulkDelete(ctx context.Context, sessionID string, req *dto.BulkRequest, userID uint, metadata *ClientMetadata) (*dto.BulkResponse, error)
}

// CollectionFlowImpl implements the collection business flow
type CollectionFlowImpl struct {
	accountRepo  repository.AccountRepository
	activityRepo repository.ActivityEntryRepository
	auditRepo    repository.AuditLogRepository
	selections   services.SelectionStore
	db           *gorm.DB
}

// NewCollectionFlow creates a new collection flow instance
func NewCollectionFlow(
	accountRepo repository.AccountRepository,
	activityRepo repository.ActivityEntryRepository,
	auditRepo repository.AuditLogRepository,
	selections services.SelectionStore,
	db *gorm.DB,
) CollectionFlow {
	return &CollectionFlowImpl{
		accountRepo:  accountRepo,
		activityRepo: activityRepo,
		auditRepo:    auditRepo,
		selections:   selections,
		db:           db,
	}
}

// ListCollection fetches the full collection and runs the view pipeline:
// partition by archive mode, search, favorites filter, stable sort, paginate.
func (c *CollectionFlowImpl) ListCollection(ctx context.Context, req *dto.ListAccountsRequest, sessionID string) (*dto.ListAccountsResponse, error) {
	state, pageNumber, pageSize, err := viewStateFromRequest(req)
	if err != nil {
		return nil, err
	}

	collection, err := c.accountRepo.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("COLLECTION_FETCH_FAILED", "Failed to fetch the collection", ErrStoreUnavailable)
	}

	view := viewmodel.View(collection, state)
	page := viewmodel.Paginate(view, pageNumber, pageSize)

	selected, err := c.selectedIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &dto.ListAccountsResponse{
		Items: ToAccountDTOs(page.Items),
		Pagination: dto.PaginationInfo{
			Total:      page.Total,
			Page:       page.Number,
			PageSize:   page.PageSize,
			TotalPages: page.TotalPages,
		},
		Selected: selected,
	}, nil
}

// Selection returns the session's current selection set
func (c *CollectionFlowImpl) Selection(ctx context.Context, sessionID string) (*dto.SelectionResponse, error) {
	selected, err := c.selectedIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &dto.SelectionResponse{Selected: selected}, nil
}

// ClearSelection empties the session's selection set
func (c *CollectionFlowImpl) ClearSelection(ctx context.Context, sessionID string) (*dto.SelectionResponse, error) {
	if err := c.selections.Clear(ctx, sessionID); err != nil {
		return nil, NewBusinessError("SELECTION_CLEAR_FAILED", "Failed to clear selection", ErrCacheNotAvailable)
	}
	return &dto.SelectionResponse{Selected: []string{}}, nil
}

// ToggleSelection flips one row in or out of the session's selection set
func (c *CollectionFlowImpl) ToggleSelection(ctx context.Context, sessionID string, req *dto.ToggleSelectionRequest) (*dto.SelectionResponse, error) {
	if _, err := uuid.Parse(req.AccountID); err != nil {
		return nil, NewBusinessError("ACCOUNT_ID_REQUIRED", "A valid account identifier is required", ErrAccountUUIDRequired)
	}

	if _, err := c.selections.Toggle(ctx, sessionID, req.AccountID); err != nil {
		return nil, NewBusinessError("SELECTION_TOGGLE_FAILED", "Failed to update selection", ErrCacheNotAvailable)
	}

	selected, err := c.selectedIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &dto.SelectionResponse{Selected: selected}, nil
}

// TogglePageSelection re-derives the page the console is showing and flips it
// as a unit: when every row on the page is selected the whole page is
// deselected, otherwise every row on the page becomes selected. Rows off the
// current page are never touched, so the operation is symmetric per page.
func (c *CollectionFlowImpl) TogglePageSelection(ctx context.Context, sessionID string, req *dto.TogglePageSelectionRequest) (*dto.SelectionResponse, error) {
	state, pageNumber, pageSize, err := viewStateFromRequest(&req.ListAccountsRequest)
	if err != nil {
		return nil, err
	}

	collection, err := c.accountRepo.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("COLLECTION_FETCH_FAILED", "Failed to fetch the collection", ErrStoreUnavailable)
	}

	page := viewmodel.Paginate(viewmodel.View(collection, state), pageNumber, pageSize)

	members, err := c.selections.Members(ctx, sessionID)
	if err != nil {
		return nil, NewBusinessError("SELECTION_FETCH_FAILED", "Failed to fetch selection", ErrCacheNotAvailable)
	}

	pageIDs := viewmodel.PageUUIDs(page.Items)
	if viewmodel.AllSelected(members, page.Items) {
		// Every row is selected; toggling each one empties the page.
		for _, id := range pageIDs {
			if _, err := c.selections.Toggle(ctx, sessionID, id); err != nil {
				return nil, NewBusinessError("SELECTION_TOGGLE_FAILED", "Failed to update selection", ErrCacheNotAvailable)
			}
		}
	} else {
		if err := c.selections.AddAll(ctx, sessionID, pageIDs); err != nil {
			return nil, NewBusinessError("SELECTION_TOGGLE_FAILED", "Failed to update selection", ErrCacheNotAvailable)
		}
	}

	selected, err := c.selectedIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &dto.SelectionResponse{Selected: selected}, nil
}

// BulkArchive moves the targeted entries to the archived side of the
// partition in one transaction
func (c *CollectionFlowImpl) BulkArchive(ctx context.Context, sessionID string, req *dto.BulkRequest, userID uint, metadata *ClientMetadata) (*dto.BulkResponse, error) {
	return c.bulkSetArchived(ctx, sessionID, req, userID, metadata, true)
}

// BulkRestore moves the targeted entries back to the active side
func (c *CollectionFlowImpl) BulkRestore(ctx context.Context, sessionID string, req *dto.BulkRequest, userID uint, metadata *ClientMetadata) (*dto.BulkResponse, error) {
	return c.bulkSetArchived(ctx, sessionID, req, userID, metadata, false)
}

// BulkDelete removes the targeted entries and their histories permanently in
// one transaction. Either every row is gone afterwards or none is.
func (c *CollectionFlowImpl) BulkDelete(ctx context.Context, sessionID string, req *dto.BulkRequest, userID uint, metadata *ClientMetadata) (*dto.BulkResponse, error) {
	targets, err := c.resolveTargets(ctx, sessionID, req)
	if err != nil {
		return nil, err
	}

	err = repository.WithTransaction(ctx, c.db, func(txCtx context.Context) error {
		return c.accountRepo.DeleteByUUIDs(txCtx, targets)
	})
	if err != nil {
		c.recordBulkAudit(ctx, userID, models.AuditActionBulkDeleted, len(targets), false, err, metadata)
		return nil, NewBusinessError("BULK_DELETE_FAILED", "Failed to delete accounts", ErrStoreUnavailable)
	}

	c.recordBulkAudit(ctx, userID, models.AuditActionBulkDeleted, len(targets), true, nil, metadata)

	return c.bulkResponse(ctx, sessionID, req, fmt.Sprintf("Deleted %d accounts.", len(targets)), len(targets))
}

func (c *CollectionFlowImpl) bulkSetArchived(ctx context.Context, sessionID string, req *dto.BulkRequest, userID uint, metadata *ClientMetadata, archived bool) (*dto.BulkResponse, error) {
	targets, err := c.resolveTargets(ctx, sessionID, req)
	if err != nil {
		return nil, err
	}

	action := models.AuditActionBulkRestored
	activityAction := models.ActivityActionRestored
	verb := "Restored"
	if archived {
		action = models.AuditActionBulkArchived
		activityAction = models.ActivityActionArchived
		verb = "Archived"
	}

	err = repository.WithTransaction(ctx, c.db, func(txCtx context.Context) error {
		accounts, err := c.accountRepo.ByUUIDs(txCtx, targets)
		if err != nil {
			return err
		}
		if err := c.accountRepo.SetArchivedByUUIDs(txCtx, targets, archived); err != nil {
			return err
		}
		for _, account := range accounts {
			entry := &models.ActivityEntry{
				AccountID: account.ID,
				Action:    activityAction,
				CreatedAt: utils.UTCNow(),
			}
			if err := c.activityRepo.Save(txCtx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.recordBulkAudit(ctx, userID, action, len(targets), false, err, metadata)
		return nil, NewBusinessError("BULK_UPDATE_FAILED", "Failed to update accounts", ErrStoreUnavailable)
	}

	c.recordBulkAudit(ctx, userID, action, len(targets), true, nil, metadata)

	return c.bulkResponse(ctx, sessionID, req, fmt.Sprintf("%s %d accounts.", verb, len(targets)), len(targets))
}

// resolveTargets picks the explicit identifier list when present, otherwise
// the session's current selection. An empty target set is a validation error,
// never a silent no-op.
func (c *CollectionFlowImpl) resolveTargets(ctx context.Context, sessionID string, req *dto.BulkRequest) ([]uuid.UUID, error) {
	ids := req.AccountIDs
	if len(ids) == 0 {
		members, err := c.selections.Members(ctx, sessionID)
		if err != nil {
			return nil, NewBusinessError("SELECTION_FETCH_FAILED", "Failed to fetch selection", ErrCacheNotAvailable)
		}
		for id := range members {
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		return nil, NewBusinessError("EMPTY_SELECTION", "No accounts selected", ErrEmptySelection)
	}

	targets := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		target, err := uuid.Parse(id)
		if err != nil {
			return nil, NewBusinessError("ACCOUNT_ID_REQUIRED", "A valid account identifier is required", ErrAccountUUIDRequired)
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// bulkResponse clears the selection and re-derives the collection so the
// console lands on fresh state after the commit
func (c *CollectionFlowImpl) bulkResponse(ctx context.Context, sessionID string, req *dto.BulkRequest, message string, affected int) (*dto.BulkResponse, error) {
	if err := c.selections.Clear(ctx, sessionID); err != nil {
		return nil, NewBusinessError("SELECTION_CLEAR_FAILED", "Failed to clear selection", ErrCacheNotAvailable)
	}

	refreshed, err := c.ListCollection(ctx, &req.ListAccountsRequest, sessionID)
	if err != nil {
		return nil, err
	}

	return &dto.BulkResponse{
		Message:              message,
		Affected:             affected,
		ListAccountsResponse: *refreshed,
	}, nil
}

func (c *CollectionFlowImpl) selectedIDs(ctx context.Context, sessionID string) ([]string, error) {
	members, err := c.selections.Members(ctx, sessionID)
	if err != nil {
		return nil, NewBusinessError("SELECTION_FETCH_FAILED", "Failed to fetch selection", ErrCacheNotAvailable)
	}

	selected := make([]string, 0, len(members))
	for id := range members {
		selected = append(selected, id)
	}
	sort.Strings(selected)
	return selected, nil
}

func (c *CollectionFlowImpl) recordBulkAudit(ctx context.Context, userID uint, action string, count int, success bool, opErr error, metadata *ClientMetadata) {
	description := fmt.Sprintf("Bulk operation on %d accounts", count)
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
	_ = c.auditRepo.Save(ctx, entry)
}

// viewStateFromRequest validates and resolves the query into a view state
// plus page coordinates. Absent fields fall back to the defaults; present
// but invalid fields are rejected.
func viewStateFromRequest(req *dto.ListAccountsRequest) (viewmodel.State, int, int, error) {
	state := viewmodel.State{
		Mode:          viewmodel.ModeActive,
		Search:        req.Search,
		FavoritesOnly: req.FavoritesOnly,
		SortDir:       viewmodel.SortAsc,
	}

	if req.View != "" {
		mode := viewmodel.Mode(req.View)
		if !mode.Valid() {
			return state, 0, 0, NewBusinessError("INVALID_VIEW_MODE", "Unsupported view mode", ErrInvalidViewMode)
		}
		state.Mode = mode
	}

	if req.SortKey != "" {
		key := viewmodel.SortKey(req.SortKey)
		if !key.Valid() {
			return state, 0, 0, NewBusinessError("INVALID_SORT_KEY", "Unsupported sort key", ErrInvalidSortKey)
		}
		state.SortKey = key
	}
	if req.SortDir == string(viewmodel.SortDesc) {
		state.SortDir = viewmodel.SortDesc
	}

	pageNumber := req.Page
	if pageNumber < 0 {
		return state, 0, 0, NewBusinessError("INVALID_PAGE", "Page number must be positive", ErrInvalidPage)
	}
	if pageNumber == 0 {
		pageNumber = 1
	}

	pageSize := req.PageSize
	if pageSize < 0 || pageSize > utils.MaxPageSize {
		return state, 0, 0, NewBusinessError("INVALID_PAGE_SIZE", "Unsupported page size", ErrInvalidPageSize)
	}
	if pageSize == 0 {
		pageSize = viewmodel.DefaultPageSize
	}

	return state, pageNumber, pageSize, nil
}
