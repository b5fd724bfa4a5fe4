package businessflow

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/arashpm/Kitsune-Vault/models"
	"github.com/google/uuid"
)

var errFakeStoreDown = errors.New("store down")

// memoryAccountRepo is an in-memory AccountRepository for flow tests
type memoryAccountRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Account
	fail   bool
}

func newMemoryAccountRepo() *memoryAccountRepo {
	return &memoryAccountRepo{rows: make(map[uint]*models.Account)}
}

func (r *memoryAccountRepo) snapshot() []*models.Account {
	out := make([]*models.Account, 0, len(r.rows))
	for _, a := range r.rows {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memoryAccountRepo) ByID(ctx context.Context, id uint) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.rows[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *memoryAccountRepo) ByFilter(ctx context.Context, filter models.AccountFilter, orderBy string, limit, offset int) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(), nil
}

func (r *memoryAccountRepo) Save(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errFakeStoreDown
	}
	if account.ID == 0 {
		r.nextID++
		account.ID = r.nextID
	}
	cp := *account
	r.rows[account.ID] = &cp
	return nil
}

func (r *memoryAccountRepo) SaveBatch(ctx context.Context, accounts []*models.Account) error {
	for _, a := range accounts {
		if err := r.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryAccountRepo) Count(ctx context.Context, filter models.AccountFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

func (r *memoryAccountRepo) Exists(ctx context.Context, filter models.AccountFilter) (bool, error) {
	n, _ := r.Count(ctx, filter)
	return n > 0, nil
}

func (r *memoryAccountRepo) ListAll(ctx context.Context) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errFakeStoreDown
	}
	return r.snapshot(), nil
}

func (r *memoryAccountRepo) ByUUID(ctx context.Context, accountUUID uuid.UUID) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errFakeStoreDown
	}
	for _, a := range r.rows {
		if a.UUID == accountUUID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryAccountRepo) ByUUIDs(ctx context.Context, accountUUIDs []uuid.UUID) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(accountUUIDs))
	for _, u := range accountUUIDs {
		want[u] = true
	}
	var out []*models.Account
	for _, a := range r.snapshot() {
		if want[a.UUID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memoryAccountRepo) Update(ctx context.Context, account *models.Account) error {
	return r.Save(ctx, account)
}

func (r *memoryAccountRepo) SetArchivedByUUIDs(ctx context.Context, accountUUIDs []uuid.UUID, archived bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errFakeStoreDown
	}
	for _, u := range accountUUIDs {
		for _, a := range r.rows {
			if a.UUID == u {
				a.IsArchived = archived
			}
		}
	}
	return nil
}

func (r *memoryAccountRepo) DeleteByUUIDs(ctx context.Context, accountUUIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errFakeStoreDown
	}
	for _, u := range accountUUIDs {
		for id, a := range r.rows {
			if a.UUID == u {
				delete(r.rows, id)
			}
		}
	}
	return nil
}

// memoryActivityRepo is an in-memory ActivityEntryRepository
type memoryActivityRepo struct {
	mu      sync.Mutex
	nextID  uint
	entries []*models.ActivityEntry
}

func newMemoryActivityRepo() *memoryActivityRepo {
	return &memoryActivityRepo{}
}

func (r *memoryActivityRepo) ByID(ctx context.Context, id uint) (*models.ActivityEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryActivityRepo) ByFilter(ctx context.Context, filter models.ActivityEntryFilter, orderBy string, limit, offset int) ([]*models.ActivityEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ActivityEntry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *memoryActivityRepo) Save(ctx context.Context, entry *models.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = r.nextID
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *memoryActivityRepo) SaveBatch(ctx context.Context, entries []*models.ActivityEntry) error {
	for _, e := range entries {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryActivityRepo) Count(ctx context.Context, filter models.ActivityEntryFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}

func (r *memoryActivityRepo) Exists(ctx context.Context, filter models.ActivityEntryFilter) (bool, error) {
	n, _ := r.Count(ctx, filter)
	return n > 0, nil
}

func (r *memoryActivityRepo) ListByAccount(ctx context.Context, accountID uint) ([]*models.ActivityEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ActivityEntry
	// Newest first, matching the store ordering
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].AccountID == accountID {
			cp := *r.entries[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memoryAuditRepo captures audit entries for assertions
type memoryAuditRepo struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func newMemoryAuditRepo() *memoryAuditRepo {
	return &memoryAuditRepo{}
}

func (r *memoryAuditRepo) ByID(ctx context.Context, id uint) (*models.AuditLog, error) {
	return nil, nil
}

func (r *memoryAuditRepo) ByFilter(ctx context.Context, filter models.AuditLogFilter, orderBy string, limit, offset int) ([]*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.AuditLog, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *memoryAuditRepo) Save(ctx context.Context, entry *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *memoryAuditRepo) SaveBatch(ctx context.Context, entries []*models.AuditLog) error {
	for _, e := range entries {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryAuditRepo) Count(ctx context.Context, filter models.AuditLogFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}

func (r *memoryAuditRepo) Exists(ctx context.Context, filter models.AuditLogFilter) (bool, error) {
	n, _ := r.Count(ctx, filter)
	return n > 0, nil
}

func (r *memoryAuditRepo) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, error) {
	return r.ByFilter(ctx, models.AuditLogFilter{}, "", limit, offset)
}

func (r *memoryAuditRepo) ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.AuditLog
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryAuditRepo) ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.AuditLog
	for _, e := range r.entries {
		if e.IsFailed() {
			out = append(out, e)
		}
	}
	return out, nil
}

// memorySelectionStore is an in-memory SelectionStore
type memorySelectionStore struct {
	mu   sync.Mutex
	sets map[string]map[string]bool
	fail bool
}

func newMemorySelectionStore() *memorySelectionStore {
	return &memorySelectionStore{sets: make(map[string]map[string]bool)}
}

func (s *memorySelectionStore) Members(ctx context.Context, sessionID string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errFakeStoreDown
	}
	out := make(map[string]bool)
	for id := range s.sets[sessionID] {
		out[id] = true
	}
	return out, nil
}

func (s *memorySelectionStore) Toggle(ctx context.Context, sessionID, accountID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return false, errFakeStoreDown
	}
	set := s.sets[sessionID]
	if set == nil {
		set = make(map[string]bool)
		s.sets[sessionID] = set
	}
	if set[accountID] {
		delete(set, accountID)
		return false, nil
	}
	set[accountID] = true
	return true, nil
}

func (s *memorySelectionStore) AddAll(ctx context.Context, sessionID string, accountIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errFakeStoreDown
	}
	set := s.sets[sessionID]
	if set == nil {
		set = make(map[string]bool)
		s.sets[sessionID] = set
	}
	for _, id := range accountIDs {
		set[id] = true
	}
	return nil
}

func (s *memorySelectionStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errFakeStoreDown
	}
	delete(s.sets, sessionID)
	return nil
}
