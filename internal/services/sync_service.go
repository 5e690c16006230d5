// internal/services/sync_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/tecnova-catalog/internal/models"
	"github.com/javajoker/tecnova-catalog/internal/utils"
)

// CatalogRemote is the remote product collection. *CatalogClient implements
// it.
type CatalogRemote interface {
	List(ctx context.Context, filter string) ([]models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Search(ctx context.Context, term string) ([]models.Product, error)
	Create(ctx context.Context, draft models.ProductDraft, images []models.ImageUpload) (*models.Product, error)
	Update(ctx context.Context, id int64, draft models.ProductDraft, newImages []models.ImageUpload) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
	Import(ctx context.Context, drafts []models.ProductDraft) ([]models.Product, error)
}

// SyncService owns the local snapshot of the remote collection. The snapshot
// is only ever replaced wholesale by the most recently issued refresh, and
// every successful mutation is followed by a refresh with the last filter.
type SyncService struct {
	remote CatalogRemote
	log    *logrus.Entry
	now    func() time.Time

	mu          sync.RWMutex
	snapshot    []models.Product
	filter      string
	issued      uint64 // sequence of the latest refresh issued
	latestDone  bool   // whether the latest refresh has completed
	mutations   int    // mutations in flight
	lastErr     error
	refreshedAt time.Time
}

func NewSyncService(remote CatalogRemote, log *logrus.Entry) *SyncService {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SyncService{
		remote:     remote,
		log:        log.WithField("component", "sync"),
		now:        time.Now,
		snapshot:   []models.Product{},
		latestDone: true,
	}
}

// Refresh fetches the collection (or the products matching filter) and
// commits it as the new snapshot if no newer refresh was issued in the
// meantime. A discarded result yields ErrSuperseded. On failure the previous
// snapshot is kept.
func (s *SyncService) Refresh(ctx context.Context, filter string) ([]models.Product, error) {
	filter = strings.TrimSpace(filter)

	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.filter = filter
	s.latestDone = false
	s.lastErr = nil
	s.mu.Unlock()

	var (
		products []models.Product
		err      error
	)
	if filter == "" {
		products, err = s.remote.List(ctx, "")
	} else {
		products, err = s.remote.Search(ctx, filter)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fields := logrus.Fields{"seq": seq, "filter": filter}
	if seq != s.issued {
		s.log.WithFields(fields).WithField("latest", s.issued).Debug("Discarding stale refresh")
		return nil, ErrSuperseded
	}

	s.latestDone = true
	if err != nil {
		s.lastErr = err
		s.log.WithFields(fields).WithError(err).Warn("Refresh failed, keeping previous snapshot")
		return nil, err
	}

	// A mutation that failed while this refresh was in flight must not leave
	// the freshly committed snapshot in the error state.
	s.lastErr = nil
	s.snapshot = nonNil(models.Clone(products))
	s.refreshedAt = s.now()
	s.log.WithFields(fields).WithField("count", len(products)).Info("Snapshot refreshed")
	return models.Clone(s.snapshot), nil
}

// Reload refreshes with the last-used filter.
func (s *SyncService) Reload(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	filter := s.filter
	s.mu.RUnlock()
	return s.Refresh(ctx, filter)
}

// Snapshot returns a copy of the committed collection.
func (s *SyncService) Snapshot() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Clone(s.snapshot)
}

func (s *SyncService) Status() models.SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked()
}

// Current returns the snapshot and its status as one consistent read.
func (s *SyncService) Current() ([]models.Product, models.SyncStatus) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Clone(s.snapshot), s.statusLocked()
}

func (s *SyncService) statusLocked() models.SyncStatus {
	status := models.SyncStatus{
		State:  models.SyncStateIdle,
		Filter: s.filter,
		Count:  len(s.snapshot),
	}
	switch {
	case !s.latestDone || s.mutations > 0:
		status.State = models.SyncStateLoading
	case s.lastErr != nil:
		status.State = models.SyncStateError
		status.Error = s.lastErr.Error()
	}
	if !s.refreshedAt.IsZero() {
		t := s.refreshedAt
		status.RefreshedAt = &t
	}
	return status
}

// Get reads a single product straight from the remote collection. The
// snapshot is not touched.
func (s *SyncService) Get(ctx context.Context, id int64) (*models.Product, error) {
	if id <= 0 {
		return nil, invalidID()
	}
	return s.remote.Get(ctx, id)
}

// Create submits a new product. When the returned product is non-nil the
// mutation succeeded; a non-nil error alongside it comes from the refresh
// that follows.
func (s *SyncService) Create(ctx context.Context, draft models.ProductDraft, images []models.ImageUpload) (*models.Product, error) {
	if err := ValidateDraft(draft); err != nil {
		return nil, err
	}

	s.beginMutation()
	product, err := s.remote.Create(ctx, draft, images)
	s.endMutation(err)
	if err != nil {
		s.log.WithError(err).WithField("name", draft.Name).Warn("Create rejected")
		return nil, err
	}

	s.log.WithField("id", product.ID).Info("Product created")
	return product, s.reloadAfter(ctx, "create")
}

// Update replaces every editable field of product id and appends newImages.
func (s *SyncService) Update(ctx context.Context, id int64, draft models.ProductDraft, newImages []models.ImageUpload) (*models.Product, error) {
	if id <= 0 {
		return nil, invalidID()
	}
	if err := ValidateDraft(draft); err != nil {
		return nil, err
	}

	s.beginMutation()
	product, err := s.remote.Update(ctx, id, draft, newImages)
	s.endMutation(err)
	if err != nil {
		s.log.WithError(err).WithField("id", id).Warn("Update rejected")
		return nil, err
	}

	s.log.WithField("id", id).Info("Product updated")
	return product, s.reloadAfter(ctx, "update")
}

// Delete removes product id. The returned bool reports whether the remote
// accepted the delete, independently of the refresh that follows.
func (s *SyncService) Delete(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, invalidID()
	}

	s.beginMutation()
	err := s.remote.Delete(ctx, id)
	s.endMutation(err)
	if err != nil {
		s.log.WithError(err).WithField("id", id).Warn("Delete rejected")
		return false, err
	}

	s.log.WithField("id", id).Info("Product deleted")
	return true, s.reloadAfter(ctx, "delete")
}

// Import creates several products at once.
func (s *SyncService) Import(ctx context.Context, drafts []models.ProductDraft) ([]models.Product, error) {
	if len(drafts) == 0 {
		return nil, newValidationError("produtos", "required", "at least one product is required")
	}

	var fields []utils.ValidationError
	for i, draft := range drafts {
		err := ValidateDraft(draft)
		var ve *ValidationError
		if errors.As(err, &ve) {
			for _, f := range ve.Fields {
				f.Field = fmt.Sprintf("[%d].%s", i, f.Field)
				fields = append(fields, f)
			}
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	s.beginMutation()
	products, err := s.remote.Import(ctx, drafts)
	s.endMutation(err)
	if err != nil {
		s.log.WithError(err).WithField("count", len(drafts)).Warn("Import rejected")
		return nil, err
	}

	s.log.WithField("count", len(products)).Info("Products imported")
	return products, s.reloadAfter(ctx, "import")
}

func (s *SyncService) beginMutation() {
	s.mu.Lock()
	s.mutations++
	s.lastErr = nil
	s.mu.Unlock()
}

func (s *SyncService) endMutation(err error) {
	s.mu.Lock()
	s.mutations--
	if err != nil {
		s.lastErr = err
	}
	s.mu.Unlock()
}

// reloadAfter runs the refresh that follows a successful mutation. Losing to
// a newer refresh is fine: that one reflects the mutation too.
func (s *SyncService) reloadAfter(ctx context.Context, op string) error {
	_, err := s.Reload(ctx)
	if err == nil || errors.Is(err, ErrSuperseded) {
		return nil
	}
	return fmt.Errorf("%s succeeded but refresh failed: %w", op, err)
}

func invalidID() *ValidationError {
	return newValidationError("id", "gt", "id must be a positive integer")
}
