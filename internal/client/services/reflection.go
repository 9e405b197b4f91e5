package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/dailyreflect/internal/client/merge"
	"github.com/dmitrijs2005/dailyreflect/internal/client/remote"
	"github.com/dmitrijs2005/dailyreflect/internal/client/store"
	"github.com/dmitrijs2005/dailyreflect/internal/common"
	"github.com/dmitrijs2005/dailyreflect/internal/logging"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
	"github.com/google/uuid"
)

// ReflectionConfig tunes the provider.
type ReflectionConfig struct {
	// RemoteTimeout bounds every single remote call. Zero means no bound.
	RemoteTimeout time.Duration
}

// ReflectionService owns the in-memory entry collection.
//
// Every mutation is applied in memory, written to the local store, and then
// (when a remote identity exists) pushed to the remote store in the
// background. Remote failures are recorded in Status and never undo a local
// change.
type ReflectionService struct {
	store   store.Store
	remote  remote.Adapter
	auth    AuthService
	log     logging.Logger
	timeout time.Duration

	now   func() time.Time
	newID func() string

	mu         sync.Mutex
	entries    []models.Reflection
	tombstones []string
	// pulls counts pulls started. deleted maps a tombstoned id whose remote
	// delete succeeded to the pulls count at that moment; the tombstone is
	// dropped only after merging a pull started later, since an earlier
	// pull may still carry the row.
	pulls   uint64
	deleted map[string]uint64
	// rev counts local edits per id so a finished push only marks an entry
	// synced if it was not edited meanwhile.
	rev    map[string]uint64
	status models.SyncStatus
	// loaded is set by Init; syncing before it would overwrite the local
	// journal with remote data only.
	loaded bool

	// one full sync at a time
	syncMu sync.Mutex
	wg     sync.WaitGroup
}

// NewReflectionService wires the provider. adapter may be nil, in which case
// the journal is local only.
func NewReflectionService(st store.Store, adapter remote.Adapter, auth AuthService, log logging.Logger, cfg ReflectionConfig) *ReflectionService {
	s := &ReflectionService{
		store:   st,
		remote:  adapter,
		auth:    auth,
		log:     log.With("module", "reflections"),
		timeout: cfg.RemoteTimeout,
		now:     time.Now,
		newID:   uuid.NewString,
		entries: []models.Reflection{},
		rev:     make(map[string]uint64),
		deleted: make(map[string]uint64),
	}
	auth.Subscribe(s.OnAuthChange)
	return s
}

// Init loads the local collection and, if signed in, reconciles it with the
// remote store. A failed sync is only recorded in Status.
func (s *ReflectionService) Init(ctx context.Context) {
	entries := s.store.Load(ctx)
	tombstones := s.store.LoadTombstones(ctx)
	models.SortReflections(entries)

	s.mu.Lock()
	s.entries = entries
	s.tombstones = tombstones
	s.loaded = true
	s.mu.Unlock()

	s.log.Info(ctx, "local journal loaded", "entries", len(entries), "pending_deletes", len(tombstones))

	if err := s.SyncNow(ctx); err != nil {
		s.log.Warn(ctx, "initial sync failed", "error", err)
	}
}

// Entries returns a copy of the collection, newest first.
func (s *ReflectionService) Entries() []models.Reflection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Reflection(nil), s.entries...)
}

func (s *ReflectionService) Get(id string) (models.Reflection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.entries[i], nil
	}
	return models.Reflection{}, fmt.Errorf("entry %s: %w", id, common.ErrorNotFound)
}

// EntriesOn returns the entries whose Date is day.
func (s *ReflectionService) EntriesOn(day time.Time) []models.Reflection {
	want := day.Format(models.DateLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Reflection
	for _, e := range s.entries {
		if e.Date == want {
			out = append(out, e)
		}
	}
	return out
}

// CalendarMonth groups a month's entries by day of month.
func (s *ReflectionService) CalendarMonth(year int, month time.Month) map[int][]models.Reflection {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int][]models.Reflection)
	for _, e := range s.entries {
		d, err := e.Day()
		if err != nil || d.Year() != year || d.Month() != month {
			continue
		}
		out[d.Day()] = append(out[d.Day()], e)
	}
	return out
}

func (s *ReflectionService) Status() models.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status
	if st.LastSynced != nil {
		t := *st.LastSynced
		st.LastSynced = &t
	}
	return st
}

// Wait blocks until background remote writes have finished.
func (s *ReflectionService) Wait() {
	s.wg.Wait()
}

// AddEntry validates the draft and stores a new entry. Validation errors are
// returned before anything changes.
func (s *ReflectionService) AddEntry(ctx context.Context, d models.Draft) (models.Reflection, error) {
	if err := d.Validate(); err != nil {
		return models.Reflection{}, err
	}

	user, authed := s.auth.CurrentUser()
	e := d.ToReflection(s.newID(), user.ID, s.now())

	s.mu.Lock()
	s.entries = append([]models.Reflection{e}, s.entries...)
	models.SortReflections(s.entries)
	s.rev[e.ID]++
	s.persistLocked(ctx)
	s.mu.Unlock()

	if authed {
		s.pushAsync(user, e)
	}
	return e, nil
}

// UpdateEntry applies the patch. The entry keeps its id and owner and
// becomes unsynced.
func (s *ReflectionService) UpdateEntry(ctx context.Context, id string, p models.Patch) (models.Reflection, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Reflection{}, fmt.Errorf("entry %s: %w", id, common.ErrorNotFound)
	}

	updated, err := p.Apply(s.entries[i])
	if err != nil {
		s.mu.Unlock()
		return models.Reflection{}, err
	}
	updated.Synced = false

	s.entries[i] = updated
	models.SortReflections(s.entries)
	s.rev[id]++
	s.persistLocked(ctx)
	s.mu.Unlock()

	if user, ok := s.auth.CurrentUser(); ok {
		s.pushAsync(user, updated)
	}
	return updated, nil
}

// DeleteEntry removes the entry locally. An entry that may exist remotely
// leaves a tombstone until the remote delete is confirmed, so a later sync
// cannot bring it back.
func (s *ReflectionService) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("entry %s: %w", id, common.ErrorNotFound)
	}

	e := s.entries[i]
	s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
	delete(s.rev, id)

	tracked := e.Synced || e.UserID != ""
	if tracked {
		s.tombstones = appendUnique(s.tombstones, id)
		delete(s.deleted, id)
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	if user, ok := s.auth.CurrentUser(); ok && tracked {
		s.deleteAsync(user, id)
	}
	return nil
}

// SyncNow reconciles with the remote store: pending deletions are flushed,
// remote entries are pulled and merged, and unsynced local entries are
// pushed. It is a no-op without a remote store or identity.
func (s *ReflectionService) SyncNow(ctx context.Context) error {
	user, ok := s.auth.CurrentUser()
	if !ok || s.remote == nil {
		return nil
	}

	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return nil
	}
	s.status.Syncing = true
	s.mu.Unlock()

	err := s.sync(ctx, user)

	s.mu.Lock()
	s.status.Syncing = false
	if err != nil {
		s.status.Error = err.Error()
	} else {
		t := s.now()
		s.status.LastSynced = &t
		s.status.Error = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn(ctx, "sync failed", "adapter", s.remote.Name(), "error", err)
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}

func (s *ReflectionService) sync(ctx context.Context, user models.User) error {
	s.mu.Lock()
	pending := s.unconfirmedLocked()
	s.mu.Unlock()

	if len(pending) > 0 {
		if err := s.call(ctx, func(ctx context.Context) error {
			return s.remote.Delete(ctx, user, pending)
		}); err != nil {
			return fmt.Errorf("flush deletes: %w", err)
		}
		s.mu.Lock()
		s.confirmDeletedLocked(pending)
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.pulls++
	gen := s.pulls
	s.mu.Unlock()

	var pulled []models.Reflection
	if err := s.call(ctx, func(ctx context.Context) error {
		var err error
		pulled, err = s.remote.Pull(ctx, user)
		return err
	}); err != nil {
		return fmt.Errorf("pull: %w", err)
	}

	s.mu.Lock()
	s.entries = merge.Merge(s.entries, pulled, s.tombstones)
	s.pruneTombstonesLocked(gen)
	toPush := merge.Unsynced(s.entries, user.ID)
	revs := s.revsLocked(toPush)
	s.persistLocked(ctx)
	s.mu.Unlock()

	if len(toPush) > 0 {
		err := s.call(ctx, func(ctx context.Context) error {
			return s.remote.Push(ctx, user, toPush)
		})
		switch {
		case err == nil:
			s.markSynced(ctx, user, toPush, revs)
		case isRejection(err):
			// one bad row must not hold back the rest
			if err := s.pushEach(ctx, user, toPush, revs); err != nil {
				return fmt.Errorf("push: %w", err)
			}
		default:
			return fmt.Errorf("push: %w", err)
		}
	}

	s.log.Info(ctx, "sync finished", "adapter", s.remote.Name(), "pulled", len(pulled), "pushed", len(toPush))
	return nil
}

// OnAuthChange reloads and resyncs in the background when someone signs in.
// Signing out keeps the local journal untouched.
func (s *ReflectionService) OnAuthChange(user *models.User) {
	if user == nil || s.remote == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx := context.Background()
		if err := s.SyncNow(ctx); err != nil {
			s.log.Warn(ctx, "sync after sign-in failed", "user_id", user.ID, "error", err)
		}
	}()
}

func (s *ReflectionService) pushAsync(user models.User, e models.Reflection) {
	if s.remote == nil {
		return
	}

	s.mu.Lock()
	revs := s.revsLocked([]models.Reflection{e})
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx := context.Background()
		err := s.call(ctx, func(ctx context.Context) error {
			return s.remote.Push(ctx, user, []models.Reflection{e})
		})
		if err != nil {
			s.recordError(ctx, "push", err)
			return
		}
		s.markSynced(ctx, user, []models.Reflection{e}, revs)
	}()
}

func (s *ReflectionService) deleteAsync(user models.User, id string) {
	if s.remote == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx := context.Background()
		err := s.call(ctx, func(ctx context.Context) error {
			return s.remote.Delete(ctx, user, []string{id})
		})
		if err != nil {
			s.recordError(ctx, "delete", err)
			return
		}
		s.mu.Lock()
		s.confirmDeletedLocked([]string{id})
		s.mu.Unlock()
	}()
}

// isRejection reports whether the remote refused the content of a push, as
// opposed to being unreachable.
func isRejection(err error) bool {
	return errors.Is(err, common.ErrorValidation) || errors.Is(err, common.ErrorAlreadyExists)
}

// pushEach pushes entries one at a time after a batch was rejected. Accepted
// entries are marked synced; rejected ones stay unsynced and are reported
// together. A non-rejection error stops the loop.
func (s *ReflectionService) pushEach(ctx context.Context, user models.User, entries []models.Reflection, revs map[string]uint64) error {
	var (
		accepted []models.Reflection
		rejected []string
		firstErr error
	)
	for _, e := range entries {
		err := s.call(ctx, func(ctx context.Context) error {
			return s.remote.Push(ctx, user, []models.Reflection{e})
		})
		switch {
		case err == nil:
			accepted = append(accepted, e)
		case isRejection(err):
			s.log.Warn(ctx, "entry rejected by remote", "id", e.ID, "error", err)
			rejected = append(rejected, e.ID)
			if firstErr == nil {
				firstErr = err
			}
		default:
			s.markSynced(ctx, user, accepted, revs)
			return err
		}
	}
	s.markSynced(ctx, user, accepted, revs)
	if len(rejected) > 0 {
		return fmt.Errorf("%d of %d entries rejected (%v): %w", len(rejected), len(entries), rejected, firstErr)
	}
	return nil
}

// unconfirmedLocked lists tombstones whose remote delete has not succeeded
// yet. mu must be held.
func (s *ReflectionService) unconfirmedLocked() []string {
	var out []string
	for _, id := range s.tombstones {
		if _, ok := s.deleted[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// confirmDeletedLocked records that the remote no longer holds ids. Their
// tombstones stay until a later pull is merged. mu must be held.
func (s *ReflectionService) confirmDeletedLocked(ids []string) {
	for _, id := range ids {
		if _, ok := s.deleted[id]; !ok {
			s.deleted[id] = s.pulls
		}
	}
}

// pruneTombstonesLocked drops tombstones confirmed before the pull numbered
// gen started. mu must be held.
func (s *ReflectionService) pruneTombstonesLocked(gen uint64) {
	var done []string
	for _, id := range s.tombstones {
		if at, ok := s.deleted[id]; ok && at < gen {
			done = append(done, id)
			delete(s.deleted, id)
		}
	}
	if len(done) > 0 {
		s.tombstones = without(s.tombstones, done)
	}
}

// markSynced flags pushed entries as synced unless they were edited or
// deleted after the push started.
func (s *ReflectionService) markSynced(ctx context.Context, user models.User, pushed []models.Reflection, revs map[string]uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, p := range pushed {
		i := s.indexOf(p.ID)
		if i < 0 || s.rev[p.ID] != revs[p.ID] {
			continue
		}
		s.entries[i].Synced = true
		s.entries[i].UserID = user.ID
		changed = true
	}
	if changed {
		s.persistLocked(ctx)
	}
}

func (s *ReflectionService) recordError(ctx context.Context, op string, err error) {
	s.log.Warn(ctx, "remote write failed", "op", op, "adapter", s.remote.Name(), "error", err)
	s.mu.Lock()
	s.status.Error = fmt.Sprintf("%s: %v", op, err)
	s.mu.Unlock()
}

// call runs fn with the per-call remote timeout applied.
func (s *ReflectionService) call(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return fn(ctx)
}

// persistLocked writes the collection; failures are logged and the in-memory
// state is kept. mu must be held.
func (s *ReflectionService) persistLocked(ctx context.Context) {
	if err := s.store.SaveAll(ctx, s.entries, s.tombstones); err != nil {
		s.log.Error(ctx, "failed to save local journal", "error", err)
	}
}

func (s *ReflectionService) revsLocked(entries []models.Reflection) map[string]uint64 {
	out := make(map[string]uint64, len(entries))
	for _, e := range entries {
		out[e.ID] = s.rev[e.ID]
	}
	return out
}

func (s *ReflectionService) indexOf(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func appendUnique(ids []string, id string) []string {
	for _, x := range ids {
		if x == id {
			return ids
		}
	}
	return append(ids, id)
}

func without(ids []string, drop []string) []string {
	gone := make(map[string]struct{}, len(drop))
	for _, id := range drop {
		gone[id] = struct{}{}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := gone[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
