package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/dmitrijs2005/dailyreflect/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dailyreflect/internal/client/store"
	"github.com/dmitrijs2005/dailyreflect/internal/logging"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newMetadataRepo(t *testing.T) *metadata.SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`)
	require.NoError(t, err)
	return metadata.NewSQLiteRepository(db)
}

func newTestStore(t *testing.T) (*store.MetadataStore, *metadata.SQLiteRepository) {
	t.Helper()
	repo := newMetadataRepo(t)
	return store.NewMetadataStore(repo, logging.NewDiscardLogger()), repo
}

// switchableAuth is an AuthService whose identity the test flips directly.
type switchableAuth struct {
	mu   sync.Mutex
	user *models.User
	subs subscribers
}

func (a *switchableAuth) CurrentUser() (models.User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return models.User{}, false
	}
	return *a.user, true
}

func (a *switchableAuth) IsAuthenticated() bool {
	_, ok := a.CurrentUser()
	return ok
}

func (a *switchableAuth) Subscribe(fn func(*models.User)) { a.subs.add(fn) }

func (a *switchableAuth) signIn(u models.User) {
	a.mu.Lock()
	a.user = &u
	a.mu.Unlock()
	a.subs.notify(&u)
}

func (a *switchableAuth) signOut() {
	a.mu.Lock()
	a.user = nil
	a.mu.Unlock()
	a.subs.notify(nil)
}

func (a *switchableAuth) Login(context.Context, string, []byte) error    { return nil }
func (a *switchableAuth) Register(context.Context, string, []byte) error { return nil }
func (a *switchableAuth) Logout(context.Context) error {
	a.signOut()
	return nil
}

func (a *switchableAuth) Restore(context.Context) error         { return nil }
func (a *switchableAuth) Token(context.Context) (string, error) { return "tok", nil }
