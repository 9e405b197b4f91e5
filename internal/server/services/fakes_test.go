package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/dailyreflect/internal/common"
	"github.com/dmitrijs2005/dailyreflect/internal/dbx"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
	srvmodels "github.com/dmitrijs2005/dailyreflect/internal/server/models"
	"github.com/dmitrijs2005/dailyreflect/internal/server/repositories/reflections"
	"github.com/dmitrijs2005/dailyreflect/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/dailyreflect/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[string]*srvmodels.User
	getErr error
}

func (f *fakeUsers) Create(ctx context.Context, u *srvmodels.User) (*srvmodels.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = "u" + string(rune('0'+len(f.byID)+1))
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(ctx context.Context, email string) (*srvmodels.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetUserByID(ctx context.Context, id string) (*srvmodels.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type fakeTokens struct {
	mu      sync.Mutex
	tokens  map[string]srvmodels.RefreshToken
	findErr error
}

func (f *fakeTokens) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = srvmodels.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeTokens) Find(ctx context.Context, token string) (*srvmodels.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (f *fakeTokens) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

func (f *fakeTokens) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, t := range f.tokens {
		if t.Expires.Before(now) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

type fakeReflections struct {
	mu        sync.Mutex
	rows      map[string]map[string]models.Reflection
	upsertErr error
}

func (f *fakeReflections) List(ctx context.Context, userID string) ([]models.Reflection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Reflection{}
	for _, r := range f.rows[userID] {
		out = append(out, r)
	}
	models.SortReflections(out)
	return out, nil
}

func (f *fakeReflections) Get(ctx context.Context, userID, id string) (models.Reflection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[userID][id]
	if !ok {
		return models.Reflection{}, common.ErrorNotFound
	}
	return r, nil
}

func (f *fakeReflections) Upsert(ctx context.Context, userID string, r models.Reflection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for owner, rows := range f.rows {
		if _, ok := rows[r.ID]; ok && owner != userID {
			return common.ErrorAlreadyExists
		}
	}
	if f.rows[userID] == nil {
		f.rows[userID] = make(map[string]models.Reflection)
	}
	r.UserID = userID
	f.rows[userID][r.ID] = r
	return nil
}

func (f *fakeReflections) Delete(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows[userID], id)
	return nil
}

type fakeRepoManager struct {
	users       *fakeUsers
	tokens      *fakeTokens
	reflections *fakeReflections
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:       &fakeUsers{byID: make(map[string]*srvmodels.User)},
		tokens:      &fakeTokens{tokens: make(map[string]srvmodels.RefreshToken)},
		reflections: &fakeReflections{rows: make(map[string]map[string]models.Reflection)},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.tokens }
func (m *fakeRepoManager) Reflections(dbx.DBTX) reflections.Repository     { return m.reflections }
