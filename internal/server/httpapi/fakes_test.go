package httpapi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/dailyreflect/internal/common"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
	"github.com/dmitrijs2005/dailyreflect/internal/server/auth"
	srvmodels "github.com/dmitrijs2005/dailyreflect/internal/server/models"
	"github.com/dmitrijs2005/dailyreflect/internal/server/services"
)

var testSecret = []byte("test-secret")

type fakeUsers struct {
	mu        sync.Mutex
	passwords map[string]string
	users     map[string]*srvmodels.User
	refresh   map[string]string
	seq       int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		passwords: make(map[string]string),
		users:     make(map[string]*srvmodels.User),
		refresh:   make(map[string]string),
	}
}

func (f *fakeUsers) Register(ctx context.Context, email string, password []byte) (*srvmodels.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password too short", common.ErrorValidation)
	}
	if _, ok := f.users[email]; ok {
		return nil, fmt.Errorf("user %s: %w", email, common.ErrorAlreadyExists)
	}
	f.seq++
	u := &srvmodels.User{ID: fmt.Sprintf("user-%d", f.seq), Email: email}
	f.users[email] = u
	f.passwords[email] = string(password)
	return u, nil
}

func (f *fakeUsers) Login(ctx context.Context, email string, password []byte) (*srvmodels.User, *services.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok || f.passwords[email] != string(password) {
		return nil, nil, common.ErrorUnauthorized
	}
	return u, f.issueLocked(u.ID), nil
}

func (f *fakeUsers) RefreshToken(ctx context.Context, token string) (*srvmodels.User, *services.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.refresh[token]
	if !ok {
		return nil, nil, common.ErrorUnauthorized
	}
	delete(f.refresh, token)
	for _, u := range f.users {
		if u.ID == uid {
			return u, f.issueLocked(uid), nil
		}
	}
	return nil, nil, common.ErrorUnauthorized
}

func (f *fakeUsers) ParseAccessToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, testSecret)
}

func (f *fakeUsers) issueLocked(userID string) *services.TokenPair {
	access, _ := auth.GenerateToken(userID, testSecret, time.Hour)
	f.seq++
	refresh := fmt.Sprintf("refresh-%d", f.seq)
	f.refresh[refresh] = userID
	return &services.TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: time.Hour}
}

type fakeReflections struct {
	mu      sync.Mutex
	rows    map[string]map[string]models.Reflection
	listErr error
}

func newFakeReflections() *fakeReflections {
	return &fakeReflections{rows: make(map[string]map[string]models.Reflection)}
}

func (f *fakeReflections) List(ctx context.Context, userID string) ([]models.Reflection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []models.Reflection{}
	for _, r := range f.rows[userID] {
		out = append(out, r)
	}
	models.SortReflections(out)
	return out, nil
}

func (f *fakeReflections) Upsert(ctx context.Context, userID string, entries []models.Reflection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("%w: id is required", common.ErrorValidation)
		}
		for owner, rows := range f.rows {
			if _, ok := rows[e.ID]; ok && owner != userID {
				return fmt.Errorf("entry %s: %w", e.ID, common.ErrorAlreadyExists)
			}
		}
	}
	if f.rows[userID] == nil {
		f.rows[userID] = make(map[string]models.Reflection)
	}
	for _, e := range entries {
		e.UserID = userID
		e.Synced = false
		f.rows[userID][e.ID] = e
	}
	return nil
}

func (f *fakeReflections) Patch(ctx context.Context, userID, id string, p models.Patch) (models.Reflection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.rows[userID][id]
	if !ok {
		return models.Reflection{}, common.ErrorNotFound
	}
	updated, err := p.Apply(cur)
	if err != nil {
		return models.Reflection{}, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	f.rows[userID][id] = updated
	return updated, nil
}

func (f *fakeReflections) Delete(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == "explode" {
		return errors.New("db down")
	}
	delete(f.rows[userID], id)
	return nil
}
