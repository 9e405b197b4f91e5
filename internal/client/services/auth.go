// Package services contains the application services of the journaling
// client: the auth provider that answers "who is signed in", and the
// reflection provider that owns the entry collection and its sync.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/dailyreflect/internal/client/client"
	"github.com/dmitrijs2005/dailyreflect/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dailyreflect/internal/logging"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
)

// SessionKey is the metadata key holding the signed-in session.
const SessionKey = "session"

var ErrAuthDisabled = errors.New("authentication is disabled")

// AuthService answers whether there is a remote identity and manages it.
//
// Every identity change (login, logout, restore) is reported to subscribers
// with the new user, or nil after logout.
type AuthService interface {
	CurrentUser() (models.User, bool)
	IsAuthenticated() bool
	Subscribe(fn func(user *models.User))
	Login(ctx context.Context, email string, password []byte) error
	Register(ctx context.Context, email string, password []byte) error
	Logout(ctx context.Context) error
	// Restore reloads a previously persisted identity, if any.
	Restore(ctx context.Context) error
	// Token returns a bearer token for the current user, refreshing it when
	// it has expired.
	Token(ctx context.Context) (string, error)
}

type subscribers struct {
	mu  sync.Mutex
	fns []func(user *models.User)
}

func (s *subscribers) add(fn func(user *models.User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, fn)
}

func (s *subscribers) notify(user *models.User) {
	s.mu.Lock()
	fns := append([]func(*models.User){}, s.fns...)
	s.mu.Unlock()

	for _, fn := range fns {
		var u *models.User
		if user != nil {
			copied := *user
			u = &copied
		}
		fn(u)
	}
}

// sessionAuth signs in with email and password against the reflections
// server and keeps the session in local storage.
type sessionAuth struct {
	client client.Client
	repo   metadata.Repository
	log    logging.Logger
	now    func() time.Time

	subs subscribers

	mu      sync.Mutex
	session *models.Session
}

// NewSessionAuth constructs the email/password AuthService.
func NewSessionAuth(c client.Client, repo metadata.Repository, log logging.Logger) AuthService {
	return &sessionAuth{
		client: c,
		repo:   repo,
		log:    log.With("module", "auth"),
		now:    time.Now,
	}
}

func (a *sessionAuth) CurrentUser() (models.User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return models.User{}, false
	}
	return a.session.User, true
}

func (a *sessionAuth) IsAuthenticated() bool {
	_, ok := a.CurrentUser()
	return ok
}

func (a *sessionAuth) Subscribe(fn func(user *models.User)) {
	a.subs.add(fn)
}

func (a *sessionAuth) Login(ctx context.Context, email string, password []byte) error {
	s, err := a.client.SignIn(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	if err := a.setSession(ctx, &s); err != nil {
		return err
	}
	a.log.Info(ctx, "signed in", "user_id", s.User.ID)
	a.subs.notify(&s.User)
	return nil
}

// Register creates the account and signs straight into it.
func (a *sessionAuth) Register(ctx context.Context, email string, password []byte) error {
	if _, err := a.client.SignUp(ctx, email, password); err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return a.Login(ctx, email, password)
}

// Logout forgets the session. Local entries stay where they are.
func (a *sessionAuth) Logout(ctx context.Context) error {
	if err := a.setSession(ctx, nil); err != nil {
		return err
	}
	a.log.Info(ctx, "signed out")
	a.subs.notify(nil)
	return nil
}

func (a *sessionAuth) Restore(ctx context.Context) error {
	raw, err := a.repo.Get(ctx, SessionKey)
	if err != nil {
		return fmt.Errorf("%w: %v", client.ErrLocalDataNotAvailable, err)
	}
	if len(raw) == 0 {
		return nil
	}

	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		a.log.Warn(ctx, "stored session unreadable, discarding", "error", err)
		return a.repo.Delete(ctx, SessionKey)
	}

	a.mu.Lock()
	a.session = &s
	a.mu.Unlock()

	a.log.Info(ctx, "session restored", "user_id", s.User.ID)
	a.subs.notify(&s.User)
	return nil
}

func (a *sessionAuth) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	s := a.session
	a.mu.Unlock()

	if s == nil {
		return "", client.ErrUnauthorized
	}
	if !s.Expired(a.now()) {
		return s.AccessToken, nil
	}

	fresh, err := a.client.Refresh(ctx, s.RefreshToken)
	if errors.Is(err, client.ErrUnauthorized) {
		a.log.Warn(ctx, "refresh token rejected, signing out", "user_id", s.User.ID)
		if lerr := a.Logout(ctx); lerr != nil {
			a.log.Error(ctx, "failed to clear session", "error", lerr)
		}
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}

	if err := a.setSession(ctx, &fresh); err != nil {
		return "", err
	}
	return fresh.AccessToken, nil
}

// setSession persists s (or removes the stored one when nil) and makes it
// current.
func (a *sessionAuth) setSession(ctx context.Context, s *models.Session) error {
	if s == nil {
		if err := a.repo.Delete(ctx, SessionKey); err != nil {
			return fmt.Errorf("session saving error: %w", err)
		}
	} else {
		raw, err := json.Marshal(s)
		if err != nil {
			return err
		}
		if err := a.repo.Set(ctx, SessionKey, raw); err != nil {
			return fmt.Errorf("session saving error: %w", err)
		}
	}

	a.mu.Lock()
	a.session = s
	a.mu.Unlock()
	return nil
}

// staticAuth is always signed in as one configured user.
type staticAuth struct {
	user models.User
	subs subscribers
}

func NewStaticAuth(user models.User) AuthService {
	return &staticAuth{user: user}
}

func (a *staticAuth) CurrentUser() (models.User, bool)               { return a.user, true }
func (a *staticAuth) IsAuthenticated() bool                          { return true }
func (a *staticAuth) Subscribe(fn func(user *models.User))           { a.subs.add(fn) }
func (a *staticAuth) Login(context.Context, string, []byte) error    { return nil }
func (a *staticAuth) Register(context.Context, string, []byte) error { return nil }
func (a *staticAuth) Logout(context.Context) error                   { return nil }
func (a *staticAuth) Token(context.Context) (string, error)          { return "", nil }

func (a *staticAuth) Restore(context.Context) error {
	a.subs.notify(&a.user)
	return nil
}

// noAuth never has a remote identity; the journal stays purely local.
type noAuth struct{}

func NewNoAuth() AuthService { return noAuth{} }

func (noAuth) CurrentUser() (models.User, bool)               { return models.User{}, false }
func (noAuth) IsAuthenticated() bool                          { return false }
func (noAuth) Subscribe(func(user *models.User))              {}
func (noAuth) Login(context.Context, string, []byte) error    { return ErrAuthDisabled }
func (noAuth) Register(context.Context, string, []byte) error { return ErrAuthDisabled }
func (noAuth) Logout(context.Context) error                   { return nil }
func (noAuth) Restore(context.Context) error                  { return nil }
func (noAuth) Token(context.Context) (string, error)          { return "", client.ErrUnauthorized }
