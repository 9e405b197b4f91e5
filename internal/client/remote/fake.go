package remote

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/dailyreflect/internal/models"
)

// FakeAdapter is an in-memory remote store for demos and tests. It can be
// slowed down and made to fail.
type FakeAdapter struct {
	mu      sync.Mutex
	rows    map[string]map[string]models.Reflection
	latency time.Duration
	fail    error
	calls   map[string]int
}

var _ Adapter = (*FakeAdapter)(nil)

func NewFakeAdapter(latency time.Duration) *FakeAdapter {
	return &FakeAdapter{
		rows:    make(map[string]map[string]models.Reflection),
		latency: latency,
		calls:   make(map[string]int),
	}
}

func (f *FakeAdapter) Name() string { return "fake" }

// SetFailure makes every call return err until it is called again with nil.
func (f *FakeAdapter) SetFailure(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = err
}

// Calls reports how many times op ("pull", "push", "delete") was invoked.
func (f *FakeAdapter) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Seed stores entries for user as if another device had pushed them.
func (f *FakeAdapter) Seed(user models.User, entries ...models.Reflection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range forUser(user, entries) {
		f.table(user)[e.ID] = e
	}
}

func (f *FakeAdapter) Pull(ctx context.Context, user models.User) ([]models.Reflection, error) {
	if err := f.enter(ctx, "pull"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Reflection, 0, len(f.rows[user.ID]))
	for _, e := range f.rows[user.ID] {
		out = append(out, e)
	}
	models.SortReflections(out)
	return out, nil
}

func (f *FakeAdapter) Push(ctx context.Context, user models.User, entries []models.Reflection) error {
	if err := f.enter(ctx, "push"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range forUser(user, entries) {
		f.table(user)[e.ID] = e
	}
	return nil
}

func (f *FakeAdapter) Delete(ctx context.Context, user models.User, ids []string) error {
	if err := f.enter(ctx, "delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range ids {
		delete(f.rows[user.ID], id)
	}
	return nil
}

func (f *FakeAdapter) enter(ctx context.Context, op string) error {
	f.mu.Lock()
	f.calls[op]++
	latency, fail := f.latency, f.fail
	f.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fail
}

// table must be called with mu held.
func (f *FakeAdapter) table(user models.User) map[string]models.Reflection {
	t, ok := f.rows[user.ID]
	if !ok {
		t = make(map[string]models.Reflection)
		f.rows[user.ID] = t
	}
	return t
}
