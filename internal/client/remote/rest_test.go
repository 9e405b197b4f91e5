package remote

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/dailyreflect/internal/client/client"
	"github.com/dmitrijs2005/dailyreflect/internal/common"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	client.Client

	rows      []models.Reflection
	upserted  []models.Reflection
	deleted   []string
	tokens    []string
	listErr   error
	deleteErr map[string]error
}

func (s *stubAPI) ListReflections(_ context.Context, tok string) ([]models.Reflection, error) {
	s.tokens = append(s.tokens, tok)
	return s.rows, s.listErr
}

func (s *stubAPI) UpsertReflections(_ context.Context, tok string, entries []models.Reflection) error {
	s.tokens = append(s.tokens, tok)
	s.upserted = append(s.upserted, entries...)
	return nil
}

func (s *stubAPI) DeleteReflection(_ context.Context, tok, id string) error {
	s.tokens = append(s.tokens, tok)
	s.deleted = append(s.deleted, id)
	return s.deleteErr[id]
}

func staticToken(tok string) TokenSource {
	return func(context.Context) (string, error) { return tok, nil }
}

var alice = models.User{ID: "u-alice", Email: "alice@example.com"}

func TestRESTAdapter_Pull(t *testing.T) {
	api := &stubAPI{rows: []models.Reflection{{ID: "1"}, {ID: "2", UserID: "u-alice"}}}
	a := NewRESTAdapter(api, staticToken("tok"))

	got, err := a.Pull(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u-alice", got[0].UserID)
	assert.Equal(t, []string{"tok"}, api.tokens)
	assert.Equal(t, "rest", a.Name())
}

func TestRESTAdapter_Pull_MapsErrors(t *testing.T) {
	api := &stubAPI{listErr: fmt.Errorf("%w: connection refused", client.ErrUnavailable)}
	a := NewRESTAdapter(api, staticToken("tok"))

	_, err := a.Pull(context.Background(), alice)
	require.ErrorIs(t, err, client.ErrUnavailable)
}

func TestRESTAdapter_TokenError(t *testing.T) {
	api := &stubAPI{}
	a := NewRESTAdapter(api, func(context.Context) (string, error) { return "", client.ErrUnauthorized })

	_, err := a.Pull(context.Background(), alice)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	require.ErrorIs(t, a.Push(context.Background(), alice, []models.Reflection{{ID: "1"}}), client.ErrUnauthorized)
	require.ErrorIs(t, a.Delete(context.Background(), alice, []string{"1"}), client.ErrUnauthorized)
	assert.Empty(t, api.tokens)
}

func TestRESTAdapter_Push_StampsOwner(t *testing.T) {
	api := &stubAPI{}
	a := NewRESTAdapter(api, staticToken("tok"))

	require.NoError(t, a.Push(context.Background(), alice, nil))
	assert.Empty(t, api.tokens, "empty push does not call the server")

	require.NoError(t, a.Push(context.Background(), alice, []models.Reflection{{ID: "1", Synced: true}}))
	require.Len(t, api.upserted, 1)
	assert.Equal(t, "u-alice", api.upserted[0].UserID)
	assert.False(t, api.upserted[0].Synced)
}

func TestRESTAdapter_Delete(t *testing.T) {
	api := &stubAPI{deleteErr: map[string]error{
		"missing": fmt.Errorf("%w: gone", common.ErrorNotFound),
	}}
	a := NewRESTAdapter(api, staticToken("tok"))

	require.NoError(t, a.Delete(context.Background(), alice, []string{"1", "missing", "2"}))
	assert.Equal(t, []string{"1", "missing", "2"}, api.deleted)

	api.deleteErr["boom"] = errors.New("boom")
	err := a.Delete(context.Background(), alice, []string{"boom", "3"})
	require.ErrorContains(t, err, "delete reflection boom")
	assert.NotContains(t, api.deleted, "3")
}
