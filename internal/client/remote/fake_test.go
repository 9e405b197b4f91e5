package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/dailyreflect/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeAdapter_RoundTrip(t *testing.T) {
	f := NewFakeAdapter(0)
	ctx := context.Background()

	require.NoError(t, f.Push(ctx, alice, []models.Reflection{
		{ID: "1", Date: "2024-01-01", Synced: true},
		{ID: "2", Date: "2024-01-03"},
	}))

	got, err := f.Pull(ctx, alice)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.False(t, got[1].Synced)

	require.NoError(t, f.Delete(ctx, alice, []string{"2", "nope"}))
	got, err = f.Pull(ctx, alice)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, 2, f.Calls("pull"))
	assert.Equal(t, 1, f.Calls("push"))
	assert.Equal(t, 1, f.Calls("delete"))
}

func TestFakeAdapter_Failure(t *testing.T) {
	f := NewFakeAdapter(0)
	boom := errors.New("offline")
	f.SetFailure(boom)

	_, err := f.Pull(context.Background(), alice)
	require.ErrorIs(t, err, boom)

	f.SetFailure(nil)
	_, err = f.Pull(context.Background(), alice)
	require.NoError(t, err)
}

func TestFakeAdapter_LatencyHonorsContext(t *testing.T) {
	f := NewFakeAdapter(time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Pull(ctx, alice)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFakeAdapter_Seed(t *testing.T) {
	f := NewFakeAdapter(0)
	f.Seed(alice, models.Reflection{ID: "s", Date: "2024-02-02"})

	got, err := f.Pull(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u-alice", got[0].UserID)
}
