package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() Draft {
	return Draft{
		Date:        "2024-03-01",
		Gratitude:   "sun",
		Achievement: "ran 5k",
		Improvement: "sleep earlier",
		Mood:        "happy",
	}
}

func TestDraft_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Draft)
		wantErr error
		field   string
	}{
		{name: "ok", mutate: func(*Draft) {}},
		{name: "empty date means today", mutate: func(d *Draft) { d.Date = "" }},
		{name: "missing gratitude", mutate: func(d *Draft) { d.Gratitude = " " }, wantErr: ErrMissingField, field: "gratitude"},
		{name: "missing achievement", mutate: func(d *Draft) { d.Achievement = "" }, wantErr: ErrMissingField, field: "achievement"},
		{name: "missing improvement", mutate: func(d *Draft) { d.Improvement = "\t" }, wantErr: ErrMissingField, field: "improvement"},
		{name: "bad date", mutate: func(d *Draft) { d.Date = "01/03/2024" }, wantErr: ErrInvalidDate},
		{name: "impossible date", mutate: func(d *Draft) { d.Date = "2024-02-30" }, wantErr: ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			if tt.field != "" {
				assert.Contains(t, err.Error(), tt.field)
			}
		})
	}
}

func TestDraft_ToReflection(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)

	r := validDraft().ToReflection("id-1", "user-1", now)
	assert.Equal(t, "id-1", r.ID)
	assert.Equal(t, "2024-03-01", r.Date)
	assert.Equal(t, "user-1", r.UserID)
	assert.Equal(t, Mood("happy"), r.Mood)
	assert.False(t, r.Synced)
	require.NotNil(t, r.Timestamp)
	assert.True(t, r.Timestamp.Equal(now))

	d := validDraft()
	d.Date = ""
	d.Mood = "GOOD"
	r = d.ToReflection("id-2", "", now)
	assert.Equal(t, now.Format(DateLayout), r.Date)
	assert.Equal(t, MoodGood, r.Mood)
}

func TestPatch_Apply(t *testing.T) {
	orig := validDraft().ToReflection("id-1", "user-1", time.Now())
	orig.Synced = true

	date := "2024-03-02"
	mood := "Great"
	got, err := Patch{Date: &date, Mood: &mood}.Apply(orig)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", got.Date)
	assert.Equal(t, MoodGreat, got.Mood)
	assert.Equal(t, orig.ID, got.ID)
	assert.Equal(t, orig.Gratitude, got.Gratitude)

	empty := ""
	_, err = Patch{Gratitude: &empty}.Apply(orig)
	require.ErrorIs(t, err, ErrMissingField)

	bad := "tomorrow"
	_, err = Patch{Date: &bad}.Apply(orig)
	require.ErrorIs(t, err, ErrInvalidDate)

	assert.True(t, Patch{}.IsEmpty())
	assert.False(t, Patch{Mood: &mood}.IsEmpty())
}
