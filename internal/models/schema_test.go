package models

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCollection_V1Array(t *testing.T) {
	raw := []byte(`[
		{"id":"1","date":"2024-01-01T09:15:00.000Z","gratitude":"tea","accomplishment":"shipped","improvement":"focus"},
		{"id":"2","date":"2024-01-02","gratitude":"g","achievement":"a","accomplishment":"old","improvement":"i","mood":" Good "}
	]`)

	got, err := DecodeCollection(raw)
	require.NoError(t, err)

	want := []Reflection{
		{
			ID: "1", Date: "2024-01-01", Timestamp: ts("2024-01-01T09:15:00Z"),
			Gratitude: "tea", Achievement: "shipped", Improvement: "focus",
		},
		{
			ID: "2", Date: "2024-01-02",
			Gratitude: "g", Achievement: "a", Improvement: "i", Mood: MoodGood,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("migrated collection mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeCollection_CurrentVersionRoundTrip(t *testing.T) {
	in := []Reflection{
		{ID: "x", Date: "2024-03-01", Timestamp: ts("2024-03-01T07:00:00Z"), Gratitude: "g",
			Achievement: "a", Improvement: "i", Mood: "happy", Synced: true, UserID: "u"},
	}
	raw, err := EncodeCollection(in)
	require.NoError(t, err)

	var probe map[string]any
	require.NoError(t, json.Unmarshal(raw, &probe))
	assert.EqualValues(t, SchemaVersion, probe["version"])

	out, err := DecodeCollection(raw)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeCollection_Errors(t *testing.T) {
	_, err := DecodeCollection([]byte(`{"version":99,"entries":[]}`))
	require.ErrorIs(t, err, ErrUnsupportedSchema)

	_, err = DecodeCollection([]byte(`{"version":0,"entries":[]}`))
	require.ErrorIs(t, err, ErrUnsupportedSchema)

	_, err = DecodeCollection([]byte(`{not json`))
	require.Error(t, err)

	_, err = DecodeCollection([]byte(`[{"id":1}]`))
	require.Error(t, err)
}

func TestDecodeCollection_MissingVersionIsV1(t *testing.T) {
	got, err := DecodeCollection([]byte(`{"entries":[{"id":"a","date":"2024-03-01T08:00:00Z","gratitude":"g","accomplishment":"ran","improvement":"i","mood":"Happy"}]}`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-03-01", got[0].Date)
	assert.Equal(t, "ran", got[0].Achievement)
	require.NotNil(t, got[0].Timestamp)
}

func TestDecodeCollection_Empty(t *testing.T) {
	got, err := DecodeCollection(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	raw, err := EncodeCollection(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2,"entries":[]}`, string(raw))
}
