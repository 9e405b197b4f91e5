// Package models defines the journal data shared by the client and the
// server: reflection entries, the form and edit inputs that produce them, the
// versioned on-disk collection format, and the identity/sync status types.
package models

import (
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar-day format of Reflection.Date.
const DateLayout = "2006-01-02"

// Mood is free text; the known values below are normalized to lower case.
type Mood string

const (
	MoodGreat Mood = "great"
	MoodGood  Mood = "good"
	MoodOkay  Mood = "okay"
	MoodBad   Mood = "bad"
	MoodAwful Mood = "awful"
)

var knownMoods = map[Mood]struct{}{
	MoodGreat: {}, MoodGood: {}, MoodOkay: {}, MoodBad: {}, MoodAwful: {},
}

// NormalizeMood trims s and lower-cases it when it names a known mood.
func NormalizeMood(s string) Mood {
	s = strings.TrimSpace(s)
	if m := Mood(strings.ToLower(s)); isKnownMood(m) {
		return m
	}
	return Mood(s)
}

func isKnownMood(m Mood) bool {
	_, ok := knownMoods[m]
	return ok
}

// Reflection is one journal entry for a calendar day.
type Reflection struct {
	// ID is assigned once on creation and never changes.
	ID string `json:"id"`

	// Date is the day the entry belongs to, formatted with DateLayout.
	Date string `json:"date"`

	// Timestamp is the creation instant. Entries written by old clients
	// may not have one.
	Timestamp *time.Time `json:"timestamp,omitempty"`

	Gratitude   string `json:"gratitude"`
	Achievement string `json:"achievement"`
	Improvement string `json:"improvement"`
	Mood        Mood   `json:"mood,omitempty"`

	// Synced is false while the local copy is newer than (or missing from)
	// the remote store.
	Synced bool `json:"synced,omitempty"`

	UserID string `json:"user_id,omitempty"`
}

// Day parses Date. The calendar day of an entry always comes from Date,
// never from Timestamp.
func (r Reflection) Day() (time.Time, error) {
	return time.ParseInLocation(DateLayout, r.Date, time.Local)
}

// Newer reports whether a is strictly newer than b: later Date first, then
// later Timestamp. A missing timestamp is older than any present one.
func Newer(a, b Reflection) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	switch {
	case a.Timestamp == nil:
		return false
	case b.Timestamp == nil:
		return true
	default:
		return a.Timestamp.After(*b.Timestamp)
	}
}

// SortReflections orders entries by date and timestamp, newest first, with
// the id as a final tie-breaker so the order is deterministic.
func SortReflections(entries []Reflection) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		at, bt := a.Timestamp, b.Timestamp
		switch {
		case at != nil && bt != nil && !at.Equal(*bt):
			return at.After(*bt)
		case at != nil && bt == nil:
			return true
		case at == nil && bt != nil:
			return false
		}
		return a.ID < b.ID
	})
}
