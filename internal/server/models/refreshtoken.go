package models

import "time"

// RefreshToken is a stored, single-use refresh token. Rotation deletes it
// and issues a new one.
type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}

// Expired reports whether the token can no longer be exchanged at now.
func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.Expires)
}
