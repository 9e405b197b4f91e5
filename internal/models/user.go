package models

import "time"

// User is the remote identity entries are synced under.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is a signed-in identity with its bearer tokens. The client keeps
// it in local storage so a restart restores the login.
type Session struct {
	User         User      `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token is expired at now, with a small
// margin so a request does not race the expiry.
func (s Session) Expired(now time.Time) bool {
	return !now.Add(10 * time.Second).Before(s.ExpiresAt)
}
