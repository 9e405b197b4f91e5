// Package models holds the server's persistence records. Journal entries
// themselves use the shared internal/models.Reflection.
package models

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
