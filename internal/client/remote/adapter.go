// Package remote holds the sync targets for the journal: a row store served
// by the reflections server, a single JSON object in an S3 bucket, and an
// in-memory fake. All of them present the same Adapter contract.
package remote

import (
	"context"

	"github.com/dmitrijs2005/dailyreflect/internal/models"
)

// Adapter is a remote copy of one user's entry collection.
type Adapter interface {
	Name() string
	// Pull returns every entry the remote holds for user.
	Pull(ctx context.Context, user models.User) ([]models.Reflection, error)
	// Push creates or replaces entries by id.
	Push(ctx context.Context, user models.User, entries []models.Reflection) error
	// Delete removes entries by id. Unknown ids are not an error.
	Delete(ctx context.Context, user models.User, ids []string) error
}

// TokenSource returns a valid bearer token for the signed-in user.
type TokenSource func(ctx context.Context) (string, error)

// forUser stamps the owner on outgoing rows and drops the local-only synced
// flag.
func forUser(user models.User, entries []models.Reflection) []models.Reflection {
	out := make([]models.Reflection, len(entries))
	for i, e := range entries {
		e.UserID = user.ID
		e.Synced = false
		out[i] = e
	}
	return out
}
