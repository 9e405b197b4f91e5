// Package reflections stores journal entries per user.
package reflections

import (
	"context"

	"github.com/dmitrijs2005/dailyreflect/internal/models"
)

type Repository interface {
	// List returns the user's entries, newest date first.
	List(ctx context.Context, userID string) ([]models.Reflection, error)
	// Get returns common.ErrorNotFound when the user has no such entry.
	Get(ctx context.Context, userID, id string) (models.Reflection, error)
	// Upsert inserts or replaces the entry. An id owned by another user
	// yields common.ErrorAlreadyExists.
	Upsert(ctx context.Context, userID string, r models.Reflection) error
	// Delete removes the entry. A missing entry is not an error.
	Delete(ctx context.Context, userID, id string) error
}
