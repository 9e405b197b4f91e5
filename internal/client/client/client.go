package client

import (
	"context"

	"github.com/dmitrijs2005/dailyreflect/internal/models"
)

// Client is the reflections server API as seen by the CLI.
type Client interface {
	Ping(ctx context.Context) error

	SignUp(ctx context.Context, email string, password []byte) (models.User, error)
	SignIn(ctx context.Context, email string, password []byte) (models.Session, error)
	Refresh(ctx context.Context, refreshToken string) (models.Session, error)

	ListReflections(ctx context.Context, accessToken string) ([]models.Reflection, error)
	UpsertReflections(ctx context.Context, accessToken string, entries []models.Reflection) error
	DeleteReflection(ctx context.Context, accessToken string, id string) error
}
