package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dailyreflect/internal/client/client"
	"github.com/dmitrijs2005/dailyreflect/internal/common"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
)

// RESTAdapter syncs rows through the reflections server.
type RESTAdapter struct {
	api   client.Client
	token TokenSource
}

var _ Adapter = (*RESTAdapter)(nil)

func NewRESTAdapter(api client.Client, token TokenSource) *RESTAdapter {
	return &RESTAdapter{api: api, token: token}
}

func (a *RESTAdapter) Name() string { return "rest" }

func (a *RESTAdapter) Pull(ctx context.Context, user models.User) ([]models.Reflection, error) {
	tok, err := a.token(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := a.api.ListReflections(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("list reflections: %w", err)
	}
	for i := range rows {
		if rows[i].UserID == "" {
			rows[i].UserID = user.ID
		}
	}
	return rows, nil
}

func (a *RESTAdapter) Push(ctx context.Context, user models.User, entries []models.Reflection) error {
	if len(entries) == 0 {
		return nil
	}
	tok, err := a.token(ctx)
	if err != nil {
		return err
	}
	if err := a.api.UpsertReflections(ctx, tok, forUser(user, entries)); err != nil {
		return fmt.Errorf("upsert reflections: %w", err)
	}
	return nil
}

func (a *RESTAdapter) Delete(ctx context.Context, user models.User, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tok, err := a.token(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		err := a.api.DeleteReflection(ctx, tok, id)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("delete reflection %s: %w", id, err)
		}
	}
	return nil
}
