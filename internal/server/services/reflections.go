package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/dailyreflect/internal/common"
	"github.com/dmitrijs2005/dailyreflect/internal/dbx"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
	"github.com/dmitrijs2005/dailyreflect/internal/server/repositories/repomanager"
)

// ReflectionService serves one user's rows of the reflections table.
type ReflectionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewReflectionService(db *sql.DB, m repomanager.RepositoryManager) *ReflectionService {
	return &ReflectionService{db: db, repomanager: m}
}

func (s *ReflectionService) List(ctx context.Context, userID string) ([]models.Reflection, error) {
	return s.repomanager.Reflections(s.db).List(ctx, userID)
}

// Upsert validates every entry first and then writes all of them in one
// transaction, so a batch is stored completely or not at all.
func (s *ReflectionService) Upsert(ctx context.Context, userID string, entries []models.Reflection) error {
	for i := range entries {
		e, err := normalizeRow(entries[i])
		if err != nil {
			return err
		}
		entries[i] = e
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Reflections(tx)
		for _, e := range entries {
			if err := repo.Upsert(ctx, userID, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// Patch applies a partial update to an existing entry.
func (s *ReflectionService) Patch(ctx context.Context, userID, id string, p models.Patch) (models.Reflection, error) {
	var out models.Reflection
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Reflections(tx)
		cur, err := repo.Get(ctx, userID, id)
		if err != nil {
			return err
		}
		updated, err := p.Apply(cur)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}
		if err := repo.Upsert(ctx, userID, updated); err != nil {
			return err
		}
		out = updated
		return nil
	})
	return out, err
}

// Delete is idempotent.
func (s *ReflectionService) Delete(ctx context.Context, userID, id string) error {
	return s.repomanager.Reflections(s.db).Delete(ctx, userID, id)
}

func normalizeRow(e models.Reflection) (models.Reflection, error) {
	e.ID = strings.TrimSpace(e.ID)
	if e.ID == "" {
		return e, fmt.Errorf("%w: id is required", common.ErrorValidation)
	}
	if _, err := time.Parse(models.DateLayout, e.Date); err != nil {
		return e, fmt.Errorf("%w: entry %s: date must be YYYY-MM-DD", common.ErrorValidation, e.ID)
	}
	for name, v := range map[string]string{"gratitude": e.Gratitude, "achievement": e.Achievement, "improvement": e.Improvement} {
		if strings.TrimSpace(v) == "" {
			return e, fmt.Errorf("%w: entry %s: %s is required", common.ErrorValidation, e.ID, name)
		}
	}
	e.Mood = models.NormalizeMood(string(e.Mood))
	e.Synced = false
	return e, nil
}
