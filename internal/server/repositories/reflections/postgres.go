package reflections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dailyreflect/internal/common"
	"github.com/dmitrijs2005/dailyreflect/internal/dbx"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, date, timestamp, gratitude, achievement, improvement, mood`

type scanner interface {
	Scan(dest ...any) error
}

func scanReflection(s scanner, userID string) (models.Reflection, error) {
	var (
		r    models.Reflection
		date time.Time
		ts   sql.NullTime
		mood string
	)
	if err := s.Scan(&r.ID, &date, &ts, &r.Gratitude, &r.Achievement, &r.Improvement, &mood); err != nil {
		return models.Reflection{}, err
	}
	r.Date = date.Format(models.DateLayout)
	if ts.Valid {
		t := ts.Time.UTC()
		r.Timestamp = &t
	}
	r.Mood = models.Mood(mood)
	r.UserID = userID
	return r, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.Reflection, error) {
	query := `SELECT ` + selectColumns + `
		FROM reflections
		WHERE user_id = $1
		ORDER BY date DESC, timestamp DESC NULLS LAST, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Reflection{}
	for rows.Next() {
		e, err := scanReflection(rows, userID)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (models.Reflection, error) {
	query := `SELECT ` + selectColumns + `
		FROM reflections
		WHERE user_id = $1 AND id = $2`

	e, err := scanReflection(r.db.QueryRowContext(ctx, query, userID, id), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Reflection{}, common.ErrorNotFound
		}
		return models.Reflection{}, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// Upsert relies on the conflict clause's WHERE: a row owned by someone else
// is left untouched and RETURNING yields nothing.
func (r *PostgresRepository) Upsert(ctx context.Context, userID string, e models.Reflection) error {
	query := `
		INSERT INTO reflections (id, user_id, date, timestamp, gratitude, achievement, improvement, mood)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			timestamp = EXCLUDED.timestamp,
			gratitude = EXCLUDED.gratitude,
			achievement = EXCLUDED.achievement,
			improvement = EXCLUDED.improvement,
			mood = EXCLUDED.mood,
			updated_at = now()
		WHERE reflections.user_id = EXCLUDED.user_id
		RETURNING id`

	var ts sql.NullTime
	if e.Timestamp != nil {
		ts = sql.NullTime{Time: *e.Timestamp, Valid: true}
	}

	var id string
	err := r.db.QueryRowContext(ctx, query,
		e.ID, userID, e.Date, ts, e.Gratitude, e.Achievement, e.Improvement, string(e.Mood)).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("entry %s: %w", e.ID, common.ErrorAlreadyExists)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `
		DELETE FROM reflections
		WHERE user_id = $1 AND id = $2`

	if _, err := r.db.ExecContext(ctx, query, userID, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
