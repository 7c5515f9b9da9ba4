package postgres

import (
	"context"
	"fmt"
	"time"

	"progress/internal/models"
	"progress/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) repository.Repository {
	return &repo{pool: pool}
}

func (r *repo) RecordFetch(ctx context.Context, rec models.FetchRecord) (models.FetchRecord, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO fetch_log(fetched_at, ok, item_count, gap_count, duration_ms, error)
		 VALUES($1,$2,$3,$4,$5,$6)
		 RETURNING id, fetched_at, ok, item_count, gap_count, duration_ms, error`,
		rec.FetchedAt, rec.OK, rec.ItemCount, rec.GapCount, rec.Duration.Milliseconds(), nullableText(rec.Error))
	res, err := scanFetch(row)
	if err != nil {
		return res, fmt.Errorf("record fetch: %w", err)
	}
	return res, nil
}

func (r *repo) ListRecentFetches(ctx context.Context, limit int) ([]models.FetchRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, fetched_at, ok, item_count, gap_count, duration_ms, error
		 FROM fetch_log ORDER BY fetched_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent fetches: %w", err)
	}
	defer rows.Close()

	res := make([]models.FetchRecord, 0)
	for rows.Next() {
		rec, err := scanFetch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fetch: %w", err)
		}
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fetches: %w", err)
	}
	return res, nil
}

func (r *repo) FetchStats(ctx context.Context) (models.FetchStats, error) {
	var s models.FetchStats
	row := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE NOT ok),
		        MAX(fetched_at) FILTER (WHERE ok)
		 FROM fetch_log`)
	if err := row.Scan(&s.Total, &s.Failed, &s.LastSuccess); err != nil {
		return s, fmt.Errorf("fetch stats: %w", err)
	}
	return s, nil
}

// scanFetch maps a fetch_log row in column order
// id, fetched_at, ok, item_count, gap_count, duration_ms, error.
func scanFetch(row pgx.Row) (models.FetchRecord, error) {
	var rec models.FetchRecord
	var durationMS int64
	var errText *string
	if err := row.Scan(&rec.ID, &rec.FetchedAt, &rec.OK, &rec.ItemCount, &rec.GapCount, &durationMS, &errText); err != nil {
		return models.FetchRecord{}, err
	}
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	if errText != nil {
		rec.Error = *errText
	}
	return rec, nil
}

// nullableText stores an empty error message as NULL.
func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
