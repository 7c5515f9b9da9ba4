package repository

import (
	"context"

	"progress/internal/models"
)

type Repository interface {
	RecordFetch(ctx context.Context, rec models.FetchRecord) (models.FetchRecord, error)
	ListRecentFetches(ctx context.Context, limit int) ([]models.FetchRecord, error)
	FetchStats(ctx context.Context) (models.FetchStats, error)
}

// Nop discards records. It is used when no database is configured.
type Nop struct{}

func (Nop) RecordFetch(_ context.Context, rec models.FetchRecord) (models.FetchRecord, error) {
	return rec, nil
}

func (Nop) ListRecentFetches(context.Context, int) ([]models.FetchRecord, error) {
	return []models.FetchRecord{}, nil
}

func (Nop) FetchStats(context.Context) (models.FetchStats, error) {
	return models.FetchStats{}, nil
}
