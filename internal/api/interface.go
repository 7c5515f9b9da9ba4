package api

import (
	"context"

	"progress/internal/models"
)

type ServiceInterface interface {
	LoadPage(ctx context.Context) models.Page
	FetchStats(ctx context.Context) (models.FetchStats, error)
	RecentFetches(ctx context.Context, limit int) ([]models.FetchRecord, error)
}
