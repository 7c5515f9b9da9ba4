package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"progress/internal/models"
	"progress/internal/repository"
	"progress/internal/timeline"
	"progress/internal/upstream"
)

var ErrBadRequest = errors.New("bad request")

const maxRecentFetches = 100

type Fetcher interface {
	Fetch(ctx context.Context) (upstream.Result, error)
}

type Service struct {
	fetcher Fetcher
	repo    repository.Repository
	now     func() time.Time
	logger  *slog.Logger
}

func NewService(f Fetcher, r repository.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		r = repository.Nop{}
	}
	return &Service{
		fetcher: f,
		repo:    r,
		now:     time.Now,
		logger:  logger,
	}
}

// LoadPage fetches once and builds the timeline. Any fetch failure yields an
// empty page with Error set; a partial timeline is never returned.
func (s *Service) LoadPage(ctx context.Context) models.Page {
	start := s.now()
	res, err := s.fetcher.Fetch(ctx)
	elapsed := s.now().Sub(start)

	if err != nil {
		s.logger.Error("failed to fetch progress data", "error", err, "elapsed", elapsed)
		s.record(ctx, models.FetchRecord{
			FetchedAt: start,
			OK:        false,
			Duration:  elapsed,
			Error:     err.Error(),
		})
		return models.Page{Items: []models.Item{}, Error: true}
	}

	items := timeline.Build(res.Issues, res.Pulls)
	gaps := 0
	for _, it := range items {
		if it.Kind == models.KindGap {
			gaps++
		}
	}

	s.logger.Info("progress timeline built",
		"issues", len(res.Issues),
		"pulls", len(res.Pulls),
		"gaps", gaps,
		"elapsed", elapsed)

	s.record(ctx, models.FetchRecord{
		FetchedAt: start,
		OK:        true,
		ItemCount: len(items),
		GapCount:  gaps,
		Duration:  elapsed,
	})
	return models.Page{Items: items, Error: false}
}

func (s *Service) FetchStats(ctx context.Context) (models.FetchStats, error) {
	st, err := s.repo.FetchStats(ctx)
	if err != nil {
		s.logger.Error("failed to get fetch stats", "error", err)
		return models.FetchStats{}, err
	}
	return st, nil
}

func (s *Service) RecentFetches(ctx context.Context, limit int) ([]models.FetchRecord, error) {
	if limit <= 0 || limit > maxRecentFetches {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrBadRequest, maxRecentFetches)
	}
	recs, err := s.repo.ListRecentFetches(ctx, limit)
	if err != nil {
		s.logger.Error("failed to list recent fetches", "error", err, "limit", limit)
		return nil, err
	}
	s.logger.Debug("retrieved recent fetches", "count", len(recs))
	return recs, nil
}

func (s *Service) record(ctx context.Context, rec models.FetchRecord) {
	if _, err := s.repo.RecordFetch(ctx, rec); err != nil {
		s.logger.Warn("failed to record fetch", "error", err, "ok", rec.OK)
	}
}
