package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"progress/internal/models"
	"progress/internal/render"
	"progress/internal/service"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) LoadPage(ctx context.Context) models.Page {
	args := m.Called(ctx)
	return args.Get(0).(models.Page)
}

func (m *MockService) FetchStats(ctx context.Context) (models.FetchStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.FetchStats), args.Error(1)
}

func (m *MockService) RecentFetches(ctx context.Context, limit int) ([]models.FetchRecord, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.FetchRecord), args.Error(1)
}

func newTestHandler(svc ServiceInterface) *Handler {
	h := NewHandler(svc, "Test Progress", slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.now = func() time.Time { return time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC) }
	return h
}

func samplePage() models.Page {
	updated := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)
	return models.Page{Items: []models.Item{
		{
			Position:  0,
			Kind:      models.KindPull,
			UpdatedAt: updated,
			Pull: &models.PullDetail{
				Title:  "Add timeline",
				Author: models.Author{Name: "bob"},
				State:  models.StateOpen,
			},
		},
		{
			Position:  1,
			Kind:      models.KindGap,
			UpdatedAt: updated.Add(-10000 * time.Second),
			Gap: &models.GapDetail{
				Earlier:  updated.Add(-72 * time.Hour),
				Later:    updated,
				Duration: 72 * time.Hour,
			},
		},
	}}
}

func TestPage(t *testing.T) {
	svc := new(MockService)
	svc.On("LoadPage", mock.Anything).Return(samplePage())
	h := newTestHandler(svc)

	for _, path := range []string{"/", "/progress"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rr := httptest.NewRecorder()
			h.Router().ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
			body := rr.Body.String()
			assert.Contains(t, body, "<title>Test Progress</title>")
			assert.Contains(t, body, "Add timeline")
			assert.Contains(t, body, "3 days")
			assert.NotContains(t, body, "Reviewed by")
		})
	}
}

func TestPageFetchFailure(t *testing.T) {
	svc := new(MockService)
	svc.On("LoadPage", mock.Anything).Return(models.Page{Items: []models.Item{}, Error: true})
	h := newTestHandler(svc)

	rr := httptest.NewRecorder()
	h.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), render.ErrorMessage)
}

func TestProgressJSON(t *testing.T) {
	svc := new(MockService)
	svc.On("LoadPage", mock.Anything).Return(samplePage())
	h := newTestHandler(svc)

	rr := httptest.NewRecorder()
	h.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/progress", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got models.Page
	require.NoError(t, sonic.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.Items, 2)
	assert.False(t, got.Error)
	assert.Equal(t, models.KindGap, got.Items[1].Kind)
	assert.True(t, got.Items[1].Gap.Later.Equal(samplePage().Items[1].Gap.Later))
	assert.True(t, got.Items[0].UpdatedAt.Equal(samplePage().Items[0].UpdatedAt))
}

func TestProgressJSONFetchFailure(t *testing.T) {
	svc := new(MockService)
	svc.On("LoadPage", mock.Anything).Return(models.Page{Items: []models.Item{}, Error: true})
	h := newTestHandler(svc)

	rr := httptest.NewRecorder()
	h.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/progress", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"items":[],"error":true}`, rr.Body.String())
}

func TestStats(t *testing.T) {
	last := time.Date(2023, 1, 9, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		stats      models.FetchStats
		err        error
		expectCode int
	}{
		{name: "success", stats: models.FetchStats{Total: 5, Failed: 1, LastSuccess: &last}, expectCode: http.StatusOK},
		{name: "repository error", err: errors.New("db down"), expectCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("FetchStats", mock.Anything).Return(tt.stats, tt.err)
			h := newTestHandler(svc)

			rr := httptest.NewRecorder()
			h.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))
			assert.Equal(t, tt.expectCode, rr.Code)

			if tt.err == nil {
				var got models.FetchStats
				require.NoError(t, sonic.Unmarshal(rr.Body.Bytes(), &got))
				assert.Equal(t, 5, got.Total)
				assert.Equal(t, 1, got.Failed)
			}
		})
	}
}

func TestRecentFetches(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		limit      int
		err        error
		expectCall bool
		expectCode int
	}{
		{name: "default limit", query: "", limit: 20, expectCall: true, expectCode: http.StatusOK},
		{name: "explicit limit", query: "?limit=5", limit: 5, expectCall: true, expectCode: http.StatusOK},
		{name: "not a number", query: "?limit=abc", expectCode: http.StatusBadRequest},
		{name: "out of range", query: "?limit=0", limit: 0, err: fmt.Errorf("%w: limit", service.ErrBadRequest), expectCall: true, expectCode: http.StatusBadRequest},
		{name: "repository error", query: "?limit=3", limit: 3, err: errors.New("db down"), expectCall: true, expectCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.expectCall {
				svc.On("RecentFetches", mock.Anything, tt.limit).Return([]models.FetchRecord{{ID: 1, OK: true}}, tt.err)
			}
			h := newTestHandler(svc)

			rr := httptest.NewRecorder()
			h.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats/fetches"+tt.query, nil))
			assert.Equal(t, tt.expectCode, rr.Code)
			if !tt.expectCall {
				svc.AssertNotCalled(t, "RecentFetches", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(new(MockService))
	rr := httptest.NewRecorder()
	h.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
