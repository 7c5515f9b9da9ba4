package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"progress/internal/api"
	"progress/internal/migration"
	"progress/internal/models"
	"progress/internal/repository/postgres"
	"progress/internal/service"
	"progress/internal/upstream"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workerBody = `{"data": {"repository": {"labels": {"nodes": [{
  "issues": {"nodes": [
    {"updatedAt": "2023-01-03T00:00:00Z", "title": "Crash on load", "author": {"name": "alice"}, "state": "OPEN"}
  ]},
  "pullRequests": {"nodes": [
    {"updatedAt": "2023-01-01T00:00:00Z", "title": "Fix crash", "author": {"name": "bob"},
     "mergedBy": {"name": "carol"}, "state": "MERGED", "reviews": {"users": [{"user": {"name": "dave"}}]}}
  ]}
}]}}}}`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newWorker(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newApp(t *testing.T, workerURL string) *httptest.Server {
	t.Helper()
	client := upstream.NewClient(workerURL, nil, quietLogger())
	svc := service.NewService(client, nil, quietLogger())
	h := api.NewHandler(svc, "open.mp Progress", quietLogger())
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestEndToEndPage(t *testing.T) {
	worker := newWorker(t, workerBody)
	app := newApp(t, worker.URL)

	res, err := http.Get(app.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "Crash on load")
	assert.Contains(t, string(body), `class="time">2 days<`)
	assert.Contains(t, string(body), "(by carol)")
}

func TestEndToEndUpstreamError(t *testing.T) {
	worker := newWorker(t, `{"error": "bad credentials"}`)
	app := newApp(t, worker.URL)

	res, err := http.Get(app.URL + "/api/progress")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	assert.JSONEq(t, `{"items": [], "error": true}`, string(body))
}

func TestFetchServerPage(t *testing.T) {
	worker := newWorker(t, workerBody)
	app := newApp(t, worker.URL)

	page, err := fetchServerPage(context.Background(), app.URL, app.Client())
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, models.KindIssue, page.Items[0].Kind)
	assert.Equal(t, models.KindGap, page.Items[1].Kind)
	assert.True(t, page.Items[1].Gap.Earlier.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2, page.Items[2].Position)
}

func TestShowCommand(t *testing.T) {
	worker := newWorker(t, workerBody)
	app := newApp(t, worker.URL)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"show", "--server", app.URL, "--width", "70"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		showServer, showWidth = "", 0
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Crash on load")
	assert.Contains(t, out.String(), "Reviewed by: dave")
	assert.Contains(t, out.String(), "2 days")
}

func setupTestDB(t *testing.T) *pgxpool.Pool {
	dbConn := os.Getenv("DB_CONN")
	if dbConn == "" {
		t.Skip("DB_CONN not set")
	}

	pool, err := pgxpool.New(context.Background(), dbConn+"_test")
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := migration.Run(context.Background(), pool); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	if _, err := pool.Exec(context.Background(), "DELETE FROM fetch_log"); err != nil {
		t.Fatalf("Failed to clean fetch_log: %v", err)
	}

	return pool
}

func TestIntegrationFetchLog(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	good := newWorker(t, workerBody)
	bad := newWorker(t, `{"data": {}}`)

	repo := postgres.NewRepo(pool)
	for _, url := range []string{good.URL, bad.URL, good.URL} {
		svc := service.NewService(upstream.NewClient(url, nil, nil), repo, nil)
		svc.LoadPage(context.Background())
	}

	handler := api.NewHandler(service.NewService(nil, repo, nil), "t", nil)

	rr := httptest.NewRecorder()
	handler.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var stats models.FetchStats
	require.NoError(t, sonic.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Failed)
	assert.NotNil(t, stats.LastSuccess)

	rr = httptest.NewRecorder()
	handler.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats/fetches?limit=2", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var recs []models.FetchRecord
	require.NoError(t, sonic.Unmarshal(rr.Body.Bytes(), &recs))
	require.Len(t, recs, 2)
	assert.True(t, recs[0].OK)
	assert.Equal(t, 3, recs[0].ItemCount)
	assert.Equal(t, 1, recs[0].GapCount)
}
