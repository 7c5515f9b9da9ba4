// Package upstream fetches issue and pull request data from the aggregation worker.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"progress/internal/models"

	"github.com/bytedance/sonic"
)

// ErrFetchFailure covers every way a fetch can fail: transport, status,
// malformed body, an upstream error field or missing repository data.
var ErrFetchFailure = errors.New("fetch failure")

const maxBodyBytes = 8 << 20

type Result struct {
	Issues []models.RawIssue
	Pulls  []models.RawPullRequest
}

type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(url string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{url: url, httpClient: httpClient, logger: logger}
}

func (c *Client) URL() string { return c.url }

// Fetch performs a single GET against the worker and returns the first label's issues and pull requests.
func (c *Client) Fetch(ctx context.Context) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("%w: build request: %v", ErrFetchFailure, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}
	defer res.Body.Close()

	c.logger.Debug("upstream responded", "url", c.url, "status", res.StatusCode, "elapsed", time.Since(start))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Result{}, fmt.Errorf("%w: unexpected status %d", ErrFetchFailure, res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read body: %v", ErrFetchFailure, err)
	}

	return Decode(body)
}

// Decode validates a worker response body and converts it into raw records.
func Decode(body []byte) (Result, error) {
	var top map[string]json.RawMessage
	if err := sonic.Unmarshal(body, &top); err != nil {
		return Result{}, fmt.Errorf("%w: decode payload: %v", ErrFetchFailure, err)
	}
	// Any error key fails the fetch, null included.
	if raw, ok := top["error"]; ok {
		return Result{}, fmt.Errorf("%w: upstream error: %s", ErrFetchFailure, errorText(raw))
	}

	var p payload
	if err := sonic.Unmarshal(body, &p); err != nil {
		return Result{}, fmt.Errorf("%w: decode payload: %v", ErrFetchFailure, err)
	}
	if p.Data.Repository == nil {
		return Result{}, fmt.Errorf("%w: repository missing", ErrFetchFailure)
	}
	if len(p.Data.Repository.Labels.Nodes) == 0 {
		return Result{}, fmt.Errorf("%w: no label nodes", ErrFetchFailure)
	}
	node := p.Data.Repository.Labels.Nodes[0]

	out := Result{
		Issues: make([]models.RawIssue, 0, len(node.Issues.Nodes)),
		Pulls:  make([]models.RawPullRequest, 0, len(node.PullRequests.Nodes)),
	}
	for i, is := range node.Issues.Nodes {
		updated, err := models.CoerceTime(is.UpdatedAt)
		if err != nil {
			return Result{}, fmt.Errorf("%w: issue %d: %v", ErrFetchFailure, i, err)
		}
		out.Issues = append(out.Issues, models.RawIssue{
			UpdatedAt: updated,
			Title:     is.Title,
			Author:    models.Author{Name: is.Author.Name},
			State:     models.State(is.State),
		})
	}
	for i, pr := range node.PullRequests.Nodes {
		updated, err := models.CoerceTime(pr.UpdatedAt)
		if err != nil {
			return Result{}, fmt.Errorf("%w: pull request %d: %v", ErrFetchFailure, i, err)
		}
		var mergedBy *models.Author
		if pr.MergedBy != nil {
			mergedBy = &models.Author{Name: pr.MergedBy.Name}
		}
		reviewers := make([]models.Author, 0, len(pr.Reviews.Users))
		for _, u := range pr.Reviews.Users {
			reviewers = append(reviewers, models.Author{Name: u.User.Name})
		}
		out.Pulls = append(out.Pulls, models.RawPullRequest{
			UpdatedAt: updated,
			Title:     pr.Title,
			Author:    models.Author{Name: pr.Author.Name},
			MergedBy:  mergedBy,
			State:     models.State(pr.State),
			Reviewers: reviewers,
		})
	}
	return out, nil
}

func errorText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}
