// Package timeline merges issues and pull requests into one newest-first
// sequence and marks quiet periods between them.
package timeline

import (
	"sort"
	"time"

	"progress/internal/models"
)

const (
	// GapThreshold is the silence between two neighbouring items above which a gap is inserted.
	GapThreshold = 24 * time.Hour
	// GapOffset places a gap just below the newer of its two neighbours.
	GapOffset = 10000 * time.Second
)

// Build returns issues and pulls ordered newest first with gap items between
// neighbours more than GapThreshold apart. Items sharing a timestamp keep
// input order, issues before pulls.
func Build(issues []models.RawIssue, pulls []models.RawPullRequest) []models.Item {
	items := make([]models.Item, 0, len(issues)+len(pulls))
	for _, is := range issues {
		items = append(items, models.Item{
			Kind:      models.KindIssue,
			UpdatedAt: is.UpdatedAt,
			Issue: &models.IssueDetail{
				Title:  is.Title,
				Author: is.Author,
				State:  is.State,
			},
		})
	}
	for _, pr := range pulls {
		reviewers := make([]models.Author, len(pr.Reviewers))
		copy(reviewers, pr.Reviewers)
		items = append(items, models.Item{
			Kind:      models.KindPull,
			UpdatedAt: pr.UpdatedAt,
			Pull: &models.PullDetail{
				Title:     pr.Title,
				Author:    pr.Author,
				MergedBy:  pr.MergedBy,
				State:     pr.State,
				Reviewers: reviewers,
			},
		})
	}

	sortNewestFirst(items)

	gaps := Gaps(items)
	items = append(items, gaps...)
	sortNewestFirst(items)

	for i := range items {
		items[i].Position = i
	}
	return items
}

// Gaps scans items, which must already be newest first, and returns a gap
// item for every neighbouring pair further apart than GapThreshold.
func Gaps(items []models.Item) []models.Item {
	var gaps []models.Item
	for i := 0; i+1 < len(items); i++ {
		later := items[i].UpdatedAt
		earlier := items[i+1].UpdatedAt
		diff := later.Sub(earlier)
		if diff <= GapThreshold {
			continue
		}
		gaps = append(gaps, models.Item{
			Kind:      models.KindGap,
			UpdatedAt: later.Add(-GapOffset),
			Gap: &models.GapDetail{
				Earlier:  earlier,
				Later:    later,
				Duration: diff,
			},
		})
	}
	return gaps
}

func sortNewestFirst(items []models.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
}
