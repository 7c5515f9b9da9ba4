package models

import "time"

// FetchRecord is the outcome of one page load's upstream fetch.
type FetchRecord struct {
	ID        int           `json:"id"`
	FetchedAt time.Time     `json:"fetched_at"`
	OK        bool          `json:"ok"`
	ItemCount int           `json:"item_count"`
	GapCount  int           `json:"gap_count"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

type FetchStats struct {
	Total       int        `json:"total"`
	Failed      int        `json:"failed"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
}
