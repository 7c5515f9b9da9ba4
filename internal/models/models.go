package models

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

type Author struct {
	Name string `json:"name"`
}

type State string

const (
	StateOpen   State = "OPEN"
	StateClosed State = "CLOSED"
	StateMerged State = "MERGED"
)

type RawIssue struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Title     string    `json:"title"`
	Author    Author    `json:"author"`
	State     State     `json:"state"`
}

type RawPullRequest struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Title     string    `json:"title"`
	Author    Author    `json:"author"`
	MergedBy  *Author   `json:"mergedBy,omitempty"`
	State     State     `json:"state"`
	Reviewers []Author  `json:"reviewers"`
}

type Kind string

const (
	KindIssue Kind = "issue"
	KindPull  Kind = "pull"
	KindGap   Kind = "gap"
)

type IssueDetail struct {
	Title  string `json:"title"`
	Author Author `json:"author"`
	State  State  `json:"state"`
}

type PullDetail struct {
	Title     string   `json:"title"`
	Author    Author   `json:"author"`
	MergedBy  *Author  `json:"mergedBy,omitempty"`
	State     State    `json:"state"`
	Reviewers []Author `json:"reviewers"`
}

// GapDetail marks a silence of more than a day between two real items.
// Duration is carried on the wire as whole milliseconds in "durationMs".
type GapDetail struct {
	Earlier  time.Time
	Later    time.Time
	Duration time.Duration
}

// Item is one timeline row. Kind selects which of Issue, Pull or Gap is set.
type Item struct {
	Position  int          `json:"position"`
	Kind      Kind         `json:"kind"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Issue     *IssueDetail `json:"issue,omitempty"`
	Pull      *PullDetail  `json:"pull,omitempty"`
	Gap       *GapDetail   `json:"gap,omitempty"`
}

type Page struct {
	Items []Item `json:"items"`
	Error bool   `json:"error"`
}

// UnmarshalJSON re-hydrates updatedAt whether it arrives as text or epoch millis.
func (it *Item) UnmarshalJSON(b []byte) error {
	type alias Item
	aux := struct {
		*alias
		UpdatedAt any `json:"updatedAt"`
	}{alias: (*alias)(it)}
	if err := sonic.Unmarshal(b, &aux); err != nil {
		return err
	}
	t, err := CoerceTime(aux.UpdatedAt)
	if err != nil {
		return fmt.Errorf("item %d updatedAt: %w", it.Position, err)
	}
	it.UpdatedAt = t
	return nil
}

type gapWire struct {
	Earlier    time.Time `json:"earlier"`
	Later      time.Time `json:"later"`
	DurationMS int64     `json:"durationMs"`
}

func (g GapDetail) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(gapWire{
		Earlier:    g.Earlier,
		Later:      g.Later,
		DurationMS: g.Duration.Milliseconds(),
	})
}

func (g *GapDetail) UnmarshalJSON(b []byte) error {
	var aux struct {
		Earlier    any   `json:"earlier"`
		Later      any   `json:"later"`
		DurationMS int64 `json:"durationMs"`
	}
	if err := sonic.Unmarshal(b, &aux); err != nil {
		return err
	}
	earlier, err := CoerceTime(aux.Earlier)
	if err != nil {
		return fmt.Errorf("gap earlier: %w", err)
	}
	later, err := CoerceTime(aux.Later)
	if err != nil {
		return fmt.Errorf("gap later: %w", err)
	}
	g.Earlier, g.Later, g.Duration = earlier, later, time.Duration(aux.DurationMS)*time.Millisecond
	return nil
}
