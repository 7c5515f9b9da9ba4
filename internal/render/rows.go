// Package render turns timeline items into display rows and writes them as
// HTML or styled terminal output.
package render

import (
	"time"

	"progress/internal/models"
)

// Badge is the colour pair used for a state label.
type Badge struct {
	Background string
	Foreground string
}

var badges = map[models.State]Badge{
	models.StateOpen:   {Background: "white", Foreground: "black"},
	models.StateMerged: {Background: "green", Foreground: "white"},
	models.StateClosed: {Background: "red", Foreground: "white"},
}

func BadgeFor(s models.State) Badge {
	return badges[s]
}

// Row is the display form of one item.
type Row struct {
	Position  int
	Kind      models.Kind
	Title     string
	UpdatedAt time.Time
	Since     string
	Author    string
	State     models.State
	Badge     Badge
	MergedBy  string
	Reviewers []string
	Distance  string
}

func (r Row) IsIssue() bool { return r.Kind == models.KindIssue }
func (r Row) IsPull() bool  { return r.Kind == models.KindPull }
func (r Row) IsGap() bool   { return r.Kind == models.KindGap }

// Rows maps items to rows relative to now. Items of unknown kind, or whose
// detail is missing, produce no row.
func Rows(items []models.Item, now time.Time) []Row {
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		if row, ok := toRow(it, now); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

func toRow(it models.Item, now time.Time) (Row, bool) {
	row := Row{Position: it.Position, Kind: it.Kind, UpdatedAt: it.UpdatedAt}

	switch it.Kind {
	case models.KindIssue:
		if it.Issue == nil {
			return Row{}, false
		}
		row.Title = it.Issue.Title
		row.Author = it.Issue.Author.Name
		row.State = it.Issue.State
		row.Since = Distance(now, it.UpdatedAt)

	case models.KindPull:
		if it.Pull == nil {
			return Row{}, false
		}
		row.Title = it.Pull.Title
		row.Author = it.Pull.Author.Name
		row.State = it.Pull.State
		row.Since = Distance(now, it.UpdatedAt)
		if it.Pull.State == models.StateMerged && it.Pull.MergedBy != nil {
			row.MergedBy = it.Pull.MergedBy.Name
		}
		for _, r := range it.Pull.Reviewers {
			row.Reviewers = append(row.Reviewers, r.Name)
		}

	case models.KindGap:
		if it.Gap == nil {
			return Row{}, false
		}
		row.Distance = Distance(it.Gap.Earlier, it.Gap.Later)
		return row, true

	default:
		return Row{}, false
	}

	row.Badge = BadgeFor(row.State)
	return row, true
}
