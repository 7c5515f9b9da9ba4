package render

import (
	"fmt"
	"math"
	"time"
)

const (
	minutesInDay           = 1440
	minutesInAlmostTwoDays = 2520
	minutesInMonth         = 43200
	minutesInTwoMonths     = 86400
)

// Distance describes the time between a and b in words, e.g. "about 3 hours"
// or "over 1 year". Argument order does not matter.
func Distance(a, b time.Time) string {
	if b.Before(a) {
		a, b = b, a
	}
	seconds := math.Trunc(b.Sub(a).Seconds())
	minutes := int(math.Round(seconds / 60))

	switch {
	case minutes == 0:
		return "less than a minute"
	case minutes < 2:
		return "1 minute"
	case minutes < 45:
		return fmt.Sprintf("%d minutes", minutes)
	case minutes < 90:
		return "about 1 hour"
	case minutes < minutesInDay:
		return fmt.Sprintf("about %d hours", roundDiv(minutes, 60))
	case minutes < minutesInAlmostTwoDays:
		return "1 day"
	case minutes < minutesInMonth:
		return fmt.Sprintf("%d days", roundDiv(minutes, minutesInDay))
	case minutes < minutesInTwoMonths:
		return "about " + plural(roundDiv(minutes, minutesInMonth), "month")
	}

	months := monthsBetween(a, b)
	if months < 12 {
		return plural(roundDiv(minutes, minutesInMonth), "month")
	}

	years, rest := months/12, months%12
	switch {
	case rest < 3:
		return "about " + plural(years, "year")
	case rest < 9:
		return "over " + plural(years, "year")
	default:
		return "almost " + plural(years+1, "year")
	}
}

func roundDiv(n, d int) int {
	return int(math.Round(float64(n) / float64(d)))
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// monthsBetween counts whole calendar months from a to b, a not after b.
func monthsBetween(a, b time.Time) int {
	b = b.In(a.Location())
	m := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if m > 0 && a.AddDate(0, m, 0).After(b) {
		m--
	}
	return m
}
