package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"progress/internal/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const minTerminalWidth = 30

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	gapStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var badgeStyles = map[models.State]lipgloss.Style{
	models.StateOpen:   lipgloss.NewStyle().Background(lipgloss.Color("15")).Foreground(lipgloss.Color("0")).Padding(0, 1),
	models.StateMerged: lipgloss.NewStyle().Background(lipgloss.Color("2")).Foreground(lipgloss.Color("15")).Padding(0, 1),
	models.StateClosed: lipgloss.NewStyle().Background(lipgloss.Color("1")).Foreground(lipgloss.Color("15")).Padding(0, 1),
}

// Terminal writes p as boxed rows no wider than width.
func Terminal(w io.Writer, p models.Page, now time.Time, width int) error {
	if width < minTerminalWidth {
		width = minTerminalWidth
	}
	if p.Error {
		_, err := fmt.Fprintln(w, errorStyle.Render(ErrorMessage))
		return err
	}

	var b strings.Builder
	for _, row := range Rows(p.Items, now) {
		b.WriteString(terminalRow(row, width))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func terminalRow(r Row, width int) string {
	if r.IsGap() {
		line := "┆ " + r.Distance + " ┆"
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, gapStyle.Render(line))
	}

	inner := width - boxStyle.GetHorizontalFrameSize()
	icon := "◎"
	if r.IsPull() {
		icon = "⎇"
	}

	lines := []string{
		titleStyle.Render(runewidth.Truncate(icon+" "+r.Title, inner, "…")),
		subtleStyle.Render("Updated " + r.Since + " ago"),
		"Opened by: " + r.Author,
	}
	if len(r.Reviewers) > 0 {
		lines = append(lines, runewidth.Truncate("Reviewed by: "+strings.Join(r.Reviewers, ", "), inner, "…"))
	}

	state := r.State
	badge, ok := badgeStyles[state]
	if !ok {
		badge = lipgloss.NewStyle().Padding(0, 1)
	}
	stateLine := badge.Render(string(state))
	if r.MergedBy != "" {
		stateLine += " (by " + r.MergedBy + ")"
	}
	lines = append(lines, lipgloss.PlaceHorizontal(inner, lipgloss.Right, stateLine))

	return boxStyle.Width(width - boxStyle.GetHorizontalBorderSize()).Render(strings.Join(lines, "\n"))
}
