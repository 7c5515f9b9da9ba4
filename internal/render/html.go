package render

import (
	"embed"
	"html/template"
	"io"
	"time"

	"progress/internal/models"
)

// ErrorMessage is shown instead of the timeline when the fetch failed.
const ErrorMessage = "An internal server error occurred while trying to fetch information from GitHub. " +
	"Please let us know about this issue so we can fix it."

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

type pageView struct {
	Title        string
	Description  string
	Error        bool
	ErrorMessage string
	Rows         []Row
}

// HTML writes the full progress page for p. On error no rows are rendered.
func HTML(w io.Writer, title string, p models.Page, now time.Time) error {
	view := pageView{
		Title:        title,
		Description:  "Shows the progress of issues and pull requests from the GitHub repository.",
		Error:        p.Error,
		ErrorMessage: ErrorMessage,
	}
	if !p.Error {
		view.Rows = Rows(p.Items, now)
	}
	return pageTemplate.Execute(w, view)
}
