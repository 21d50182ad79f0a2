package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"bandmatch/internal/fileutil"
	"bandmatch/internal/matching"
)

//go:embed report.html.tmpl
var pageSource string

var page = template.Must(template.New("report").Parse(pageSource))

const (
	googleHome   = "https://www.google.com"
	googleSearch = "https://www.google.com/search?q="
)

// Writer renders rows into a single HTML file.
type Writer struct {
	Path string
}

type pageData struct {
	Generated string
	Count     int
	Matched   int
	Rows      []rowView
}

type rowView struct {
	Uploader  string
	Title     string
	Link      string
	SourceURL string
	GoogleURL string
	Score     string
	Color     template.CSS
}

// Write renders rows to w.Path, replacing any existing file.
func (w Writer) Write(rows []matching.Row, generated time.Time) error {
	path := strings.TrimSpace(w.Path)
	if path == "" {
		return fmt.Errorf("report path is empty")
	}

	data := pageData{
		Generated: generated.Format("2006-01-02 15:04"),
		Count:     len(rows),
		Rows:      make([]rowView, 0, len(rows)),
	}
	for _, row := range rows {
		if row.Matched {
			data.Matched++
		}
		data.Rows = append(data.Rows, newRowView(row))
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func newRowView(row matching.Row) rowView {
	view := rowView{
		Uploader:  row.Uploader,
		Title:     "—",
		Link:      "#",
		SourceURL: row.SourceURL,
		GoogleURL: GoogleSearchURL(row),
		Score:     fmt.Sprintf("%.2f", row.Outcome.Score),
		Color:     ScoreColor(row.Outcome.Score),
	}
	if view.Uploader == "" {
		view.Uploader = "Unknown"
	}
	if c := row.Outcome.Candidate; c != nil && c.Title != "" {
		view.Title = c.Title
	}
	if link := row.BestURL(); link != "" {
		view.Link = link
	}
	return view
}

// HueForScore maps a score onto a red-to-green hue in [0, 120].
func HueForScore(score float64) int {
	return int(120 * max(0, min(1, score)))
}

// ScoreColor returns the pill background for score.
func ScoreColor(score float64) template.CSS {
	return template.CSS(fmt.Sprintf("hsl(%d 75%% 45%%)", HueForScore(score)))
}

// GoogleSearchURL builds a web search for the uploader and the candidate
// title, or the source title when there is no candidate title.
func GoogleSearchURL(row matching.Row) string {
	title := row.SourceTitle
	if c := row.Outcome.Candidate; c != nil && c.Title != "" {
		title = c.Title
	}
	query := strings.TrimSpace(row.Uploader + " " + title)
	if query == "" {
		return googleHome
	}
	return googleSearch + url.QueryEscape(query)
}
