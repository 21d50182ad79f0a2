package matching

import (
	"bandmatch/internal/likes"
	"bandmatch/internal/services/bandcamp"
)

// Status classifies a row for display.
type Status string

const (
	StatusError          Status = "error"
	StatusNoResults      Status = "no_results"
	StatusMatched        Status = "matched"
	StatusBelowThreshold Status = "below_threshold"
)

// Row is the terminal result for one source item.
type Row struct {
	Uploader    string           `json:"uploader"`
	SourceTitle string           `json:"source_title"`
	SourceURL   string           `json:"source_url,omitempty"`
	Outcome     bandcamp.Outcome `json:"outcome"`
	Matched     bool             `json:"matched"`
}

// NewRow derives the matched flag from outcome and threshold. A row only
// matches without an error, with a candidate URL, and at or above threshold.
func NewRow(item likes.Item, outcome bandcamp.Outcome, threshold float64) Row {
	matched := outcome.Error == "" &&
		outcome.Candidate != nil &&
		outcome.Candidate.URL != "" &&
		outcome.Score >= threshold
	return Row{
		Uploader:    item.Uploader,
		SourceTitle: item.Title,
		SourceURL:   item.URL,
		Outcome:     outcome,
		Matched:     matched,
	}
}

// Status reports how the row should be presented. A candidate without any
// title or artist text is shown as no results.
func (r Row) Status() Status {
	switch {
	case r.Outcome.Error != "":
		return StatusError
	case !r.Outcome.HasCandidateText():
		return StatusNoResults
	case r.Matched:
		return StatusMatched
	default:
		return StatusBelowThreshold
	}
}

// BestURL returns the candidate URL, falling back to the search URL.
func (r Row) BestURL() string {
	if r.Outcome.Candidate != nil && r.Outcome.Candidate.URL != "" {
		return r.Outcome.Candidate.URL
	}
	return r.Outcome.SearchURL
}

// Summary counts rows by status.
type Summary struct {
	Total          int `json:"total"`
	Matched        int `json:"matched"`
	BelowThreshold int `json:"below_threshold"`
	NoResults      int `json:"no_results"`
	Errors         int `json:"errors"`
}

// Summarize tallies rows by status.
func Summarize(rows []Row) Summary {
	summary := Summary{Total: len(rows)}
	for _, row := range rows {
		switch row.Status() {
		case StatusError:
			summary.Errors++
		case StatusNoResults:
			summary.NoResults++
		case StatusMatched:
			summary.Matched++
		default:
			summary.BelowThreshold++
		}
	}
	return summary
}
