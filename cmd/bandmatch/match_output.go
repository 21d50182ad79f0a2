package main

import (
	"fmt"
	"io"
	"strings"

	"bandmatch/internal/likes"
	"bandmatch/internal/matching"
)

const (
	unknownTitle  = "Unknown title"
	unknownArtist = "Unknown artist"
)

func printMatchedLikes(out io.Writer, items []likes.Item) {
	fmt.Fprintln(out, "Matched liked videos (titles only):")
	for i, item := range items {
		fmt.Fprintf(out, "%d. %s\n", i+1, item.Title)
	}
}

// formatRowLine renders the one-line console result for a row.
func formatRowLine(row matching.Row) string {
	outcome := row.Outcome
	switch row.Status() {
	case matching.StatusError:
		return fmt.Sprintf("- %s: error searching Bandcamp (%s); search URL: %s",
			row.SourceTitle, outcome.Error, outcome.SearchURL)
	case matching.StatusNoResults:
		return fmt.Sprintf("- %s: no results; search URL: %s", row.SourceTitle, outcome.SearchURL)
	case matching.StatusMatched:
		title, artist := unknownTitle, unknownArtist
		if c := outcome.Candidate; c != nil {
			if c.Title != "" {
				title = c.Title
			}
			if c.Artist != "" {
				artist = c.Artist
			}
		}
		return fmt.Sprintf("- %s: MATCH %.2f -> %s — %s (%s)",
			row.SourceTitle, outcome.Score, title, artist, row.BestURL())
	default:
		return fmt.Sprintf("- %s: below threshold (score %.2f); search URL: %s",
			row.SourceTitle, outcome.Score, outcome.SearchURL)
	}
}

func statusLabel(status matching.Status) string {
	switch status {
	case matching.StatusMatched:
		return "match"
	case matching.StatusBelowThreshold:
		return "below threshold"
	case matching.StatusNoResults:
		return "no results"
	case matching.StatusError:
		return "error"
	default:
		return string(status)
	}
}

func renderRowsTable(rows []matching.Row) string {
	tableRows := make([][]string, 0, len(rows))
	for i, row := range rows {
		candidate := "-"
		if c := row.Outcome.Candidate; c != nil && (c.Title != "" || c.Artist != "") {
			candidate = truncate(strings.Join(nonEmpty(c.Artist, c.Title), " "), 40)
		}
		tableRows = append(tableRows, []string{
			fmt.Sprintf("%d", i+1),
			truncate(row.Uploader, 24),
			truncate(row.SourceTitle, 40),
			candidate,
			fmt.Sprintf("%.2f", row.Outcome.Score),
			statusLabel(row.Status()),
		})
	}
	summary := matching.Summarize(rows)
	footer := []string{"", "", "", "", "", fmt.Sprintf("%d/%d matched", summary.Matched, summary.Total)}
	return renderTable(
		[]string{"#", "Uploader", "Video", "Bandcamp", "Score", "Status"},
		tableRows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		footer...,
	)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
