package matching

import (
	"strings"

	"bandmatch/internal/textutil"
)

// Score compares a source title with a candidate's "artist title" string,
// ignoring case. It returns 0 when the candidate has neither field.
func Score(sourceTitle, candidateTitle, candidateArtist string) float64 {
	parts := make([]string, 0, 2)
	if candidateArtist != "" {
		parts = append(parts, candidateArtist)
	}
	if candidateTitle != "" {
		parts = append(parts, candidateTitle)
	}
	combined := strings.TrimSpace(strings.Join(parts, " "))
	if combined == "" {
		return 0
	}
	return textutil.Ratio(textutil.Fold(sourceTitle), textutil.Fold(combined))
}
