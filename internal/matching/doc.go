// Package matching turns liked videos into scored Bandcamp matches.
//
// For every source item the Pipeline dash-strips the title into a query, asks
// a Searcher for the top result, scores the candidate against the original
// title, and decides whether it clears the threshold. Per-item search
// failures become data on the resulting Row; nothing a single item does can
// abort a run.
//
// Rows always come back in input order. With more than one worker the items
// are searched concurrently and the progress callback still fires in input
// order, so callers can print results as they arrive.
package matching
