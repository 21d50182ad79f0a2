// Package bandcamp queries the Bandcamp search page and extracts the top
// result as a match candidate.
//
// Each SearchTrack call performs exactly one GET against
// <base>/search?q=<query> with browser-like headers and a bounded timeout,
// then reads the first li.searchresult entry: its link, its .heading text
// (the candidate title), and its .subhead text (the candidate artist).
// Transport failures and non-2xx responses are reported on the returned
// Outcome instead of as Go errors so a batch of searches never aborts on one
// bad item. Retrying is left to callers.
package bandcamp
