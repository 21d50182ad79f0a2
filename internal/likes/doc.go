// Package likes models liked videos and the pre-flight helpers that surround
// fetching them: the channel filter and cookie file validation.
//
// Fetching itself lives in services/ytdlp. Items are immutable once produced
// and flow unchanged into the match pipeline.
package likes
