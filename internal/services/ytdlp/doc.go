// Package ytdlp reads the signed-in user's liked videos by running the yt-dlp
// binary against the liked-videos playlist in flat mode.
//
// Authentication comes from a Netscape cookie file or from a browser profile
// (--cookies-from-browser); the cookie file wins when both are configured.
// The playlist JSON printed by yt-dlp is decoded into likes.Item values in
// playlist order.
package ytdlp
