// Package main hosts the bandmatch CLI entrypoint and command graph.
//
// The Cobra command tree wires the internal packages together: match fetches
// liked videos through yt-dlp, filters them by channel, runs the matching
// pipeline against Bandcamp search, and prints one line per video followed by
// a summary table. History, cache, config, and deps commands expose the
// supporting pieces. Configuration and the logger are resolved once per
// invocation by commandContext.
//
// Keep this package lean: behavior belongs in internal packages, and commands
// here only translate flags and format output.
package main
