// Package config loads, normalizes, and validates bandmatch configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// BANDMATCH_COOKIE_FILE, optionally sourced from a .env file. The Config type
// centralizes the search, matching, yt-dlp, report, and history knobs so the
// CLI can resolve every setting in one pass.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log settings, and clear validation errors.
package config
