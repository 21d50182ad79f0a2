// Package textutil provides the text normalization and similarity primitives
// used to turn video titles into marketplace queries and to compare them with
// search candidates.
//
// The primary use cases are:
//   - Stripping title separators so "Artist - Track" becomes a plain query
//   - Sanitizing queries by dropping bracketed annotations and punctuation
//   - Computing a matching-block similarity ratio between two strings
//
// Every function here is pure and total: any string input, including the
// empty string, yields a result without error.
package textutil
