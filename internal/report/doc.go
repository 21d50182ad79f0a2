// Package report renders match rows as a static HTML page and opens it in
// the user's browser.
package report
