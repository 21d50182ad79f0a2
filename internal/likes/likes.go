package likes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"bandmatch/internal/config"
	"bandmatch/internal/services"
	"bandmatch/internal/textutil"
)

// Item is one liked video. URL may be empty when the platform did not report one.
type Item struct {
	Title    string `json:"title"`
	Uploader string `json:"uploader"`
	URL      string `json:"url,omitempty"`
}

// FilterByChannels keeps the items whose uploader equals one of channels,
// ignoring case. Matching is exact: no substring or fuzzy comparison. Items
// without an uploader never match. Order is preserved.
func FilterByChannels(items []Item, channels []string) []Item {
	wanted := make(map[string]struct{}, len(channels))
	for _, channel := range channels {
		wanted[textutil.Fold(channel)] = struct{}{}
	}
	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Uploader == "" {
			continue
		}
		if _, ok := wanted[textutil.Fold(item.Uploader)]; ok {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// ValidateCookiePath expands a user-supplied cookie file path and checks that
// it names a regular file. An empty path means no cookie file and is valid.
func ValidateCookiePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "likes", "validate cookie path", "", err)
	}
	info, err := os.Stat(expanded)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", services.Wrap(services.ErrValidation, "likes", "validate cookie path", "", err)
	}
	if err != nil || !info.Mode().IsRegular() {
		return "", &CookieNotFoundError{Path: path}
	}
	return expanded, nil
}

// CookieNotFoundError reports a cookie path that does not name a file. Its
// message is shown to users verbatim.
type CookieNotFoundError struct {
	Path string
}

func (e *CookieNotFoundError) Error() string {
	return fmt.Sprintf("Cookie file not found: %s", e.Path)
}

// Unwrap marks the error as a validation failure.
func (e *CookieNotFoundError) Unwrap() error {
	return services.ErrValidation
}
