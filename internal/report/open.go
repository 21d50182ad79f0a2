package report

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// OpenerCommand returns the program and leading arguments that open a URL
// in the default browser on goos.
func OpenerCommand(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}

// FileURL returns the file:// URL for path.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve report path: %w", err)
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	return "file://" + abs, nil
}

// OpenInBrowser opens the report at path with the platform opener.
func OpenInBrowser(ctx context.Context, path string) error {
	target, err := FileURL(path)
	if err != nil {
		return err
	}
	name, args := OpenerCommand(runtime.GOOS)
	cmd := exec.CommandContext(ctx, name, append(args, target)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		if msg := strings.TrimSpace(string(output)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
