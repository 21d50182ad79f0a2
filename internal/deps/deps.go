package deps

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"bandmatch/internal/config"
	"bandmatch/internal/report"
)

// Requirement defines an external program bandmatch relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// MatchRequirements lists the programs a match run uses: yt-dlp is required,
// the browser opener only matters for --html.
func MatchRequirements(cfg *config.Config) []Requirement {
	ytdlp := ""
	if cfg != nil {
		ytdlp = cfg.YouTube.YtDlpBinary
	}
	opener, _ := report.OpenerCommand(runtime.GOOS)
	return []Requirement{
		{
			Name:        "yt-dlp",
			Command:     ytdlp,
			Description: "Fetches the liked videos playlist",
		},
		{
			Name:        "Browser opener",
			Command:     opener,
			Description: "Opens the HTML report",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		if info, statErr := os.Stat(resolved); statErr == nil && !isExecutable(info) {
			status.Available = false
			status.Detail = fmt.Sprintf("%q is not executable", resolved)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the unavailable, non-optional entries.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
