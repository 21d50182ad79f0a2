package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bandmatch/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external programs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.MatchRequirements(cfg))

			if jsonOutput {
				if err := writeJSON(cmd, statuses); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Dependencies", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, line := range dependencyLines(statuses, colorize) {
					fmt.Fprintln(out, line)
				}
			}
			if len(deps.MissingRequired(statuses)) > 0 {
				return errors.New("required dependencies are missing")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	return cmd
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	missing := deps.MissingRequired(statuses)
	lines := make([]string, 0, len(statuses)+2)
	if len(missing) == 0 {
		lines = append(lines, renderStatusLine("Summary", statusOK, "All required dependencies available", colorize))
	} else {
		lines = append(lines, renderStatusLine("Summary", statusError,
			fmt.Sprintf("%d required dependencies missing", len(missing)), colorize))
	}
	for _, status := range statuses {
		lines = append(lines, renderStatusLine(status.Name, depKind(status), depMessage(status), colorize))
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, status := range missing {
			names = append(names, status.Name)
		}
		lines = append(lines, statusIndent+"Missing dependencies: "+strings.Join(names, ", "))
	}
	return lines
}

func depKind(status deps.Status) statusKind {
	switch {
	case status.Available:
		return statusOK
	case status.Optional:
		return statusWarn
	default:
		return statusError
	}
}

func depMessage(status deps.Status) string {
	if status.Available {
		return fmt.Sprintf("Ready (command: %s)", status.Command)
	}
	return status.Detail
}
