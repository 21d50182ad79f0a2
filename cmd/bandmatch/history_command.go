package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bandmatch/internal/history"
	"bandmatch/internal/matching"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect previous match runs",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryReportCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				if runs == nil {
					runs = []history.Run{}
				}
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					formatTimestamp(run.StartedAt),
					truncate(joinOrDash(run.Channels), 40),
					fmt.Sprintf("%d/%d", run.Matched, run.Total),
					fmt.Sprintf("%.2f", run.Threshold),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Started", "Channels", "Matched", "Threshold"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the rows of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, rows, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				if rows == nil {
					rows = []matching.Row{}
				}
				return writeJSON(cmd, matchResult{
					RunID:     run.ID,
					Channels:  run.Channels,
					Threshold: run.Threshold,
					Summary:   matching.Summarize(rows),
					Rows:      rows,
				})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Run "+run.ID, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "Started:   %s\n", formatTimestamp(run.StartedAt))
			fmt.Fprintf(out, "Channels:  %s\n", joinOrDash(run.Channels))
			fmt.Fprintf(out, "Threshold: %.2f\n", run.Threshold)
			fmt.Fprintln(out)
			for _, row := range rows {
				fmt.Fprintln(out, renderRowLine(row, colorize))
			}
			if len(rows) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderRowsTable(rows))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

func newHistoryReportCommand(ctx *commandContext) *cobra.Command {
	var path string
	var noOpen bool

	cmd := &cobra.Command{
		Use:   "report <run-id>",
		Short: "Render the HTML report for a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			_, rows, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			target := strings.TrimSpace(path)
			if target == "" {
				target = cfg.Report.Path
			}
			open := cfg.Report.OpenBrowser && !noOpen
			if err := writeReport(cmd.Context(), target, rows, open); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to write or open %s: %v\n", target, err)
				return errReported
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote report to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "o", "", "Report destination (default report.path)")
	cmd.Flags().BoolVar(&noOpen, "no-open", false, "Do not open the report in a browser")
	return cmd
}
