package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bandmatch/internal/matching"
	"bandmatch/internal/services"
	"bandmatch/internal/textutil"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var scoreAgainst string
	var sanitize bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Run a single Bandcamp search",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			client, err := newSearchClient(cfg, logger)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "search", "client", "", err)
			}

			raw := strings.Join(args, " ")
			query := textutil.DashStripped(raw)
			if sanitize {
				query = textutil.SanitizeQuery(raw)
			}
			if query == "" {
				return services.Wrap(services.ErrValidation, "search", "query", "query is empty after normalization", nil)
			}

			outcome := client.SearchTrack(cmd.Context(), query)
			if outcome.Error == "" && outcome.Candidate != nil && strings.TrimSpace(scoreAgainst) != "" {
				outcome.Score = matching.Score(scoreAgainst, outcome.Candidate.Title, outcome.Candidate.Artist)
			}

			if jsonOutput {
				return writeJSON(cmd, outcome)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Query: %s\n", outcome.Query)
			fmt.Fprintf(out, "Search URL: %s\n", outcome.SearchURL)
			switch {
			case outcome.Error != "":
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", outcome.Error)
				return errReported
			case !outcome.HasCandidateText():
				fmt.Fprintln(out, "No results")
				return nil
			}
			c := outcome.Candidate
			fmt.Fprintf(out, "Title: %s\n", valueOr(c.Title, unknownTitle))
			fmt.Fprintf(out, "Artist: %s\n", valueOr(c.Artist, unknownArtist))
			fmt.Fprintf(out, "URL: %s\n", valueOr(c.URL, "-"))
			if strings.TrimSpace(scoreAgainst) != "" {
				matched := c.URL != "" && outcome.Score >= cfg.Matching.Threshold
				fmt.Fprintf(out, "Score: %.2f (threshold %.2f, match: %s)\n", outcome.Score, cfg.Matching.Threshold, yesNo(matched))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scoreAgainst, "score-against", "", "Score the top result against this title")
	cmd.Flags().BoolVar(&sanitize, "sanitize", false, "Strip bracketed annotations and punctuation from the query")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the outcome as JSON")
	return cmd
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
