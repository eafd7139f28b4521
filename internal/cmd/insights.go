package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/flagwise/internal/analytics"
	"github.com/harrison/flagwise/internal/analyzer"
)

func newInsightsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Summarize your journal and guided explorations",
		Long: `Summarize your journal (entries, mood, most frequent red flags) and
your guided explorations (most visited topics, conclusions, score trend).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			a.out.Stats(analyzer.Summarize(a.gateway.JournalEntries(ctx)))
			fmt.Fprintln(a.writer())
			a.out.Report(analytics.Summarize(a.gateway.Paths(ctx)))
			return nil
		},
	}
}
