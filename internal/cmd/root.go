package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for flagwise
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flagwise",
		Short: "Private journal and counselor for spotting relationship red flags",
		Long: `Flagwise helps you notice unhealthy relationship patterns.

Journal entries are scanned for red flags such as gaslighting, control and
isolation. The chat counselor answers with rule-based guidance (or an
optional language model), guided explorations walk through structured
questions, and assessments score six relationship health dimensions.

Everything is stored locally under $FLAGWISE_HOME (default ~/.flagwise).
If you are in danger, contact your local emergency number.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("home", "", "Data directory (default $FLAGWISE_HOME or ~/.flagwise)")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log to stderr at the configured level")

	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newAnalyzeCommand())
	cmd.AddCommand(newJournalCommand())
	cmd.AddCommand(newChatCommand())
	cmd.AddCommand(newExploreCommand())
	cmd.AddCommand(newAssessCommand())
	cmd.AddCommand(newLibraryCommand())
	cmd.AddCommand(newSettingsCommand())
	cmd.AddCommand(newProgressCommand())
	cmd.AddCommand(newInsightsCommand())

	return cmd
}
