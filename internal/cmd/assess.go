package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/flagwise/internal/models"
	"github.com/harrison/flagwise/internal/psychometric"
)

func newAssessCommand() *cobra.Command {
	var exploration string

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score relationship health from your journal or an exploration",
		Long: `Score six relationship health dimensions (safety, trust, respect,
communication, independence and emotional health).

By default the score comes from your journal entries. With --exploration
it comes from a completed guided exploration; pass "last" for the newest.

Examples:
  flagwise assess
  flagwise assess --exploration last`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if exploration == "" {
				a.out.Assessment(psychometric.AssessFromJournal(a.gateway.JournalEntries(ctx)))
				return nil
			}

			path, err := findPath(a.gateway.Paths(ctx), exploration)
			if err != nil {
				return err
			}
			a.out.Assessment(psychometric.AssessFromConversation(path))
			return nil
		},
	}

	cmd.Flags().StringVar(&exploration, "exploration", "", `Exploration id (or "last") to score instead of the journal`)

	return cmd
}

// findPath resolves "last" or an id prefix among completed explorations.
func findPath(paths []models.ConversationPath, id string) (models.ConversationPath, error) {
	var completed []models.ConversationPath
	for _, p := range paths {
		if p.Completed() {
			completed = append(completed, p)
		}
	}
	if len(completed) == 0 {
		return models.ConversationPath{}, fmt.Errorf("no completed explorations yet; run flagwise explore")
	}
	if id == "last" {
		return completed[len(completed)-1], nil
	}
	for _, p := range completed {
		if strings.HasPrefix(p.ID, id) {
			return p, nil
		}
	}
	return models.ConversationPath{}, fmt.Errorf("no completed exploration with id %q", id)
}
