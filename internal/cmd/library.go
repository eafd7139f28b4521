package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/flagwise/internal/guide"
	"github.com/harrison/flagwise/internal/models"
	"github.com/harrison/flagwise/internal/pattern"
)

func newLibraryCommand() *cobra.Command {
	var relationship string

	cmd := &cobra.Command{
		Use:   "library [id]",
		Short: "Browse the red flag library",
		Long: `Without an id, list every red flag pattern the analyzer detects.
With an id, show the guide for that red flag: how to recognize it, what
to say, boundaries to set and when to consider leaving.

Examples:
  flagwise library
  flagwise library --context workplace
  flagwise library gaslighting`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newPrinter(cmd)
			patterns := pattern.Default()

			if len(args) == 0 {
				out.PatternList(patterns.ForContext(models.ParseContext(relationship)))
				return nil
			}

			id := canonicalID(patterns.IDs(), args[0])
			guides, err := guide.Default()
			if err != nil {
				return fmt.Errorf("load guides: %w", err)
			}
			if g, ok := guides.Lookup(id); ok {
				out.Guide(g)
				return nil
			}
			if def, ok := patterns.Lookup(id); ok {
				out.PatternList([]pattern.Definition{def})
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", def.Description)
				return nil
			}
			return fmt.Errorf("no red flag named %q; run flagwise library to list them", args[0])
		},
	}

	cmd.Flags().StringVarP(&relationship, "context", "c", string(models.ContextGeneral),
		"Relationship context whose patterns to list")

	return cmd
}

// canonicalID matches name against ids ignoring case, so "lovebombing"
// finds "loveBombing".
func canonicalID(ids []string, name string) string {
	for _, id := range ids {
		if strings.EqualFold(id, name) {
			return id
		}
	}
	return name
}
