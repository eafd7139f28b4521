package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/flagwise/internal/analyzer"
	"github.com/harrison/flagwise/internal/models"
	"github.com/harrison/flagwise/internal/pattern"
)

func newAnalyzeCommand() *cobra.Command {
	var relationship string

	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Scan text for red flags without saving it",
		Long: `Scan text for red flags without saving anything.

The text is taken from the arguments, or from stdin when none are given.

Examples:
  flagwise analyze "he said that never happened and I'm too sensitive"
  flagwise analyze --context workplace < note.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			result := analyzer.New(pattern.Default()).Analyze(text, models.ParseContext(relationship))
			newPrinter(cmd).Analysis(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&relationship, "context", "c", string(models.ContextGeneral),
		"Relationship context (romantic|workplace|family|friendship|general)")

	return cmd
}

// readText joins args, or reads all of stdin when there are none.
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
