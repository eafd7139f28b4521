package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/flagwise/internal/analyzer"
	"github.com/harrison/flagwise/internal/filelock"
	"github.com/harrison/flagwise/internal/models"
	"github.com/harrison/flagwise/internal/progress"
)

func newJournalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Write and review journal entries",
		Long: `Write and review journal entries.

Every entry is analyzed for red flags when it is saved.`,
	}

	cmd.AddCommand(newJournalAddCommand())
	cmd.AddCommand(newJournalListCommand())
	cmd.AddCommand(newJournalShowCommand())
	cmd.AddCommand(newJournalDeleteCommand())
	cmd.AddCommand(newJournalExportCommand())

	return cmd
}

func newJournalAddCommand() *cobra.Command {
	var mood int
	var relationship string
	var emotions []string

	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Add a journal entry",
		Long: `Add a journal entry. The text is taken from the arguments, or stdin.

Examples:
  flagwise journal add --mood 2 --context romantic "He read my messages again"
  flagwise journal add --mood 4 --emotion hopeful --emotion tired < today.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			if mood < 1 || mood > 5 {
				return fmt.Errorf("mood must be between 1 and 5, got %d", mood)
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			now := time.Now()
			entry := models.NewJournalEntry(text, mood, emotions, models.ParseContext(relationship), now)
			entry.Analysis = a.analyzer.AnalyzeEntry(entry)

			ctx := cmd.Context()
			if err := a.gateway.SaveJournalEntry(ctx, entry); err != nil {
				return fmt.Errorf("save journal entry: %w", err)
			}
			a.log.LogInfo(fmt.Sprintf("saved journal entry %s (%d flags)", entry.ID, len(entry.Analysis.Flags)))

			a.out.Success("Saved entry %s", entry.ID)
			a.out.Analysis(entry.Analysis)
			a.recordProgress(ctx, func(p progress.Progress) (progress.Progress, []progress.Achievement) {
				return p.RecordEntry(now)
			})
			return nil
		},
	}

	cmd.Flags().IntVarP(&mood, "mood", "m", 3, "Mood from 1 (very low) to 5 (very good)")
	cmd.Flags().StringVarP(&relationship, "context", "c", string(models.ContextGeneral),
		"Relationship context (romantic|workplace|family|friendship|general)")
	cmd.Flags().StringSliceVarP(&emotions, "emotion", "e", nil, "Emotion tag (repeatable)")

	return cmd
}

func newJournalListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			entries := a.gateway.JournalEntries(cmd.Context())
			shown := entries
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}
			a.out.EntryTable(shown)
			if len(entries) > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
				a.out.Stats(analyzer.Summarize(entries))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 for all)")

	return cmd
}

func newJournalShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a journal entry and its analysis",
		Long: `Show a journal entry and its analysis. Any unique prefix of the id works.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			entry, err := findEntry(a.gateway.JournalEntries(cmd.Context()), args[0])
			if err != nil {
				return err
			}
			a.out.Entry(entry)
			return nil
		},
	}
}

func newJournalDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			entry, err := findEntry(a.gateway.JournalEntries(ctx), args[0])
			if err != nil {
				return err
			}
			if err := a.gateway.DeleteJournalEntry(ctx, entry.ID); err != nil {
				return fmt.Errorf("delete journal entry: %w", err)
			}
			a.log.LogInfo(fmt.Sprintf("deleted journal entry %s", entry.ID))
			a.out.Success("Deleted entry %s", entry.ID)
			return nil
		},
	}
}

func newJournalExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export all journal entries as JSON",
		Long: `Export all journal entries, with their analyses, as a JSON array.

The file is written atomically while holding <file>.lock.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			entries := a.gateway.JournalEntries(cmd.Context())
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("encode journal: %w", err)
			}
			if err := filelock.LockAndWrite(args[0], append(data, '\n'), 0600); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			a.out.Success("Exported %d entries to %s", len(entries), args[0])
			return nil
		},
	}
}

var errAmbiguousID = errors.New("ambiguous entry id")

// findEntry resolves an exact id or a unique id prefix.
func findEntry(entries []models.JournalEntry, id string) (models.JournalEntry, error) {
	var matches []models.JournalEntry
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
		if strings.HasPrefix(e.ID, id) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return models.JournalEntry{}, fmt.Errorf("no journal entry with id %q", id)
	case 1:
		return matches[0], nil
	default:
		return models.JournalEntry{}, fmt.Errorf("%w: %q matches %d entries", errAmbiguousID, id, len(matches))
	}
}
