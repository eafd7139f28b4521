package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/flagwise/internal/progress"
	"github.com/harrison/flagwise/internal/psychometric"
	"github.com/harrison/flagwise/internal/tree"
)

func newExploreCommand() *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Walk through a guided exploration",
		Long: `Walk through a guided set of questions about your relationship.

Answer with an option number, or describe your situation in your own words
and the closest option is chosen. Type q to stop. When the exploration
reaches a conclusion it is saved and scored.

Examples:
  flagwise explore
  flagwise explore --start jealousy_check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			session := tree.NewSession(tree.Default(), nil)
			node := session.Start()
			if start != "" {
				if node, err = session.MoveToNode(start); err != nil {
					return err
				}
			}
			return a.explore(cmd.Context(), session, node, bufio.NewScanner(cmd.InOrStdin()))
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Node id to begin at instead of the root")

	return cmd
}

func (a *app) explore(ctx context.Context, s *tree.Session, node *tree.Node, in *bufio.Scanner) error {
	for {
		a.out.Node(node)
		if s.HasReachedConclusion() {
			return a.finishExploration(ctx, s)
		}

		a.printPrompt()
		if !in.Scan() {
			a.log.LogInfo("exploration abandoned at end of input")
			return in.Err()
		}
		answer := strings.TrimSpace(in.Text())
		switch {
		case answer == "":
			continue
		case answer == "q" || answer == "quit":
			a.log.LogInfo(fmt.Sprintf("exploration abandoned at %s", s.Current().ID))
			return nil
		}

		if i, err := strconv.Atoi(answer); err == nil {
			next, err := s.SelectOption(i - 1)
			if err != nil {
				a.out.Advise(displayAdvisory("Choose one of the numbered options", ""))
				continue
			}
			node = next
			continue
		}

		next, moved := s.Advance(answer, nil)
		if !moved {
			a.out.Advise(displayAdvisory("I couldn't match that to an option", "Try an option number instead."))
			continue
		}
		node = next
	}
}

// finishExploration closes the path, stores it and shows its assessment.
func (a *app) finishExploration(ctx context.Context, s *tree.Session) error {
	path, err := s.CompletePath()
	if err != nil {
		return fmt.Errorf("complete exploration: %w", err)
	}
	if err := a.gateway.SavePath(ctx, path); err != nil {
		a.log.LogWarn(fmt.Sprintf("save exploration %s: %v", path.ID, err))
	}
	a.log.LogInfo(fmt.Sprintf("exploration %s completed over %d nodes", path.ID, len(path.Nodes)))

	fmt.Fprintln(a.writer())
	a.out.Assessment(psychometric.AssessFromConversation(path))
	a.recordProgress(ctx, func(p progress.Progress) (progress.Progress, []progress.Achievement) {
		return p.RecordExploration(*path.EndTime)
	})
	return nil
}
