package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/flagwise/internal/config"
	"github.com/harrison/flagwise/internal/counselor"
	"github.com/harrison/flagwise/internal/display"
	"github.com/harrison/flagwise/internal/features"
	"github.com/harrison/flagwise/internal/filelock"
	"github.com/harrison/flagwise/internal/llm"
	"github.com/harrison/flagwise/internal/models"
	"github.com/harrison/flagwise/internal/progress"
	"github.com/harrison/flagwise/internal/responder"
	"github.com/harrison/flagwise/internal/tree"
)

// chatLockFile keeps a second chat process from interleaving the transcript.
const chatLockFile = "chat.lock"

func newChatCommand() *cobra.Command {
	var messages []string
	var guided bool
	var fresh bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk things through with the counselor",
		Long: `Talk things through with the counselor.

Replies are rule-based unless enhanced AI is switched on and an API key is
set (see "flagwise settings"). If the language model fails, the rule-based
counselor answers instead. Mentions of violence, self-harm, stalking or
threats always get crisis resources for your country.

With --guided, messages that match a guided exploration walk through it
before the counselor answers.

Commands inside a chat: /clear forgets the transcript, /quit leaves.

Examples:
  flagwise chat
  flagwise chat -m "my partner keeps checking my phone"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			lock, err := filelock.Acquire(filepath.Join(a.home, chatLockFile))
			if errors.Is(err, filelock.ErrLocked) {
				return fmt.Errorf("another chat session is already running")
			}
			if err != nil {
				return err
			}
			defer lock.Unlock()

			ctx := cmd.Context()
			if fresh {
				if err := a.gateway.ClearChatHistory(ctx); err != nil {
					return fmt.Errorf("clear chat history: %w", err)
				}
			}

			c := newChat(ctx, a, guided)
			if len(messages) > 0 {
				for _, m := range messages {
					c.turn(ctx, m)
				}
				return nil
			}

			watcher, err := config.NewWatcher(config.Path(a.home), a.log)
			if err != nil {
				a.log.LogWarn(fmt.Sprintf("config changes will apply next session: %v", err))
			} else {
				defer watcher.Close()
				c.updates = watcher.Updates()
			}
			return c.loop(ctx, bufio.NewScanner(cmd.InOrStdin()))
		},
	}

	cmd.Flags().StringArrayVarP(&messages, "message", "m", nil, "Send a message and exit (repeatable)")
	cmd.Flags().BoolVar(&guided, "guided", false, "Offer guided explorations when a message matches one")
	cmd.Flags().BoolVar(&fresh, "new", false, "Clear the stored transcript first")

	return cmd
}

type chat struct {
	a         *app
	counselor *counselor.Counselor
	guide     *tree.Session
	updates   <-chan *config.Config
	userTurns int
}

func newChat(ctx context.Context, a *app, guided bool) *chat {
	c := &chat{a: a}
	c.configure(a.cfg)
	if guided {
		c.guide = tree.NewSession(tree.Default(), nil)
	}
	for _, m := range a.gateway.ChatHistory(ctx) {
		if m.Role == models.RoleUser {
			c.userTurns++
		}
	}
	return c
}

// configure builds the counselor for cfg. It runs at start and again
// whenever the config file changes.
func (c *chat) configure(cfg *config.Config) {
	completer, err := llm.New(cfg.LLM)
	if err != nil {
		c.a.log.LogWarn(fmt.Sprintf("language model disabled: %v", err))
		completer = nil
	}
	d := responder.New(
		responder.WithLocale(cfg.Locale),
		responder.WithCountry(cfg.Country),
		responder.WithLogger(c.a.log),
	)
	c.a.cfg = cfg
	c.counselor = counselor.New(d, completer, cfg.LLM, counselor.GatewaySettings(c.a.gateway, cfg), c.a.log)
}

func (c *chat) loop(ctx context.Context, in *bufio.Scanner) error {
	if len(c.a.gateway.ChatHistorySync()) == 0 {
		// an empty opening turn gets the welcome
		c.turn(ctx, "")
	}
	for {
		c.a.printPrompt()
		if !in.Scan() {
			return in.Err()
		}
		c.applyUpdates()

		line := strings.TrimSpace(in.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			if err := c.a.gateway.ClearChatHistory(ctx); err != nil {
				return fmt.Errorf("clear chat history: %w", err)
			}
			c.userTurns = 0
			if c.guide != nil {
				c.guide.Reset()
			}
			c.a.out.Success("Transcript cleared")
			continue
		}
		c.turn(ctx, line)
	}
}

func (c *chat) applyUpdates() {
	select {
	case cfg, ok := <-c.updates:
		if ok {
			c.a.log.LogInfo("config reloaded")
			c.configure(cfg)
		}
	default:
	}
}

// turn answers one message. Journal entries and the transcript are read
// before the counselor runs; both fall back to cached copies.
func (c *chat) turn(ctx context.Context, message string) {
	entries := c.a.gateway.JournalEntries(ctx)
	transcript := c.a.gateway.ChatHistory(ctx)
	now := time.Now()

	if message != "" {
		c.save(ctx, models.NewChatMessage(models.RoleUser, message, now))
		c.userTurns++
	}

	if content, ok := c.guidedTurn(ctx, message, transcript); ok {
		c.save(ctx, models.NewChatMessage(models.RoleAssistant, content, time.Now()))
	} else {
		reply := c.counselor.Respond(ctx, message, entries, transcript)
		c.a.out.Reply(reply)
		c.save(ctx, models.NewChatMessage(models.RoleAssistant, reply.Content, time.Now()))
		c.a.log.LogDebug(fmt.Sprintf("chat turn answered by %s", reply.Source))
	}

	if message != "" {
		turns := c.userTurns
		c.a.recordProgress(ctx, func(p progress.Progress) (progress.Progress, []progress.Achievement) {
			return p.RecordChat(now, turns)
		})
	}
}

// guidedTurn advances the exploration when the message fits it. Anything
// touching safety goes to the counselor so crisis resources are shown.
func (c *chat) guidedTurn(ctx context.Context, message string, transcript []models.ChatMessage) (string, bool) {
	if c.guide == nil || message == "" {
		return "", false
	}
	if features.ExtractHistory(features.WithCurrent(transcript, message)).SafetyRaised() {
		if c.guide.Active() {
			c.guide.Reset()
		}
		return "", false
	}

	node, moved := c.guide.Advance(message, transcript)
	if !moved {
		return "", false
	}
	c.a.out.Node(node)
	content := node.Response
	if node.IsConclusion() {
		content = strings.TrimSpace(content + " " + node.Conclusion)
		if err := c.a.finishExploration(ctx, c.guide); err != nil {
			c.a.log.LogWarn(err.Error())
		}
	} else if content == "" {
		content = node.Question
	}
	return content, true
}

func (c *chat) save(ctx context.Context, m models.ChatMessage) {
	if err := c.a.gateway.SaveChatMessage(ctx, m); err != nil {
		c.a.log.LogWarn(fmt.Sprintf("save chat message %s: %v", m.ID, err))
	}
}

func displayAdvisory(title, suggestion string) display.Advisory {
	return display.Advisory{Title: title, Suggestion: suggestion}
}
