// Package counselor answers chat turns. It forwards to an external language
// model when enhanced AI is switched on and falls back to the rule-based
// responder whenever that is off or fails. It never returns an error.
package counselor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/flagwise/internal/analyzer"
	"github.com/harrison/flagwise/internal/config"
	"github.com/harrison/flagwise/internal/llm"
	"github.com/harrison/flagwise/internal/logger"
	"github.com/harrison/flagwise/internal/models"
	"github.com/harrison/flagwise/internal/responder"
)

// SourceRuleBased marks replies produced by the responder. LLM replies carry
// the provider name ("cohere" or "openai").
const SourceRuleBased = "rule-based"

// Advisory messages shown alongside a fallback reply.
const (
	AdvisoryNoKey       = "Enhanced AI is on but no API key is set. Using offline mode."
	AdvisoryInvalidKey  = "Your API key was rejected. Check it in settings. Using offline mode."
	AdvisoryRateLimited = "The AI service quota is exceeded. Using offline mode for now."
	AdvisoryUnavailable = "Enhanced AI unavailable, using offline mode."
)

// SystemPrompt frames every LLM request.
const SystemPrompt = `You are a warm, non-judgmental listener helping someone reflect on a relationship that worries them. ` +
	`Ask gentle follow-up questions and reflect feelings back. Do not diagnose or give legal advice. ` +
	`If the person mentions violence, self-harm, stalking or threats, encourage them to contact local emergency services or a crisis line. ` +
	`Keep replies under 120 words.`

// Reply is the outcome of one turn.
type Reply struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	Error   string `json:"error,omitempty"`
}

// Settings is the per-turn view of user settings.
type Settings struct {
	EnhancedAI bool
	APIKey     string
	Country    string
}

// SettingsFunc reads the current settings. It is called once per turn so
// changes take effect immediately.
type SettingsFunc func(ctx context.Context) Settings

// Counselor routes turns between the LLM and the responder.
type Counselor struct {
	dispatcher *responder.Dispatcher
	completer  llm.Completer
	settings   SettingsFunc
	llmConfig  config.LLMConfig
	log        logger.Sink
}

// New creates a Counselor. completer may be nil, in which case every turn is
// rule-based.
func New(d *responder.Dispatcher, completer llm.Completer, cfg config.LLMConfig, settings SettingsFunc, log logger.Sink) *Counselor {
	if settings == nil {
		settings = func(context.Context) Settings { return Settings{} }
	}
	return &Counselor{
		dispatcher: d,
		completer:  completer,
		settings:   settings,
		llmConfig:  cfg,
		log:        logger.OrNop(log),
	}
}

// Respond answers message given the journal and the transcript before it.
// Safety-tier turns always use the responder so crisis resources are never
// left to the model.
func (c *Counselor) Respond(ctx context.Context, message string, entries []models.JournalEntry, transcript []models.ChatMessage) Reply {
	s := c.settings(ctx)
	d := c.dispatcher.ForCountry(s.Country)

	dec := d.Decide(message, entries, transcript)
	fallback := func(advisory string) Reply {
		c.log.LogDebug(fmt.Sprintf("counselor source=%s rule=%s", SourceRuleBased, dec.Rule))
		return Reply{Content: d.Render(dec), Source: SourceRuleBased, Error: advisory}
	}

	if !s.EnhancedAI {
		return fallback("")
	}
	if dec.Tier == responder.TierSafety {
		return fallback("")
	}
	if s.APIKey == "" || c.completer == nil {
		return fallback(AdvisoryNoKey)
	}

	req := llm.Request{
		APIKey:      s.APIKey,
		Model:       c.llmConfig.Model,
		Message:     message,
		Preamble:    SystemPrompt + "\n\n" + JournalContext(analyzer.Summarize(entries)),
		History:     recentTurns(transcript, message, c.llmConfig.HistoryTurns),
		Temperature: c.llmConfig.Temperature,
		MaxTokens:   c.llmConfig.MaxTokens,
	}

	callCtx := ctx
	if c.llmConfig.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.llmConfig.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.completer.Complete(callCtx, req)
	if err != nil {
		c.log.LogWarn(fmt.Sprintf("counselor llm call failed after %s: %v", time.Since(start).Round(time.Millisecond), err))
		return fallback(advisoryFor(err))
	}

	source := c.llmConfig.Provider
	if source == "" {
		source = config.ProviderCohere
	}
	c.log.LogDebug(fmt.Sprintf("counselor source=%s history=%d", source, len(req.History)))
	return Reply{Content: text, Source: source}
}

func advisoryFor(err error) string {
	switch {
	case llm.IsUnauthorized(err):
		return AdvisoryInvalidKey
	case llm.IsRateLimited(err):
		return AdvisoryRateLimited
	default:
		return AdvisoryUnavailable
	}
}

// recentTurns returns the last n non-empty turns, dropping a trailing copy
// of the current message.
func recentTurns(transcript []models.ChatMessage, message string, n int) []llm.Turn {
	if k := len(transcript); k > 0 {
		last := transcript[k-1]
		if last.Role == models.RoleUser && strings.TrimSpace(last.Content) == strings.TrimSpace(message) {
			transcript = transcript[:k-1]
		}
	}

	var turns []llm.Turn
	for _, m := range transcript {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		turns = append(turns, llm.Turn{Role: m.Role, Message: m.Content})
	}
	if n >= 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return turns
}

// JournalContext renders the journal summary appended to the system prompt.
func JournalContext(s analyzer.Stats) string {
	if !s.HasEntries() {
		return "Journal context: the user has not written any journal entries yet."
	}

	var b strings.Builder
	b.WriteString("Journal context:\n")
	fmt.Fprintf(&b, "- Entries: %d (%d with red flags)\n", s.TotalEntries, s.FlaggedEntries)
	fmt.Fprintf(&b, "- Average recent mood: %.1f/5\n", s.AverageMood)
	if top := s.TopFlagTypes(3); len(top) > 0 {
		fmt.Fprintf(&b, "- Most frequent red flags: %s\n", strings.Join(top, ", "))
	}
	fmt.Fprintf(&b, "- Latest entry: %s relationship, mood %d/5", s.LatestContext, s.LatestMood)
	return b.String()
}
