// Package responder picks the counselor's rule-based reply. A single ordered
// cascade of rules is evaluated top to bottom and the first rule that applies
// decides the reply; wording comes from a locale-keyed template catalog.
package responder

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/harrison/flagwise/internal/analyzer"
	"github.com/harrison/flagwise/internal/features"
	"github.com/harrison/flagwise/internal/hotline"
	"github.com/harrison/flagwise/internal/logger"
	"github.com/harrison/flagwise/internal/models"
	"github.com/harrison/flagwise/internal/pattern"
)

// Picker chooses a template variant. It must return a value in [0, n).
type Picker interface {
	IntN(n int) int
}

type randPicker struct{}

func (randPicker) IntN(n int) int { return rand.IntN(n) }

// Dispatcher selects and renders responses. It holds no per-conversation
// state; everything it knows comes from its three inputs.
type Dispatcher struct {
	catalog  *Catalog
	hotlines hotline.Directory
	patterns *pattern.Library
	picker   Picker
	locale   string
	country  string
	log      logger.Sink
	rules    []rule
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithCatalog replaces the template catalog.
func WithCatalog(c *Catalog) Option { return func(d *Dispatcher) { d.catalog = c } }

// WithHotlines injects the crisis resource directory.
func WithHotlines(h hotline.Directory) Option { return func(d *Dispatcher) { d.hotlines = h } }

// WithPicker makes variant selection deterministic.
func WithPicker(p Picker) Option { return func(d *Dispatcher) { d.picker = p } }

// WithLocale selects the template locale.
func WithLocale(locale string) Option { return func(d *Dispatcher) { d.locale = locale } }

// WithCountry selects the hotline country.
func WithCountry(country string) Option { return func(d *Dispatcher) { d.country = country } }

// WithLogger sets the sink that receives the name of each fired rule.
func WithLogger(s logger.Sink) Option { return func(d *Dispatcher) { d.log = logger.OrNop(s) } }

// New creates a Dispatcher with the embedded catalog and hotline table.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		catalog:  DefaultCatalog(),
		hotlines: hotline.Default(),
		patterns: pattern.Default(),
		picker:   randPicker{},
		locale:   DefaultLocale,
		country:  "US",
		log:      logger.Nop{},
		rules:    buildRules(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ForCountry returns a copy of d that renders hotlines for country. An
// empty country returns d unchanged.
func (d *Dispatcher) ForCountry(country string) *Dispatcher {
	if country == "" || country == d.country {
		return d
	}
	cp := *d
	cp.country = country
	return &cp
}

// Decision records which rule fired and the templates it selected.
type Decision struct {
	Rule string
	Tier Tier
	Keys []string

	turn *turn
}

type turn struct {
	msg     features.MessageFeatures
	hist    features.History
	stats   analyzer.Stats
	issue   features.Tag
	emotion features.Tag
}

func (t *turn) asksQuestion() bool {
	return t.msg.Any(features.Questioning, features.AskShouldLeave, features.AskIsNormal, features.AskHelp)
}

// Decide runs the cascade without rendering text.
func (d *Dispatcher) Decide(message string, entries []models.JournalEntry, transcript []models.ChatMessage) Decision {
	t := &turn{
		msg:   features.Extract(message),
		hist:  features.ExtractHistory(features.WithCurrent(transcript, message)),
		stats: analyzer.Summarize(entries),
	}

	for _, r := range d.rules {
		if keys := r.keys(t); keys != nil {
			return Decision{Rule: r.name, Tier: r.tier, Keys: keys, turn: t}
		}
	}
	// The fallback rule always applies; this is unreachable with buildRules.
	return Decision{Rule: "fallback", Tier: TierFallback, Keys: []string{"fallback"}, turn: t}
}

// Respond returns the reply for message given the journal and the transcript
// so far. It never fails; empty input gets a generic opener.
func (d *Dispatcher) Respond(message string, entries []models.JournalEntry, transcript []models.ChatMessage) string {
	dec := d.Decide(message, entries, transcript)
	d.log.LogDebug(fmt.Sprintf("responder rule=%s tier=%s turns=%d", dec.Rule, dec.Tier, dec.turn.hist.MessageCount))
	return d.Render(dec)
}

// Render fills the templates of a decision.
func (d *Dispatcher) Render(dec Decision) string {
	t := dec.turn
	if t == nil {
		t = &turn{}
	}
	replacer := strings.NewReplacer(d.vars(t)...)

	parts := make([]string, 0, len(dec.Keys))
	for _, key := range dec.Keys {
		variants := d.catalog.Templates(d.locale, key)
		if len(variants) == 0 {
			d.log.LogWarn(fmt.Sprintf("responder missing template key=%s locale=%s", key, d.locale))
			continue
		}
		parts = append(parts, replacer.Replace(variants[d.pick(len(variants))]))
	}
	if len(parts) == 0 {
		variants := d.catalog.Templates(d.locale, "fallback")
		if len(variants) == 0 {
			return "I'm here to listen."
		}
		return replacer.Replace(variants[d.pick(len(variants))])
	}
	return strings.Join(parts, " ")
}

func (d *Dispatcher) pick(n int) int {
	i := d.picker.IntN(n)
	if i < 0 || i >= n {
		return 0
	}
	return i
}

func (d *Dispatcher) vars(t *turn) []string {
	res := d.hotlines.Lookup(d.country)

	person := d.catalog.Label(d.locale, "someone")
	if p := t.hist.Person(); p != "" {
		person = "your " + string(p)
	}

	issue := t.issue
	if issue == "" {
		issue = t.hist.FirstIssue()
	}
	issueLabel := ""
	if issue != "" {
		issueLabel = d.catalog.Label(d.locale, string(issue))
	}

	emotion := t.emotion
	if emotion == "" {
		if em := t.msg.InGroup(features.GroupEmotion); len(em) > 0 {
			emotion = em[0]
		}
	}
	emotionLabel := ""
	if emotion != "" {
		emotionLabel = d.catalog.Label(d.locale, string(emotion))
	}

	topFlag := ""
	if top := t.stats.TopFlagTypes(1); len(top) > 0 {
		topFlag = top[0]
		if def, ok := d.patterns.Lookup(top[0]); ok {
			topFlag = strings.ToLower(def.Name)
		}
	}

	latest := ""
	if t.stats.LatestContext != "" {
		latest = d.catalog.Label(d.locale, string(t.stats.LatestContext))
	}

	return []string{
		"{person}", person,
		"{issue}", issueLabel,
		"{emotion}", emotionLabel,
		"{entries}", fmt.Sprintf("%d", t.stats.TotalEntries),
		"{flagged}", fmt.Sprintf("%d", t.stats.FlaggedEntries),
		"{flags}", fmt.Sprintf("%d", t.stats.TotalFlags),
		"{mood}", fmt.Sprintf("%.1f", t.stats.AverageMood),
		"{top_flag}", topFlag,
		"{latest_context}", latest,
		"{emergency}", res.Emergency,
		"{dv_hotline}", res.DomesticViolence,
		"{suicide_hotline}", res.Suicide,
		"{stalking_hotline}", res.Stalking,
		"{text_line}", textLine(res),
		"{country_name}", res.Name,
	}
}

func textLine(r hotline.Resources) string {
	if r.Text != "" {
		return r.Text
	}
	return "reach out to someone you trust"
}
