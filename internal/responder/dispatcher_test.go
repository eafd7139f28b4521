package responder

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/flagwise/internal/hotline"
	"github.com/harrison/flagwise/internal/models"
)

type firstPicker struct{}

func (firstPicker) IntN(int) int { return 0 }

type fixedDirectory struct{ r hotline.Resources }

func (f fixedDirectory) Lookup(string) hotline.Resources { return f.r }

func newTestDispatcher(opts ...Option) *Dispatcher {
	return New(append([]Option{WithPicker(firstPicker{})}, opts...)...)
}

func user(s string) models.ChatMessage {
	return models.ChatMessage{Role: models.RoleUser, Content: s}
}

func bot(s string) models.ChatMessage {
	return models.ChatMessage{Role: models.RoleAssistant, Content: s}
}

// users builds n neutral user turns separated by assistant turns.
func users(n int) []models.ChatMessage {
	var out []models.ChatMessage
	for i := 0; i < n; i++ {
		out = append(out, user(fmt.Sprintf("message number %d", i)), bot("I see."))
	}
	return out
}

func flaggedEntries() []models.JournalEntry {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []models.JournalEntry{
		{ID: "1", Date: now, Mood: 2, Context: models.ContextRomantic, Analysis: &models.AnalysisResult{
			Flags: []models.RedFlag{{Type: "gaslighting", Severity: models.FlagSevere}},
		}},
		{ID: "2", Date: now.Add(-time.Hour), Mood: 3, Context: models.ContextRomantic},
	}
}

func plainEntries() []models.JournalEntry {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []models.JournalEntry{
		{ID: "1", Date: now, Mood: 4, Context: models.ContextFamily},
		{ID: "2", Date: now.Add(-time.Hour), Mood: 3, Context: models.ContextFamily},
	}
}

func TestRespond_PhysicalSafetyFirstMessage(t *testing.T) {
	d := newTestDispatcher(WithCountry("US"))
	msg := "my boyfriend hit me last night"

	for _, transcript := range [][]models.ChatMessage{nil, {user(msg)}, append(users(12), user(msg))} {
		dec := d.Decide(msg, nil, transcript)
		assert.Equal(t, "safety.physical", dec.Rule)
		assert.Equal(t, TierSafety, dec.Tier)

		reply := d.Render(dec)
		assert.Contains(t, reply, "1-800-799-7233")
		assert.Contains(t, reply, "911")
	}
}

func TestRespond_PhysicalHappeningNow(t *testing.T) {
	d := newTestDispatcher()
	dec := d.Decide("he is hitting me right now", nil, nil)
	assert.Equal(t, "safety.physical_now", dec.Rule)
	assert.Contains(t, d.Render(dec), "call 911 immediately")
}

func TestRespond_SafetyIsSticky(t *testing.T) {
	d := newTestDispatcher()
	transcript := []models.ChatMessage{user("he shoved me into the wall")}

	followUps := []string{
		"anyway how do I bake bread",
		"my sister says hi",
		"I feel a bit better today",
		"should I leave?",
		"",
		"he lied about dinner",
	}
	for i := 0; i < 3; i++ {
		for _, m := range followUps {
			dec := d.Decide(m, nil, transcript)
			require.Equal(t, TierSafety, dec.Tier, "message %q after %d turns", m, len(transcript))
			transcript = append(transcript, bot(d.Render(dec)))
			if m != "" {
				transcript = append(transcript, user(m))
			}
		}
	}
}

func TestRespond_CurrentSafetyBeforeHistory(t *testing.T) {
	d := newTestDispatcher()
	dec := d.Decide("sometimes I want to die", nil, []models.ChatMessage{user("he hit me")})
	assert.Equal(t, "safety.suicidal", dec.Rule)
	assert.Contains(t, d.Render(dec), "988")

	dec = d.Decide("ok", nil, []models.ChatMessage{user("she keeps showing up at my work")})
	assert.Equal(t, "safety.stalking.history", dec.Rule)
}

func TestRespond_SafetyPhrasings(t *testing.T) {
	d := newTestDispatcher(WithCountry("US"))
	tests := map[string]string{
		"he said he'd kill me":                    "safety.threats",
		"she said she would kill me":              "safety.threats",
		"I keep thinking about ending my life":    "safety.suicidal",
		"he hurts me":                             "safety.physical",
		"my partner is abusive and hurt me again": "safety.physical",
	}
	for msg, want := range tests {
		dec := d.Decide(msg, nil, nil)
		assert.Equal(t, TierSafety, dec.Tier, msg)
		assert.Equal(t, want, dec.Rule, msg)
		assert.Contains(t, d.Render(dec), "911", msg)
	}
}

func TestRespond_InjectedHotlines(t *testing.T) {
	d := newTestDispatcher(WithHotlines(fixedDirectory{hotline.Resources{
		Emergency:        "000-TEST",
		DomesticViolence: "DV-LINE",
		Suicide:          "S-LINE",
		Stalking:         "ST-LINE",
	}}))

	reply := d.Respond("he threatened me", nil, nil)
	assert.Contains(t, reply, "DV-LINE")
	assert.Contains(t, reply, "000-TEST")
	assert.NotContains(t, reply, "911")
}

func TestRespond_Welcome(t *testing.T) {
	d := newTestDispatcher()

	tests := []struct {
		name    string
		entries []models.JournalEntry
		want    string
	}{
		{"no journal", nil, "stage.welcome"},
		{"journal without flags", plainEntries(), "stage.welcome_journal"},
		{"journal with flags", flaggedEntries(), "stage.welcome_flags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := d.Decide("", tt.entries, nil)
			assert.Equal(t, "stage.welcome", dec.Rule)
			assert.Equal(t, []string{tt.want}, dec.Keys)
		})
	}

	reply := d.Respond("", flaggedEntries(), nil)
	assert.Contains(t, reply, "1 of your 2 journal entries")
	assert.Contains(t, reply, "gaslighting")
}

func TestRespond_FirstMessage(t *testing.T) {
	d := newTestDispatcher()

	tests := []struct {
		msg  string
		rule string
		keys []string
	}{
		{"hello", "stage.first.open", []string{"stage.first.who"}},
		{"hi, it's about my sister", "stage.first.open", []string{"stage.first.person"}},
		{"can you help?", "stage.first.question", []string{"stage.first.question"}},
		{"he lied to me again", "topic.lying", []string{"topic.lying", "ask.who"}},
		{"my husband lied to me", "topic.lying", []string{"topic.lying"}},
		{"I feel so angry", "emotion.anger", []string{"emotion.anger"}},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			dec := d.Decide(tt.msg, nil, nil)
			assert.Equal(t, tt.rule, dec.Rule)
			assert.Equal(t, tt.keys, dec.Keys)
		})
	}

	assert.Contains(t, d.Respond("hi, it's about my sister", nil, nil), "your sister")
	assert.Contains(t, d.Respond("he lied to me again", nil, nil), "Who is this happening with?")
}

func TestRespond_PersonAcknowledgement(t *testing.T) {
	d := newTestDispatcher()
	transcript := []models.ChatMessage{
		user("he keeps lying"),
		bot("Dishonesty hurts. Who is this happening with?"),
	}

	dec := d.Decide("my husband", nil, transcript)
	assert.Equal(t, "stage.person_ack", dec.Rule)
	assert.Equal(t, []string{"stage.person_ack_issue"}, dec.Keys)

	reply := d.Render(dec)
	assert.Contains(t, reply, "your husband")
	assert.Contains(t, reply, "the lying")
}

func TestRespond_DepthTiers(t *testing.T) {
	d := newTestDispatcher()

	t.Run("early impact follow-up", func(t *testing.T) {
		transcript := []models.ChatMessage{user("my wife yells at me"), bot("..."), user("she does it every day"), bot("...")}
		dec := d.Decide("yesterday too", nil, transcript)
		assert.Equal(t, "depth.early", dec.Rule)
		assert.Contains(t, d.Render(dec), "the yelling")
	})

	t.Run("medium tried", func(t *testing.T) {
		dec := d.Decide("I've tried talking to him", nil, users(4))
		assert.Equal(t, []string{"depth.tried"}, dec.Keys)
	})

	t.Run("medium leaving", func(t *testing.T) {
		dec := d.Decide("I'm leaving next week", nil, users(5))
		assert.Equal(t, []string{"depth.leaving"}, dec.Keys)
	})

	t.Run("medium impact not yet covered", func(t *testing.T) {
		dec := d.Decide("it is what it is", nil, users(5))
		assert.Equal(t, []string{"depth.impact"}, dec.Keys)
	})

	t.Run("medium duration after impact", func(t *testing.T) {
		transcript := append(users(4), user("I feel sad"), bot("..."))
		dec := d.Decide("it is what it is", nil, transcript)
		assert.Equal(t, []string{"depth.duration"}, dec.Keys)
	})

	t.Run("deep decision", func(t *testing.T) {
		dec := d.Decide("should I leave?", nil, users(9))
		assert.Equal(t, "depth.deep", dec.Rule)
		assert.Equal(t, []string{"depth.decision"}, dec.Keys)
	})

	t.Run("deep reflection with journal", func(t *testing.T) {
		dec := d.Decide("ok", flaggedEntries(), users(12))
		assert.Equal(t, []string{"depth.reflect_flags"}, dec.Keys)
		assert.Contains(t, d.Render(dec), "1 concerns across 1 entries")
	})
}

func TestRespond_LaterTiers(t *testing.T) {
	d := newTestDispatcher()
	opening := []models.ChatMessage{user("hello"), bot("Hi, how can I help?")}

	tests := []struct {
		msg  string
		rule string
	}{
		{"should I leave him?", "meta.should-leave"},
		{"is this normal", "meta.is-normal"},
		{"my mom again", "relationship"},
		{"okay", "fallback"},
		{"she gives me the silent treatment", "topic.silent-treatment"},
		{"I feel worthless", "emotion.worthlessness"},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.rule, d.Decide(tt.msg, nil, opening).Rule)
		})
	}

	assert.Contains(t, d.Respond("my mom again", nil, opening), "your mom")
	assert.Contains(t, d.Respond("okay", plainEntries(), opening), "3.5")
}

func TestRespond_Deterministic(t *testing.T) {
	d := newTestDispatcher()
	transcript := users(3)
	a := d.Respond("he checks my phone", flaggedEntries(), transcript)
	b := d.Respond("he checks my phone", flaggedEntries(), transcript)
	assert.Equal(t, a, b)
}

type cyclePicker struct{ n int }

func (c *cyclePicker) IntN(n int) int {
	c.n++
	return c.n % n
}

func TestRespond_VariesPhrasing(t *testing.T) {
	d := New(WithPicker(&cyclePicker{}))
	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		seen[d.Respond("hello", nil, nil)] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestCatalog_CoversEveryKey(t *testing.T) {
	c := DefaultCatalog()
	for _, key := range TemplateKeys() {
		variants := c.Templates(DefaultLocale, key)
		assert.GreaterOrEqual(t, len(variants), 2, "key %s", key)
		assert.LessOrEqual(t, len(variants), 5, "key %s", key)
	}
}

func TestCatalog_PlaceholdersAreKnown(t *testing.T) {
	known := map[string]bool{}
	for i, v := range New().vars(&turn{}) {
		if i%2 == 0 {
			known[v] = true
		}
	}

	placeholder := regexp.MustCompile(`\{[a-z_]+\}`)
	c := DefaultCatalog()
	for _, key := range TemplateKeys() {
		for _, tmpl := range c.Templates(DefaultLocale, key) {
			for _, p := range placeholder.FindAllString(tmpl, -1) {
				assert.True(t, known[p], "unknown placeholder %s in %s", p, key)
			}
		}
	}
}

func TestCatalog_LocaleFallback(t *testing.T) {
	c, err := ParseCatalog(catalogEN, []byte(`
es:
  labels:
    someone: "esta persona"
  templates:
    fallback:
      - "Te escucho."
      - "Cuéntame más."
`))
	require.NoError(t, err)

	assert.Equal(t, "Te escucho.", c.Templates("es", "fallback")[0])
	assert.Equal(t, c.Templates("en", "ask.who"), c.Templates("es", "ask.who"))
	assert.Equal(t, "esta persona", c.Label("es", "someone"))
	assert.Equal(t, "the lying", c.Label("es", "lying"))
	assert.Equal(t, "unknown-key", c.Label("es", "unknown-key"))

	_, err = ParseCatalog([]byte("fr:\n  templates: {}\n"))
	assert.Error(t, err)
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "safety", TierSafety.String())
	assert.Equal(t, "fallback", TierFallback.String())
	assert.Equal(t, "unknown", Tier(99).String())
}

func TestForCountry(t *testing.T) {
	d := newTestDispatcher(WithCountry("US"))
	assert.Same(t, d, d.ForCountry(""))
	assert.Same(t, d, d.ForCountry("US"))

	gb := d.ForCountry("GB")
	reply := gb.Respond("my boyfriend hit me last night", nil, nil)
	assert.Contains(t, reply, "999")
	assert.Contains(t, d.Respond("my boyfriend hit me last night", nil, nil), "911")
}
