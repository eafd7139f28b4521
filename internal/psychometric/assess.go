package psychometric

import (
	"fmt"
	"strings"

	"github.com/harrison/flagwise/internal/models"
)

// Result is one assessment. It carries no timestamp so identical input
// always yields identical output.
type Result struct {
	Source          string      `json:"source"`
	Dimensions      []Dimension `json:"dimensions"`
	OverallScore    int         `json:"overall_score"`
	RiskLevel       RiskLevel   `json:"risk_level"`
	Insights        []string    `json:"insights"`
	Recommendations []string    `json:"recommendations"`
	Patterns        []string    `json:"patterns"`
	NextSteps       []string    `json:"next_steps"`
}

// Dimension returns the dimension with id, if present.
func (r Result) Dimension(id string) (Dimension, bool) {
	for _, d := range r.Dimensions {
		if d.ID == id {
			return d, true
		}
	}
	return Dimension{}, false
}

type delta struct {
	dim string
	by  int
}

// nodeHint adjusts dimensions when a visited node id contains one of its
// substrings. Each hint applies at most once per path.
type nodeHint struct {
	substrings []string
	deltas     []delta
	indicator  string
}

var nodeHints = []nodeHint{
	{[]string{"danger", "violence", "safety"}, []delta{{Safety, -20}, {EmotionalHealth, -15}}, "Safety concerns reported"},
	{[]string{"lying", "cheating", "betrayal"}, []delta{{Trust, -25}, {EmotionalHealth, -15}}, "Dishonesty or betrayal"},
	{[]string{"gaslight"}, []delta{{Trust, -10}, {EmotionalHealth, -20}}, "Reality denied or distorted"},
	{[]string{"control", "isolation"}, []delta{{Independence, -20}, {Respect, -10}}, "Controlling or isolating behavior"},
	{[]string{"criticism", "disrespect", "respect"}, []delta{{Respect, -20}, {EmotionalHealth, -10}}, "Criticism or disrespect"},
	{[]string{"communication", "silent"}, []delta{{Communication, -20}}, "Communication breakdown"},
	{[]string{"jealous"}, []delta{{Trust, -10}, {Independence, -10}}, "Jealousy and monitoring"},
	{[]string{"healthy"}, []delta{{Communication, 10}, {Trust, 10}, {Respect, 10}}, "Healthy conflict"},
}

// flagRoute sends a journal flag's penalty to dimensions by substring of its
// type. Flags matching no route land on emotional_health.
type flagRoute struct {
	substrings []string
	dims       []string
}

var flagRoutes = []flagRoute{
	{[]string{"gaslighting", "jealous"}, []string{Trust}},
	{[]string{"control", "isolation", "micromanagement"}, []string{Independence}},
	{[]string{"disrespect", "criticism", "humiliation", "boundary"}, []string{Respect}},
	{[]string{"communication", "blame"}, []string{Communication}},
	{[]string{"threat", "bullying", "violence"}, []string{Safety}},
}

var severityPenalty = map[models.FlagSeverity]int{
	models.FlagSevere:   -15,
	models.FlagModerate: -10,
	models.FlagMild:     -5,
}

// AssessFromConversation scores a guided-exploration path from the ids of
// the nodes it visited.
func AssessFromConversation(path models.ConversationPath) Result {
	sc := newScorecard()
	for _, h := range nodeHints {
		if !pathHits(path.Nodes, h.substrings) {
			continue
		}
		for _, d := range h.deltas {
			sc.adjust(d.dim, d.by, h.indicator)
		}
	}
	return sc.result("conversation")
}

func pathHits(nodes []string, substrings []string) bool {
	for _, id := range nodes {
		lower := strings.ToLower(id)
		for _, s := range substrings {
			if strings.Contains(lower, s) {
				return true
			}
		}
	}
	return false
}

// AssessFromJournal scores a set of journal entries: mood moves emotional
// health, each attached flag applies a severity-scaled penalty, and low-mood
// romantic entries cost a little trust.
func AssessFromJournal(entries []models.JournalEntry) Result {
	sc := newScorecard()
	for _, e := range entries {
		mood := min(5, max(1, e.Mood))
		switch {
		case mood > 3:
			sc.adjust(EmotionalHealth, (mood-3)*10, "Positive mood entries")
		case mood < 3:
			sc.adjust(EmotionalHealth, (mood-3)*10, "Low mood entries")
		}

		if e.Context == models.ContextRomantic && mood < 3 {
			sc.adjust(Trust, -5, "Low mood in romantic context")
		}

		if e.Analysis == nil {
			continue
		}
		for _, f := range e.Analysis.Flags {
			penalty, ok := severityPenalty[f.Severity]
			if !ok {
				penalty = severityPenalty[models.FlagMild]
			}
			for _, dim := range routeFlag(f.Type) {
				sc.adjust(dim, penalty, f.Type)
			}
		}
	}
	return sc.result("journal")
}

func routeFlag(flagType string) []string {
	lower := strings.ToLower(flagType)
	var dims []string
	for _, r := range flagRoutes {
		for _, s := range r.substrings {
			if strings.Contains(lower, s) {
				dims = append(dims, r.dims...)
				break
			}
		}
	}
	if len(dims) == 0 {
		return []string{EmotionalHealth}
	}
	return dims
}

func (sc *scorecard) result(source string) Result {
	overall := sc.overall()
	r := Result{
		Source:       source,
		Dimensions:   make([]Dimension, len(sc.dims)),
		OverallScore: overall,
		RiskLevel:    RiskFor(overall),
	}
	for i, d := range sc.dims {
		d.Indicators = append([]string{}, d.Indicators...)
		r.Dimensions[i] = d
	}
	r.Insights = insights(r.Dimensions)
	r.Recommendations = recommendations(r.RiskLevel, r.Dimensions)
	r.Patterns = patterns(r.Dimensions)
	r.NextSteps = nextSteps(r.RiskLevel)
	return r
}

func insights(dims []Dimension) []string {
	var out []string
	for _, d := range dims {
		if d.RiskLevel == RiskCritical {
			out = append(out, "Some areas are at a critical level. Please consider reaching out to a hotline or counselor for support.")
			break
		}
	}
	for _, d := range dims {
		switch {
		case d.Score < 40:
			out = append(out, fmt.Sprintf("%s is an area of concern (score %d).", d.Name, d.Score))
		case d.Score > 70:
			out = append(out, fmt.Sprintf("%s is a relative strength (score %d).", d.Name, d.Score))
		}
	}
	if len(out) == 0 {
		out = append(out, "No dimension stands out strongly in either direction yet.")
	}
	return out
}

var riskRecommendations = map[RiskLevel][]string{
	RiskCritical: {
		"Contact a domestic violence hotline or crisis line to talk through your situation.",
		"Create a safety plan, including a place you could go and people you could call.",
	},
	RiskHigh: {
		"Consider speaking with a counselor who understands relationship abuse.",
		"Share what is happening with someone you trust.",
	},
	RiskModerate: {
		"Keep journaling to track whether these patterns are changing.",
		"Practice stating your boundaries clearly and notice how they are received.",
	},
	RiskLow: {
		"Keep nurturing the healthy parts of this relationship.",
		"Check in with yourself regularly about how the relationship feels.",
	},
}

var dimensionRecommendations = map[string]string{
	Safety:          "Your safety score is low. Keep emergency numbers handy and make a plan for leaving quickly if needed.",
	Trust:           "Trust is strained. Pay attention to whether actions match words over time.",
	Respect:         "Respect is lacking. You deserve to be treated as an equal.",
	Communication:   "Communication is struggling. Try raising concerns at calm moments, and notice whether you are heard.",
	Independence:    "Your independence is limited. Reconnect with friends, interests, and your own finances where you can.",
	EmotionalHealth: "Your emotional wellbeing is suffering. Make time for rest and for people who support you.",
}

func recommendations(risk RiskLevel, dims []Dimension) []string {
	out := append([]string{}, riskRecommendations[risk]...)
	for _, d := range dims {
		if d.Score < 40 {
			out = append(out, dimensionRecommendations[d.ID])
		}
	}
	return out
}

func patterns(dims []Dimension) []string {
	var out []string
	for _, d := range dims {
		if len(d.Indicators) > 0 {
			out = append(out, fmt.Sprintf("%s: %s", d.Name, strings.Join(d.Indicators, ", ")))
		}
	}
	return out
}

var riskNextSteps = map[RiskLevel][]string{
	RiskCritical: {"Reach out to a crisis resource today.", "Identify one safe person you can contact."},
	RiskHigh:     {"Book time with a counselor or support service.", "Review the red flag library for the patterns you recognize."},
	RiskModerate: {"Journal about the next few difficult moments.", "Revisit this assessment in a couple of weeks."},
	RiskLow:      {"Continue journaling to keep an eye on how things feel.", "Celebrate what is working well."},
}

func nextSteps(risk RiskLevel) []string {
	return append([]string{}, riskNextSteps[risk]...)
}
