package responder

import (
	"github.com/harrison/flagwise/internal/features"
)

// Tier is a priority band of the dispatch cascade. Lower values win.
type Tier int

const (
	TierSafety Tier = iota
	TierStage
	TierDepth
	TierTopic
	TierEmotion
	TierMeta
	TierRelationship
	TierFallback
)

var tierNames = [...]string{"safety", "stage", "depth", "topic", "emotion", "meta", "relationship", "fallback"}

func (t Tier) String() string {
	if int(t) < len(tierNames) {
		return tierNames[t]
	}
	return "unknown"
}

// rule is one row of the cascade. keys returns the template keys to render
// and joins them with a space; a nil result means the rule does not apply.
type rule struct {
	name string
	tier Tier
	keys func(t *turn) []string
}

type safetyCheck struct {
	tag     features.Tag
	raised  func(h features.History) bool
	keyName string
}

var safetyChecks = []safetyCheck{
	{features.PhysicalViolence, func(h features.History) bool { return h.PhysicalDanger }, "safety.physical"},
	{features.Suicidal, func(h features.History) bool { return h.SuicidalIdeas }, "safety.suicidal"},
	{features.Stalking, func(h features.History) bool { return h.StalkingRaised }, "safety.stalking"},
	{features.Threats, func(h features.History) bool { return h.ThreatsRaised }, "safety.threats"},
}

// topicOrder is the topic tier check order.
var topicOrder = []features.Tag{
	features.Manipulation, features.Gaslighting, features.Lying, features.Cheating,
	features.Yelling, features.Disrespect, features.SilentTreat, features.Jealousy,
	features.Control, features.Criticism, features.Blaming, features.Isolation,
	features.Boundaries, features.Communication, features.Financial, features.LoveBombing,
}

// emotionOrder is the emotion tier check order.
var emotionOrder = []features.Tag{
	features.Anger, features.Sadness, features.Worthless, features.Trapped,
	features.Confusion, features.Fear, features.Loneliness, features.Guilt,
	features.Betrayal, features.Tiredness, features.Hope,
}

var metaOrder = []features.Tag{
	features.AskShouldLeave, features.AskIsNormal, features.SaysLoveThem, features.AskHelp,
}

func when(ok bool, keys ...string) []string {
	if !ok {
		return nil
	}
	return keys
}

// withWho appends the who-question when nobody has been identified yet.
func withWho(t *turn, keys ...string) []string {
	if t.hist.Person() == "" {
		return append(keys, "ask.who")
	}
	return keys
}

func journalKey(t *turn, base string) string {
	switch {
	case t.stats.TotalFlags > 0:
		return base + "_flags"
	case t.stats.HasEntries():
		return base + "_journal"
	default:
		return base
	}
}

func buildRules() []rule {
	var rules []rule

	rules = append(rules, rule{"safety.physical_now", TierSafety, func(t *turn) []string {
		return when((t.msg.Has(features.PhysicalViolence) || t.hist.PhysicalDanger) && t.msg.Has(features.HappeningNow),
			"safety.physical_now")
	}})
	// Current message first, then anything raised earlier in the transcript.
	for _, c := range safetyChecks {
		rules = append(rules, rule{c.keyName, TierSafety, func(t *turn) []string {
			return when(t.msg.Has(c.tag), c.keyName)
		}})
	}
	for _, c := range safetyChecks {
		rules = append(rules, rule{c.keyName + ".history", TierSafety, func(t *turn) []string {
			return when(c.raised(t.hist), c.keyName)
		}})
	}

	rules = append(rules,
		rule{"stage.welcome", TierStage, func(t *turn) []string {
			return when(t.hist.MessageCount == 0, journalKey(t, "stage.welcome"))
		}},
		rule{"stage.first.question", TierStage, func(t *turn) []string {
			return when(t.hist.MessageCount == 1 && !t.msg.HasTopic() && !t.msg.HasEmotion() && t.asksQuestion(),
				"stage.first.question")
		}},
		rule{"stage.first.open", TierStage, func(t *turn) []string {
			if t.hist.MessageCount != 1 || t.msg.HasTopic() || t.msg.HasEmotion() || t.asksQuestion() {
				return nil
			}
			if t.hist.Person() != "" {
				return []string{"stage.first.person"}
			}
			return []string{"stage.first.who"}
		}},
		rule{"stage.person_ack", TierStage, func(t *turn) []string {
			if t.hist.MessageCount != 2 || !t.hist.LastAssistantAskedWho || t.msg.Length != features.Short || t.msg.Person() == "" {
				return nil
			}
			if t.hist.FirstIssue() != "" {
				return []string{"stage.person_ack_issue"}
			}
			return []string{"stage.person_ack"}
		}},

		rule{"depth.deep", TierDepth, func(t *turn) []string {
			if t.hist.MessageCount < 10 {
				return nil
			}
			if t.msg.Has(features.AskShouldLeave) {
				return []string{"depth.decision"}
			}
			return []string{journalKey(t, "depth.reflect")}
		}},
		rule{"depth.medium", TierDepth, func(t *turn) []string {
			n := t.hist.MessageCount
			if n < 5 || n > 9 {
				return nil
			}
			switch {
			case t.msg.Has(features.SaysTried):
				return []string{"depth.tried"}
			case t.msg.Has(features.SaysLeaving):
				return []string{"depth.leaving"}
			case t.msg.Has(features.SaysStayed):
				return []string{"depth.stayed"}
			case !t.hist.EmotionalImpactDiscussed():
				return []string{"depth.impact"}
			case !t.hist.DurationDiscussed():
				return []string{"depth.duration"}
			case !t.hist.SupportDiscussed():
				return []string{"depth.support"}
			}
			return nil
		}},
		rule{"depth.early", TierDepth, func(t *turn) []string {
			n := t.hist.MessageCount
			return when(n >= 3 && n <= 4 && t.hist.FirstIssue() != "" && !t.msg.HasEmotion(), "depth.impact_issue")
		}},
	)

	for _, tag := range topicOrder {
		rules = append(rules, rule{"topic." + string(tag), TierTopic, func(t *turn) []string {
			if !t.msg.Has(tag) {
				return nil
			}
			t.issue = tag
			return withWho(t, "topic."+string(tag))
		}})
	}
	for _, tag := range emotionOrder {
		rules = append(rules, rule{"emotion." + string(tag), TierEmotion, func(t *turn) []string {
			if !t.msg.Has(tag) {
				return nil
			}
			t.emotion = tag
			return []string{"emotion." + string(tag)}
		}})
	}
	for _, tag := range metaOrder {
		rules = append(rules, rule{"meta." + string(tag), TierMeta, func(t *turn) []string {
			return when(t.msg.Has(tag), "meta."+string(tag))
		}})
	}

	rules = append(rules,
		rule{"relationship", TierRelationship, func(t *turn) []string {
			rel := t.hist.Relationship()
			return when(rel != "" && t.hist.FirstIssue() == "", "relationship."+string(rel))
		}},
		rule{"fallback", TierFallback, func(t *turn) []string {
			return []string{journalKey(t, "fallback")}
		}},
	)

	return rules
}

// TemplateKeys lists every template key the cascade can render.
func TemplateKeys() []string {
	keys := []string{
		"ask.who",
		"safety.physical_now",
		"stage.welcome", "stage.welcome_journal", "stage.welcome_flags",
		"stage.first.question", "stage.first.person", "stage.first.who",
		"stage.person_ack", "stage.person_ack_issue",
		"depth.decision", "depth.reflect", "depth.reflect_journal", "depth.reflect_flags",
		"depth.tried", "depth.leaving", "depth.stayed", "depth.impact", "depth.duration", "depth.support",
		"depth.impact_issue",
		"fallback", "fallback_journal", "fallback_flags",
	}
	for _, c := range safetyChecks {
		keys = append(keys, c.keyName)
	}
	for _, tag := range topicOrder {
		keys = append(keys, "topic."+string(tag))
	}
	for _, tag := range emotionOrder {
		keys = append(keys, "emotion."+string(tag))
	}
	for _, tag := range metaOrder {
		keys = append(keys, "meta."+string(tag))
	}
	for _, rel := range []features.Relationship{
		features.RelRomantic, features.RelFamily, features.RelFriendship, features.RelWork, features.RelEx,
	} {
		keys = append(keys, "relationship."+string(rel))
	}
	return keys
}
