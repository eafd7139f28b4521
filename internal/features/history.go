package features

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/harrison/flagwise/internal/models"
)

// Depth buckets a conversation by user message count.
type Depth string

const (
	DepthBeginning Depth = "beginning"
	DepthMedium    Depth = "medium"
	DepthDeep      Depth = "deep"
)

// ClassifyDepth returns beginning below 5 messages, deep above 10, medium otherwise.
func ClassifyDepth(count int) Depth {
	switch {
	case count < 5:
		return DepthBeginning
	case count <= 10:
		return DepthMedium
	default:
		return DepthDeep
	}
}

// Trend describes how user message length moves turn to turn.
type Trend string

const (
	TrendSteady    Trend = "steady"
	TrendGrowing   Trend = "growing"
	TrendShrinking Trend = "shrinking"
)

// Thresholds for the "has shared" signals, in characters.
const (
	SharedDetailsChars   = 100
	SharedLongStoryChars = 150
)

var askedWho = regexp.MustCompile(`\bwho\b[^?]*\?`)

// History is the cumulative view of a transcript. It is a value: Add returns
// a new History and never modifies the receiver. Issue and safety signals
// only ever turn on.
type History struct {
	Issues  TagSet
	Persons PersonSet

	SharedDetails   bool
	SharedLongStory bool

	PhysicalDanger bool
	SuicidalIdeas  bool
	StalkingRaised bool
	ThreatsRaised  bool

	MessageCount int
	LastLength   LengthClass
	LengthTrend  Trend

	// LastAssistantAskedWho is true when the most recent assistant turn
	// asked who the user was talking about.
	LastAssistantAskedWho bool

	lastChars int
}

// Person returns the identified person by fixed priority, or "".
func (h History) Person() Person { return h.Persons.First() }

// Relationship returns the class of the identified person, or "".
func (h History) Relationship() Relationship { return RelationshipOf(h.Person()) }

// Depth returns the depth class of the conversation.
func (h History) Depth() Depth { return ClassifyDepth(h.MessageCount) }

// Discussed reports whether t has come up in any user message.
func (h History) Discussed(t Tag) bool { return h.Issues.Has(t) }

// EmotionalImpactDiscussed reports whether the user has described feelings.
func (h History) EmotionalImpactDiscussed() bool { return len(h.Issues.InGroup(GroupEmotion)) > 0 }

// DurationDiscussed reports whether the user has said how long this has gone on.
func (h History) DurationDiscussed() bool { return h.Issues.Has(Duration) }

// SupportDiscussed reports whether the user has mentioned a support network.
func (h History) SupportDiscussed() bool { return h.Issues.Has(Support) }

// SafetyRaised reports whether any safety signal has ever been seen.
func (h History) SafetyRaised() bool {
	return h.PhysicalDanger || h.SuicidalIdeas || h.StalkingRaised || h.ThreatsRaised
}

// FirstIssue returns the first topic discussed in table order, or "".
func (h History) FirstIssue() Tag {
	if topics := h.Issues.InGroup(GroupTopic); len(topics) > 0 {
		return topics[0]
	}
	return ""
}

// Add folds one message into the history.
func (h History) Add(m models.ChatMessage) History {
	if m.Role == models.RoleAssistant {
		h.LastAssistantAskedWho = askedWho.MatchString(strings.ToLower(m.Content))
		return h
	}

	trimmed := strings.TrimSpace(m.Content)
	if trimmed == "" {
		return h
	}
	f := Extract(trimmed)
	n := utf8.RuneCountInString(trimmed)

	h.Issues = h.Issues.Union(f.TagSet)
	h.Persons |= f.Persons
	h.SharedDetails = h.SharedDetails || n > SharedDetailsChars
	h.SharedLongStory = h.SharedLongStory || n > SharedLongStoryChars

	h.PhysicalDanger = h.PhysicalDanger || f.Has(PhysicalViolence)
	h.SuicidalIdeas = h.SuicidalIdeas || f.Has(Suicidal)
	h.StalkingRaised = h.StalkingRaised || f.Has(Stalking)
	h.ThreatsRaised = h.ThreatsRaised || f.Has(Threats)

	switch {
	case h.MessageCount == 0:
		h.LengthTrend = TrendSteady
	case n > h.lastChars*3/2:
		h.LengthTrend = TrendGrowing
	case n < h.lastChars*2/3:
		h.LengthTrend = TrendShrinking
	default:
		h.LengthTrend = TrendSteady
	}

	h.MessageCount++
	h.LastLength = ClassifyLength(n)
	h.lastChars = n
	return h
}

// ExtractHistory folds a whole transcript from the empty History.
func ExtractHistory(transcript []models.ChatMessage) History {
	var h History
	for _, m := range transcript {
		h = h.Add(m)
	}
	return h
}

// WithCurrent returns the transcript with message appended as a user turn,
// unless it is empty or already the last user turn.
func WithCurrent(transcript []models.ChatMessage, message string) []models.ChatMessage {
	if strings.TrimSpace(message) == "" {
		return transcript
	}
	if n := len(transcript); n > 0 {
		last := transcript[n-1]
		if last.Role == models.RoleUser && last.Content == message {
			return transcript
		}
	}
	out := make([]models.ChatMessage, len(transcript), len(transcript)+1)
	copy(out, transcript)
	return append(out, models.ChatMessage{Role: models.RoleUser, Content: message})
}
