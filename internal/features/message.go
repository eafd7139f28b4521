package features

import (
	"strings"
	"unicode/utf8"

	"github.com/harrison/flagwise/internal/pattern"
)

// LengthClass buckets a message by character count.
type LengthClass string

const (
	Short  LengthClass = "short"
	Medium LengthClass = "medium"
	Long   LengthClass = "long"
)

// ClassifyLength buckets n characters: short <20, medium <80, long otherwise.
func ClassifyLength(n int) LengthClass {
	switch {
	case n < 20:
		return Short
	case n < 80:
		return Medium
	default:
		return Long
	}
}

// MessageFeatures are the signals found in a single message.
type MessageFeatures struct {
	TagSet
	Persons PersonSet
	Length  LengthClass
	Chars   int
}

// Person returns the highest-priority person mentioned, or "".
func (f MessageFeatures) Person() Person { return f.Persons.First() }

// HasTopic reports whether any topic or safety tag fired.
func (f MessageFeatures) HasTopic() bool {
	return len(f.InGroup(GroupTopic)) > 0 || len(f.InGroup(GroupSafety)) > 0
}

// HasEmotion reports whether any emotion tag fired.
func (f MessageFeatures) HasEmotion() bool {
	return len(f.InGroup(GroupEmotion)) > 0
}

// Extract computes the features of one message. Empty input yields the zero
// signal set with a short length class.
func Extract(message string) MessageFeatures {
	trimmed := strings.TrimSpace(message)
	n := utf8.RuneCountInString(trimmed)
	f := MessageFeatures{Length: ClassifyLength(n), Chars: n}
	if trimmed == "" {
		return f
	}
	normalized := pattern.Normalize(trimmed)
	f.TagSet = Match(normalized)
	f.Persons = matchPersons(normalized)
	return f
}
