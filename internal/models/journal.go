package models

import (
	"time"

	"github.com/google/uuid"
)

// RelationshipContext is the kind of relationship a journal entry is about.
type RelationshipContext string

const (
	ContextRomantic   RelationshipContext = "romantic"
	ContextWorkplace  RelationshipContext = "workplace"
	ContextFamily     RelationshipContext = "family"
	ContextFriendship RelationshipContext = "friendship"
	ContextGeneral    RelationshipContext = "general"
)

// ParseContext maps free text to a RelationshipContext, defaulting to general.
func ParseContext(s string) RelationshipContext {
	switch RelationshipContext(s) {
	case ContextRomantic, ContextWorkplace, ContextFamily, ContextFriendship:
		return RelationshipContext(s)
	default:
		return ContextGeneral
	}
}

// JournalEntry is one logged relationship moment.
// Entries are read-only after creation; only whole-entry deletion is supported.
type JournalEntry struct {
	ID       string              `json:"id" validate:"required"`
	Date     time.Time           `json:"date" validate:"required"`
	Content  string              `json:"content" validate:"maxbytes"`
	Mood     int                 `json:"mood" validate:"min=1,max=5"`
	Emotions []string            `json:"emotions,omitempty" validate:"max=20,dive,max=40"`
	Context  RelationshipContext `json:"context" validate:"oneof=romantic workplace family friendship general"`
	Analysis *AnalysisResult     `json:"analysis,omitempty"`
}

// NewJournalEntry creates an entry with a fresh id and the given timestamp.
// Analysis is attached separately by the caller.
func NewJournalEntry(content string, mood int, emotions []string, ctx RelationshipContext, at time.Time) *JournalEntry {
	return &JournalEntry{
		ID:       uuid.NewString(),
		Date:     at.UTC(),
		Content:  content,
		Mood:     mood,
		Emotions: emotions,
		Context:  ctx,
	}
}

// Validate checks field ranges (mood 1-5, known context, content size).
func (e *JournalEntry) Validate() error {
	return validate.Struct(e)
}

// FlagTypes returns the pattern ids attached to the entry's analysis.
func (e *JournalEntry) FlagTypes() []string {
	if e.Analysis == nil {
		return nil
	}
	types := make([]string, 0, len(e.Analysis.Flags))
	for _, f := range e.Analysis.Flags {
		types = append(types, f.Type)
	}
	return types
}
