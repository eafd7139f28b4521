package pattern

import (
	"sort"
	"strings"

	"github.com/harrison/flagwise/internal/models"
)

// Library is the two-tier pattern table: a general relationship set plus a
// workplace overlay merged in only for workplace entries.
// It has no mutating operations.
type Library struct {
	base      []Definition
	workplace []Definition
	byID      map[string]Definition
}

// NewLibrary builds a library from explicit tables. IDs must be unique across both tiers.
func NewLibrary(base, workplace []Definition) *Library {
	l := &Library{
		base:      base,
		workplace: workplace,
		byID:      make(map[string]Definition, len(base)+len(workplace)),
	}
	for _, d := range base {
		l.byID[d.ID] = d
	}
	for _, d := range workplace {
		l.byID[d.ID] = d
	}
	return l
}

// Default returns the built-in library.
func Default() *Library {
	return defaultLibrary
}

var defaultLibrary = NewLibrary(basePatterns, workplacePatterns)

// ForContext returns the pattern set to scan for an entry of the given context.
func (l *Library) ForContext(ctx models.RelationshipContext) []Definition {
	if ctx != models.ContextWorkplace {
		return l.base
	}
	set := make([]Definition, 0, len(l.base)+len(l.workplace))
	set = append(set, l.base...)
	set = append(set, l.workplace...)
	return set
}

// Lookup finds a pattern by id.
func (l *Library) Lookup(id string) (Definition, bool) {
	d, ok := l.byID[id]
	return d, ok
}

// IDs returns every pattern id, sorted.
func (l *Library) IDs() []string {
	ids := make([]string, 0, len(l.byID))
	for id := range l.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// containsPhrase reports whether kw occurs in text as a substring.
func containsPhrase(text, kw string) bool {
	return kw != "" && strings.Contains(text, kw)
}

var quoteReplacer = strings.NewReplacer("’", "'", "‘", "'", "“", "\"", "”", "\"")

// Normalize lower-cases text and folds typographic quotes so "you’re" matches "you're".
func Normalize(text string) string {
	return strings.ToLower(quoteReplacer.Replace(text))
}
