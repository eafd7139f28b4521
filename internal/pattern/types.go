// Package pattern holds the static detection table used by the entry analyzer:
// named behavioral patterns with trigger phrases, a category, and a severity tier.
package pattern

import "github.com/harrison/flagwise/internal/models"

// Definition is one immutable detection pattern.
type Definition struct {
	// ID is the unique key, shared with the guidance library in internal/guide.
	ID string

	// Name is the human-readable label.
	Name string

	// Keywords are lower-case substrings or phrases; matching is case-insensitive.
	Keywords []string

	Category    models.Category
	Severity    models.FlagSeverity
	Description string
}

// Match returns the distinct keywords of d found in text, in table order.
// text must already be lower-cased.
func (d Definition) Match(text string) []string {
	var hits []string
	for _, kw := range d.Keywords {
		if containsPhrase(text, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}
