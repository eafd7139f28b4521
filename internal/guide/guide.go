// Package guide holds the browsable red-flag reference library: long-form
// guidance per flag id (recognition signs, response scripts, boundary
// templates, when-to-leave criteria, resources).
//
// It is deliberately separate from the detection table in internal/pattern.
// The two share only their id namespace so a detected flag can link to its
// guidance.
package guide

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"
)

//go:embed library.md
var librarySource []byte

// Section names recognized under each guide.
const (
	SectionRecognition = "recognition signs"
	SectionScripts     = "response scripts"
	SectionBoundaries  = "boundary templates"
	SectionWhenToLeave = "when to leave"
	SectionResources   = "resources"
)

// Guide is the long-form guidance for one flag id.
type Guide struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Summary           string   `json:"summary"`
	RecognitionSigns  []string `json:"recognition_signs"`
	ResponseScripts   []string `json:"response_scripts"`
	BoundaryTemplates []string `json:"boundary_templates"`
	WhenToLeave       []string `json:"when_to_leave"`
	Resources         []string `json:"resources"`
}

// Library is an immutable set of guides keyed by id.
type Library struct {
	guides map[string]*Guide
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
	defaultErr  error
)

// Default parses the embedded library once.
func Default() (*Library, error) {
	defaultOnce.Do(func() {
		defaultLib, defaultErr = Parse(librarySource)
	})
	return defaultLib, defaultErr
}

// Lookup returns the guide for a flag id.
func (l *Library) Lookup(id string) (*Guide, bool) {
	g, ok := l.guides[id]
	return g, ok
}

// IDs lists all guide ids, sorted.
func (l *Library) IDs() []string {
	ids := make([]string, 0, len(l.guides))
	for id := range l.guides {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Missing returns the ids from want that have no guide.
func (l *Library) Missing(want []string) []string {
	var missing []string
	for _, id := range want {
		if _, ok := l.guides[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func (g *Guide) section(name string) (*[]string, error) {
	switch name {
	case SectionRecognition:
		return &g.RecognitionSigns, nil
	case SectionScripts:
		return &g.ResponseScripts, nil
	case SectionBoundaries:
		return &g.BoundaryTemplates, nil
	case SectionWhenToLeave:
		return &g.WhenToLeave, nil
	case SectionResources:
		return &g.Resources, nil
	default:
		return nil, fmt.Errorf("unknown section %q in guide %s", name, g.ID)
	}
}
