// Package hotline maps a country code to crisis resources used in safety
// responses. Numbers are data; callers inject a Directory so tests and
// regional builds control them.
package hotline

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed hotlines.yaml
var defaultTable []byte

// Resources are the crisis contacts for one country.
type Resources struct {
	Country          string `yaml:"-"`
	Name             string `yaml:"name"`
	Emergency        string `yaml:"emergency"`
	DomesticViolence string `yaml:"domestic_violence"`
	Suicide          string `yaml:"suicide"`
	Stalking         string `yaml:"stalking"`
	Text             string `yaml:"text"`
}

// Directory resolves resources by country code.
type Directory interface {
	Lookup(country string) Resources
}

// Table is a static Directory with a fallback entry.
type Table struct {
	Default   Resources            `yaml:"default"`
	Countries map[string]Resources `yaml:"countries"`
}

// Parse decodes a YAML hotline table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse hotline table: %w", err)
	}
	if t.Default.Emergency == "" {
		return nil, fmt.Errorf("hotline table has no default emergency contact")
	}
	normalized := make(map[string]Resources, len(t.Countries))
	for code, r := range t.Countries {
		code = strings.ToUpper(code)
		r.Country = code
		normalized[code] = r
	}
	t.Countries = normalized
	return &t, nil
}

// Default returns the embedded table. It panics if the embedded data is
// malformed, which is a build defect.
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the resources for country, or the default entry when the
// code is unknown or empty. Missing fields fall back to the default entry.
func (t *Table) Lookup(country string) Resources {
	r, ok := t.Countries[strings.ToUpper(strings.TrimSpace(country))]
	if !ok {
		return t.Default
	}
	if r.Emergency == "" {
		r.Emergency = t.Default.Emergency
	}
	if r.DomesticViolence == "" {
		r.DomesticViolence = t.Default.DomesticViolence
	}
	if r.Suicide == "" {
		r.Suicide = t.Default.Suicide
	}
	if r.Stalking == "" {
		r.Stalking = t.Default.Stalking
	}
	return r
}

// Codes lists the known country codes, sorted.
func (t *Table) Codes() []string {
	codes := make([]string, 0, len(t.Countries))
	for c := range t.Countries {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
