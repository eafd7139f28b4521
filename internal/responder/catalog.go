package responder

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog_en.yaml
var catalogEN []byte

// DefaultLocale is used when a requested locale or key is missing.
const DefaultLocale = "en"

type localeCatalog struct {
	Labels    map[string]string   `yaml:"labels"`
	Templates map[string][]string `yaml:"templates"`
}

// Catalog holds response templates and labels per locale.
type Catalog struct {
	locales map[string]localeCatalog
}

// ParseCatalog decodes one or more YAML documents, each a map of locale to
// labels and templates. Later documents extend earlier ones.
func ParseCatalog(docs ...[]byte) (*Catalog, error) {
	c := &Catalog{locales: make(map[string]localeCatalog)}
	for _, doc := range docs {
		var parsed map[string]localeCatalog
		if err := yaml.Unmarshal(doc, &parsed); err != nil {
			return nil, fmt.Errorf("parse response catalog: %w", err)
		}
		for locale, lc := range parsed {
			locale = strings.ToLower(locale)
			existing, ok := c.locales[locale]
			if !ok {
				existing = localeCatalog{Labels: map[string]string{}, Templates: map[string][]string{}}
			}
			for k, v := range lc.Labels {
				existing.Labels[k] = v
			}
			for k, v := range lc.Templates {
				existing.Templates[k] = v
			}
			c.locales[locale] = existing
		}
	}
	if _, ok := c.locales[DefaultLocale]; !ok {
		return nil, fmt.Errorf("response catalog has no %q locale", DefaultLocale)
	}
	return c, nil
}

// DefaultCatalog returns the embedded English catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(catalogEN)
	if err != nil {
		panic(err)
	}
	return c
}

// Templates returns the variants for key, falling back to the default locale.
func (c *Catalog) Templates(locale, key string) []string {
	if lc, ok := c.locales[strings.ToLower(locale)]; ok {
		if t := lc.Templates[key]; len(t) > 0 {
			return t
		}
	}
	return c.locales[DefaultLocale].Templates[key]
}

// Label returns the display label for key, falling back to the default
// locale and then to the key itself.
func (c *Catalog) Label(locale, key string) string {
	if lc, ok := c.locales[strings.ToLower(locale)]; ok {
		if l, ok := lc.Labels[key]; ok {
			return l
		}
	}
	if l, ok := c.locales[DefaultLocale].Labels[key]; ok {
		return l
	}
	return key
}
