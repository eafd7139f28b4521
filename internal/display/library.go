package display

import (
	"github.com/fatih/color"

	"github.com/harrison/flagwise/internal/guide"
	"github.com/harrison/flagwise/internal/pattern"
)

// PatternList prints one line per detection pattern.
func (p *Printer) PatternList(defs []pattern.Definition) {
	for _, d := range defs {
		p.printf("%-24s %-9s %-22s %s\n", d.ID, p.paint(string(d.Severity), flagColor(d.Severity)), d.Category, d.Name)
	}
}

// Guide prints a long-form guide.
func (p *Printer) Guide(g *guide.Guide) {
	p.printf("%s\n\n%s\n", p.paint(g.Title, color.Bold, color.Underline), g.Summary)

	sections := []struct {
		title string
		items []string
	}{
		{"Recognition signs", g.RecognitionSigns},
		{"What you can say", g.ResponseScripts},
		{"Boundaries", g.BoundaryTemplates},
		{"When to consider leaving", g.WhenToLeave},
		{"Resources", g.Resources},
	}
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		p.printf("\n")
		p.heading(s.title)
		p.list("  ", s.items)
	}
}
