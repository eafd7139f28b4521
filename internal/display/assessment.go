package display

import (
	"github.com/fatih/color"

	"github.com/harrison/flagwise/internal/psychometric"
)

// Assessment prints a psychometric result.
func (p *Printer) Assessment(r psychometric.Result) {
	p.printf("Overall %s  risk: %s\n\n", p.ScoreBar(r.OverallScore, 20),
		p.paint(string(r.RiskLevel), riskColor(string(r.RiskLevel)), color.Bold))

	for _, d := range r.Dimensions {
		p.printf("  %-28s %s  %s\n", d.Name, p.ScoreBar(d.Score, 20), d.RiskLevel)
	}

	sections := []struct {
		title string
		items []string
	}{
		{"Insights", r.Insights},
		{"Patterns", r.Patterns},
		{"Recommendations", r.Recommendations},
		{"Next steps", r.NextSteps},
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
