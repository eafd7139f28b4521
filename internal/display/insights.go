package display

import (
	"github.com/fatih/color"

	"github.com/harrison/flagwise/internal/analytics"
	"github.com/harrison/flagwise/internal/progress"
)

// Progress prints counters and unlocked achievements.
func (p *Printer) Progress(pr progress.Progress) {
	p.heading("Progress")
	p.printf("  journal entries:   %d (%d days)\n", pr.JournalEntries, len(pr.JournalDays))
	p.printf("  chat messages:     %d\n", pr.ChatMessages)
	p.printf("  explorations:      %d\n", pr.Explorations)

	p.printf("\n")
	p.heading("Achievements")
	if len(pr.Achievements) == 0 {
		p.printf("  none yet\n")
		return
	}
	for _, a := range pr.Achievements {
		p.printf("  %s  %s\n", p.paint("★ "+a.Title, color.FgMagenta), a.Description)
	}
}

// Unlocked announces freshly unlocked achievements.
func (p *Printer) Unlocked(as []progress.Achievement) {
	for _, a := range as {
		p.Success("Achievement unlocked: %s", a.Title)
	}
}

// Report prints exploration analytics.
func (p *Printer) Report(r *analytics.Report) {
	p.heading("Guided explorations")
	if r.TotalPaths == 0 {
		p.printf("  none yet\n")
		return
	}
	p.printf("  total: %d   completed: %d   average score: %.0f   trend: %s\n",
		r.TotalPaths, r.CompletedPaths, r.AverageScore, r.Trend)
	if len(r.RecentScores) > 0 {
		p.printf("  recent scores: %v\n", r.RecentScores)
	}
	if top := r.GetTopNodes(5); len(top) > 0 {
		p.printf("  most visited:\n")
		for _, c := range top {
			p.printf("    %-28s %d\n", c.ID, c.Count)
		}
	}
	if len(r.Conclusions) > 0 {
		p.printf("  conclusions:\n")
		for _, c := range r.Conclusions {
			p.printf("    %-28s %d\n", Preview(c.ID, 28), c.Count)
		}
	}
	if pairs := r.GetTopPairs(3); len(pairs) > 0 {
		p.printf("  often together:\n")
		for _, pc := range pairs {
			p.printf("    %s + %s (%d)\n", pc.A, pc.B, pc.Count)
		}
	}
}
