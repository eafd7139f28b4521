package display

import (
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/harrison/flagwise/internal/analyzer"
	"github.com/harrison/flagwise/internal/models"
)

// Analysis prints an entry verdict.
func (p *Printer) Analysis(a *models.AnalysisResult) {
	if a == nil {
		p.printf("No analysis available.\n")
		return
	}
	p.printf("Severity: %s   Sentiment: %+.2f\n", p.paint(string(a.Severity), riskColor(string(a.Severity)), color.Bold), a.Sentiment)

	if len(a.Flags) == 0 {
		p.printf("No red flags detected.\n")
	} else {
		p.heading("Red flags")
		for _, f := range a.Flags {
			p.printf("  %s %s (%s, %.0f%% confidence)\n",
				p.paint("•", flagColor(f.Severity)), f.Type, f.Severity, f.Confidence*100)
			if f.Description != "" {
				p.printf("      %s\n", f.Description)
			}
			if len(f.Evidence) > 0 {
				p.printf("      matched: %s\n", strings.Join(f.Evidence, ", "))
			}
		}
	}
	if len(a.Concerns) > 0 {
		p.heading("Concerns")
		p.list("  ", a.Concerns)
	}
	if len(a.Suggestions) > 0 {
		p.heading("Suggestions")
		p.list("  ", a.Suggestions)
	}
}

func flagColor(s models.FlagSeverity) color.Attribute {
	switch s {
	case models.FlagSevere:
		return color.FgRed
	case models.FlagModerate:
		return color.FgYellow
	default:
		return color.FgCyan
	}
}

// EntryTable prints one line per entry: short id, date, mood, context,
// severity, and a content preview.
func (p *Printer) EntryTable(entries []models.JournalEntry) {
	if len(entries) == 0 {
		p.printf("No journal entries yet.\n")
		return
	}
	for _, e := range entries {
		severity := "-"
		if e.Analysis != nil {
			severity = string(e.Analysis.Severity)
		}
		p.printf("%-8s  %s  mood %d  %-10s  %-8s  %s\n",
			shortID(e.ID), e.Date.Local().Format("2006-01-02 15:04"), e.Mood, e.Context,
			p.paint(severity, riskColor(severity)), Preview(e.Content, 50))
	}
}

// Entry prints a single entry in full.
func (p *Printer) Entry(e models.JournalEntry) {
	p.heading(e.Date.Local().Format(time.RFC1123))
	p.printf("id: %s\nmood: %d/5   context: %s\n", e.ID, e.Mood, e.Context)
	if len(e.Emotions) > 0 {
		p.printf("emotions: %s\n", strings.Join(e.Emotions, ", "))
	}
	p.printf("\n%s\n\n", e.Content)
	p.Analysis(e.Analysis)
}

// Stats prints the journal summary.
func (p *Printer) Stats(s analyzer.Stats) {
	p.heading("Journal")
	if !s.HasEntries() {
		p.printf("  No entries yet.\n")
		return
	}
	p.printf("  entries: %d (%d flagged, %d flags total)\n", s.TotalEntries, s.FlaggedEntries, s.TotalFlags)
	p.printf("  recent mood: %.1f/5\n", s.AverageMood)
	for _, fc := range s.TopFlags {
		p.printf("  %-24s %d\n", fc.Type, fc.Count)
	}
}

// Preview collapses whitespace and truncates s to n runes.
func Preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
