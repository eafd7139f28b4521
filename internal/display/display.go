// Package display renders flagwise results for the terminal. Every renderer
// writes to an io.Writer; color is decided once by the caller.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/flagwise/internal/psychometric"
)

// Printer writes formatted output.
type Printer struct {
	w     io.Writer
	color bool
}

// New creates a Printer. colorOutput should be true only for a terminal.
func New(w io.Writer, colorOutput bool) *Printer {
	return &Printer{w: w, color: colorOutput}
}

func (p *Printer) paint(s string, attrs ...color.Attribute) string {
	if !p.color {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) heading(title string) {
	p.printf("%s\n", p.paint(title, color.Bold))
}

func (p *Printer) list(indent string, items []string) {
	for _, it := range items {
		p.printf("%s- %s\n", indent, it)
	}
}

// riskColor maps the four-step scale shared by entry severity and
// psychometric risk.
func riskColor(level string) color.Attribute {
	switch level {
	case "low":
		return color.FgGreen
	case "moderate":
		return color.FgYellow
	case "high":
		return color.FgHiRed
	case "critical":
		return color.FgRed
	default:
		return color.Reset
	}
}

// ScoreBar renders score out of 100 as "[=====     ] 50/100". The bar is
// colored by the risk tier of the score.
func (p *Printer) ScoreBar(score, width int) string {
	if width < 1 {
		width = 10
	}
	score = min(100, max(0, score))
	filled := score * width / 100

	bar := "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
	out := fmt.Sprintf("%s %3d/100", bar, score)
	return p.paint(out, riskColor(string(psychometric.RiskFor(score))))
}

// Advisory shows a yellow notice with an optional suggestion.
type Advisory struct {
	Title      string
	Message    string
	Suggestion string
}

// Advise prints an advisory.
func (p *Printer) Advise(a Advisory) {
	var b strings.Builder
	b.WriteString("! ")
	b.WriteString(a.Title)
	b.WriteString("\n")
	if a.Message != "" {
		b.WriteString("    ")
		b.WriteString(a.Message)
		b.WriteString("\n")
	}
	if a.Suggestion != "" {
		b.WriteString("    Suggestion: ")
		b.WriteString(a.Suggestion)
		b.WriteString("\n")
	}
	p.printf("%s", p.paint(b.String(), color.FgYellow))
}

// Success prints a green check line.
func (p *Printer) Success(format string, args ...any) {
	p.printf("%s %s\n", p.paint("✓", color.FgGreen), fmt.Sprintf(format, args...))
}
