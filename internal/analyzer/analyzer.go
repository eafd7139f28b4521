// Package analyzer classifies journal entries into weighted red flags,
// derives a lexical sentiment score, and summarizes a set of entries for
// personalization.
package analyzer

import (
	"fmt"
	"math"
	"strings"

	"github.com/harrison/flagwise/internal/models"
	"github.com/harrison/flagwise/internal/pattern"
)

const (
	baseConfidence = 0.6
	stepConfidence = 0.1
	maxConfidence  = 0.95
	sentimentStep  = 0.1
)

var positiveWords = map[string]bool{
	"happy": true, "good": true, "great": true, "love": true, "loved": true, "wonderful": true,
	"supported": true, "safe": true, "respected": true, "grateful": true, "calm": true,
	"kind": true, "caring": true, "appreciated": true, "joy": true, "peaceful": true,
	"hopeful": true, "heard": true, "valued": true, "fun": true,
}

var negativeWords = map[string]bool{
	"sad": true, "angry": true, "hurt": true, "scared": true, "afraid": true, "upset": true,
	"anxious": true, "worthless": true, "alone": true, "trapped": true, "confused": true,
	"guilty": true, "ashamed": true, "terrible": true, "awful": true, "crying": true,
	"cried": true, "exhausted": true, "miserable": true, "frustrated": true,
}

// Analyzer scans entries against a pattern library. It is stateless and safe to reuse.
type Analyzer struct {
	library *pattern.Library
}

// New creates an analyzer. A nil library selects pattern.Default().
func New(lib *pattern.Library) *Analyzer {
	if lib == nil {
		lib = pattern.Default()
	}
	return &Analyzer{library: lib}
}

// AnalyzeEntry analyzes the entry's content under its context.
func (a *Analyzer) AnalyzeEntry(e *models.JournalEntry) *models.AnalysisResult {
	return a.Analyze(e.Content, e.Context)
}

// Analyze is a pure function of (content, context, library). Empty content yields
// no flags, zero sentiment and low severity.
func (a *Analyzer) Analyze(content string, ctx models.RelationshipContext) *models.AnalysisResult {
	text := pattern.Normalize(content)

	flags := make([]models.RedFlag, 0)
	for _, def := range a.library.ForContext(ctx) {
		hits := def.Match(text)
		if len(hits) == 0 {
			continue
		}
		flags = append(flags, models.RedFlag{
			Type:        def.ID,
			Category:    def.Category,
			Confidence:  Confidence(len(hits)),
			Evidence:    hits,
			Description: def.Description,
			Severity:    def.Severity,
		})
	}

	result := &models.AnalysisResult{
		Flags:     flags,
		Sentiment: Sentiment(text),
	}
	result.Severity = ClassifySeverity(result.CountSeverity(models.FlagSevere), result.CountSeverity(models.FlagModerate), len(flags))
	result.Concerns, result.Suggestions = advise(result)
	return result
}

// Confidence maps the number of distinct matched keywords to [0.6, 0.95]:
// one hit is 0.6 and each extra hit adds 0.1.
func Confidence(matches int) float64 {
	if matches <= 0 {
		return 0
	}
	c := baseConfidence + stepConfidence*float64(matches-1)
	c = math.Min(maxConfidence, c)
	return math.Round(c*100) / 100
}

// Sentiment sums +0.1 per positive token and -0.1 per negative token, clamped to [-1, 1].
// Tokens are whitespace-separated with surrounding punctuation trimmed; no stemming.
func Sentiment(text string) float64 {
	score := 0
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?;:\"'()[]-")
		switch {
		case positiveWords[tok]:
			score++
		case negativeWords[tok]:
			score--
		}
	}
	s := float64(score) * sentimentStep
	s = math.Max(-1, math.Min(1, s))
	return math.Round(s*100) / 100
}

// ClassifySeverity derives the entry verdict from the flag mix.
func ClassifySeverity(severe, moderate, total int) models.EntrySeverity {
	switch {
	case severe >= 2 || total >= 5:
		return models.SeverityCritical
	case severe >= 1 || total >= 3:
		return models.SeverityHigh
	case moderate >= 2 || total >= 2:
		return models.SeverityModerate
	default:
		return models.SeverityLow
	}
}

func advise(r *models.AnalysisResult) (concerns, suggestions []string) {
	concerns = []string{}
	suggestions = []string{}

	if len(r.Flags) == 0 {
		switch {
		case r.Sentiment > 0:
			suggestions = append(suggestions, "This moment sounds positive. Noting what felt good helps you recognize healthy patterns.")
		case r.Sentiment < 0:
			concerns = append(concerns, "This entry reflects difficult feelings even though no specific warning patterns were found.")
			suggestions = append(suggestions, "Be gentle with yourself today. Talking it through with someone you trust can help.")
		default:
			suggestions = append(suggestions, "Keep journaling. Patterns become clearer over time.")
		}
		return concerns, suggestions
	}

	concerns = append(concerns, fmt.Sprintf("Detected %d potential red flag(s) in this moment.", len(r.Flags)))
	for _, f := range r.Flags {
		concerns = append(concerns, f.Description)
	}
	if r.CountSeverity(models.FlagSevere) > 0 {
		concerns = append(concerns, "Some of these behaviors are considered serious warning signs.")
	}

	if r.HasCategory(models.CategorySafety) {
		suggestions = append(suggestions, "If you feel unsafe, contact a crisis line or emergency services right away.")
	}
	if r.HasCategory(models.CategoryEmotionalManipulation) {
		suggestions = append(suggestions, "Read about these patterns in the Red Flag Library to recognize them sooner.")
	}
	if r.HasCategory(models.CategoryControl) {
		suggestions = append(suggestions, "Practice stating a boundary clearly and notice how it is received.")
	}
	suggestions = append(suggestions, "Consider sharing what happened with a trusted friend or counselor.")
	return concerns, suggestions
}
