package models

// Category groups detection patterns by the kind of harm they describe.
type Category string

const (
	CategoryEmotionalManipulation Category = "emotional-manipulation"
	CategoryControl               Category = "control"
	CategoryManipulation          Category = "manipulation"
	CategoryFinancialAbuse        Category = "financial-abuse"
	CategorySafety                Category = "safety"
	CategoryBoundaries            Category = "boundaries"
	CategoryEmotionalAbuse        Category = "emotional-abuse"
	CategoryWorkplaceControl      Category = "workplace-control"
	CategoryWorkplaceAbuse        Category = "workplace-abuse"
	CategoryWorkplaceBoundaries   Category = "workplace-boundaries"
)

// FlagSeverity is the tier assigned to a single detection pattern.
type FlagSeverity string

const (
	FlagMild     FlagSeverity = "mild"
	FlagModerate FlagSeverity = "moderate"
	FlagSevere   FlagSeverity = "severe"
)

// EntrySeverity is the overall verdict for one analyzed journal entry.
type EntrySeverity string

const (
	SeverityLow      EntrySeverity = "low"
	SeverityModerate EntrySeverity = "moderate"
	SeverityHigh     EntrySeverity = "high"
	SeverityCritical EntrySeverity = "critical"
)

// Rank orders entry severities so callers can compare them (low=0 .. critical=3).
func (s EntrySeverity) Rank() int {
	switch s {
	case SeverityModerate:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}

// RedFlag is one matched pattern inside an analyzed entry.
type RedFlag struct {
	Type        string       `json:"type"`        // Pattern id, e.g. "gaslighting"
	Category    Category     `json:"category"`
	Confidence  float64      `json:"confidence"`  // 0.6 - 0.95
	Evidence    []string     `json:"evidence"`    // Matched keywords in table order
	Description string       `json:"description"`
	Severity    FlagSeverity `json:"severity"`
}

// AnalysisResult is the verdict attached to a journal entry at save time.
type AnalysisResult struct {
	Flags       []RedFlag     `json:"flags"`
	Sentiment   float64       `json:"sentiment"` // -1 .. 1
	Concerns    []string      `json:"concerns"`
	Suggestions []string      `json:"suggestions"`
	Severity    EntrySeverity `json:"severity"`
}

// HasCategory reports whether any flag belongs to the category.
func (a *AnalysisResult) HasCategory(c Category) bool {
	if a == nil {
		return false
	}
	for _, f := range a.Flags {
		if f.Category == c {
			return true
		}
	}
	return false
}

// CountSeverity returns how many flags carry the given severity.
func (a *AnalysisResult) CountSeverity(s FlagSeverity) int {
	if a == nil {
		return 0
	}
	n := 0
	for _, f := range a.Flags {
		if f.Severity == s {
			n++
		}
	}
	return n
}
