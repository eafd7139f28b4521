// Package psychometric scores relationship health across six weighted
// dimensions from either a completed guided exploration or a set of journal
// entries. Scores are a reflection aid, not a clinical measure.
package psychometric

import "slices"

// RiskLevel is derived from a score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskFor maps a score to its tier: >=70 low, >=50 moderate, >=30 high,
// otherwise critical.
func RiskFor(score int) RiskLevel {
	switch {
	case score >= 70:
		return RiskLow
	case score >= 50:
		return RiskModerate
	case score >= 30:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// Dimension ids.
const (
	Safety          = "safety"
	Trust           = "trust"
	Respect         = "respect"
	Communication   = "communication"
	Independence    = "independence"
	EmotionalHealth = "emotional_health"
)

// BaselineScore is every dimension's starting score.
const BaselineScore = 50

// Dimension is one scored axis.
type Dimension struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Score      int       `json:"score"`
	Weight     float64   `json:"weight"`
	Indicators []string  `json:"indicators"`
	RiskLevel  RiskLevel `json:"risk_level"`
}

var dimensionTable = []struct {
	id     string
	name   string
	weight float64
}{
	{Safety, "Physical & Emotional Safety", 0.25},
	{Trust, "Trust & Honesty", 0.20},
	{Respect, "Mutual Respect", 0.15},
	{Communication, "Communication", 0.15},
	{Independence, "Independence & Autonomy", 0.125},
	{EmotionalHealth, "Emotional Wellbeing", 0.125},
}

// DimensionIDs lists the dimensions in display order.
func DimensionIDs() []string {
	ids := make([]string, len(dimensionTable))
	for i, d := range dimensionTable {
		ids[i] = d.id
	}
	return ids
}

// scorecard is the working state of one assessment. It is created fresh for
// every call, so assessments never share state.
type scorecard struct {
	dims  []Dimension
	index map[string]int
}

func newScorecard() *scorecard {
	sc := &scorecard{index: make(map[string]int, len(dimensionTable))}
	for i, d := range dimensionTable {
		sc.dims = append(sc.dims, Dimension{
			ID:         d.id,
			Name:       d.name,
			Score:      BaselineScore,
			Weight:     d.weight,
			Indicators: []string{},
			RiskLevel:  RiskFor(BaselineScore),
		})
		sc.index[d.id] = i
	}
	return sc
}

// adjust applies delta to dimension id, clamps to [0,100], recomputes the
// risk level and records the indicator once. Unknown ids are ignored and
// reported false.
func (sc *scorecard) adjust(id string, delta int, indicator string) bool {
	i, ok := sc.index[id]
	if !ok {
		return false
	}
	d := &sc.dims[i]
	d.Score = min(100, max(0, d.Score+delta))
	d.RiskLevel = RiskFor(d.Score)
	if indicator != "" && !slices.Contains(d.Indicators, indicator) {
		d.Indicators = append(d.Indicators, indicator)
	}
	return true
}

func (sc *scorecard) get(id string) Dimension {
	return sc.dims[sc.index[id]]
}

// overall is the weight-normalized mean, rounded to the nearest integer.
func (sc *scorecard) overall() int {
	var sum, weights float64
	for _, d := range sc.dims {
		sum += float64(d.Score) * d.Weight
		weights += d.Weight
	}
	if weights == 0 {
		return BaselineScore
	}
	return int(sum/weights + 0.5)
}
