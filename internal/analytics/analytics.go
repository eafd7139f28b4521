// Package analytics summarizes completed guided explorations: which nodes
// and conclusions come up most, which nodes appear together, and whether
// recent scores are moving up or down.
package analytics

import (
	"sort"
	"time"

	"github.com/harrison/flagwise/internal/models"
)

// TrendWindow is how many of the newest scored paths feed the trend.
const TrendWindow = 5

// trendThreshold is the score change needed to call a trend.
const trendThreshold = 5

// Trend values. Higher scores are healthier, so a rising score is improving.
const (
	TrendImproving    = "improving"
	TrendDeclining    = "declining"
	TrendStable       = "stable"
	TrendInsufficient = "insufficient-data"
)

// Count is an id with the number of paths it appeared in.
type Count struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// PairCount is an unordered pair of node ids seen in the same path.
type PairCount struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Count int    `json:"count"`
}

// Report contains summary statistics over a set of paths.
type Report struct {
	TotalPaths      int           `json:"total_paths"`
	CompletedPaths  int           `json:"completed_paths"`
	AverageScore    float64       `json:"average_score"`
	AverageDuration time.Duration `json:"average_duration"`
	NodeVisits      []Count       `json:"node_visits"`
	Conclusions     []Count       `json:"conclusions"`
	CoOccurrence    []PairCount   `json:"co_occurrence"`
	RecentScores    []int         `json:"recent_scores"`
	Trend           string        `json:"trend"`
}

// Summarize builds a Report. Paths are ordered by start time before the
// trend is computed, so input order does not matter. A node visited twice in
// one path counts once for that path.
func Summarize(paths []models.ConversationPath) *Report {
	r := &Report{
		TotalPaths:   len(paths),
		NodeVisits:   []Count{},
		Conclusions:  []Count{},
		CoOccurrence: []PairCount{},
		RecentScores: []int{},
		Trend:        TrendInsufficient,
	}
	if len(paths) == 0 {
		return r
	}

	sorted := make([]models.ConversationPath, len(paths))
	copy(sorted, paths)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	visits := make(map[string]int)
	conclusions := make(map[string]int)
	pairs := make(map[[2]string]int)
	var totalDuration time.Duration
	var scoreSum, scored int
	var scores []int

	for _, p := range sorted {
		seen := distinct(p.Nodes)
		for _, id := range seen {
			visits[id]++
		}
		for i := 0; i < len(seen); i++ {
			for j := i + 1; j < len(seen); j++ {
				a, b := seen[i], seen[j]
				if b < a {
					a, b = b, a
				}
				pairs[[2]string{a, b}]++
			}
		}

		if !p.Completed() {
			continue
		}
		r.CompletedPaths++
		totalDuration += p.Duration()
		if p.Conclusion != "" {
			conclusions[p.Conclusion]++
		}
		if p.Score != nil {
			scoreSum += *p.Score
			scored++
			scores = append(scores, *p.Score)
		}
	}

	if r.CompletedPaths > 0 {
		r.AverageDuration = totalDuration / time.Duration(r.CompletedPaths)
	}
	if scored > 0 {
		r.AverageScore = float64(scoreSum) / float64(scored)
	}

	r.NodeVisits = sortedCounts(visits)
	r.Conclusions = sortedCounts(conclusions)
	for k, c := range pairs {
		r.CoOccurrence = append(r.CoOccurrence, PairCount{A: k[0], B: k[1], Count: c})
	}
	sort.Slice(r.CoOccurrence, func(i, j int) bool {
		x, y := r.CoOccurrence[i], r.CoOccurrence[j]
		if x.Count != y.Count {
			return x.Count > y.Count
		}
		if x.A != y.A {
			return x.A < y.A
		}
		return x.B < y.B
	})

	if len(scores) > TrendWindow {
		scores = scores[len(scores)-TrendWindow:]
	}
	r.RecentScores = append(r.RecentScores, scores...)
	r.Trend = trend(scores)
	return r
}

// GetTopNodes returns up to limit of the most visited nodes.
func (r *Report) GetTopNodes(limit int) []Count {
	if limit < 0 {
		limit = 0
	}
	if limit >= len(r.NodeVisits) {
		return r.NodeVisits
	}
	return r.NodeVisits[:limit]
}

// GetTopPairs returns up to limit of the most frequent node pairs.
func (r *Report) GetTopPairs(limit int) []PairCount {
	if limit < 0 {
		limit = 0
	}
	if limit >= len(r.CoOccurrence) {
		return r.CoOccurrence
	}
	return r.CoOccurrence[:limit]
}

// trend compares the mean of the newer half of scores with the older half.
func trend(scores []int) string {
	if len(scores) < 2 {
		return TrendInsufficient
	}
	half := len(scores) / 2
	older := mean(scores[:half])
	newer := mean(scores[len(scores)-half:])
	switch diff := newer - older; {
	case diff >= trendThreshold:
		return TrendImproving
	case diff <= -trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func mean(xs []int) float64 {
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

func distinct(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for id, c := range m {
		out = append(out, Count{ID: id, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ID < out[j].ID
	})
	return out
}
