package analyzer

import (
	"math"
	"sort"

	"github.com/harrison/flagwise/internal/models"
)

// RecentWindow is how many of the newest entries feed the rolling mood average.
const RecentWindow = 10

// FlagCount is a flag type with the number of entries it appeared in.
type FlagCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Stats summarizes a journal for personalization and context building.
type Stats struct {
	TotalEntries   int                        `json:"total_entries"`
	FlaggedEntries int                        `json:"flagged_entries"`
	TotalFlags     int                        `json:"total_flags"`
	AverageMood    float64                    `json:"average_mood"` // rolling over the newest <=10 entries
	TopFlags       []FlagCount                `json:"top_flags"`    // most frequent first, ties by type
	LatestContext  models.RelationshipContext `json:"latest_context,omitempty"`
	LatestMood     int                        `json:"latest_mood,omitempty"`
}

// HasEntries reports whether any journal data is available.
func (s Stats) HasEntries() bool {
	return s.TotalEntries > 0
}

// TopFlagTypes returns up to n of the most frequent flag types.
func (s Stats) TopFlagTypes(n int) []string {
	out := make([]string, 0, n)
	for i, fc := range s.TopFlags {
		if i >= n {
			break
		}
		out = append(out, fc.Type)
	}
	return out
}

// Summarize computes Stats; entries may be in any order.
func Summarize(entries []models.JournalEntry) Stats {
	s := Stats{TotalEntries: len(entries)}
	if len(entries) == 0 {
		return s
	}

	sorted := make([]models.JournalEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	counts := make(map[string]int)
	for _, e := range sorted {
		if e.Analysis == nil || len(e.Analysis.Flags) == 0 {
			continue
		}
		s.FlaggedEntries++
		s.TotalFlags += len(e.Analysis.Flags)
		for _, f := range e.Analysis.Flags {
			counts[f.Type]++
		}
	}

	window := sorted
	if len(window) > RecentWindow {
		window = window[:RecentWindow]
	}
	total := 0
	for _, e := range window {
		total += e.Mood
	}
	s.AverageMood = math.Round(float64(total)/float64(len(window))*10) / 10

	for t, c := range counts {
		s.TopFlags = append(s.TopFlags, FlagCount{Type: t, Count: c})
	}
	sort.Slice(s.TopFlags, func(i, j int) bool {
		if s.TopFlags[i].Count != s.TopFlags[j].Count {
			return s.TopFlags[i].Count > s.TopFlags[j].Count
		}
		return s.TopFlags[i].Type < s.TopFlags[j].Type
	})

	s.LatestContext = sorted[0].Context
	s.LatestMood = sorted[0].Mood
	return s
}
