// Package progress tracks usage counters and unlocks achievements. A
// Progress value is owned by the caller and updated by returning a new
// value, so nothing is held in process-wide state.
package progress

import (
	"slices"
	"time"
)

// Achievement ids.
const (
	FirstEntry          = "first_entry"
	TenEntries          = "ten_entries"
	FirstConversation   = "first_conversation"
	DeepConversation    = "deep_conversation"
	SelfReflection      = "self_reflection"
	ConsistentJournaler = "consistent_journaler"
)

// DeepConversationTurns is how many user turns one chat needs for
// deep_conversation.
const DeepConversationTurns = 10

// ConsistentDays is how many distinct journaling days unlock
// consistent_journaler.
const ConsistentDays = 7

// Achievement is an unlocked milestone.
type Achievement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

type definition struct {
	id, title, description string
	met                    func(p *Progress) bool
}

var definitions = []definition{
	{FirstEntry, "First Step", "Wrote your first journal entry.",
		func(p *Progress) bool { return p.JournalEntries >= 1 }},
	{TenEntries, "Building a Record", "Wrote ten journal entries.",
		func(p *Progress) bool { return p.JournalEntries >= 10 }},
	{FirstConversation, "Opening Up", "Started your first conversation.",
		func(p *Progress) bool { return p.ChatMessages >= 1 }},
	{DeepConversation, "Going Deeper", "Shared ten messages in a single conversation.",
		func(p *Progress) bool { return p.LongestConversation >= DeepConversationTurns }},
	{SelfReflection, "Self Reflection", "Completed a guided exploration.",
		func(p *Progress) bool { return p.Explorations >= 1 }},
	{ConsistentJournaler, "Consistent Journaler", "Journaled on seven different days.",
		func(p *Progress) bool { return len(p.JournalDays) >= ConsistentDays }},
}

// IDs lists every achievement id in unlock-check order.
func IDs() []string {
	ids := make([]string, len(definitions))
	for i, d := range definitions {
		ids[i] = d.id
	}
	return ids
}

// Progress is the persisted counter set.
type Progress struct {
	JournalEntries      int           `json:"journal_entries"`
	ChatMessages        int           `json:"chat_messages"`
	LongestConversation int           `json:"longest_conversation"`
	Explorations        int           `json:"explorations"`
	JournalDays         []string      `json:"journal_days"` // YYYY-MM-DD, sorted
	Achievements        []Achievement `json:"achievements"`
	LastActive          time.Time     `json:"last_active"`
}

// Has reports whether achievement id is unlocked.
func (p Progress) Has(id string) bool {
	return slices.ContainsFunc(p.Achievements, func(a Achievement) bool { return a.ID == id })
}

// RecordEntry counts a journal entry written at at.
func (p Progress) RecordEntry(at time.Time) (Progress, []Achievement) {
	next := p.clone()
	next.JournalEntries++
	day := at.UTC().Format(time.DateOnly)
	if i, found := slices.BinarySearch(next.JournalDays, day); !found {
		next.JournalDays = slices.Insert(next.JournalDays, i, day)
	}
	return next.touch(at)
}

// RecordChat counts one user chat message. turns is the number of user
// turns in the current conversation including this one.
func (p Progress) RecordChat(at time.Time, turns int) (Progress, []Achievement) {
	next := p.clone()
	next.ChatMessages++
	next.LongestConversation = max(next.LongestConversation, turns)
	return next.touch(at)
}

// RecordExploration counts a completed guided exploration.
func (p Progress) RecordExploration(at time.Time) (Progress, []Achievement) {
	next := p.clone()
	next.Explorations++
	return next.touch(at)
}

func (p Progress) clone() Progress {
	p.JournalDays = slices.Clone(p.JournalDays)
	p.Achievements = slices.Clone(p.Achievements)
	return p
}

func (p Progress) touch(at time.Time) (Progress, []Achievement) {
	p.LastActive = at.UTC()
	var unlocked []Achievement
	for _, d := range definitions {
		if p.Has(d.id) || !d.met(&p) {
			continue
		}
		a := Achievement{ID: d.id, Title: d.title, Description: d.description, UnlockedAt: at.UTC()}
		p.Achievements = append(p.Achievements, a)
		unlocked = append(unlocked, a)
	}
	return p, unlocked
}
