package progress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/flagwise/internal/store"
)

var day0 = time.Date(2026, 7, 1, 20, 0, 0, 0, time.UTC)

func ids(as []Achievement) []string {
	var out []string
	for _, a := range as {
		out = append(out, a.ID)
	}
	return out
}

func TestRecordEntry_Unlocks(t *testing.T) {
	var p Progress
	p, unlocked := p.RecordEntry(day0)
	assert.Equal(t, []string{FirstEntry}, ids(unlocked))
	assert.Equal(t, day0, unlocked[0].UnlockedAt)

	for i := 1; i < 9; i++ {
		p, unlocked = p.RecordEntry(day0)
		assert.Empty(t, unlocked)
	}
	p, unlocked = p.RecordEntry(day0)
	assert.Equal(t, []string{TenEntries}, ids(unlocked))
	assert.Equal(t, 10, p.JournalEntries)
	assert.Equal(t, []string{"2026-07-01"}, p.JournalDays, "same day counts once")
}

func TestRecordEntry_ConsistentJournaler(t *testing.T) {
	var p Progress
	var unlocked []Achievement
	// out of order days still sort and dedupe
	for _, d := range []int{3, 0, 1, 1, 6, 2, 5} {
		p, unlocked = p.RecordEntry(day0.AddDate(0, 0, d))
		assert.NotContains(t, ids(unlocked), ConsistentJournaler)
	}
	assert.Len(t, p.JournalDays, 6)
	assert.Equal(t, "2026-07-01", p.JournalDays[0])

	p, unlocked = p.RecordEntry(day0.AddDate(0, 0, 4))
	assert.Contains(t, ids(unlocked), ConsistentJournaler)
	assert.True(t, p.Has(ConsistentJournaler))
}

func TestRecordChat(t *testing.T) {
	var p Progress
	p, unlocked := p.RecordChat(day0, 1)
	assert.Equal(t, []string{FirstConversation}, ids(unlocked))

	p, unlocked = p.RecordChat(day0, 9)
	assert.Empty(t, unlocked)
	p, unlocked = p.RecordChat(day0, DeepConversationTurns)
	assert.Equal(t, []string{DeepConversation}, ids(unlocked))

	p, _ = p.RecordChat(day0, 2)
	assert.Equal(t, DeepConversationTurns, p.LongestConversation)
	assert.Equal(t, 4, p.ChatMessages)
}

func TestRecordExploration(t *testing.T) {
	var p Progress
	p, unlocked := p.RecordExploration(day0)
	assert.Equal(t, []string{SelfReflection}, ids(unlocked))
	_, unlocked = p.RecordExploration(day0.Add(time.Hour))
	assert.Empty(t, unlocked, "achievements unlock once")
}

func TestRecord_DoesNotMutateReceiver(t *testing.T) {
	var p Progress
	p, _ = p.RecordEntry(day0)
	before := p.clone()

	next, _ := p.RecordEntry(day0.AddDate(0, 0, 1))
	assert.Equal(t, before, p)
	assert.Len(t, next.JournalDays, 2)
}

func TestIDs(t *testing.T) {
	assert.Equal(t, []string{FirstEntry, TenEntries, FirstConversation, DeepConversation, SelfReflection, ConsistentJournaler}, IDs())
}

func TestLoadSave(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()
	g := store.NewGateway(s, time.Second, nil)

	assert.Equal(t, Progress{}, Load(ctx, g))

	p, _ := Progress{}.RecordEntry(day0)
	require.NoError(t, Save(ctx, g, p))

	loaded := Load(ctx, g)
	assert.Equal(t, 1, loaded.JournalEntries)
	assert.True(t, loaded.Has(FirstEntry))
	assert.True(t, loaded.LastActive.Equal(day0))
}
