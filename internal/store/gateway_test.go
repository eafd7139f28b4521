package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/flagwise/internal/models"
)

// flakyBackend wraps a real store and can be switched into slow or failing
// mode for reads, and separately for writes.
type flakyBackend struct {
	*Store
	delay      atomic.Int64
	fail       atomic.Bool
	writeDelay atomic.Int64
	failWrites atomic.Bool
}

func (f *flakyBackend) waitWrite(ctx context.Context) error {
	if f.failWrites.Load() {
		return errors.New("disk full")
	}
	if d := time.Duration(f.writeDelay.Load()); d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *flakyBackend) SaveJournalEntry(ctx context.Context, e *models.JournalEntry) error {
	if err := f.waitWrite(ctx); err != nil {
		return err
	}
	return f.Store.SaveJournalEntry(ctx, e)
}

func (f *flakyBackend) SaveChatMessage(ctx context.Context, m models.ChatMessage) error {
	if err := f.waitWrite(ctx); err != nil {
		return err
	}
	return f.Store.SaveChatMessage(ctx, m)
}

func (f *flakyBackend) SetSetting(ctx context.Context, key string, value any) error {
	if err := f.waitWrite(ctx); err != nil {
		return err
	}
	return f.Store.SetSetting(ctx, key, value)
}

func (f *flakyBackend) SavePath(ctx context.Context, p models.ConversationPath) error {
	if err := f.waitWrite(ctx); err != nil {
		return err
	}
	return f.Store.SavePath(ctx, p)
}

func (f *flakyBackend) wait(ctx context.Context) error {
	if f.fail.Load() {
		return errors.New("disk on fire")
	}
	if d := time.Duration(f.delay.Load()); d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *flakyBackend) JournalEntries(ctx context.Context) ([]models.JournalEntry, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.Store.JournalEntries(ctx)
}

func (f *flakyBackend) ChatHistory(ctx context.Context) ([]models.ChatMessage, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.Store.ChatHistory(ctx)
}

func (f *flakyBackend) Paths(ctx context.Context) ([]models.ConversationPath, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.Store.Paths(ctx)
}

func newGateway(t *testing.T) (*Gateway, *flakyBackend) {
	t.Helper()
	fb := &flakyBackend{Store: openMemory(t)}
	return NewGateway(fb, 100*time.Millisecond, nil), fb
}

func TestGateway_ReadsAndCaches(t *testing.T) {
	g, fb := newGateway(t)
	ctx := context.Background()

	e := models.NewJournalEntry("first", 3, nil, models.ContextGeneral, t0)
	require.NoError(t, fb.Store.SaveJournalEntry(ctx, e))

	assert.Empty(t, g.JournalEntriesSync(), "cache starts cold")
	entries := g.JournalEntries(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, entries, g.JournalEntriesSync())
}

func TestGateway_SlowReadFallsBackToCache(t *testing.T) {
	g, fb := newGateway(t)
	ctx := context.Background()

	e := models.NewJournalEntry("first", 3, nil, models.ContextGeneral, t0)
	require.NoError(t, g.SaveJournalEntry(ctx, e))
	g.JournalEntries(ctx)

	fb.delay.Store(int64(time.Second))
	start := time.Now()
	entries := g.JournalEntries(ctx)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "read must give up at the timeout")
	require.Len(t, entries, 1)
	assert.Equal(t, e.ID, entries[0].ID)
}

func TestGateway_FailingReadFallsBackToCache(t *testing.T) {
	g, fb := newGateway(t)
	ctx := context.Background()

	fb.fail.Store(true)
	assert.Empty(t, g.JournalEntries(ctx), "cold cache and failing store give an empty list")
	assert.Empty(t, g.ChatHistory(ctx))

	m := models.NewChatMessage(models.RoleUser, "hello", t0)
	require.NoError(t, g.SaveChatMessage(ctx, m))
	assert.Equal(t, []models.ChatMessage{m}, g.ChatHistory(ctx))
}

func TestGateway_WritesVisibleInSyncCache(t *testing.T) {
	g, _ := newGateway(t)
	ctx := context.Background()

	a := models.NewJournalEntry("a", 3, nil, models.ContextGeneral, t0)
	b := models.NewJournalEntry("b", 3, nil, models.ContextGeneral, t0.Add(time.Hour))
	require.NoError(t, g.SaveJournalEntry(ctx, a))
	require.NoError(t, g.SaveJournalEntry(ctx, b))

	cached := g.JournalEntriesSync()
	require.Len(t, cached, 2)
	assert.Equal(t, b.ID, cached[0].ID)

	require.NoError(t, g.DeleteJournalEntry(ctx, a.ID))
	assert.Len(t, g.JournalEntriesSync(), 1)
	assert.Len(t, g.JournalEntries(ctx), 1)
}

func TestGateway_RejectedWriteLeavesCacheUnchanged(t *testing.T) {
	g, fb := newGateway(t)
	ctx := context.Background()

	kept := models.NewJournalEntry("kept", 3, nil, models.ContextGeneral, t0)
	require.NoError(t, g.SaveJournalEntry(ctx, kept))
	require.NoError(t, g.SetSetting(ctx, SettingCountry, "NZ"))
	hello := models.NewChatMessage(models.RoleUser, "hello", t0)
	require.NoError(t, g.SaveChatMessage(ctx, hello))

	fb.failWrites.Store(true)

	lost := models.NewJournalEntry("lost", 4, nil, models.ContextGeneral, t0.Add(time.Hour))
	err := g.SaveJournalEntry(ctx, lost)
	require.Error(t, err)
	assert.False(t, IsTimeout(err))
	assert.Equal(t, []models.JournalEntry{*kept}, g.JournalEntriesSync())

	require.Error(t, g.SaveChatMessage(ctx, models.NewChatMessage(models.RoleUser, "lost", t0)))
	assert.Equal(t, []models.ChatMessage{hello}, g.ChatHistorySync())

	require.Error(t, g.SetSetting(ctx, SettingCountry, "GB"))
	require.Error(t, g.SetSetting(ctx, SettingEnhancedAI, true))
	assert.Equal(t, "NZ", GetSettingSync(g, SettingCountry, ""))
	assert.False(t, GetSettingSync(g, SettingEnhancedAI, false))
	assert.NotContains(t, g.SettingKeys(), SettingEnhancedAI)

	require.Error(t, g.SavePath(ctx, models.ConversationPath{ID: "p1"}))
	fb.fail.Store(true)
	assert.Empty(t, g.Paths(ctx), "cached paths")
}

func TestGateway_TimedOutWriteStaysCached(t *testing.T) {
	g, fb := newGateway(t)
	ctx := context.Background()

	fb.writeDelay.Store(int64(time.Second))
	e := models.NewJournalEntry("slow", 3, nil, models.ContextGeneral, t0)
	err := g.SaveJournalEntry(ctx, e)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	require.Len(t, g.JournalEntriesSync(), 1)
	assert.Equal(t, e.ID, g.JournalEntriesSync()[0].ID)
}

func TestGateway_SaveRejectsInvalidBeforeCaching(t *testing.T) {
	g, _ := newGateway(t)
	bad := models.NewJournalEntry("x", 0, nil, models.ContextGeneral, t0)
	assert.Error(t, g.SaveJournalEntry(context.Background(), bad))
	assert.Empty(t, g.JournalEntriesSync())
}

func TestGateway_Settings(t *testing.T) {
	g, fb := newGateway(t)
	ctx := context.Background()

	assert.False(t, GetSetting(ctx, g, SettingEnhancedAI, false))
	assert.Equal(t, "US", GetSettingSync(g, SettingCountry, "US"))

	require.NoError(t, fb.Store.SetSetting(ctx, SettingEnhancedAI, true))
	assert.False(t, GetSettingSync(g, SettingEnhancedAI, false), "sync read sees only the cache")
	assert.True(t, GetSetting(ctx, g, SettingEnhancedAI, false))
	assert.True(t, GetSettingSync(g, SettingEnhancedAI, false))

	require.NoError(t, g.SetSetting(ctx, SettingCountry, "NZ"))
	assert.Equal(t, "NZ", GetSettingSync(g, SettingCountry, "US"))
	assert.Equal(t, []string{SettingEnhancedAI, SettingCountry}, g.SettingKeys())

	// wrong type degrades to the default
	assert.Equal(t, 7, GetSettingSync(g, SettingCountry, 7))

	require.NoError(t, g.DeleteSetting(ctx, SettingCountry))
	assert.Equal(t, "US", GetSetting(ctx, g, SettingCountry, "US"))
}

func TestGateway_ClearChat(t *testing.T) {
	g, _ := newGateway(t)
	ctx := context.Background()
	require.NoError(t, g.SaveChatMessage(ctx, models.NewChatMessage(models.RoleUser, "hi", t0)))
	require.NoError(t, g.ClearChatHistory(ctx))
	assert.Empty(t, g.ChatHistorySync())
	assert.Empty(t, g.ChatHistory(ctx))
}

func TestGateway_PathsAndWarm(t *testing.T) {
	g, fb := newGateway(t)
	ctx := context.Background()

	p := models.NewConversationPath(t0)
	p.Nodes = []string{"intro"}
	require.NoError(t, fb.Store.SavePath(ctx, p))
	require.NoError(t, fb.Store.SaveChatMessage(ctx, models.NewChatMessage(models.RoleUser, "hi", t0)))

	g.Warm(ctx)
	assert.Len(t, g.ChatHistorySync(), 1)

	fb.fail.Store(true)
	paths := g.Paths(ctx)
	require.Len(t, paths, 1)
	assert.Equal(t, p.ID, paths[0].ID)
}

func TestRace_Timeout(t *testing.T) {
	_, err := race(context.Background(), 20*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return 1, nil
	})
	assert.True(t, IsTimeout(err))
}
