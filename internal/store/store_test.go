package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/flagwise/internal/models"
)

var t0 = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_AppliesMigrations(t *testing.T) {
	s := openMemory(t)
	v, err := s.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)

	// re-applying is a no-op
	require.NoError(t, s.ApplyMigrations())
	v, err = s.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}

func TestOpen_FileDatabaseReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "flagwise.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetSetting(ctx, SettingCountry, "GB"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	raw, err := s.Setting(ctx, SettingCountry)
	require.NoError(t, err)
	assert.JSONEq(t, `"GB"`, string(raw))
	assert.Equal(t, path, s.Path())
}

func TestJournalEntries_RoundTrip(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	older := models.NewJournalEntry("we argued about money", 2, []string{"anxious"}, models.ContextRomantic, t0)
	older.Analysis = &models.AnalysisResult{
		Flags: []models.RedFlag{{Type: "financialControl", Category: models.CategoryFinancialAbuse,
			Confidence: 0.6, Evidence: []string{"allowance"}, Severity: models.FlagSevere}},
		Sentiment: -0.4,
		Severity:  models.SeverityHigh,
	}
	newer := models.NewJournalEntry("quiet day", 4, nil, models.ContextGeneral, t0.Add(24*time.Hour))

	require.NoError(t, s.SaveJournalEntry(ctx, older))
	require.NoError(t, s.SaveJournalEntry(ctx, newer))

	entries, err := s.JournalEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newer.ID, entries[0].ID, "newest first")
	assert.Equal(t, *older, entries[1])
	assert.Nil(t, entries[0].Analysis)
	assert.Nil(t, entries[0].Emotions)

	got, err := s.JournalEntry(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "financialControl", got.Analysis.Flags[0].Type)
}

func TestJournalEntries_EmptyIsNotNil(t *testing.T) {
	entries, err := openMemory(t).JournalEntries(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestSaveJournalEntry_RejectsInvalid(t *testing.T) {
	s := openMemory(t)
	e := models.NewJournalEntry("x", 9, nil, models.ContextGeneral, t0)
	assert.Error(t, s.SaveJournalEntry(context.Background(), e))
}

func TestDeleteJournalEntry(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	e := models.NewJournalEntry("x", 3, nil, models.ContextFamily, t0)
	require.NoError(t, s.SaveJournalEntry(ctx, e))

	require.NoError(t, s.DeleteJournalEntry(ctx, e.ID))
	assert.ErrorIs(t, s.DeleteJournalEntry(ctx, e.ID), ErrNotFound)
	_, err := s.JournalEntry(ctx, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChatHistory(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	msgs := []models.ChatMessage{
		models.NewChatMessage(models.RoleUser, "hi", t0),
		models.NewChatMessage(models.RoleAssistant, "hello", t0),
		models.NewChatMessage(models.RoleUser, "my sister yells", t0.Add(time.Second)),
	}
	for _, m := range msgs {
		require.NoError(t, s.SaveChatMessage(ctx, m))
	}

	history, err := s.ChatHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, msgs, history, "insertion order is preserved even with equal timestamps")

	require.NoError(t, s.ClearChatHistory(ctx))
	history, err = s.ChatHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSettings(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	_, err := s.Setting(ctx, SettingEnhancedAI)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetSetting(ctx, SettingEnhancedAI, true))
	require.NoError(t, s.SetSetting(ctx, SettingEnhancedAI, false))
	require.NoError(t, s.SetSetting(ctx, SettingAPIKey, "abc"))

	all, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.JSONEq(t, `false`, string(all[SettingEnhancedAI]))

	require.NoError(t, s.DeleteSetting(ctx, SettingAPIKey))
	require.NoError(t, s.DeleteSetting(ctx, SettingAPIKey))
	_, err = s.Setting(ctx, SettingAPIKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPaths_RoundTrip(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	open := models.NewConversationPath(t0)
	open.Nodes = []string{"intro"}

	done := models.NewConversationPath(t0.Add(time.Hour))
	done.Nodes = []string{"intro", "lying_node", "betrayal_conclusion"}
	end := t0.Add(2 * time.Hour)
	score := 65
	done.EndTime = &end
	done.Score = &score
	done.Conclusion = "betrayal_conclusion"
	done.Insights = []string{"Trust has been seriously damaged by betrayal."}

	require.NoError(t, s.SavePath(ctx, done))
	require.NoError(t, s.SavePath(ctx, open))

	paths, err := s.Paths(ctx)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	assert.Equal(t, open.ID, paths[0].ID, "oldest first")
	assert.Nil(t, paths[0].EndTime)
	assert.Nil(t, paths[0].Score)
	assert.Empty(t, paths[0].Insights)

	assert.Equal(t, done.Nodes, paths[1].Nodes)
	assert.Equal(t, end, *paths[1].EndTime)
	assert.Equal(t, 65, *paths[1].Score)
	assert.Equal(t, done.Insights, paths[1].Insights)
	assert.Equal(t, time.Hour, paths[1].Duration())
}
