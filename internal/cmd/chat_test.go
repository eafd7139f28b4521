package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/flagwise/internal/filelock"
)

func TestChatSafetyUsesCountryHotlines(t *testing.T) {
	home := t.TempDir()

	out := mustExecute(t, home, "", "chat", "-m", "my boyfriend hit me last night")
	assert.Contains(t, out, "911")
	assert.Contains(t, out, "flagwise:")

	mustExecute(t, home, "", "settings", "set", "userCountry", "gb")
	out = mustExecute(t, home, "", "chat", "--new", "-m", "my boyfriend hit me last night")
	assert.Contains(t, out, "999")
}

func TestChatSafetyPersistsAcrossTurns(t *testing.T) {
	home := t.TempDir()

	out := mustExecute(t, home, "", "chat",
		"-m", "my boyfriend hit me last night",
		"-m", "anyway, what should I cook tonight?")
	replies := strings.Split(out, "flagwise:")
	require.Len(t, replies, 3, out)
	assert.Contains(t, replies[1], "911")
	assert.Contains(t, replies[2], "911")
}

func TestChatEnhancedWithoutKeyFallsBack(t *testing.T) {
	home := t.TempDir()
	mustExecute(t, home, "", "settings", "set", "enhancedAI", "true")

	out := mustExecute(t, home, "", "chat", "-m", "I feel confused about my relationship")
	assert.Contains(t, out, "no API key is set")
	assert.Contains(t, out, "flagwise:")
}

func TestChatRecordsProgress(t *testing.T) {
	home := t.TempDir()

	out := mustExecute(t, home, "", "chat", "-m", "hello")
	assert.Contains(t, out, "Achievement unlocked: Opening Up")

	out = mustExecute(t, home, "", "progress")
	assert.Contains(t, out, "chat messages:     1")
	assert.Contains(t, out, "Opening Up")
}

func TestChatInteractiveLoop(t *testing.T) {
	home := t.TempDir()

	out := mustExecute(t, home, "I think my partner is jealous\n/clear\n/quit\n", "chat")
	assert.Contains(t, out, "> ")
	assert.Contains(t, out, "Transcript cleared")
	assert.GreaterOrEqual(t, strings.Count(out, "flagwise:"), 2)
}

func TestChatGuidedExploration(t *testing.T) {
	home := t.TempDir()

	out := mustExecute(t, home, "", "chat", "--guided",
		"-m", "he keeps lying to me",
		"-m", "I found out about the affair")
	assert.Contains(t, out, "Lies can slowly wear away trust")
	assert.Contains(t, out, "Infidelity")
	assert.Contains(t, out, "Achievement unlocked: Self Reflection")

	out = mustExecute(t, home, "", "insights")
	assert.Contains(t, out, "total: 1")
}

func TestChatGuidedSafetyGoesToCounselor(t *testing.T) {
	home := t.TempDir()

	out := mustExecute(t, home, "", "chat", "--guided", "-m", "he hit me and I'm scared")
	assert.Contains(t, out, "911")
	assert.NotContains(t, out, "1) ")
}

func TestChatSingleSession(t *testing.T) {
	home := t.TempDir()
	lock, err := filelock.Acquire(filepath.Join(home, chatLockFile))
	require.NoError(t, err)
	defer lock.Unlock()

	_, err = execute(t, home, "", "chat", "-m", "hello")
	assert.ErrorContains(t, err, "already running")
}
