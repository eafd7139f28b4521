package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/harrison/flagwise/internal/logger"
	"github.com/harrison/flagwise/internal/models"
)

// Backend is the record store a Gateway fronts. *Store implements it.
type Backend interface {
	SaveJournalEntry(ctx context.Context, e *models.JournalEntry) error
	JournalEntries(ctx context.Context) ([]models.JournalEntry, error)
	DeleteJournalEntry(ctx context.Context, id string) error
	SaveChatMessage(ctx context.Context, m models.ChatMessage) error
	ChatHistory(ctx context.Context) ([]models.ChatMessage, error)
	ClearChatHistory(ctx context.Context) error
	SetSetting(ctx context.Context, key string, value any) error
	Settings(ctx context.Context) (map[string]json.RawMessage, error)
	DeleteSetting(ctx context.Context, key string) error
	SavePath(ctx context.Context, p models.ConversationPath) error
	Paths(ctx context.Context) ([]models.ConversationPath, error)
}

// Gateway bounds each backend read by a timeout. A slow or failing read is
// logged and answered from the in-memory copy of the last good read, so
// callers treat a slow store as routine. Writes go to the cache first so
// the Sync accessors reflect them even while the backend is slow. A write
// the backend rejects outright is rolled back out of the cache; a write that
// only timed out stays cached.
type Gateway struct {
	backend Backend
	timeout time.Duration
	log     logger.Sink

	mu       sync.RWMutex
	entries  []models.JournalEntry
	chat     []models.ChatMessage
	settings map[string]json.RawMessage
	paths    []models.ConversationPath
}

// NewGateway wraps backend. timeout bounds every read and write.
func NewGateway(backend Backend, timeout time.Duration, log logger.Sink) *Gateway {
	return &Gateway{
		backend:  backend,
		timeout:  timeout,
		log:      logger.OrNop(log),
		settings: make(map[string]json.RawMessage),
	}
}

// race runs fn against a deadline. The result of a call that loses the race
// is discarded.
func race[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (g *Gateway) exec(ctx context.Context, fn func(context.Context) error) error {
	_, err := race(ctx, g.timeout, func(c context.Context) (struct{}, error) {
		return struct{}{}, fn(c)
	})
	return err
}

// write runs fn and calls undo under the lock when the backend fails with
// anything other than the deadline.
func (g *Gateway) write(ctx context.Context, fn func(context.Context) error, undo func()) error {
	err := g.exec(ctx, fn)
	if err != nil && !IsTimeout(err) {
		g.mu.Lock()
		undo()
		g.mu.Unlock()
	}
	return err
}

// Warm fills the cache from the backend. Failures are logged, not returned.
func (g *Gateway) Warm(ctx context.Context) {
	g.JournalEntries(ctx)
	g.ChatHistory(ctx)
	g.loadSettings(ctx)
	g.Paths(ctx)
}

// JournalEntries returns all entries newest first, falling back to the
// cached copy when the backend is slow or failing.
func (g *Gateway) JournalEntries(ctx context.Context) []models.JournalEntry {
	entries, err := race(ctx, g.timeout, g.backend.JournalEntries)
	if err != nil {
		g.log.LogWarn(fmt.Sprintf("journal read fell back to cache: %v", err))
		return g.JournalEntriesSync()
	}
	g.mu.Lock()
	g.entries = slices.Clone(entries)
	g.mu.Unlock()
	return entries
}

// JournalEntriesSync returns the cached entries without touching the backend.
func (g *Gateway) JournalEntriesSync() []models.JournalEntry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.entries)
}

// SaveJournalEntry caches the entry at the front of the list and then
// persists it.
func (g *Gateway) SaveJournalEntry(ctx context.Context, e *models.JournalEntry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid journal entry: %w", err)
	}
	g.mu.Lock()
	prev := slices.Clone(g.entries)
	g.entries = slices.DeleteFunc(g.entries, func(x models.JournalEntry) bool { return x.ID == e.ID })
	g.entries = slices.Insert(g.entries, 0, *e)
	g.mu.Unlock()

	return g.write(ctx,
		func(c context.Context) error { return g.backend.SaveJournalEntry(c, e) },
		func() { g.entries = prev })
}

// DeleteJournalEntry removes the entry from the cache and the backend.
func (g *Gateway) DeleteJournalEntry(ctx context.Context, id string) error {
	g.mu.Lock()
	g.entries = slices.DeleteFunc(g.entries, func(x models.JournalEntry) bool { return x.ID == id })
	g.mu.Unlock()

	return g.exec(ctx, func(c context.Context) error { return g.backend.DeleteJournalEntry(c, id) })
}

// ChatHistory returns the transcript, falling back to the cached copy.
func (g *Gateway) ChatHistory(ctx context.Context) []models.ChatMessage {
	history, err := race(ctx, g.timeout, g.backend.ChatHistory)
	if err != nil {
		g.log.LogWarn(fmt.Sprintf("chat read fell back to cache: %v", err))
		return g.ChatHistorySync()
	}
	g.mu.Lock()
	g.chat = slices.Clone(history)
	g.mu.Unlock()
	return history
}

// ChatHistorySync returns the cached transcript.
func (g *Gateway) ChatHistorySync() []models.ChatMessage {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.chat)
}

// SaveChatMessage appends m to the cached transcript and persists it.
func (g *Gateway) SaveChatMessage(ctx context.Context, m models.ChatMessage) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid chat message: %w", err)
	}
	g.mu.Lock()
	n := len(g.chat)
	g.chat = append(g.chat, m)
	g.mu.Unlock()

	return g.write(ctx,
		func(c context.Context) error { return g.backend.SaveChatMessage(c, m) },
		func() {
			if len(g.chat) > n {
				g.chat = slices.Delete(g.chat, n, n+1)
			}
		})
}

// ClearChatHistory empties the transcript.
func (g *Gateway) ClearChatHistory(ctx context.Context) error {
	g.mu.Lock()
	g.chat = nil
	g.mu.Unlock()

	return g.exec(ctx, g.backend.ClearChatHistory)
}

func (g *Gateway) loadSettings(ctx context.Context) bool {
	settings, err := race(ctx, g.timeout, g.backend.Settings)
	if err != nil {
		g.log.LogWarn(fmt.Sprintf("settings read fell back to cache: %v", err))
		return false
	}
	g.mu.Lock()
	g.settings = settings
	g.mu.Unlock()
	return true
}

func (g *Gateway) cachedSetting(key string) (json.RawMessage, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	raw, ok := g.settings[key]
	return raw, ok
}

// SetSetting caches and persists value under key.
func (g *Gateway) SetSetting(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal setting %s: %w", key, err)
	}
	g.mu.Lock()
	prev, had := g.settings[key]
	g.settings[key] = data
	g.mu.Unlock()

	return g.write(ctx,
		func(c context.Context) error { return g.backend.SetSetting(c, key, value) },
		func() {
			if had {
				g.settings[key] = prev
			} else {
				delete(g.settings, key)
			}
		})
}

// DeleteSetting removes key from the cache and the backend.
func (g *Gateway) DeleteSetting(ctx context.Context, key string) error {
	g.mu.Lock()
	delete(g.settings, key)
	g.mu.Unlock()

	return g.exec(ctx, func(c context.Context) error { return g.backend.DeleteSetting(c, key) })
}

// SettingKeys lists the cached setting keys in order.
func (g *Gateway) SettingKeys() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	keys := make([]string, 0, len(g.settings))
	for k := range g.settings {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// GetSetting refreshes settings from the backend (falling back to the cache)
// and decodes key into T. Missing or undecodable values yield def.
func GetSetting[T any](ctx context.Context, g *Gateway, key string, def T) T {
	g.loadSettings(ctx)
	return GetSettingSync(g, key, def)
}

// GetSettingSync decodes key from the cache only.
func GetSettingSync[T any](g *Gateway, key string, def T) T {
	raw, ok := g.cachedSetting(key)
	if !ok {
		return def
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		g.log.LogWarn(fmt.Sprintf("setting %s is not a %T, using default", key, def))
		return def
	}
	return v
}

// SavePath caches and persists a completed exploration.
func (g *Gateway) SavePath(ctx context.Context, p models.ConversationPath) error {
	g.mu.Lock()
	n := len(g.paths)
	g.paths = append(g.paths, p)
	g.mu.Unlock()

	return g.write(ctx,
		func(c context.Context) error { return g.backend.SavePath(c, p) },
		func() {
			if len(g.paths) > n {
				g.paths = slices.Delete(g.paths, n, n+1)
			}
		})
}

// Paths returns stored explorations oldest first, falling back to the cache.
func (g *Gateway) Paths(ctx context.Context) []models.ConversationPath {
	paths, err := race(ctx, g.timeout, g.backend.Paths)
	if err != nil {
		g.log.LogWarn(fmt.Sprintf("path read fell back to cache: %v", err))
		g.mu.RLock()
		defer g.mu.RUnlock()
		return slices.Clone(g.paths)
	}
	g.mu.Lock()
	g.paths = slices.Clone(paths)
	g.mu.Unlock()
	return paths
}

// IsTimeout reports whether err came from the gateway deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
