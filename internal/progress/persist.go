package progress

import (
	"context"

	"github.com/harrison/flagwise/internal/store"
)

// Load reads progress from the userProgress setting. Missing or unreadable
// progress starts from zero.
func Load(ctx context.Context, g *store.Gateway) Progress {
	return store.GetSetting(ctx, g, store.SettingProgress, Progress{})
}

// Save writes progress to the userProgress setting.
func Save(ctx context.Context, g *store.Gateway, p Progress) error {
	return g.SetSetting(ctx, store.SettingProgress, p)
}
