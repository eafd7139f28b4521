package counselor

import (
	"context"

	"github.com/harrison/flagwise/internal/config"
	"github.com/harrison/flagwise/internal/store"
)

// GatewaySettings reads counselor settings through the storage gateway,
// using cfg for anything the user has never set.
func GatewaySettings(g *store.Gateway, cfg *config.Config) SettingsFunc {
	return func(ctx context.Context) Settings {
		// one refresh per turn, then read from the cache it filled
		enhanced := store.GetSetting(ctx, g, store.SettingEnhancedAI, cfg.Counselor.EnhancedAIDefault)
		return Settings{
			EnhancedAI: enhanced,
			APIKey:     store.GetSettingSync(g, store.SettingAPIKey, ""),
			Country:    store.GetSettingSync(g, store.SettingCountry, cfg.Country),
		}
	}
}
