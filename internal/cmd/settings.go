package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/flagwise/internal/models"
	"github.com/harrison/flagwise/internal/store"
)

func newSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "View and change user settings",
		Long: `View and change user settings.

Keys:
  enhancedAI     use the language model for chat replies (true|false)
  cohereApiKey   API key for the language model
  userCountry    two-letter country code for crisis resources (e.g. GB)

Examples:
  flagwise settings set enhancedAI true
  flagwise settings set cohereApiKey <key>
  flagwise settings list`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			for _, key := range models.SettingKeys() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", key, settingValue(cmd, a, key))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Show one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := models.ValidateSetting(args[0], sampleValue(args[0])); err != nil {
				return err
			}
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintln(cmd.OutOrStdout(), settingValue(cmd, a, args[0]))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, raw := args[0], strings.TrimSpace(args[1])
			if key == store.SettingCountry {
				raw = strings.ToUpper(raw)
			}
			if err := models.ValidateSetting(key, raw); err != nil {
				return err
			}

			var value any = raw
			if key == store.SettingEnhancedAI {
				b, _ := strconv.ParseBool(raw)
				value = b
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.gateway.SetSetting(cmd.Context(), key, value); err != nil {
				return fmt.Errorf("save setting %s: %w", key, err)
			}
			a.log.LogInfo(fmt.Sprintf("setting %s changed", key))
			a.out.Success("%s updated", key)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unset <key>",
		Short: "Restore a setting to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := models.ValidateSetting(args[0], sampleValue(args[0])); err != nil {
				return err
			}
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.gateway.DeleteSetting(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete setting %s: %w", args[0], err)
			}
			a.out.Success("%s reset", args[0])
			return nil
		},
	})

	return cmd
}

// settingValue renders the effective value, masking the API key.
func settingValue(cmd *cobra.Command, a *app, key string) string {
	ctx := cmd.Context()
	switch key {
	case store.SettingEnhancedAI:
		return strconv.FormatBool(store.GetSetting(ctx, a.gateway, key, a.cfg.Counselor.EnhancedAIDefault))
	case store.SettingCountry:
		return store.GetSetting(ctx, a.gateway, key, a.cfg.Country)
	case store.SettingAPIKey:
		return maskKey(store.GetSetting(ctx, a.gateway, key, ""))
	default:
		return ""
	}
}

func maskKey(k string) string {
	switch {
	case k == "":
		return "(not set)"
	case len(k) <= 4:
		return "****"
	default:
		return "****" + k[len(k)-4:]
	}
}

// sampleValue is a valid value for key, used to check a key name alone.
func sampleValue(key string) string {
	switch key {
	case store.SettingEnhancedAI:
		return "false"
	case store.SettingCountry:
		return "US"
	default:
		return ""
	}
}
