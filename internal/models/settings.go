package models

import (
	"fmt"
)

// settingRules are validator tags for the user-editable settings.
var settingRules = map[string]string{
	"enhancedAI":   "required,boolean",
	"cohereApiKey": "omitempty,printascii,max=200",
	"userCountry":  "required,iso3166_1_alpha2",
}

// ValidateSetting checks a raw user-supplied value for a settings key.
// Unknown keys are rejected.
func ValidateSetting(key, value string) error {
	tag, ok := settingRules[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	if err := validate.Var(value, tag); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

// SettingKeys lists the user-editable settings.
func SettingKeys() []string {
	return []string{"cohereApiKey", "enhancedAI", "userCountry"}
}
