package models

import (
	"fmt"

	"github.com/julianstephens/tracker/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingDefaultFilter:
			if value == "" {
				continue
			}
			mode, ok := constants.ParseFilterMode(value)
			if !ok {
				return Settings{}, fmt.Errorf("parsing default_filter: unknown mode %q", value)
			}
			settings.DefaultFilter = mode
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:      settings.Timezone,
		constants.SettingDefaultFilter: string(settings.DefaultFilter),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.DefaultFilter == "" {
		settings.DefaultFilter = constants.DefaultFilter
	}
}
