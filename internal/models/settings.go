package models

import (
	"github.com/julianstephens/tracker/internal/constants"
)

// Settings represents application-wide settings
type Settings struct {
	Timezone      string                 `json:"timezone" yaml:"timezone"`             // IANA timezone name or "Local"
	Locale        constants.Locale       `json:"locale" yaml:"locale"`                 // string table for output ("en" or "ru")
	DefaultFilter constants.StatusFilter `json:"default_filter" yaml:"default_filter"` // filter used when none is given
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) Settings {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingLocale:
			settings.Locale = constants.Locale(value)
		case constants.SettingDefaultFilter:
			settings.DefaultFilter = constants.StatusFilter(value)
		}
	}
	return settings
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:      settings.Timezone,
		constants.SettingLocale:        string(settings.Locale),
		constants.SettingDefaultFilter: string(settings.DefaultFilter),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.Locale == "" {
		settings.Locale = constants.DefaultLocale
	}
	if settings.DefaultFilter == "" {
		settings.DefaultFilter = constants.DefaultStatusFilter
	}
}

// DefaultSettings returns settings populated with defaults.
func DefaultSettings() Settings {
	s := Settings{}
	ApplyDefaultSettings(&s)
	return s
}
