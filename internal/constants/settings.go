package constants

const (
	SettingTimezone      = "timezone"
	SettingLocale        = "locale"
	SettingDefaultFilter = "default_filter"

	// Default Settings Values
	DefaultTimezone     = "Local" // Use system local timezone by default
	DefaultLocale       = LocaleEnglish
	DefaultStatusFilter = FilterAll
)
