package constants

const (
	SettingTimezone      = "timezone"
	SettingDefaultFilter = "default_filter"

	DefaultTimezone      = "Local" // Use system local timezone by default
	DefaultFilter        = FilterAll
	DefaultMaxTitleRunes = 38
)
