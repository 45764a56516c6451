package constants

import "time"

// StatusFilter selects which scheduled trackers are shown for a date
type StatusFilter string

// Locale selects one of the built-in string tables
type Locale string

const (
	AppName            = "tracker"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/tracker/tracker.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MaxTitleLength is the maximum tracker title length in runes
	MaxTitleLength = 38

	// PinnedCategoryTitle is the canonical title of the synthetic pinned group
	PinnedCategoryTitle = "Pinned"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "tracker-"
	BackupFileSuffix = ".db"

	// Queue constants
	QueueBufferSize      = 64
	SubscriberBufferSize = 16
	QueueCloseTimeout    = 5 * time.Second

	// Status filters
	FilterAll        StatusFilter = "all"
	FilterToday      StatusFilter = "today"
	FilterCompleted  StatusFilter = "completed"
	FilterIncomplete StatusFilter = "incomplete"

	// Locales
	LocaleEnglish Locale = "en"
	LocaleRussian Locale = "ru"

	// Environment variables
	EnvConfig       = "TRACKER_CONFIG"
	EnvDebug        = "TRACKER_DEBUG"
	EnvDBConnection = "TRACKER_DB_CONNECTION"
	EnvTimezone     = "TRACKER_TIMEZONE"
	EnvLocale       = "TRACKER_LOCALE"
	EnvTestPostgres = "TRACKER_TEST_POSTGRES"
)

// AllStatusFilters lists the filters in display order
var AllStatusFilters = []StatusFilter{FilterAll, FilterToday, FilterCompleted, FilterIncomplete}
