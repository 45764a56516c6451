// Package config resolves process-level configuration from TRACKER_*
// environment variables, optionally seeded from .env files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/utils"
)

// EnvFileName is the dotenv file looked up in the working directory and
// the config directory.
const EnvFileName = ".env"

// Config holds environment overrides. Empty fields mean "not set".
type Config struct {
	Path         string
	Debug        bool
	DBConnection string
	Timezone     string
	Locale       constants.Locale
}

// Load reads .env files from dirs that have one, then the environment.
// Variables already present in the environment win over .env values.
func Load(dirs ...string) (Config, []string, error) {
	var loaded []string
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(expandHome(dir), EnvFileName)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return Config{}, loaded, fmt.Errorf("failed to load %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}

	cfg, err := FromEnv()
	return cfg, loaded, err
}

// FromEnv reads TRACKER_* variables.
func FromEnv() (Config, error) {
	cfg := Config{
		Path:         strings.TrimSpace(os.Getenv(constants.EnvConfig)),
		DBConnection: strings.TrimSpace(os.Getenv(constants.EnvDBConnection)),
		Timezone:     strings.TrimSpace(os.Getenv(constants.EnvTimezone)),
		Locale:       constants.Locale(strings.ToLower(strings.TrimSpace(os.Getenv(constants.EnvLocale)))),
	}

	if v := strings.TrimSpace(os.Getenv(constants.EnvDebug)); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s value %q: %w", constants.EnvDebug, v, err)
		}
		cfg.Debug = debug
	}
	if cfg.Timezone != "" && !utils.ValidateTimezone(cfg.Timezone) {
		return Config{}, fmt.Errorf("invalid %s value %q", constants.EnvTimezone, cfg.Timezone)
	}
	if cfg.Locale != "" && !utils.IsSupportedLocale(cfg.Locale) {
		return Config{}, fmt.Errorf("unsupported %s value %q", constants.EnvLocale, cfg.Locale)
	}
	return cfg, nil
}

// Apply overlays environment overrides onto stored settings.
func (c Config) Apply(settings models.Settings) models.Settings {
	if c.Timezone != "" {
		settings.Timezone = c.Timezone
	}
	if c.Locale != "" {
		settings.Locale = c.Locale
	}
	models.ApplyDefaultSettings(&settings)
	return settings
}

// Dir returns the directory that holds a file-backed store, or the
// default config directory for connection strings.
func Dir(configValue string) string {
	if configValue == "" || IsConnString(configValue) {
		return filepath.Dir(expandHome(constants.DefaultConfigPath))
	}
	return filepath.Dir(expandHome(configValue))
}

// IsConnString reports whether value looks like a PostgreSQL connection
// string rather than a file path.
func IsConnString(value string) bool {
	return strings.HasPrefix(value, "postgres://") ||
		strings.HasPrefix(value, "postgresql://") ||
		strings.Contains(value, "host=")
}

// ExpandPath resolves a leading ~ in file paths and leaves connection
// strings untouched.
func ExpandPath(value string) string {
	if IsConnString(value) {
		return value
	}
	return expandHome(value)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
