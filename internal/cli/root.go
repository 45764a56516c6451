package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/tracker/internal/backup"
	"github.com/julianstephens/tracker/internal/config"
	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/keyring"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
	"github.com/julianstephens/tracker/internal/storage/postgres"
	"github.com/julianstephens/tracker/internal/storage/sqlite"
	"github.com/julianstephens/tracker/internal/tracking"
	"github.com/julianstephens/tracker/internal/utils"
)

// Context is passed to every command's Run method.
type Context struct {
	Store  storage.Provider
	Config config.Config

	ctx      context.Context
	service  *tracking.Service
	settings *models.Settings
}

// NewContext wraps an opened store. base is cancelled on interrupt.
func NewContext(base context.Context, store storage.Provider, cfg config.Config) *Context {
	return &Context{Store: store, Config: cfg, ctx: base}
}

// Context returns the command's base context.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Settings returns stored settings with environment overrides applied.
func (c *Context) Settings() (models.Settings, error) {
	if c.settings != nil {
		return *c.settings, nil
	}
	stored, err := c.Store.GetSettings(c.Context())
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	settings := c.Config.Apply(stored)
	c.settings = &settings
	return settings, nil
}

// Locale returns the configured locale, English if settings are unreadable.
func (c *Context) Locale() constants.Locale {
	settings, err := c.Settings()
	if err != nil {
		return constants.DefaultLocale
	}
	return settings.Locale
}

// Service returns the tracking service, creating it on first use.
func (c *Context) Service() (*tracking.Service, error) {
	if c.service != nil {
		return c.service, nil
	}
	settings, err := c.Settings()
	if err != nil {
		return nil, err
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}
	c.service = tracking.NewService(c.Store, tracking.WithLocation(loc))
	return c.service, nil
}

// InvalidateSettings drops cached settings after they change.
func (c *Context) InvalidateSettings() {
	c.settings = nil
}

// Close drains the service queue.
func (c *Context) Close() error {
	if c.service == nil {
		return nil
	}
	err := c.service.Close()
	c.service = nil
	return err
}

// PerformAutomaticBackup backs up file-based stores and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if c.Store.Backend() == storage.BackendPostgres {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(c.Context()); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ParseDate parses YYYY-MM-DD in the service timezone; empty means today.
func (c *Context) ParseDate(value string) (time.Time, error) {
	svc, err := c.Service()
	if err != nil {
		return time.Time{}, err
	}
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "", "today":
		return svc.Today(), nil
	case "yesterday":
		return svc.Today().AddDate(0, 0, -1), nil
	}
	date, err := utils.ParseDateInLocation(value, svc.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", value)
	}
	return date, nil
}

// NewProvider picks a backend for the --config value. An empty value uses a
// connection string from the environment or keyring when one exists, and
// the default SQLite file otherwise.
func NewProvider(value string) (storage.Provider, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if connStr, source, err := keyring.ResolveConnectionString(); err == nil {
			logger.Debug("using connection string", "source", source)
			value = connStr
		} else {
			value = constants.DefaultConfigPath
		}
	}

	if config.IsConnString(value) {
		if err := postgres.ValidateConnString(value); err != nil {
			return nil, err
		}
		return postgres.New(value), nil
	}

	path := config.ExpandPath(value)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return storage.NewJSONStore(path), nil
	}
	return sqlite.NewStore(path), nil
}
