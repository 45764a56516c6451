package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/migration"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
	"github.com/julianstephens/tracker/migrations"
)

// timeLayout is used for created_at columns
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) dsn() string {
	return "file:" + s.path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if _, err := s.runner().Apply(func(msg string) { logger.Info(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return s.ensureDefaultSettings()
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return storage.ErrNotInitialized
	}

	if err := s.open(); err != nil {
		return err
	}

	st, err := s.runner().Status()
	if err != nil {
		return err
	}
	if len(st.Pending) > 0 {
		logger.Warn("database schema is behind", "current", st.Current, "latest", st.Latest)
		return fmt.Errorf("%w: version %d, latest %d", storage.ErrSchemaOutdated, st.Current, st.Latest)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) GetConfigPath() string {
	return s.path
}

func (s *Store) Backend() string {
	return storage.BackendSQLite
}

// GetDB returns the underlying database connection, nil before Init or Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// Migrator returns a migration runner for the store's database.
func (s *Store) Migrator() *migration.Runner {
	return s.runner()
}

func (s *Store) runner() *migration.Runner {
	return migration.NewRunner(s.db, migrations.SQLite(), migration.SQLite)
}

func encodeSchedule(schedule models.Schedule) string {
	parts := make([]string, len(schedule))
	for i, v := range schedule.Ints() {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func decodeSchedule(value string) (models.Schedule, error) {
	if value == "" {
		return models.Schedule{}, nil
	}
	var ints []int
	for _, part := range strings.Split(value, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("failed to parse schedule %q: %w", value, err)
		}
		ints = append(ints, v)
	}
	return models.ScheduleFromInts(ints), nil
}
