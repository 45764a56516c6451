package system

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/export"
	"github.com/julianstephens/tracker/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized tracker storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if ctx.Store.Backend() == storage.BackendPostgres {
		return fmt.Errorf("--force is not supported for PostgreSQL, drop the schema manually")
	}
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
	}
	fmt.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

func (c *InitCmd) copyData(ctx *cli.Context) error {
	source, err := cli.NewProvider(c.Source)
	if err != nil {
		return err
	}
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	now := time.Now()
	doc, err := export.Build(ctx.Context(), source, now)
	if err != nil {
		return err
	}
	sum, err := export.Apply(ctx.Context(), ctx.Store, doc, now)
	if err != nil {
		return err
	}
	fmt.Printf("  Copied %d categories, %d trackers, %d records\n", sum.Categories, sum.Trackers, sum.Records)
	return nil
}
