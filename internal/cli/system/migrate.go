package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/migration"
	"github.com/julianstephens/tracker/internal/storage"
)

// migratable is implemented by the SQL backends.
type migratable interface {
	Migrator() *migration.Runner
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil && !errors.Is(err, storage.ErrSchemaOutdated) {
		return fmt.Errorf("failed to load database: %w", err)
	}

	store, ok := ctx.Store.(migratable)
	if !ok {
		return fmt.Errorf("migrate command only supports SQL storage, not %s", ctx.Store.Backend())
	}

	count, err := store.Migrator().Apply(func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
