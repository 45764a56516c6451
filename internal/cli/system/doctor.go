package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tracker/internal/backup"
	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/storage"
	"github.com/julianstephens/tracker/internal/storage/sqlite"
	"github.com/julianstephens/tracker/internal/utils"
	"github.com/julianstephens/tracker/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name     string
	needsDB  bool
	warnOnly bool
	run      func(*cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	checks := []check{
		{name: "Schema version", needsDB: true, run: checkSchemaVersion},
		{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
		{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
		{name: "Data validation", needsDB: true, run: checkValidation},
		{name: "Clock/timezone", needsDB: true, run: checkClockTimezone},
		{name: "Record dates", needsDB: true, run: checkRecordDates},
	}

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	// an outdated schema is still reachable; the migrations check reports it
	if err := ctx.Store.Load(); err != nil && !errors.Is(err, storage.ErrSchemaOutdated) {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if s, ok := ctx.Store.(*sqlite.Store); ok {
		db := s.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRowContext(ctx.Context(), "SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	store, ok := ctx.Store.(migratable)
	if !ok {
		return nil
	}
	_, err := store.Migrator().Status()
	return err
}

func checkMigrationsComplete(ctx *cli.Context) error {
	store, ok := ctx.Store.(migratable)
	if !ok {
		return nil
	}
	st, err := store.Migrator().Status()
	if err != nil {
		return err
	}
	if len(st.Pending) > 0 {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", st.Current, st.Latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if ctx.Store.Backend() == storage.BackendPostgres {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'tracker backup create'")
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	categories, err := svc.Categories(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to get categories: %w", err)
	}
	records, err := svc.Records(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to get records: %w", err)
	}
	result := validation.New().Validate(categories, records, svc.Today())
	if result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found, run 'tracker validate' for details", len(result.Conflicts))
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("unknown timezone %q, fix it with 'tracker settings set --timezone'", settings.Timezone)
	}
	return nil
}

func checkRecordDates(ctx *cli.Context) error {
	s, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil
	}
	db := s.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	var invalid int
	err := db.QueryRowContext(ctx.Context(), `
		SELECT COUNT(*)
		FROM completion_records
		WHERE day NOT GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]'
	`).Scan(&invalid)
	if err != nil {
		return fmt.Errorf("failed to check record dates: %w", err)
	}
	if invalid > 0 {
		return fmt.Errorf("found %d completion records with invalid date format", invalid)
	}
	return nil
}
