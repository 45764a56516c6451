package system

import (
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/validation"
)

type ValidateCmd struct{}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	categories, err := svc.Categories(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	records, err := svc.Records(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	fmt.Println("Validating categories, trackers and records...")
	result := validation.New().Validate(categories, records, svc.Today())

	fmt.Println()
	fmt.Println(result.FormatReport())
	if result.HasConflicts() {
		return fmt.Errorf("validation found %d conflict(s)", len(result.Conflicts))
	}
	return nil
}
