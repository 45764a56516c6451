package settings

import (
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/constants"
)

type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" help:"Show current settings." default:"1"`
	Set  SettingsSetCmd  `cmd:"" help:"Update settings."`
}

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	effective, err := ctx.Settings()
	if err != nil {
		return err
	}
	fmt.Println("Current Settings:")
	fmt.Printf("  Timezone:       %s\n", effective.Timezone)
	fmt.Printf("  Locale:         %s\n", effective.Locale)
	fmt.Printf("  Default Filter: %s\n", effective.DefaultFilter)
	if ctx.Config.Timezone != "" || ctx.Config.Locale != "" {
		fmt.Println(cli.MutedStyle.Render("\n  (environment overrides applied)"))
	}
	return nil
}

type SettingsSetCmd struct {
	Timezone *string `help:"IANA timezone used to decide what 'today' is, or 'Local'."`
	Locale   *string `help:"Output language (en or ru)."`
	Filter   *string `help:"Default status filter: all, today, completed or incomplete."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	settings, err := svc.Settings(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	updated := false
	if c.Timezone != nil {
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.Locale != nil {
		settings.Locale = constants.Locale(*c.Locale)
		updated = true
	}
	if c.Filter != nil {
		settings.DefaultFilter = constants.StatusFilter(*c.Filter)
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use \"settings show\" to view settings or flags to update them.")
		return nil
	}
	if err := svc.SaveSettings(ctx.Context(), settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.InvalidateSettings()
	fmt.Println("Settings updated successfully.")
	return nil
}
