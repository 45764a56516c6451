package trackers

import (
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/tui/forms"
)

type EditCmd struct {
	Tracker  string  `arg:"" help:"Tracker ID, ID prefix or title."`
	Title    *string `help:"New title."`
	Category *string `short:"c" help:"Move to this category."`
	Days     *string `short:"d" help:"New schedule."`
	Emoji    string  `short:"e" help:"New emoji from the palette, or its 1-based index."`
	Color    string  `help:"New color from the palette, or its 1-based index."`
}

func (c *EditCmd) changed() bool {
	return c.Title != nil || c.Category != nil || c.Days != nil || c.Emoji != "" || c.Color != ""
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	current, err := svc.FindTracker(ctx.Context(), c.Tracker)
	if err != nil {
		return err
	}

	fm := forms.NewTrackerFormModel(current)
	if c.Title != nil {
		fm.Title = *c.Title
	}
	if c.Category != nil {
		fm.Category = *c.Category
	}
	if c.Days != nil {
		schedule, err := models.ParseSchedule(*c.Days)
		if err != nil {
			return err
		}
		fm.Days = schedule
	}
	if err := paletteFlags(fm, c.Emoji, c.Color); err != nil {
		return err
	}

	if !c.changed() {
		if !interactive() {
			fmt.Println("No changes specified.")
			return nil
		}
		if err := runForm(ctx, fm); err != nil {
			return err
		}
	}

	updated := fm.Apply(current)
	if err := svc.UpdateTracker(ctx.Context(), updated, fm.Category); err != nil {
		return err
	}
	fmt.Printf("Updated tracker: %s %s\n", updated.Emoji, updated.Title)
	return nil
}
