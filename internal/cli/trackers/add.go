package trackers

import (
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/tui/forms"
)

type AddCmd struct {
	Title    string `arg:"" optional:"" help:"Tracker title."`
	Category string `short:"c" help:"Category title (created if missing)."`
	Days     string `short:"d" help:"Comma-separated weekdays, 'daily', 'weekdays' or 'weekends'."`
	Emoji    string `short:"e" help:"Emoji from the palette, or its 1-based index."`
	Color    string `help:"Color hex from the palette, or its 1-based index."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	fm := forms.NewTrackerFormModel(models.Tracker{})
	fm.Title = c.Title
	fm.Category = c.Category
	if c.Days != "" {
		schedule, err := models.ParseSchedule(c.Days)
		if err != nil {
			return err
		}
		fm.Days = schedule
	}
	if err := paletteFlags(fm, c.Emoji, c.Color); err != nil {
		return err
	}

	if (fm.Title == "" || fm.Category == "" || len(fm.Days) == 0) && interactive() {
		if err := runForm(ctx, fm); err != nil {
			return err
		}
	}

	tracker := fm.Apply(models.Tracker{})
	if err := svc.CreateTracker(ctx.Context(), tracker, fm.Category); err != nil {
		return err
	}

	fmt.Printf("Added tracker: %s %s (%s) to %s\n", tracker.Emoji, tracker.Title, cli.ShortID(tracker.ID), fm.Category)
	return nil
}
