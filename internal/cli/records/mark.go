package records

import (
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/utils"
)

type MarkCmd struct {
	Tracker string `arg:"" help:"Tracker ID, ID prefix or title."`
	Date    string `short:"d" help:"Day to toggle (YYYY-MM-DD, today or yesterday)." default:"today"`
}

func (c *MarkCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	date, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}
	if utils.IsAfterDay(date, svc.Today()) {
		return fmt.Errorf("cannot complete a tracker on a future day: %s", utils.DayKey(date))
	}
	tracker, err := svc.FindTracker(ctx.Context(), c.Tracker)
	if err != nil {
		return err
	}

	if err := svc.ToggleCompletion(ctx.Context(), tracker.ID, date); err != nil {
		return err
	}
	done, err := svc.IsCompletedOn(ctx.Context(), tracker.ID, date)
	if err != nil {
		return err
	}
	days, err := svc.CompletedDays(ctx.Context(), tracker.ID)
	if err != nil {
		return err
	}

	state := "not completed"
	if done {
		state = cli.DoneStyle.Render("completed")
	}
	fmt.Printf("%s %s %s on %s (%s)\n", tracker.Emoji, tracker.Title, state, utils.DayKey(date), utils.FormatDays(days, ctx.Locale()))
	return nil
}
