package trackers

import (
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
)

type PinCmd struct {
	Tracker string `arg:"" help:"Tracker ID, ID prefix or title."`
}

func (c *PinCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	tracker, err := svc.FindTracker(ctx.Context(), c.Tracker)
	if err != nil {
		return err
	}
	pinned, err := svc.TogglePin(ctx.Context(), tracker.ID)
	if err != nil {
		return err
	}
	if pinned {
		fmt.Printf("Pinned: %s\n", tracker.Title)
	} else {
		fmt.Printf("Unpinned: %s\n", tracker.Title)
	}
	return nil
}
