package trackers

import (
	"bufio"
	"fmt"
	"os"

	"github.com/julianstephens/tracker/internal/cli"
)

type DeleteCmd struct {
	Tracker string `arg:"" help:"Tracker ID, ID prefix or title."`
	Yes     bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	tracker, err := svc.FindTracker(ctx.Context(), c.Tracker)
	if err != nil {
		return err
	}

	if !c.Yes {
		fmt.Printf("Delete %s %s and all of its records? [y/N]: ", tracker.Emoji, tracker.Title)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil || !cli.Confirm(line) {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	if err := svc.DeleteTracker(ctx.Context(), tracker.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted tracker: %s\n", tracker.Title)
	return nil
}
