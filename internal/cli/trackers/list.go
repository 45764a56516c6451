package trackers

import (
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/stats"
)

type ListCmd struct {
	IDs bool `help:"Show tracker IDs."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	categories, err := svc.Categories(ctx.Context())
	if err != nil {
		return err
	}
	records, err := svc.Records(ctx.Context())
	if err != nil {
		return err
	}

	if len(categories) == 0 {
		fmt.Println("No trackers found.")
		return nil
	}

	locale := ctx.Locale()
	summary := stats.TrackerSummary(records)
	today := svc.Today()
	for i, category := range categories {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(cli.HeaderStyle.Render(category.Title))
		if len(category.Trackers) == 0 {
			fmt.Println(cli.MutedStyle.Render("  (empty)"))
		}
		for _, t := range category.Trackers {
			done, err := svc.IsCompletedOn(ctx.Context(), t.ID, today)
			if err != nil {
				return err
			}
			line := "  " + cli.FormatTracker(t, done, summary[t.ID], locale)
			if c.IDs {
				line += "  " + cli.MutedStyle.Render(cli.ShortID(t.ID))
			}
			fmt.Println(line)
		}
	}
	return nil
}
