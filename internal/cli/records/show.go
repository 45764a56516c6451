package records

import (
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/stats"
	"github.com/julianstephens/tracker/internal/utils"
	"github.com/julianstephens/tracker/internal/visibility"
)

type ShowCmd struct {
	Date   string `short:"d" help:"Day to show (YYYY-MM-DD, today or yesterday)." default:"today"`
	Search string `short:"s" help:"Only show trackers whose title contains this text."`
	Filter string `short:"f" help:"Status filter: all, today, completed or incomplete. Defaults to the stored setting."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	date, err := ctx.ParseDate(c.Date)
	if err != nil {
		return err
	}

	filter := settings.DefaultFilter
	if c.Filter != "" {
		filter = constants.StatusFilter(c.Filter)
		if !isStatusFilter(filter) {
			return fmt.Errorf("unknown filter %q", c.Filter)
		}
	}
	if filter == constants.FilterToday {
		date = svc.Today()
	}

	sections, err := svc.VisibleCategories(ctx.Context(), date, c.Search, filter)
	if err != nil {
		return err
	}
	records, err := svc.Records(ctx.Context())
	if err != nil {
		return err
	}

	locale := settings.Locale
	strs := utils.StringsFor(locale)
	fmt.Printf("%s  %s\n",
		cli.HeaderStyle.Render(fmt.Sprintf("%s, %s", models.WeekdayOf(date).Name(locale), utils.DayKey(date))),
		cli.MutedStyle.Render(strs.Filters[filter]),
	)

	if len(sections) == 0 {
		fmt.Println()
		fmt.Println(visibility.Placeholder(visibility.Query{Date: date, Search: c.Search, Filter: filter}, locale))
		return nil
	}

	set := models.NewRecordSet(records...)
	counts := stats.TrackerSummary(records)
	for _, section := range sections {
		fmt.Println()
		fmt.Println(cli.HeaderStyle.Render(section.DisplayTitle(locale)))
		for _, t := range section.Trackers {
			fmt.Println("  " + cli.FormatTracker(t, set.Has(t.ID, date), counts[t.ID], locale))
		}
	}
	return nil
}

func isStatusFilter(f constants.StatusFilter) bool {
	for _, known := range constants.AllStatusFilters {
		if f == known {
			return true
		}
	}
	return false
}
