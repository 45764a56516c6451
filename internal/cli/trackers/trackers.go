package trackers

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/tui/forms"
)

type TrackerCmd struct {
	Add    AddCmd    `cmd:"" help:"Add a new tracker."`
	Edit   EditCmd   `cmd:"" help:"Edit an existing tracker."`
	Delete DeleteCmd `cmd:"" help:"Delete a tracker and its records."`
	List   ListCmd   `cmd:"" help:"List trackers by category."`
	Pin    PinCmd    `cmd:"" help:"Pin or unpin a tracker."`
}

// interactive reports whether a form can be shown.
func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// resolvePalette accepts a palette value or its 1-based index.
func resolvePalette(value string, palette []string, what string) (string, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		if n < 1 || n > len(palette) {
			return "", fmt.Errorf("%s index must be between 1 and %d", what, len(palette))
		}
		return palette[n-1], nil
	}
	for _, p := range palette {
		if strings.EqualFold(p, value) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown %s %q, pick one of: %s", what, value, strings.Join(palette, " "))
}

func categoryTitles(ctx *cli.Context) []string {
	svc, err := ctx.Service()
	if err != nil {
		return nil
	}
	categories, err := svc.Categories(ctx.Context())
	if err != nil {
		return nil
	}
	titles := make([]string, len(categories))
	for i, c := range categories {
		titles[i] = c.Title
	}
	return titles
}

func runForm(ctx *cli.Context, fm *forms.TrackerFormModel) error {
	form := forms.NewTrackerForm(fm, categoryTitles(ctx), ctx.Locale())
	if err := form.Run(); err != nil {
		return fmt.Errorf("form cancelled: %w", err)
	}
	return nil
}

func paletteFlags(fm *forms.TrackerFormModel, emoji, color string) error {
	if emoji != "" {
		e, err := resolvePalette(emoji, constants.EmojiPalette, "emoji")
		if err != nil {
			return err
		}
		fm.Emoji = e
	}
	if color != "" {
		c, err := resolvePalette(color, constants.ColorPalette, "color")
		if err != nil {
			return err
		}
		fm.Color = c
	}
	return nil
}
