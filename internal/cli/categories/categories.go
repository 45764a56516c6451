package categories

import (
	"bufio"
	"fmt"
	"os"

	"github.com/julianstephens/tracker/internal/cli"
)

type CategoryCmd struct {
	Add    CategoryAddCmd    `cmd:"" help:"Add an empty category."`
	Rename CategoryRenameCmd `cmd:"" help:"Rename a category, keeping its trackers."`
	Delete CategoryDeleteCmd `cmd:"" help:"Delete a category with its trackers and records."`
	List   CategoryListCmd   `cmd:"" help:"List categories."`
}

type CategoryAddCmd struct {
	Title string `arg:"" help:"Category title."`
}

func (c *CategoryAddCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	category, err := svc.AddCategory(ctx.Context(), c.Title)
	if err != nil {
		return err
	}
	fmt.Printf("Added category: %s\n", category.Title)
	return nil
}

type CategoryRenameCmd struct {
	From string `arg:"" help:"Current title."`
	To   string `arg:"" help:"New title."`
}

func (c *CategoryRenameCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	if err := svc.RenameCategory(ctx.Context(), c.From, c.To); err != nil {
		return err
	}
	fmt.Printf("Renamed category: %s -> %s\n", c.From, c.To)
	return nil
}

type CategoryDeleteCmd struct {
	Title string `arg:"" help:"Category title."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *CategoryDeleteCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	if !c.Yes {
		fmt.Printf("Delete category %q with all of its trackers and records? [y/N]: ", c.Title)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil || !cli.Confirm(line) {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	if err := svc.DeleteCategory(ctx.Context(), c.Title); err != nil {
		return err
	}
	fmt.Printf("Deleted category: %s\n", c.Title)
	return nil
}

type CategoryListCmd struct{}

func (c *CategoryListCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	categories, err := svc.Categories(ctx.Context())
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		fmt.Println("No categories found.")
		return nil
	}
	for _, category := range categories {
		fmt.Printf("  %s  %s\n", category.Title, cli.MutedStyle.Render(fmt.Sprintf("(%d trackers)", len(category.Trackers))))
	}
	return nil
}
