package records

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/tracker/internal/cli"
)

type StatsCmd struct {
	Output string `short:"o" help:"Output format." enum:"text,json,yaml" default:"text"`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	result, err := svc.Statistics(ctx.Context())
	if err != nil {
		return err
	}

	switch c.Output {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(result)
	}

	if result.IsEmpty() {
		fmt.Println(cli.MutedStyle.Render("No completed trackers yet."))
	}
	for _, line := range result.Lines(ctx.Locale()) {
		fmt.Printf("  %-22s %s\n", line.Label, line.Value)
	}
	return nil
}
