package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/seam/cli/reader"
)

// InspectCommand returns the inspect command.
// Inspect re-renders a captured scan journal without touching the frame
// images: a summary by default, per-frame records with --records.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Summarize a scan journal",
		ArgsUsage: "<journal>",
		Flags: append(TUIReadOnlyFlags(),
			&cli.BoolFlag{
				Name:  "records",
				Usage: "List per-frame records instead of the summary",
			},
		),
		Action: inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("journal path required", 1)
	}
	path := c.Args().First()

	r, err := readOnlyRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if c.Bool("records") {
		items, err := reader.ListRecords(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("inspect failed: %v", err), 1)
		}
		if c.Bool("tui") {
			return r.RenderTUI("inspect_records", items)
		}
		return r.Render(items)
	}

	resp, err := reader.Summarize(c.Context, path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("inspect failed: %v", err), 1)
	}
	if c.Bool("tui") {
		return r.RenderTUI("inspect_journal", resp)
	}
	return r.Render(resp)
}
