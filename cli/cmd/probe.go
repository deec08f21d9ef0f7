package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/seam/cli/reader"
)

// ProbeCommand returns the probe command.
// Probe classifies a single frame image: whether a code was found,
// whether a digest length verifies, and what the frame carries. It is a
// diagnostic for misbehaving captures and never mutates anything.
func ProbeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "Classify a single frame image",
		ArgsUsage: "<image>",
		Flags:     ReadOnlyFlags(),
		Action:    probeAction,
	}
}

func probeAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("image path required", 1)
	}
	path := c.Args().First()

	r, err := readOnlyRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	// TUI not supported for probe
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for the probe command", 1)
	}

	resp, err := reader.ProbeImage(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("probe failed: %v", err), 1)
	}
	return r.Render(resp)
}
