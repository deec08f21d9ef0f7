package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/seam/types"
)

// VersionResponse reports the canonical project version plus the commit
// the binary was built from.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// VersionCommand returns the version command. The version is lockstep
// across all components, so the build-time version argument is ignored
// in favor of types.Version.
func VersionCommand(_, commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  ReadOnlyFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.Bool("tui") {
			return cli.Exit("--tui is not supported for version command", 1)
		}

		r, err := readOnlyRenderer(c)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		return r.Render(VersionResponse{Version: types.Version, Commit: commit})
	}
}
