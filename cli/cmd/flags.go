// Package cmd provides CLI commands for the seam binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags for read-only commands.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	// Only valid for the inspect command.
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (inspect only)",
	}

	// ConfigFlag points at a seam.yaml file providing flag defaults.
	ConfigFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to seam.yaml config file",
	}
)

// ReadOnlyFlags returns the shared flags for all read-only commands.
// TUIFlag is registered even on commands without a TUI so they can
// reject --tui with a specific message rather than urfave's generic
// "flag provided but not defined".
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{FormatFlag, NoColorFlag, TUIFlag, ConfigFlag}
}

// TUIReadOnlyFlags returns flags for commands that support TUI mode.
// An alias for ReadOnlyFlags, kept for documentation clarity.
func TUIReadOnlyFlags() []cli.Flag {
	return ReadOnlyFlags()
}
