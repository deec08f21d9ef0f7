package tui

import (
	"fmt"
	"strings"
)

// Run routes a view type to its TUI. Returns an error for view types
// that have no TUI.
func Run(viewType string, data any) error {
	switch viewType {
	case "inspect_journal":
		return RunInspectTUI(viewType, data)
	case "inspect_records":
		return RunRecordsTUI(data)
	}
	return fmt.Errorf("TUI mode is not supported for %s", viewType)
}

// IsTUISupported returns true if the view type supports TUI mode.
// Only the read-only inspect views do.
func IsTUISupported(viewType string) bool {
	return strings.HasPrefix(viewType, "inspect_")
}

// SupportedTUIViews returns the view types that support TUI.
func SupportedTUIViews() []string {
	return []string{"inspect_journal", "inspect_records"}
}
