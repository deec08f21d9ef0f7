package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/justapithecus/seam/metrics"
	"github.com/justapithecus/seam/types"
)

// ScanReport is the structured JSON report written by --report.
// All fields use json tags matching the documented report format.
type ScanReport struct {
	Dir         string              `json:"dir"`
	Output      string              `json:"output,omitempty"`
	Outcome     types.OutcomeStatus `json:"outcome"`
	Message     string              `json:"message"`
	MissingIDs  []uint64            `json:"missing_ids,omitempty"`
	ExitCode    int                 `json:"exit_code"`
	DurationMs  int64               `json:"duration_ms"`
	OutputBytes int64               `json:"output_bytes"`

	Transfer *ReportTransfer   `json:"transfer,omitempty"`
	Frames   *ReportFrames     `json:"frames"`
	Metrics  *metrics.Snapshot `json:"metrics"`
}

// ReportTransfer holds the acquired transfer metadata in the report.
type ReportTransfer struct {
	SegmentCount uint64 `json:"segment_count"`
	IDWidth      int    `json:"id_width"`
	HashLength   int    `json:"hash_length"`
}

// ReportFrames holds the frame disposition tally in the report.
type ReportFrames struct {
	Scanned       int64            `json:"scanned"`
	Accepted      int64            `json:"accepted"`
	Duplicate     int64            `json:"duplicate"`
	MetaFragments int64            `json:"meta_fragments"`
	Rejected      int64            `json:"rejected"`
	Ignored       int64            `json:"ignored"`
	Rewinds       int64            `json:"rewinds"`
	ByDisposition map[string]int64 `json:"by_disposition,omitempty"`
}

// BuildScanReport composes a ScanReport from a decode result and metrics
// snapshot. The exitCode is the process exit code that will be returned
// to the caller.
func BuildScanReport(result *DecodeResult, snap metrics.Snapshot, exitCode int) *ScanReport {
	report := &ScanReport{
		Dir:         result.ScanMeta.Dir,
		Outcome:     result.Outcome.Status,
		Message:     result.Outcome.Message,
		MissingIDs:  result.Outcome.MissingIDs,
		ExitCode:    exitCode,
		DurationMs:  result.Duration.Milliseconds(),
		OutputBytes: result.OutputBytes,
		Frames: &ReportFrames{
			Scanned:       result.Stats.FramesScanned,
			Accepted:      result.Stats.SegmentsAccepted,
			Duplicate:     result.Stats.SegmentsDuplicate,
			MetaFragments: result.Stats.MetaFragments,
			Rejected:      result.Stats.FramesRejected,
			Ignored:       result.Stats.FramesIgnored,
			Rewinds:       result.Stats.CursorRewinds,
			ByDisposition: result.Stats.dispositionStrings(),
		},
		Metrics: &snap,
	}

	if result.Outcome.Emitted() {
		report.Output = result.ScanMeta.Output
	}
	if result.Meta != nil {
		report.Transfer = &ReportTransfer{
			SegmentCount: result.Meta.SegmentCount,
			IDWidth:      result.Meta.IDWidth,
			HashLength:   result.Meta.HashLength,
		}
	}

	return report
}

// WriteScanReport writes the report as JSON to the specified path.
// If path is "-", writes to stderr.
func WriteScanReport(report *ScanReport, path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stderr.Write(data)
		if err != nil {
			return fmt.Errorf("failed to write report to stderr: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}

// writeScanReportTo writes report JSON to any writer (for testing).
func writeScanReportTo(report *ScanReport, w io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
