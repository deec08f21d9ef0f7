// Package runtime implements the seam decode orchestration: the scan
// engine state machine, the reassembler, and the run lifecycle around
// them.
package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/justapithecus/seam/adapter"
	"github.com/justapithecus/seam/journal"
	"github.com/justapithecus/seam/log"
	"github.com/justapithecus/seam/metrics"
	"github.com/justapithecus/seam/optic"
	"github.com/justapithecus/seam/sink"
	"github.com/justapithecus/seam/supply"
	"github.com/justapithecus/seam/types"
)

// DefaultOutputName names the reconstructed file when the caller does
// not choose one.
const DefaultOutputName = "decoded.bin"

// DecodeConfig configures a single decode run.
type DecodeConfig struct {
	// ScanMeta is the run identity: the frame directory and the output
	// name. An empty output name resolves to DefaultOutputName.
	ScanMeta *types.ScanMeta
	// Source supplies frames. If nil, a directory source over
	// ScanMeta.Dir with a fresh optical decoder is used.
	Source supply.Source
	// Journal captures per-frame scan records. If nil, no capture.
	Journal *journal.Writer
	// Sink receives the reconstructed file on success. If nil, the
	// output is discarded with a warning.
	Sink sink.Sink
	// Collector is the metrics collector for this run.
	// If nil, no metrics are recorded (all Collector methods are nil-safe).
	Collector *metrics.Collector
	// Adapter publishes the decode completion event. If nil, no
	// notification. Publish failures never change the outcome.
	Adapter adapter.Adapter
}

// DecodeResult represents the result of a decode run.
type DecodeResult struct {
	// ScanMeta is the run identity, output name resolved.
	ScanMeta *types.ScanMeta
	// Outcome is the decode outcome.
	Outcome *types.DecodeOutcome
	// Duration is the total run duration.
	Duration time.Duration
	// Meta is the acquired transfer metadata, nil when none was parsed.
	Meta *types.TransferMeta
	// Stats is the engine disposition tally.
	Stats Tally
	// OutputBytes is the reconstructed file size, 0 unless successful.
	OutputBytes int64
}

// DecodeOrchestrator orchestrates a single decode run.
type DecodeOrchestrator struct {
	config    *DecodeConfig
	logger    *log.Logger
	startTime time.Time
}

// NewDecodeOrchestrator creates a decode orchestrator.
// Returns an error if the scan metadata is invalid.
func NewDecodeOrchestrator(config *DecodeConfig) (*DecodeOrchestrator, error) {
	if err := config.ScanMeta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scan metadata: %w", err)
	}
	if config.ScanMeta.Output == "" {
		config.ScanMeta.Output = DefaultOutputName
	}

	return &DecodeOrchestrator{
		config: config,
		logger: log.NewLogger(config.ScanMeta),
	}, nil
}

// Execute runs the decode end-to-end.
//
// Execution flow:
//  1. Build the frame source (unless injected)
//  2. Run the scan engine to exhaustion or the terminal record
//  3. Reassemble and classify the outcome
//  4. Deliver the output through the sink on success
//  5. Publish the completion event (best effort)
//
// Protocol-level deficiencies (missing segments, checksum mismatch,
// invalid metadata) are outcomes, not errors. The error return is
// reserved for the environment: unreadable directory, journal or sink
// write failure, cancellation.
func (o *DecodeOrchestrator) Execute(ctx context.Context) (*DecodeResult, error) {
	o.startTime = time.Now()
	o.config.Collector.IncScanStarted()

	o.logger.Info("starting decode", map[string]any{
		"dir": o.config.ScanMeta.Dir,
	})

	source := o.config.Source
	if source == nil {
		dirSource, err := supply.NewDirSource(o.config.ScanMeta.Dir, optic.NewDecoder())
		if err != nil {
			o.config.Collector.IncScanFailed()
			o.logger.Error("frame directory unreadable", map[string]any{
				"error": err.Error(),
			})
			return nil, fmt.Errorf("open frame source: %w", err)
		}
		o.logger.Debug("frame source ready", map[string]any{
			"files": dirSource.Len(),
		})
		source = dirSource
	}

	engine := NewScanEngine(source, o.config.Journal, o.logger, o.config.Collector)
	runErr := engine.Run(ctx)

	// The tally is absorbed exactly once per run, whatever the exit path.
	stats := o.absorb(engine)

	if runErr != nil {
		switch {
		case IsProtocolError(runErr):
			// Invalid metadata is a classified outcome, not a run error.
			o.logger.Error("protocol failure", map[string]any{
				"error": runErr.Error(),
			})
			result := o.buildResult(&types.DecodeOutcome{
				Status:  types.OutcomeProtocolFailure,
				Message: fmt.Sprintf("invalid transmission metadata: %v", runErr),
			}, engine, stats, 0)
			o.publish(ctx, result)
			return result, nil

		case IsCanceledError(runErr):
			o.config.Collector.IncScanFailed()
			o.logger.Error("decode canceled", map[string]any{
				"error": runErr.Error(),
			})
			return nil, runErr

		default:
			o.config.Collector.IncScanFailed()
			o.logger.Error("scan failed", map[string]any{
				"error": runErr.Error(),
			})
			return nil, runErr
		}
	}

	outcome, data := Reassemble(engine.State())

	var outputBytes int64
	if outcome.Emitted() {
		outputBytes = int64(len(data))
		if o.config.Sink != nil {
			if err := o.config.Sink.Put(ctx, o.config.ScanMeta.Output, data); err != nil {
				o.config.Collector.IncSinkWriteFailure()
				o.config.Collector.IncScanFailed()
				o.logger.Error("output delivery failed", map[string]any{
					"output": o.config.ScanMeta.Output,
					"sink":   o.config.Sink.Name(),
					"error":  err.Error(),
				})
				return nil, fmt.Errorf("deliver output: %w", err)
			}
			o.config.Collector.IncSinkWriteSuccess()
			o.logger.Info("output delivered", map[string]any{
				"output": o.config.ScanMeta.Output,
				"sink":   o.config.Sink.Name(),
				"bytes":  outputBytes,
			})
		} else {
			o.logger.Warn("no sink configured, output discarded", map[string]any{
				"bytes": outputBytes,
			})
		}
	}

	o.logger.Info("decode completed", map[string]any{
		"outcome":  outcome.Status,
		"duration": time.Since(o.startTime).String(),
		"frames":   stats.FramesScanned,
	})

	result := o.buildResult(outcome, engine, stats, outputBytes)
	o.publish(ctx, result)
	return result, nil
}

// absorb moves the engine tally into the metrics collector and returns
// the snapshot.
func (o *DecodeOrchestrator) absorb(engine *ScanEngine) Tally {
	stats := engine.Stats()

	o.config.Collector.AbsorbTally(
		stats.FramesScanned,
		stats.SegmentsAccepted,
		stats.SegmentsDuplicate,
		stats.MetaFragments,
		stats.FramesRejected,
		stats.FramesIgnored,
		stats.CursorRewinds,
		stats.dispositionStrings(),
	)
	return stats
}

// buildResult constructs the final decode result.
func (o *DecodeOrchestrator) buildResult(
	outcome *types.DecodeOutcome,
	engine *ScanEngine,
	stats Tally,
	outputBytes int64,
) *DecodeResult {
	// Every classified outcome is a completed scan; environment failures
	// and cancellations are counted at their return sites.
	o.config.Collector.IncScanCompleted()

	return &DecodeResult{
		ScanMeta:    o.config.ScanMeta,
		Outcome:     outcome,
		Duration:    time.Since(o.startTime),
		Meta:        engine.State().Meta(),
		Stats:       stats,
		OutputBytes: outputBytes,
	}
}

// publish sends the decode completion event, best effort.
func (o *DecodeOrchestrator) publish(ctx context.Context, result *DecodeResult) {
	if o.config.Adapter == nil {
		return
	}

	event := &adapter.DecodeCompletedEvent{
		EventType:    "decode_completed",
		Version:      types.Version,
		Dir:          result.ScanMeta.Dir,
		Outcome:      string(result.Outcome.Status),
		Message:      result.Outcome.Message,
		OutputBytes:  result.OutputBytes,
		MissingCount: len(result.Outcome.MissingIDs),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		DurationMs:   result.Duration.Milliseconds(),
	}
	if result.Outcome.Emitted() {
		event.Output = result.ScanMeta.Output
	}
	if result.Meta != nil {
		event.SegmentCount = result.Meta.SegmentCount
	}
	if o.config.Sink != nil {
		event.Sink = o.config.Sink.Name()
	}

	if err := o.config.Adapter.Publish(ctx, event); err != nil {
		o.logger.Warn("completion event publish failed", map[string]any{
			"error": err.Error(),
		})
	}
}
