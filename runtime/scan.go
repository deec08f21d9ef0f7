package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/justapithecus/seam/journal"
	"github.com/justapithecus/seam/log"
	"github.com/justapithecus/seam/metrics"
	"github.com/justapithecus/seam/optic"
	"github.com/justapithecus/seam/supply"
	"github.com/justapithecus/seam/types"
	"github.com/justapithecus/seam/wire"
)

// ScanError classifies scan failures for outcome determination.
type ScanError struct {
	// Kind indicates whether this is a protocol, environment or
	// cancellation failure.
	Kind ScanErrorKind
	// Err is the underlying error.
	Err error
}

// ScanErrorKind classifies scan errors.
type ScanErrorKind int

const (
	// ScanErrorProtocol indicates structurally invalid transmission
	// metadata (protocol failure outcome).
	ScanErrorProtocol ScanErrorKind = iota
	// ScanErrorEnvironment indicates a supplier or journal failure
	// outside the protocol (generic error outcome).
	ScanErrorEnvironment
	// ScanErrorCanceled indicates context cancellation.
	ScanErrorCanceled
)

func (e *ScanError) Error() string {
	return e.Err.Error()
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// IsProtocolError returns true if the error marks structurally invalid
// transmission metadata.
func IsProtocolError(err error) bool {
	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr.Kind == ScanErrorProtocol
	}
	return false
}

// IsEnvironmentError returns true if the error is a supplier or journal
// failure.
func IsEnvironmentError(err error) bool {
	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr.Kind == ScanErrorEnvironment
	}
	return false
}

// IsCanceledError returns true if the error is due to context
// cancellation.
func IsCanceledError(err error) bool {
	var scanErr *ScanError
	if errors.As(err, &scanErr) {
		return scanErr.Kind == ScanErrorCanceled
	}
	return false
}

// ScanEngine drives the acquisition state machine over a frame source:
//   - acquire_metadata: 'M' fragments accumulate until the buffer ends
//     with '}' and parses; 'D' and 'H' frames verify but carry no meaning
//     yet and are ignored
//   - acquire_data: 'D' segments accumulate (last-seen-wins); 'M' frames
//     are redundant broadcast; an 'H' sighting rewinds the cursor one
//     step and moves to acquire_checksum without consuming the frame
//   - acquire_checksum: the first verified 'H' frame is the whole-file
//     checksum and terminates the scan
//
// Frames are consumed strictly in supplier order with that single
// one-step rewind. The engine exclusively owns its source and state; it
// is not safe for concurrent use.
type ScanEngine struct {
	source    supply.Source
	journal   *journal.Writer
	logger    *log.Logger
	collector *metrics.Collector

	phase  Phase
	state  *ScanState
	tally  Tally
	replay bool
}

// NewScanEngine creates a scan engine over the given source. The journal
// writer may be nil (no capture) and the collector may be nil (no
// metrics).
func NewScanEngine(
	source supply.Source,
	jw *journal.Writer,
	logger *log.Logger,
	collector *metrics.Collector,
) *ScanEngine {
	return &ScanEngine{
		source:    source,
		journal:   jw,
		logger:    logger,
		collector: collector,
		phase:     PhaseAcquireMetadata,
		state:     NewScanState(),
		tally:     newTally(),
	}
}

// Run consumes frames until the checksum record is accepted, the source
// is exhausted, or a fatal condition surfaces.
// Returns:
//   - nil: terminal record accepted or source exhausted
//   - *ScanError with Kind=ScanErrorProtocol: invalid metadata
//   - *ScanError with Kind=ScanErrorEnvironment: supplier/journal failure
//   - *ScanError with Kind=ScanErrorCanceled: context canceled
//
// Frame-level defects (no code, failed verification, unknown tags) never
// end the scan; they are counted, journaled and skipped.
func (e *ScanEngine) Run(ctx context.Context) error {
	for e.phase != PhaseDone {
		select {
		case <-ctx.Done():
			return &ScanError{
				Kind: ScanErrorCanceled,
				Err:  ctx.Err(),
			}
		default:
		}

		frame, err := e.source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Source exhausted. Deficiencies are reported by the
				// reassembler, not the scanner.
				return nil
			}
			if ctx.Err() != nil {
				return &ScanError{
					Kind: ScanErrorCanceled,
					Err:  err,
				}
			}
			return &ScanError{
				Kind: ScanErrorEnvironment,
				Err:  fmt.Errorf("frame supply: %w", err),
			}
		}

		// A rewind replay re-delivers a frame that was already counted.
		if e.replay {
			e.replay = false
		} else {
			e.tally.FramesScanned++
		}

		if err := e.processFrame(frame); err != nil {
			return err
		}
	}
	return nil
}

// processFrame classifies one supplied frame and applies it to the
// current phase.
func (e *ScanEngine) processFrame(frame *supply.Frame) error {
	if frame.Err != nil {
		// No payload was recovered. The reason is tracked in a separate
		// metric dimension from the journal disposition.
		if errors.Is(frame.Err, optic.ErrNoCode) {
			e.collector.IncNoCodeImages()
		} else {
			e.collector.IncImageDecodeErrors()
		}
		e.logger.Debug("no payload recovered", map[string]any{
			"frame": frame.Name,
			"error": frame.Err.Error(),
		})
		return e.note(frame, types.DispositionNoCode, nil)
	}

	parsed, err := wire.Parse(frame.Payload, e.state.Meta())
	if err != nil {
		if wire.IsPhaseError(err) {
			// Verified frame, not interpretable before metadata.
			e.logger.Debug("frame ignored before metadata", map[string]any{
				"frame": frame.Name,
				"error": err.Error(),
			})
			return e.note(frame, types.DispositionIgnored, nil)
		}
		e.logger.Debug("frame rejected", map[string]any{
			"frame": frame.Name,
			"error": err.Error(),
		})
		return e.note(frame, types.DispositionRejected, nil)
	}

	switch rec := parsed.(type) {
	case *wire.MetaFragment:
		return e.processMetaFragment(frame, rec)
	case *wire.DataSegment:
		return e.processDataSegment(frame, rec)
	case *wire.ChecksumRecord:
		return e.processChecksumRecord(frame, rec)
	default:
		return &ScanError{
			Kind: ScanErrorEnvironment,
			Err:  fmt.Errorf("unexpected frame variant: %T", parsed),
		}
	}
}

// processMetaFragment appends a verified metadata fragment and parses the
// buffer once it is complete.
func (e *ScanEngine) processMetaFragment(frame *supply.Frame, frag *wire.MetaFragment) error {
	if e.phase != PhaseAcquireMetadata {
		// Redundant broadcast after acquisition.
		e.logger.Debug("redundant metadata fragment ignored", map[string]any{
			"frame": frame.Name,
		})
		return e.note(frame, types.DispositionIgnored, nil)
	}

	e.state.AppendMetaText(frag.Text)
	if err := e.note(frame, types.DispositionMetaFragment, nil); err != nil {
		return err
	}

	buf := e.state.MetaBuffer()
	if !wire.MetaComplete(buf) {
		return nil
	}

	meta, err := wire.ParseMeta(buf)
	if err != nil {
		// A complete buffer that does not parse is structural: the
		// transmission cannot be interpreted.
		e.logger.Error("transmission metadata invalid", map[string]any{
			"buffer": buf,
			"error":  err.Error(),
		})
		return &ScanError{
			Kind: ScanErrorProtocol,
			Err:  fmt.Errorf("transmission metadata: %w", err),
		}
	}

	e.state.SetMeta(meta)
	e.phase = PhaseAcquireData
	e.logger.Info("metadata acquired", map[string]any{
		"segment_count": meta.SegmentCount,
		"id_width":      meta.IDWidth,
		"hash_length":   meta.HashLength,
	})
	return nil
}

// processDataSegment stores a verified content segment.
func (e *ScanEngine) processDataSegment(frame *supply.Frame, seg *wire.DataSegment) error {
	if e.phase != PhaseAcquireData {
		e.logger.Debug("content segment ignored", map[string]any{
			"frame": frame.Name,
			"phase": e.phase.String(),
		})
		return e.note(frame, types.DispositionIgnored, nil)
	}

	replaced, err := e.state.AddSegment(&types.Segment{
		ID:      seg.ID,
		Payload: seg.Payload,
		Digest:  seg.Digest,
	})
	if err != nil {
		e.logger.Warn("content segment discarded", map[string]any{
			"frame": frame.Name,
			"id":    seg.ID,
			"error": err.Error(),
		})
		return e.note(frame, types.DispositionRejected, &seg.ID)
	}

	if replaced {
		e.logger.Debug("duplicate segment replaced", map[string]any{
			"id": seg.ID,
		})
		return e.note(frame, types.DispositionDuplicate, &seg.ID)
	}

	e.logger.Debug("segment accepted", map[string]any{
		"id":   seg.ID,
		"size": len(seg.Payload),
	})
	return e.note(frame, types.DispositionDataSegment, &seg.ID)
}

// processChecksumRecord handles the terminal record: sighted mid-data it
// triggers the rewind, in the checksum phase it completes the scan.
func (e *ScanEngine) processChecksumRecord(frame *supply.Frame, rec *wire.ChecksumRecord) error {
	switch e.phase {
	case PhaseAcquireData:
		// Push the frame back and re-consume it in the checksum phase.
		// The replay carries the journal record, so this sighting leaves
		// no trace beyond the rewind count.
		if err := e.source.UnreadOne(); err != nil {
			return &ScanError{
				Kind: ScanErrorEnvironment,
				Err:  fmt.Errorf("cursor rewind: %w", err),
			}
		}
		e.replay = true
		e.tally.CursorRewinds++
		e.phase = PhaseAcquireChecksum
		e.logger.Debug("terminal record sighted, cursor rewound", map[string]any{
			"frame": frame.Name,
		})
		return nil

	case PhaseAcquireChecksum:
		e.state.SetChecksum(&types.ChecksumRecord{Sum: rec.Sum, Digest: rec.Digest})
		e.phase = PhaseDone
		e.logger.Info("checksum record accepted", map[string]any{
			"frame": frame.Name,
		})
		return e.note(frame, types.DispositionChecksum, nil)

	default:
		e.logger.Debug("checksum record ignored", map[string]any{
			"frame": frame.Name,
			"phase": e.phase.String(),
		})
		return e.note(frame, types.DispositionIgnored, nil)
	}
}

// note counts the disposition and writes the journal record.
func (e *ScanEngine) note(frame *supply.Frame, d types.Disposition, segID *uint64) error {
	e.tally.observe(d)

	rec := &types.ScanRecord{
		Index:       frame.Index,
		Name:        frame.Name,
		Disposition: d,
		SegmentID:   segID,
	}
	if len(frame.Payload) > 0 {
		rec.Tag = frame.Payload[0]
		rec.PayloadSize = int64(len(frame.Payload))
		rec.Payload = frame.Payload
	}

	if err := e.journal.Record(rec); err != nil {
		return &ScanError{
			Kind: ScanErrorEnvironment,
			Err:  fmt.Errorf("journal write: %w", err),
		}
	}
	return nil
}

// State returns the decoder state for reassembly.
func (e *ScanEngine) State() *ScanState {
	return e.state
}

// CurrentPhase returns the acquisition phase.
func (e *ScanEngine) CurrentPhase() Phase {
	return e.phase
}

// Stats returns a snapshot of the disposition tally.
func (e *ScanEngine) Stats() Tally {
	return e.tally.clone()
}
