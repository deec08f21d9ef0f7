package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/justapithecus/seam/iox"
	"github.com/justapithecus/seam/journal"
	"github.com/justapithecus/seam/log"
	"github.com/justapithecus/seam/runtime"
	"github.com/justapithecus/seam/supply"
	"github.com/justapithecus/seam/types"
)

// Summarize reads a journal stream and rebuilds the transmission state
// from its retained payloads. Images are never touched: the recorded
// payloads replay through the same scan engine the decode used.
func Summarize(ctx context.Context, path string) (*InspectJournalResponse, error) {
	r, err := journal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer iox.DiscardClose(r)

	header := r.Header()
	resp := &InspectJournalResponse{
		Journal:    path,
		Version:    header.Version,
		Dir:        header.Dir,
		StartedAt:  header.StartedAt,
		Compressed: strings.HasSuffix(path, journal.CompressedSuffix),
	}

	var payloads [][]byte
	for {
		rec, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, journal.ErrTruncated) {
				resp.Truncated = true
				break
			}
			return nil, fmt.Errorf("read journal: %w", err)
		}

		resp.Records++
		tallyRecord(&resp.Frames, rec)
		if len(rec.Payload) > 0 {
			payloads = append(payloads, rec.Payload)
		}
	}

	replayTransfer(ctx, resp, payloads, header.Dir)
	return resp, nil
}

// ListRecords reads a journal stream into list items, in write order.
func ListRecords(path string) ([]RecordItem, error) {
	r, err := journal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer iox.DiscardClose(r)

	var items []RecordItem
	for {
		rec, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, journal.ErrTruncated) {
				return items, nil
			}
			return nil, fmt.Errorf("read journal: %w", err)
		}

		items = append(items, RecordItem{
			Index:       rec.Index,
			Name:        rec.Name,
			Disposition: string(rec.Disposition),
			Tag:         printableTag(rec.Tag),
			SegmentID:   rec.SegmentID,
			PayloadSize: rec.PayloadSize,
		})
	}
}

func tallyRecord(t *FrameTally, rec *types.ScanRecord) {
	switch rec.Disposition {
	case types.DispositionNoCode:
		t.NoCode++
	case types.DispositionRejected:
		t.Rejected++
	case types.DispositionMetaFragment:
		t.MetaFragments++
	case types.DispositionDataSegment:
		t.DataSegments++
	case types.DispositionDuplicate:
		t.Duplicates++
	case types.DispositionChecksum:
		t.Checksums++
	case types.DispositionIgnored:
		t.Ignored++
	}
}

// replayTransfer re-runs the scan state machine over the retained
// payloads. A replay failure leaves Transfer nil rather than failing the
// summary: the journal is still describable record by record.
func replayTransfer(ctx context.Context, resp *InspectJournalResponse, payloads [][]byte, dir string) {
	if len(payloads) == 0 {
		return
	}

	logger := log.NewLogger(&types.ScanMeta{Dir: dir}).WithOutput(io.Discard)
	engine := runtime.NewScanEngine(supply.FromPayloads(payloads), nil, logger, nil)
	if err := engine.Run(ctx); err != nil {
		return
	}

	state := engine.State()
	meta := state.Meta()
	if meta == nil {
		return
	}

	resp.Transfer = &TransferInfo{
		SegmentCount: meta.SegmentCount,
		IDWidth:      meta.IDWidth,
		HashLength:   meta.HashLength,
		SegmentsSeen: state.SegmentsSeen(),
		MissingIDs:   state.Missing(),
		Complete:     state.Complete(),
	}
	resp.HasChecksum = state.Checksum() != nil
}

func printableTag(tag byte) string {
	if tag == 0 {
		return ""
	}
	return string(rune(tag))
}
