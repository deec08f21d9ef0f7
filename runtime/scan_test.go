package runtime

import (
	"context"
	"crypto/md5" //nolint:gosec // fixed by the transmission protocol
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/justapithecus/seam/iox"
	"github.com/justapithecus/seam/journal"
	"github.com/justapithecus/seam/log"
	"github.com/justapithecus/seam/metrics"
	"github.com/justapithecus/seam/optic"
	"github.com/justapithecus/seam/supply"
	"github.com/justapithecus/seam/types"
	"github.com/justapithecus/seam/wire"
)

const testHashLength = 4

func quietLogger() *log.Logger {
	return log.NewLogger(&types.ScanMeta{Dir: "captures"}).WithOutput(io.Discard)
}

// sealedFrame builds a verified payload for a tag and body.
func sealedFrame(t *testing.T, tag byte, body []byte) []byte {
	t.Helper()
	payload, err := wire.Seal(tag, body, testHashLength)
	if err != nil {
		t.Fatalf("seal %c frame: %v", tag, err)
	}
	return payload
}

func metaFrame(t *testing.T, text string) []byte {
	t.Helper()
	return sealedFrame(t, wire.TagMeta, []byte(text))
}

func dataFrame(t *testing.T, id uint64, width int, payload []byte) []byte {
	t.Helper()
	idBytes, err := wire.EncodeID(id, width)
	if err != nil {
		t.Fatalf("encode id %d: %v", id, err)
	}
	return sealedFrame(t, wire.TagData, append(idBytes, payload...))
}

func checksumFrame(t *testing.T, content []byte) []byte {
	t.Helper()
	sum := md5.Sum(content) //nolint:gosec // fixed by the transmission protocol
	return sealedFrame(t, wire.TagChecksum, sum[:])
}

// abcdFrames builds the reference transmission: metadata split across two
// fragments, two single-byte-id segments carrying "AB" and "CD", and the
// terminal checksum over "ABCD".
func abcdFrames(t *testing.T) [][]byte {
	t.Helper()
	return [][]byte{
		metaFrame(t, `{"segment_count":2,"id_wid`),
		metaFrame(t, `th":1,"hash_length":4}`),
		dataFrame(t, 0, 1, []byte("AB")),
		dataFrame(t, 1, 1, []byte("CD")),
		checksumFrame(t, []byte("ABCD")),
	}
}

func newTestEngine(payloads [][]byte) *ScanEngine {
	return NewScanEngine(supply.FromPayloads(payloads), nil, quietLogger(), nil)
}

func TestScanEngine_HappyPath(t *testing.T) {
	engine := newTestEngine(abcdFrames(t))

	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if engine.CurrentPhase() != PhaseDone {
		t.Errorf("phase = %s, want %s", engine.CurrentPhase(), PhaseDone)
	}

	state := engine.State()
	meta := state.Meta()
	if meta == nil {
		t.Fatal("metadata not acquired")
	}
	if meta.SegmentCount != 2 || meta.IDWidth != 1 || meta.HashLength != 4 {
		t.Errorf("meta = %+v, want {2 1 4}", *meta)
	}
	if !state.Complete() {
		t.Error("state not complete after all segments")
	}
	if state.Checksum() == nil {
		t.Error("checksum record not accepted")
	}

	stats := engine.Stats()
	if stats.FramesScanned != 5 {
		t.Errorf("FramesScanned = %d, want 5", stats.FramesScanned)
	}
	if stats.MetaFragments != 2 {
		t.Errorf("MetaFragments = %d, want 2", stats.MetaFragments)
	}
	if stats.SegmentsAccepted != 2 {
		t.Errorf("SegmentsAccepted = %d, want 2", stats.SegmentsAccepted)
	}
	if stats.CursorRewinds != 1 {
		t.Errorf("CursorRewinds = %d, want 1", stats.CursorRewinds)
	}
	if got := stats.ByDisposition[types.DispositionChecksum]; got != 1 {
		t.Errorf("ByDisposition[checksum] = %d, want 1", got)
	}
}

func TestScanEngine_SingleFragmentMetadata(t *testing.T) {
	engine := newTestEngine([][]byte{
		metaFrame(t, `{"segment_count":1,"id_width":1,"hash_length":4}`),
		dataFrame(t, 0, 1, []byte("Z")),
		checksumFrame(t, []byte("Z")),
	})

	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if engine.CurrentPhase() != PhaseDone {
		t.Errorf("phase = %s, want %s", engine.CurrentPhase(), PhaseDone)
	}
	if got := engine.Stats().MetaFragments; got != 1 {
		t.Errorf("MetaFragments = %d, want 1", got)
	}
}

func TestScanEngine_ThreeFragmentMetadata(t *testing.T) {
	// Fragment boundaries are arbitrary; only arrival order matters.
	engine := newTestEngine([][]byte{
		metaFrame(t, `{"segment_`),
		metaFrame(t, `count":1,"id_width":1,`),
		metaFrame(t, `"hash_length":4}`),
		dataFrame(t, 0, 1, []byte("Q")),
		checksumFrame(t, []byte("Q")),
	})

	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	meta := engine.State().Meta()
	if meta == nil {
		t.Fatal("metadata not acquired")
	}
	if meta.SegmentCount != 1 {
		t.Errorf("SegmentCount = %d, want 1", meta.SegmentCount)
	}
	if got := engine.Stats().MetaFragments; got != 3 {
		t.Errorf("MetaFragments = %d, want 3", got)
	}
}

func TestScanEngine_PreMetadataFramesIgnored(t *testing.T) {
	// Content and checksum frames before any metadata verify but carry no
	// meaning; the scan continues into the transmission proper.
	frames := [][]byte{
		dataFrame(t, 0, 1, []byte("early")),
		checksumFrame(t, []byte("early")),
	}
	frames = append(frames, abcdFrames(t)...)

	engine := newTestEngine(frames)
	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	stats := engine.Stats()
	if stats.FramesIgnored != 2 {
		t.Errorf("FramesIgnored = %d, want 2", stats.FramesIgnored)
	}
	if stats.FramesScanned != 7 {
		t.Errorf("FramesScanned = %d, want 7", stats.FramesScanned)
	}
	// The early checksum sighting must not trigger the rewind.
	if stats.CursorRewinds != 1 {
		t.Errorf("CursorRewinds = %d, want 1", stats.CursorRewinds)
	}
	if !engine.State().Complete() {
		t.Error("state not complete after transmission proper")
	}
}

func TestScanEngine_RedundantMetadataIgnored(t *testing.T) {
	engine := newTestEngine([][]byte{
		metaFrame(t, `{"segment_count":1,"id_width":1,"hash_length":4}`),
		metaFrame(t, `{"segment_count":1,"id_width":1,"hash_length":4}`),
		dataFrame(t, 0, 1, []byte("Z")),
		checksumFrame(t, []byte("Z")),
	})

	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	stats := engine.Stats()
	if stats.MetaFragments != 1 {
		t.Errorf("MetaFragments = %d, want 1", stats.MetaFragments)
	}
	if stats.FramesIgnored != 1 {
		t.Errorf("FramesIgnored = %d, want 1", stats.FramesIgnored)
	}
	if got := engine.State().Meta().SegmentCount; got != 1 {
		t.Errorf("SegmentCount = %d, want 1", got)
	}
}

func TestScanEngine_DuplicateSegmentLastWins(t *testing.T) {
	engine := newTestEngine([][]byte{
		metaFrame(t, `{"segment_count":1,"id_width":1,"hash_length":4}`),
		dataFrame(t, 0, 1, []byte("v1")),
		dataFrame(t, 0, 1, []byte("v2")),
		checksumFrame(t, []byte("v2")),
	})

	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	stats := engine.Stats()
	if stats.SegmentsAccepted != 1 {
		t.Errorf("SegmentsAccepted = %d, want 1", stats.SegmentsAccepted)
	}
	if stats.SegmentsDuplicate != 1 {
		t.Errorf("SegmentsDuplicate = %d, want 1", stats.SegmentsDuplicate)
	}

	seg, ok := engine.State().Segment(0)
	if !ok {
		t.Fatal("segment 0 not stored")
	}
	if string(seg.Payload) != "v2" {
		t.Errorf("stored payload = %q, want %q", seg.Payload, "v2")
	}
}

func TestScanEngine_OutOfRangeSegmentRejected(t *testing.T) {
	engine := newTestEngine([][]byte{
		metaFrame(t, `{"segment_count":1,"id_width":1,"hash_length":4}`),
		dataFrame(t, 5, 1, []byte("XX")),
		dataFrame(t, 0, 1, []byte("AB")),
		checksumFrame(t, []byte("AB")),
	})

	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	stats := engine.Stats()
	if stats.FramesRejected != 1 {
		t.Errorf("FramesRejected = %d, want 1", stats.FramesRejected)
	}
	if stats.SegmentsAccepted != 1 {
		t.Errorf("SegmentsAccepted = %d, want 1", stats.SegmentsAccepted)
	}
	if !engine.State().Complete() {
		t.Error("state not complete")
	}
}

func TestScanEngine_CorruptFrameSkipped(t *testing.T) {
	frames := abcdFrames(t)
	corrupt := make([]byte, len(frames[2]))
	copy(corrupt, frames[2])
	corrupt[len(corrupt)-1] ^= 0xFF

	engine := newTestEngine([][]byte{
		frames[0], frames[1],
		corrupt,
		frames[2], frames[3], frames[4],
	})

	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	stats := engine.Stats()
	if stats.FramesRejected != 1 {
		t.Errorf("FramesRejected = %d, want 1", stats.FramesRejected)
	}
	if stats.SegmentsAccepted != 2 {
		t.Errorf("SegmentsAccepted = %d, want 2", stats.SegmentsAccepted)
	}
	if !engine.State().Complete() {
		t.Error("state not complete after corrupt frame skipped")
	}
}

func TestScanEngine_UnrecoveredFramesCounted(t *testing.T) {
	// Frames without a recovered payload are journaled as no_code; the
	// reason splits across two optic metric dimensions.
	collector := metrics.NewCollector("captures", "", "")

	frames := []*supply.Frame{
		{Index: 0, Name: "f000.png", Err: optic.ErrNoCode},
		{Index: 1, Name: "f001.png", Err: optic.ErrBadImage},
	}
	for i, payload := range abcdFrames(t) {
		frames = append(frames, &supply.Frame{Index: int64(i + 2), Payload: payload})
	}

	engine := NewScanEngine(supply.NewStatic(frames), nil, quietLogger(), collector)
	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	snap := collector.Snapshot()
	if snap.NoCodeImages != 1 {
		t.Errorf("NoCodeImages = %d, want 1", snap.NoCodeImages)
	}
	if snap.ImageDecodeErrors != 1 {
		t.Errorf("ImageDecodeErrors = %d, want 1", snap.ImageDecodeErrors)
	}

	stats := engine.Stats()
	if got := stats.ByDisposition[types.DispositionNoCode]; got != 2 {
		t.Errorf("ByDisposition[no_code] = %d, want 2", got)
	}
	if !engine.State().Complete() {
		t.Error("state not complete")
	}
}

func TestScanEngine_InvalidMetadataIsProtocolError(t *testing.T) {
	engine := newTestEngine([][]byte{
		metaFrame(t, `{"segment_count":1,"id_width":3,"hash_length":4}`),
	})

	err := engine.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for invalid metadata")
	}
	if !IsProtocolError(err) {
		t.Errorf("invalid metadata should classify as protocol error, got %v", err)
	}
}

func TestScanEngine_MalformedMetadataJSON(t *testing.T) {
	// The buffer ends with '}' so it counts as complete, but it is not
	// valid JSON.
	engine := newTestEngine([][]byte{
		metaFrame(t, `{"segment_count":}`),
	})

	err := engine.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for malformed metadata")
	}
	if !IsProtocolError(err) {
		t.Errorf("malformed metadata should classify as protocol error, got %v", err)
	}
}

func TestScanEngine_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := newTestEngine(abcdFrames(t))
	err := engine.Run(ctx)
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if !IsCanceledError(err) {
		t.Errorf("canceled context should classify as canceled, got %v", err)
	}
}

func TestScanEngine_StopsAfterChecksum(t *testing.T) {
	// Frames after the terminal record are never consumed.
	frames := abcdFrames(t)
	frames = append(frames, dataFrame(t, 0, 1, []byte("late")))

	engine := newTestEngine(frames)
	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := engine.Stats().FramesScanned; got != 5 {
		t.Errorf("FramesScanned = %d, want 5", got)
	}

	seg, ok := engine.State().Segment(0)
	if !ok {
		t.Fatal("segment 0 not stored")
	}
	if string(seg.Payload) != "AB" {
		t.Errorf("segment 0 payload = %q, want %q", seg.Payload, "AB")
	}
}

func TestScanEngine_SourceExhaustedBeforeChecksum(t *testing.T) {
	// A truncated capture is not a scan failure; the reassembler reports
	// the deficiency.
	frames := abcdFrames(t)
	engine := newTestEngine(frames[:3])

	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if engine.CurrentPhase() != PhaseAcquireData {
		t.Errorf("phase = %s, want %s", engine.CurrentPhase(), PhaseAcquireData)
	}
	if engine.State().Complete() {
		t.Error("state complete with a segment missing")
	}

	missing := engine.State().Missing()
	if len(missing) != 1 || missing[0] != 1 {
		t.Errorf("Missing() = %v, want [1]", missing)
	}
}

func TestScanEngine_JournalRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.journal")
	jw, err := journal.Create(path, "captures", false)
	if err != nil {
		t.Fatalf("journal.Create failed: %v", err)
	}

	engine := NewScanEngine(supply.FromPayloads(abcdFrames(t)), jw, quietLogger(), nil)
	if err := engine.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := jw.Close(); err != nil {
		t.Fatalf("journal close failed: %v", err)
	}

	r, err := journal.Open(path)
	if err != nil {
		t.Fatalf("journal.Open failed: %v", err)
	}
	defer iox.DiscardClose(r)

	if r.Header().Dir != "captures" {
		t.Errorf("header Dir = %q, want %q", r.Header().Dir, "captures")
	}
	if r.Header().Version != types.Version {
		t.Errorf("header Version = %q, want %q", r.Header().Version, types.Version)
	}

	var records []*types.ScanRecord
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("journal read failed: %v", err)
		}
		records = append(records, rec)
	}

	// One record per physical frame; the rewound checksum frame is
	// journaled exactly once.
	want := []types.Disposition{
		types.DispositionMetaFragment,
		types.DispositionMetaFragment,
		types.DispositionDataSegment,
		types.DispositionDataSegment,
		types.DispositionChecksum,
	}
	if len(records) != len(want) {
		t.Fatalf("journal has %d records, want %d", len(records), len(want))
	}
	for i, d := range want {
		if records[i].Disposition != d {
			t.Errorf("record %d disposition = %q, want %q", i, records[i].Disposition, d)
		}
	}

	if records[2].SegmentID == nil || *records[2].SegmentID != 0 {
		t.Error("record 2 missing segment id 0")
	}
	if records[3].SegmentID == nil || *records[3].SegmentID != 1 {
		t.Error("record 3 missing segment id 1")
	}
	if records[4].Tag != wire.TagChecksum {
		t.Errorf("record 4 tag = %c, want %c", records[4].Tag, wire.TagChecksum)
	}
}
