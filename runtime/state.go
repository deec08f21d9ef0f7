package runtime

import (
	"fmt"
	"sort"

	"github.com/justapithecus/seam/types"
)

// Phase identifies the scan engine acquisition state.
type Phase int

const (
	// PhaseAcquireMetadata: metadata fragments are being collected and
	// frame digests are discovered by brute force.
	PhaseAcquireMetadata Phase = iota
	// PhaseAcquireData: metadata is known; content segments accumulate.
	PhaseAcquireData
	// PhaseAcquireChecksum: a terminal record was sighted and the cursor
	// rewound; the engine re-consumes it as the whole-file checksum.
	PhaseAcquireChecksum
	// PhaseDone: the checksum record was accepted; scanning stopped.
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseAcquireMetadata:
		return "acquire_metadata"
	case PhaseAcquireData:
		return "acquire_data"
	case PhaseAcquireChecksum:
		return "acquire_checksum"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ScanState is the decoder state of one run: the metadata text buffer,
// the parsed transfer metadata, accepted segments keyed by identifier,
// and the accepted checksum record.
//
// The scan loop is the only writer and the reassembler the only
// consumer; ScanState is not safe for concurrent use.
type ScanState struct {
	metaBuf  []byte
	meta     *types.TransferMeta
	segments map[uint64]*types.Segment
	checksum *types.ChecksumRecord
}

// NewScanState creates an empty per-run state.
func NewScanState() *ScanState {
	return &ScanState{
		segments: make(map[uint64]*types.Segment),
	}
}

// AppendMetaText extends the metadata buffer with one fragment body.
func (s *ScanState) AppendMetaText(text string) {
	s.metaBuf = append(s.metaBuf, text...)
}

// MetaBuffer returns the accumulated metadata text.
func (s *ScanState) MetaBuffer() string {
	return string(s.metaBuf)
}

// SetMeta installs the parsed transfer metadata and releases the buffer.
func (s *ScanState) SetMeta(meta *types.TransferMeta) {
	s.meta = meta
	s.metaBuf = nil
}

// Meta returns the parsed transfer metadata, nil before acquisition.
func (s *ScanState) Meta() *types.TransferMeta {
	return s.meta
}

// AddSegment stores a verified content segment. Returns replaced=true
// when an earlier arrival with the same identifier was overwritten
// (last-seen-wins). Identifiers at or beyond the declared segment count
// are refused, keeping the completion comparison meaningful.
func (s *ScanState) AddSegment(seg *types.Segment) (replaced bool, err error) {
	if s.meta == nil {
		return false, fmt.Errorf("segment %d before metadata", seg.ID)
	}
	if seg.ID >= s.meta.SegmentCount {
		return false, fmt.Errorf("segment id %d at or beyond declared count %d",
			seg.ID, s.meta.SegmentCount)
	}

	_, replaced = s.segments[seg.ID]
	s.segments[seg.ID] = seg
	return replaced, nil
}

// SegmentsSeen returns the number of distinct accepted identifiers.
func (s *ScanState) SegmentsSeen() int {
	return len(s.segments)
}

// Complete reports whether every declared segment has arrived.
func (s *ScanState) Complete() bool {
	return s.meta != nil && uint64(len(s.segments)) == s.meta.SegmentCount
}

// Missing returns the declared identifiers with no accepted segment, in
// ascending order. Empty when complete; nil before metadata.
func (s *ScanState) Missing() []uint64 {
	if s.meta == nil {
		return nil
	}

	missing := make([]uint64, 0)
	for id := uint64(0); id < s.meta.SegmentCount; id++ {
		if _, ok := s.segments[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// Segment returns the accepted segment for an identifier.
func (s *ScanState) Segment(id uint64) (*types.Segment, bool) {
	seg, ok := s.segments[id]
	return seg, ok
}

// Assemble concatenates accepted payloads in ascending identifier order.
func (s *ScanState) Assemble() []byte {
	ids := make([]uint64, 0, len(s.segments))
	total := 0
	for id, seg := range s.segments {
		ids = append(ids, id)
		total += len(seg.Payload)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	buf := make([]byte, 0, total)
	for _, id := range ids {
		buf = append(buf, s.segments[id].Payload...)
	}
	return buf
}

// SetChecksum installs the accepted whole-file checksum record.
func (s *ScanState) SetChecksum(rec *types.ChecksumRecord) {
	s.checksum = rec
}

// Checksum returns the accepted checksum record, nil if none arrived.
func (s *ScanState) Checksum() *types.ChecksumRecord {
	return s.checksum
}

// Tally counts frame dispositions over one scan.
type Tally struct {
	// FramesScanned counts supplier deliveries, rewind replays excluded.
	FramesScanned int64
	// SegmentsAccepted counts first-arrival verified content segments.
	SegmentsAccepted int64
	// SegmentsDuplicate counts verified re-arrivals that replaced an
	// earlier segment.
	SegmentsDuplicate int64
	// MetaFragments counts verified fragments appended to the metadata
	// buffer.
	MetaFragments int64
	// FramesRejected counts recovered payloads discarded as invalid.
	FramesRejected int64
	// FramesIgnored counts verified frames with no meaning in the phase
	// they arrived in.
	FramesIgnored int64
	// CursorRewinds counts single-step rewinds (at most one per scan).
	CursorRewinds int64
	// ByDisposition counts every journal disposition, no_code and
	// checksum included.
	ByDisposition map[types.Disposition]int64
}

func newTally() Tally {
	return Tally{ByDisposition: make(map[types.Disposition]int64)}
}

// observe counts one frame disposition.
func (t *Tally) observe(d types.Disposition) {
	switch d {
	case types.DispositionMetaFragment:
		t.MetaFragments++
	case types.DispositionDataSegment:
		t.SegmentsAccepted++
	case types.DispositionDuplicate:
		t.SegmentsDuplicate++
	case types.DispositionRejected:
		t.FramesRejected++
	case types.DispositionIgnored:
		t.FramesIgnored++
	}
	t.ByDisposition[d]++
}

// clone returns a copy with an isolated disposition map.
func (t Tally) clone() Tally {
	out := t
	out.ByDisposition = make(map[types.Disposition]int64, len(t.ByDisposition))
	for k, v := range t.ByDisposition {
		out.ByDisposition[k] = v
	}
	return out
}

// dispositionStrings converts the disposition map to string keys for
// metrics absorption and reporting.
func (t Tally) dispositionStrings() map[string]int64 {
	out := make(map[string]int64, len(t.ByDisposition))
	for k, v := range t.ByDisposition {
		out[string(k)] = v
	}
	return out
}
