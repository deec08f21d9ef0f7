//nolint:revive // types is a common Go package naming convention
package types

// Disposition classifies what the scan loop did with one supplied frame.
type Disposition string

const (
	// DispositionNoCode: the optical decoder found no code in the image.
	DispositionNoCode Disposition = "no_code"
	// DispositionRejected: a payload was recovered but failed digest
	// verification, had an unknown tag, or an unparsable body.
	DispositionRejected Disposition = "rejected"
	// DispositionMetaFragment: a verified metadata fragment was appended
	// to the metadata buffer.
	DispositionMetaFragment Disposition = "meta_fragment"
	// DispositionDataSegment: a verified content segment was accepted.
	DispositionDataSegment Disposition = "data_segment"
	// DispositionDuplicate: a verified content segment replaced an
	// earlier arrival with the same identifier.
	DispositionDuplicate Disposition = "duplicate_segment"
	// DispositionChecksum: a verified checksum record was accepted.
	DispositionChecksum Disposition = "checksum"
	// DispositionIgnored: a verified frame whose tag is not meaningful in
	// the current phase (e.g. redundant metadata during the data phase).
	DispositionIgnored Disposition = "ignored"
)

// ScanRecord is one journal entry describing the disposition of a single
// supplied frame. Records are msgpack-encoded on the wire; field names
// are part of the journal format.
type ScanRecord struct {
	// Index is the 0-based position of the frame in supplier order.
	Index int64 `msgpack:"index"`
	// Name is the image filename the frame came from.
	Name string `msgpack:"name"`
	// Disposition classifies the scan decision.
	Disposition Disposition `msgpack:"disposition"`
	// Tag is the frame tag byte, 0 when no payload was recovered.
	Tag byte `msgpack:"tag"`
	// SegmentID is set for data_segment and duplicate_segment records.
	SegmentID *uint64 `msgpack:"segment_id,omitempty"`
	// PayloadSize is the recovered payload length in bytes (tag, body and
	// digest included), 0 when no payload was recovered.
	PayloadSize int64 `msgpack:"payload_size"`
	// Payload is the raw recovered payload. Retained so a journal can be
	// re-verified without the source images.
	Payload []byte `msgpack:"payload,omitempty"`
}

// JournalHeader is the first record of every journal stream.
type JournalHeader struct {
	// Version is the journal format version (lockstep with types.Version).
	Version string `msgpack:"version"`
	// Dir is the frame directory the journal was captured from.
	Dir string `msgpack:"dir"`
	// StartedAt is the capture start time in ISO 8601 UTC.
	StartedAt string `msgpack:"started_at"`
}
