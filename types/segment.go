//nolint:revive // types is a common Go package naming convention
package types

// Segment is one accepted content chunk of the target file.
// Payload bytes are raw file content; Digest is the per-frame BLAKE2b
// trailer that already verified against tag||body at acceptance time.
type Segment struct {
	// ID is the 0-based segment identifier. Dense, unique, < SegmentCount.
	ID uint64
	// Payload is the file bytes contributed by this segment.
	Payload []byte
	// Digest is the verified per-frame digest (HashLength bytes).
	Digest []byte
}

// ChecksumRecord is the single terminal record of a transmission.
type ChecksumRecord struct {
	// Sum is the sender-computed 16-byte whole-file checksum.
	Sum []byte
	// Digest is the verified per-frame digest.
	Digest []byte
}
