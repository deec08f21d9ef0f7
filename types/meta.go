// Package types defines core domain types for the seam decoder.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"errors"
	"fmt"
)

// MaxDigestLength is the largest per-frame digest the protocol supports.
// BLAKE2b variable output is bounded at 64 bytes; senders declaring more
// are out of contract.
const MaxDigestLength = 64

// ChecksumLength is the fixed size of the whole-file checksum payload
// carried by the terminal record (128-bit MD5).
const ChecksumLength = 16

// TransferMeta describes one whole transmission. It is broadcast by the
// sender as one or more metadata fragments and must be fully reconstructed
// before any content segment can be interpreted.
//
// Exactly one instance exists per run; it is immutable once parsed.
type TransferMeta struct {
	// SegmentCount is the total number of content segments expected.
	SegmentCount uint64 `json:"segment_count"`
	// IDWidth is the width in bytes of the identifier field inside each
	// content segment body. One of 1, 2, 4, 8.
	IDWidth int `json:"id_width"`
	// HashLength is the number of trailing digest bytes on every frame.
	HashLength int `json:"hash_length"`
}

// Validate checks the declared field ranges:
//   - id_width must be one of 1, 2, 4, 8
//   - hash_length must be in 1..MaxDigestLength
//   - segment_count must be addressable by an id_width identifier
func (m *TransferMeta) Validate() error {
	switch m.IDWidth {
	case 1, 2, 4, 8:
	default:
		return fmt.Errorf("unsupported id_width %d (want 1, 2, 4 or 8)", m.IDWidth)
	}

	if m.HashLength < 1 || m.HashLength > MaxDigestLength {
		return fmt.Errorf("hash_length %d out of range 1..%d", m.HashLength, MaxDigestLength)
	}

	// Identifiers are dense in 0..segment_count-1, so the count can never
	// exceed the id field's addressable space.
	if m.IDWidth < 8 {
		if limit := uint64(1) << (8 * m.IDWidth); m.SegmentCount > limit {
			return fmt.Errorf("segment_count %d exceeds %d-byte id space", m.SegmentCount, m.IDWidth)
		}
	}

	return nil
}

// ScanMeta carries the identity of one decode run. It seeds logger context
// and the journal header; it is not part of the wire protocol.
type ScanMeta struct {
	// Dir is the frame directory being scanned.
	Dir string
	// Output is the target name for the reconstructed file. Empty until
	// the caller resolves it.
	Output string
}

// Validate rejects scan metadata that cannot identify a run.
func (s *ScanMeta) Validate() error {
	if s.Dir == "" {
		return errors.New("scan dir must be non-empty")
	}
	return nil
}
