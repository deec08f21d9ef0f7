// Package wire implements the seam segment framing.
//
// Every payload recovered from one optical code has the layout
//
//	[1 tag byte][body bytes][hash_length trailing digest bytes]
//
// where the digest is a variable-length BLAKE2b sum over tag||body. Frames
// are self-contained: a receiver that has not yet learned the transmission
// metadata can still verify a frame by discovering the digest length by
// brute force (see DiscoverDigestLength).
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/justapithecus/seam/types"
)

// Frame tag bytes. The tag is the first byte of every payload and
// discriminates the three segment kinds.
const (
	// TagMeta marks a metadata fragment ('M').
	TagMeta byte = 'M'
	// TagData marks a content segment ('D').
	TagData byte = 'D'
	// TagChecksum marks the terminal whole-file checksum record ('H').
	TagChecksum byte = 'H'
)

// MinFrameSize is the smallest well-formed payload: one tag byte and at
// least one digest byte.
const MinFrameSize = 2

// FrameErrorKind classifies frame rejection reasons.
type FrameErrorKind int

const (
	// FrameErrorTooShort indicates a payload too small to carry the
	// declared (or any) digest.
	FrameErrorTooShort FrameErrorKind = iota
	// FrameErrorNoDigest indicates brute-force digest discovery found no
	// length that verifies.
	FrameErrorNoDigest
	// FrameErrorDigest indicates the digest did not verify at the
	// declared length.
	FrameErrorDigest
	// FrameErrorUnknownTag indicates an unrecognized tag byte.
	FrameErrorUnknownTag
	// FrameErrorBody indicates the body cannot be parsed for its tag.
	FrameErrorBody
	// FrameErrorPhase indicates a verified frame that is not
	// interpretable before the transmission metadata is known.
	FrameErrorPhase
)

// FrameError represents a frame rejection. Every kind is recoverable: the
// scan loop discards the frame and advances.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsPhaseError returns true if the error marks a verified frame that only
// became uninterpretable because metadata is still unknown. The metadata
// acquisition phase counts these as ignored rather than rejected.
func IsPhaseError(err error) bool {
	var frameErr *FrameError
	if errors.As(err, &frameErr) {
		return frameErr.Kind == FrameErrorPhase
	}
	return false
}

// MetaFragment is one verified piece of the metadata broadcast. Fragments
// concatenate in arrival order into a JSON record.
type MetaFragment struct {
	// Text is the fragment body as text.
	Text string
	// Digest is the verified trailing digest.
	Digest []byte
}

// DataSegment is one verified content segment.
type DataSegment struct {
	// ID is the big-endian identifier decoded from the body head.
	ID uint64
	// Payload is the file content carried by this segment.
	Payload []byte
	// Digest is the verified trailing digest.
	Digest []byte
}

// ChecksumRecord is the verified terminal record.
type ChecksumRecord struct {
	// Sum is the 16-byte whole-file checksum.
	Sum []byte
	// Digest is the verified trailing digest.
	Digest []byte
}

// Parse verifies and classifies a raw payload, returning one of
// *MetaFragment, *DataSegment or *ChecksumRecord.
//
// With meta available, the digest length and identifier width come from the
// metadata. With meta == nil (metadata acquisition phase) the digest length
// is discovered by brute force, and only metadata fragments are
// interpretable; verified 'D' and 'H' frames return a FrameErrorPhase.
//
// All returned errors are *FrameError; none are fatal to a scan.
func Parse(payload []byte, meta *types.TransferMeta) (any, error) {
	if len(payload) < MinFrameSize {
		return nil, &FrameError{
			Kind: FrameErrorTooShort,
			Msg:  fmt.Sprintf("payload size %d below minimum %d", len(payload), MinFrameSize),
		}
	}

	var hashLen int
	if meta != nil {
		hashLen = meta.HashLength
		if len(payload) < 1+hashLen {
			return nil, &FrameError{
				Kind: FrameErrorTooShort,
				Msg:  fmt.Sprintf("payload size %d cannot carry %d digest bytes", len(payload), hashLen),
			}
		}
		if err := Verify(payload, hashLen); err != nil {
			return nil, err
		}
	} else {
		n, ok := DiscoverDigestLength(payload)
		if !ok {
			return nil, &FrameError{
				Kind: FrameErrorNoDigest,
				Msg:  "no digest length verifies this payload",
			}
		}
		hashLen = n
	}

	tag := payload[0]
	body := payload[1 : len(payload)-hashLen]
	digest := payload[len(payload)-hashLen:]

	switch tag {
	case TagMeta:
		return &MetaFragment{Text: string(body), Digest: digest}, nil

	case TagData:
		if meta == nil {
			return nil, &FrameError{
				Kind: FrameErrorPhase,
				Msg:  "content segment before metadata",
			}
		}
		id, err := DecodeID(body, meta.IDWidth)
		if err != nil {
			return nil, &FrameError{
				Kind: FrameErrorBody,
				Msg:  "content segment body too short for id",
				Err:  err,
			}
		}
		return &DataSegment{ID: id, Payload: body[meta.IDWidth:], Digest: digest}, nil

	case TagChecksum:
		if meta == nil {
			return nil, &FrameError{
				Kind: FrameErrorPhase,
				Msg:  "checksum record before metadata",
			}
		}
		if len(body) != types.ChecksumLength {
			return nil, &FrameError{
				Kind: FrameErrorBody,
				Msg:  fmt.Sprintf("checksum body is %d bytes, want %d", len(body), types.ChecksumLength),
			}
		}
		return &ChecksumRecord{Sum: body, Digest: digest}, nil

	default:
		return nil, &FrameError{
			Kind: FrameErrorUnknownTag,
			Msg:  fmt.Sprintf("unrecognized tag byte 0x%02x", tag),
		}
	}
}

// Verify checks the trailing digest of a payload at a known digest length.
// The digest covers everything before it: tag byte included.
func Verify(payload []byte, hashLen int) error {
	if hashLen < 1 || len(payload) < 1+hashLen {
		return &FrameError{
			Kind: FrameErrorTooShort,
			Msg:  fmt.Sprintf("payload size %d cannot carry %d digest bytes", len(payload), hashLen),
		}
	}

	want := payload[len(payload)-hashLen:]
	got, err := VariableHash(payload[:len(payload)-hashLen], hashLen)
	if err != nil {
		return &FrameError{
			Kind: FrameErrorDigest,
			Msg:  "digest computation failed",
			Err:  err,
		}
	}
	if !bytes.Equal(got, want) {
		return &FrameError{
			Kind: FrameErrorDigest,
			Msg:  "digest mismatch",
		}
	}
	return nil
}

// Seal appends a digest of the given length to tag||body, producing a
// payload that Parse accepts. The decoder itself never seals frames; the
// helper keeps the digest layout in one place for fixtures and journal
// tooling.
func Seal(tag byte, body []byte, hashLen int) ([]byte, error) {
	payload := make([]byte, 0, 1+len(body)+hashLen)
	payload = append(payload, tag)
	payload = append(payload, body...)

	digest, err := VariableHash(payload, hashLen)
	if err != nil {
		return nil, err
	}
	return append(payload, digest...), nil
}

// DecodeID reads a big-endian unsigned identifier of the given width from
// the head of a content segment body.
func DecodeID(body []byte, width int) (uint64, error) {
	if len(body) < width {
		return 0, fmt.Errorf("body size %d below id width %d", len(body), width)
	}

	switch width {
	case 1:
		return uint64(body[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(body[:2])), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(body[:4])), nil
	case 8:
		return binary.BigEndian.Uint64(body[:8]), nil
	default:
		return 0, fmt.Errorf("unsupported id width %d", width)
	}
}

// EncodeID writes an identifier as big-endian bytes of the given width.
// Fails if the identifier does not fit.
func EncodeID(id uint64, width int) ([]byte, error) {
	switch width {
	case 1:
		if id > 0xff {
			return nil, fmt.Errorf("id %d does not fit in 1 byte", id)
		}
		return []byte{byte(id)}, nil
	case 2:
		if id > 0xffff {
			return nil, fmt.Errorf("id %d does not fit in 2 bytes", id)
		}
		return binary.BigEndian.AppendUint16(nil, uint16(id)), nil
	case 4:
		if id > 0xffffffff {
			return nil, fmt.Errorf("id %d does not fit in 4 bytes", id)
		}
		return binary.BigEndian.AppendUint32(nil, uint32(id)), nil
	case 8:
		return binary.BigEndian.AppendUint64(nil, id), nil
	default:
		return nil, fmt.Errorf("unsupported id width %d", width)
	}
}
