package runtime

import (
	"crypto/md5" //nolint:gosec // fixed by the transmission protocol
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/justapithecus/seam/types"
)

// Reassemble turns a consumed scan state into a decode outcome. On
// success the second return value is the reconstructed file; on every
// other outcome it is nil.
//
// A transmission must have metadata, then all declared segments, then a
// matching whole-file checksum; the first unmet condition decides the
// outcome. An absent checksum record counts as a mismatch: without it
// the reassembled bytes cannot be trusted.
func Reassemble(state *ScanState) (*types.DecodeOutcome, []byte) {
	meta := state.Meta()
	if meta == nil {
		return &types.DecodeOutcome{
			Status:  types.OutcomeProtocolFailure,
			Message: "no transmission detected",
		}, nil
	}

	if missing := state.Missing(); len(missing) > 0 {
		return &types.DecodeOutcome{
			Status: types.OutcomeIncomplete,
			Message: fmt.Sprintf("%d of %d segments missing",
				len(missing), meta.SegmentCount),
			MissingIDs: missing,
		}, nil
	}

	checksum := state.Checksum()
	if checksum == nil {
		return &types.DecodeOutcome{
			Status:  types.OutcomeChecksumMismatch,
			Message: "no checksum record received",
		}, nil
	}

	buf := state.Assemble()
	sum := md5.Sum(buf) //nolint:gosec // fixed by the transmission protocol
	gotHex := hex.EncodeToString(sum[:])
	wantHex := hex.EncodeToString(checksum.Sum)

	// The contract compares hex encodings case-insensitively.
	if !strings.EqualFold(gotHex, wantHex) {
		return &types.DecodeOutcome{
			Status: types.OutcomeChecksumMismatch,
			Message: fmt.Sprintf("checksum mismatch: reassembled %s, transmitted %s",
				gotHex, wantHex),
		}, nil
	}

	return &types.DecodeOutcome{
		Status: types.OutcomeSuccess,
		Message: fmt.Sprintf("reassembled %d segments, %d bytes, checksum verified",
			meta.SegmentCount, len(buf)),
	}, buf
}
