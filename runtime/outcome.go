package runtime

import "github.com/justapithecus/seam/types"

// Process exit codes for the decode command.
const (
	// ExitCodeSuccess: file reassembled and checksum verified.
	ExitCodeSuccess = 0
	// ExitCodeError: environment or input error outside the protocol.
	ExitCodeError = 1
	// ExitCodeIncomplete: fewer segments than the metadata declared.
	ExitCodeIncomplete = 2
	// ExitCodeChecksumMismatch: all segments present, whole-file checksum
	// failed or never arrived.
	ExitCodeChecksumMismatch = 3
	// ExitCodeProtocolFailure: no transmission detected or invalid
	// metadata.
	ExitCodeProtocolFailure = 4
)

// ExitCodeFor maps a decode outcome status to the process exit code.
func ExitCodeFor(status types.OutcomeStatus) int {
	switch status {
	case types.OutcomeSuccess:
		return ExitCodeSuccess
	case types.OutcomeIncomplete:
		return ExitCodeIncomplete
	case types.OutcomeChecksumMismatch:
		return ExitCodeChecksumMismatch
	case types.OutcomeProtocolFailure:
		return ExitCodeProtocolFailure
	default:
		return ExitCodeError
	}
}
