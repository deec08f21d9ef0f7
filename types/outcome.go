//nolint:revive // types is a common Go package naming convention
package types

// OutcomeStatus represents the final status of a decode run.
type OutcomeStatus string

const (
	// OutcomeSuccess indicates the file was reassembled and the whole-file
	// checksum matched.
	OutcomeSuccess OutcomeStatus = "success"
	// OutcomeIncomplete indicates fewer verified segments than the
	// metadata declared. The missing identifiers are reported.
	OutcomeIncomplete OutcomeStatus = "incomplete"
	// OutcomeChecksumMismatch indicates all segments arrived but the
	// reassembled buffer does not match the transmitted checksum.
	OutcomeChecksumMismatch OutcomeStatus = "checksum_mismatch"
	// OutcomeProtocolFailure indicates no transmission was detected or the
	// metadata record was structurally invalid.
	OutcomeProtocolFailure OutcomeStatus = "protocol_failure"
)

// DecodeOutcome is the result classification of one decode run.
type DecodeOutcome struct {
	// Status is the outcome category.
	Status OutcomeStatus `json:"status"`
	// Message is a human-readable description.
	Message string `json:"message"`
	// MissingIDs lists absent segment identifiers in ascending order.
	// Only populated for OutcomeIncomplete.
	MissingIDs []uint64 `json:"missing_ids,omitempty"`
}

// Emitted reports whether this outcome produced an output buffer.
func (o *DecodeOutcome) Emitted() bool {
	return o.Status == OutcomeSuccess
}
