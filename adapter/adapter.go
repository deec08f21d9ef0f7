// Package adapter defines the notification boundary for completed decodes.
//
// Adapters publish decode completion events to downstream systems. The
// runtime owns adapter lifecycle; users provide configuration only.
// Publish failures never change a decode outcome.
package adapter

import "context"

// DecodeCompletedEvent is the payload published when a decode finishes,
// whatever the outcome.
type DecodeCompletedEvent struct {
	EventType    string `json:"event_type"` // always "decode_completed"
	Version      string `json:"version"`
	Dir          string `json:"dir"`
	Outcome      string `json:"outcome"` // success, incomplete, checksum_mismatch, protocol_failure
	Message      string `json:"message"`
	Output       string `json:"output,omitempty"`
	Sink         string `json:"sink,omitempty"`
	OutputBytes  int64  `json:"output_bytes"`
	SegmentCount uint64 `json:"segment_count"`
	MissingCount int    `json:"missing_count"`
	Timestamp    string `json:"timestamp"` // ISO 8601
	DurationMs   int64  `json:"duration_ms"`
}

// Adapter publishes decode completion events to a downstream system.
// Implementations must be safe for single-use per decode.
type Adapter interface {
	// Publish sends a decode completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *DecodeCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
