// Package supply delivers frame payloads to the scan engine in capture
// order.
//
// A Source is a forward cursor with one step of lookbehind: UnreadOne
// pushes the most recent frame back so the next call to Next delivers it
// again. The engine uses the rewind exactly once per scan, when the
// terminal checksum frame arrives while segment content is still being
// collected.
package supply

import (
	"context"
	"errors"
)

// Frame is one scanned capture.
type Frame struct {
	// Index is the zero-based position in scan order.
	Index int64
	// Name identifies the capture, usually a file name under the scan
	// directory.
	Name string
	// Payload is the recovered frame payload, nil when recovery failed.
	Payload []byte
	// Err records why no payload was recovered. Classified by the optic
	// package sentinels.
	Err error
}

// Source yields frames in a fixed order.
type Source interface {
	// Next returns the next frame, or io.EOF after the last one.
	Next(ctx context.Context) (*Frame, error)
	// UnreadOne arranges for the most recently delivered frame to be
	// delivered again. At most one rewind may be pending; a second call
	// before the next Next fails, as does a call before any frame has
	// been delivered.
	UnreadOne() error
}

// ErrRewindUsed reports a second rewind attempt before the pushed-back
// frame was consumed. The scan contract allows a single pending rewind.
var ErrRewindUsed = errors.New("rewind already pending")

var errNoFrameDelivered = errors.New("no frame delivered yet")
