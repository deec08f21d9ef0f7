package supply

import (
	"context"
	"io"
)

// Static is an in-memory Source over pre-recovered frames. It backs
// journal replay, where payloads were already extracted during a live
// scan, and keeps engine tests free of image fixtures.
type Static struct {
	frames []*Frame

	pos    int
	last   *Frame
	unread bool
}

// NewStatic creates a Source that yields the given frames in order.
func NewStatic(frames []*Frame) *Static {
	return &Static{frames: frames}
}

// FromPayloads wraps raw payloads in frames with synthetic names.
func FromPayloads(payloads [][]byte) *Static {
	frames := make([]*Frame, len(payloads))
	for i, p := range payloads {
		frames[i] = &Frame{Index: int64(i), Payload: p}
	}
	return NewStatic(frames)
}

// Next returns the next frame, or io.EOF after the last one.
func (s *Static) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.unread {
		s.unread = false
		return s.last, nil
	}

	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}

	frame := s.frames[s.pos]
	s.pos++
	s.last = frame
	return frame, nil
}

// UnreadOne pushes the most recent frame back onto the cursor.
func (s *Static) UnreadOne() error {
	if s.last == nil {
		return errNoFrameDelivered
	}
	if s.unread {
		return ErrRewindUsed
	}
	s.unread = true
	return nil
}
