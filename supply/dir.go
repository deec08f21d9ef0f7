package supply

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/justapithecus/seam/optic"
)

// DirSource scans a directory of captured images in lexicographic file
// name order, the order the capturing side numbers its frames.
//
// Files that are not readable images still surface as frames carrying an
// error, so the caller can account for every file it walked.
type DirSource struct {
	dir     string
	decoder *optic.Decoder
	names   []string

	pos    int64
	last   *Frame
	unread bool
}

// NewDirSource lists the directory and prepares a cursor over its files.
// Subdirectories are skipped. Fails when the directory cannot be listed.
func NewDirSource(dir string, decoder *optic.Decoder) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list scan dir: %w", err)
	}

	// os.ReadDir sorts by file name, which is the capture order for
	// zero-padded frame numbering.
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}

	return &DirSource{dir: dir, decoder: decoder, names: names}, nil
}

// Len returns the number of files the cursor will visit.
func (s *DirSource) Len() int {
	return len(s.names)
}

// Next delivers the next capture, decoding its payload through the optic
// decoder. Returns io.EOF after the last file.
func (s *DirSource) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.unread {
		s.unread = false
		return s.last, nil
	}

	if s.pos >= int64(len(s.names)) {
		return nil, io.EOF
	}

	name := s.names[s.pos]
	frame := &Frame{Index: s.pos, Name: name}
	s.pos++

	payload, err := s.decoder.DecodeFile(filepath.Join(s.dir, name))
	if err != nil {
		frame.Err = err
	} else {
		frame.Payload = payload
	}

	s.last = frame
	return frame, nil
}

// UnreadOne pushes the most recent frame back onto the cursor.
func (s *DirSource) UnreadOne() error {
	if s.last == nil {
		return errNoFrameDelivered
	}
	if s.unread {
		return ErrRewindUsed
	}
	s.unread = true
	return nil
}
