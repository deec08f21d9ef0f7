// Package journal persists the frame-by-frame record of a scan.
//
// A journal is a stream of length-prefixed msgpack records: a JournalHeader
// first, then one ScanRecord per supplied frame in scan order. Records keep
// the raw recovered payloads, so a journal can be replayed through the scan
// engine without the source images. Files ending in .lz4 are LZ4
// frame-compressed.
package journal

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/justapithecus/seam/types"
)

// Record size constants.
const (
	// MaxRecordSize is the maximum encoded record size (16 MiB), including
	// length prefix.
	MaxRecordSize = 16 * 1024 * 1024
	// MaxPayloadSize is the maximum encoded record size minus the prefix.
	MaxPayloadSize = MaxRecordSize - LengthPrefixSize
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4
)

// CompressedSuffix marks a journal file as LZ4 frame-compressed.
const CompressedSuffix = ".lz4"

// ErrTruncated indicates a journal stream that ends mid-record.
var ErrTruncated = errors.New("journal truncated")

// Writer appends records to a journal stream. Not safe for concurrent
// use; the scan loop is its only writer. All methods are nil-receiver
// safe so callers can thread an optional journal without branching.
type Writer struct {
	file *os.File
	lz4w *lz4.Writer
	w    io.Writer
}

// Create opens a journal file and writes its header. Compression is
// enabled when requested or when the path carries the .lz4 suffix.
func Create(path, dir string, compress bool) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create journal: %w", err)
	}

	w := &Writer{file: f, w: f}
	if compress || strings.HasSuffix(path, CompressedSuffix) {
		w.lz4w = lz4.NewWriter(f)
		w.w = w.lz4w
	}

	header := &types.JournalHeader{
		Version:   types.Version,
		Dir:       dir,
		StartedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := w.write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write journal header: %w", err)
	}
	return w, nil
}

// Record appends one scan record.
func (w *Writer) Record(rec *types.ScanRecord) error {
	if w == nil {
		return nil
	}
	return w.write(rec)
}

// Close flushes the compressor, if any, and closes the file.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	if w.lz4w != nil {
		if err := w.lz4w.Close(); err != nil {
			_ = w.file.Close()
			return fmt.Errorf("flush journal: %w", err)
		}
	}
	return w.file.Close()
}

func (w *Writer) write(v any) error {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode journal record: %w", err)
	}
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("journal record size %d exceeds maximum %d", len(payload), MaxPayloadSize)
	}

	var lengthBuf [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(lengthBuf[:], uint32(len(payload)))
	if _, err := w.w.Write(lengthBuf[:]); err != nil {
		return fmt.Errorf("write journal record: %w", err)
	}
	if _, err := w.w.Write(payload); err != nil {
		return fmt.Errorf("write journal record: %w", err)
	}
	return nil
}

// Reader iterates a journal stream in write order.
type Reader struct {
	file   *os.File
	br     *bufio.Reader
	header *types.JournalHeader
}

// Open opens a journal file and reads its header. The .lz4 suffix selects
// decompression, matching Create.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	var src io.Reader = f
	if strings.HasSuffix(path, CompressedSuffix) {
		src = lz4.NewReader(f)
	}

	r := &Reader{file: f, br: bufio.NewReader(src)}

	payload, err := r.readFrame()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("read journal header: %w", err)
	}
	var header types.JournalHeader
	if err := msgpack.Unmarshal(payload, &header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decode journal header: %w", err)
	}
	r.header = &header
	return r, nil
}

// Header returns the journal header read at Open.
func (r *Reader) Header() *types.JournalHeader {
	return r.header
}

// Next returns the next scan record, or io.EOF after the last one.
func (r *Reader) Next() (*types.ScanRecord, error) {
	payload, err := r.readFrame()
	if err != nil {
		return nil, err
	}
	var rec types.ScanRecord
	if err := msgpack.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode journal record: %w", err)
	}
	return &rec, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// readFrame reads one length-prefixed record payload.
func (r *Reader) readFrame() ([]byte, error) {
	var lengthBuf [LengthPrefixSize]byte
	if _, err := io.ReadFull(r.br, lengthBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: partial length prefix", ErrTruncated)
	}

	payloadSize := binary.BigEndian.Uint32(lengthBuf[:])
	if payloadSize > MaxPayloadSize {
		return nil, fmt.Errorf("journal record size %d exceeds maximum %d", payloadSize, MaxPayloadSize)
	}

	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(r.br, payload); err != nil {
		return nil, fmt.Errorf("%w: partial record", ErrTruncated)
	}
	return payload, nil
}
