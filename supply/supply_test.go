package supply

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/justapithecus/seam/optic"
)

// writeQR renders the payload as a base64 QR code image under dir.
func writeQR(t *testing.T, dir, name string, payload []byte) {
	t.Helper()

	matrix, err := qrcode.NewQRCodeWriter().Encode(
		base64.StdEncoding.EncodeToString(payload),
		gozxing.BarcodeFormat_QR_CODE, 256, 256, nil)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	img := image.NewGray(image.Rect(0, 0, matrix.GetWidth(), matrix.GetHeight()))
	for y := 0; y < matrix.GetHeight(); y++ {
		for x := 0; x < matrix.GetWidth(); x++ {
			if matrix.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0x00})
			} else {
				img.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
}

func collect(t *testing.T, src Source) []*Frame {
	t.Helper()
	var frames []*Frame
	for {
		frame, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return frames
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		frames = append(frames, frame)
	}
}

func TestDirSourceOrder(t *testing.T) {
	dir := t.TempDir()

	// Created out of order on purpose; delivery must follow names.
	writeQR(t, dir, "frame_000002.png", []byte("second"))
	writeQR(t, dir, "frame_000000.png", []byte("zero"))
	writeQR(t, dir, "frame_000001.png", []byte("first"))
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	src, err := NewDirSource(dir, optic.NewDecoder())
	if err != nil {
		t.Fatalf("NewDirSource() error = %v", err)
	}
	if src.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", src.Len())
	}

	frames := collect(t, src)
	want := [][]byte{[]byte("zero"), []byte("first"), []byte("second")}
	if len(frames) != len(want) {
		t.Fatalf("collected %d frames, want %d", len(frames), len(want))
	}
	for i, frame := range frames {
		if frame.Index != int64(i) {
			t.Errorf("frames[%d].Index = %d, want %d", i, frame.Index, i)
		}
		if frame.Err != nil {
			t.Errorf("frames[%d].Err = %v", i, frame.Err)
		}
		if !bytes.Equal(frame.Payload, want[i]) {
			t.Errorf("frames[%d].Payload = %q, want %q", i, frame.Payload, want[i])
		}
	}
}

func TestDirSourceUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeQR(t, dir, "frame_000000.png", []byte("good"))
	if err := os.WriteFile(filepath.Join(dir, "frame_000001.png"), []byte("junk"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	writeQR(t, dir, "frame_000002.png", []byte("after"))

	src, err := NewDirSource(dir, optic.NewDecoder())
	if err != nil {
		t.Fatalf("NewDirSource() error = %v", err)
	}

	frames := collect(t, src)
	if len(frames) != 3 {
		t.Fatalf("collected %d frames, want 3", len(frames))
	}
	if frames[1].Err == nil {
		t.Error("frames[1].Err = nil, want decode error")
	}
	if !errors.Is(frames[1].Err, optic.ErrBadImage) {
		t.Errorf("frames[1].Err = %v, want ErrBadImage", frames[1].Err)
	}
	// The scan continues past the bad file.
	if !bytes.Equal(frames[2].Payload, []byte("after")) {
		t.Errorf("frames[2].Payload = %q, want %q", frames[2].Payload, "after")
	}
}

func TestDirSourceMissingDir(t *testing.T) {
	if _, err := NewDirSource(filepath.Join(t.TempDir(), "absent"), optic.NewDecoder()); err == nil {
		t.Error("NewDirSource() error = nil, want error")
	}
}

func TestDirSourceContextCanceled(t *testing.T) {
	dir := t.TempDir()
	writeQR(t, dir, "frame_000000.png", []byte("x"))

	src, err := NewDirSource(dir, optic.NewDecoder())
	if err != nil {
		t.Fatalf("NewDirSource() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next() error = %v, want context.Canceled", err)
	}
}

func TestStaticUnread(t *testing.T) {
	src := FromPayloads([][]byte{[]byte("a"), []byte("b"), []byte("c")})
	ctx := context.Background()

	if err := src.UnreadOne(); err == nil {
		t.Error("UnreadOne() before first Next: error = nil, want error")
	}

	first, err := src.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if err := src.UnreadOne(); err != nil {
		t.Fatalf("UnreadOne() error = %v", err)
	}
	if err := src.UnreadOne(); err == nil {
		t.Error("second UnreadOne() error = nil, want error")
	}

	again, err := src.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if again != first {
		t.Errorf("Next() after rewind = %v, want the same frame", again)
	}

	rest := collect(t, src)
	if len(rest) != 2 {
		t.Errorf("collected %d frames after rewind, want 2", len(rest))
	}
}

func TestDirSourceUnread(t *testing.T) {
	dir := t.TempDir()
	writeQR(t, dir, "frame_000000.png", []byte("a"))
	writeQR(t, dir, "frame_000001.png", []byte("b"))

	src, err := NewDirSource(dir, optic.NewDecoder())
	if err != nil {
		t.Fatalf("NewDirSource() error = %v", err)
	}
	ctx := context.Background()

	first, err := src.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if err := src.UnreadOne(); err != nil {
		t.Fatalf("UnreadOne() error = %v", err)
	}

	again, err := src.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if again.Index != first.Index || !bytes.Equal(again.Payload, first.Payload) {
		t.Errorf("Next() after rewind = %+v, want %+v", again, first)
	}

	second, err := src.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if !bytes.Equal(second.Payload, []byte("b")) {
		t.Errorf("second frame payload = %q, want %q", second.Payload, "b")
	}

	if _, err := src.Next(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("Next() past end error = %v, want io.EOF", err)
	}
}
