package optic

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// renderQR draws the text as a QR code on a white canvas, the same way the
// transmitting side renders frames for capture.
func renderQR(t *testing.T, text string) image.Image {
	t.Helper()

	matrix, err := qrcode.NewQRCodeWriter().Encode(
		text, gozxing.BarcodeFormat_QR_CODE, 256, 256, nil)
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
	return img
}

func TestDecodeImageRoundTrip(t *testing.T) {
	payload := []byte{'D', 0, 7, 'h', 'e', 'l', 'l', 'o', 0xaa, 0xbb}
	img := renderQR(t, base64.StdEncoding.EncodeToString(payload))

	got, err := NewDecoder().DecodeImage(img)
	if err != nil {
		t.Fatalf("DecodeImage() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("DecodeImage() = %v, want %v", got, payload)
	}
}

func TestDecodeImageNoCode(t *testing.T) {
	blank := image.NewGray(image.Rect(0, 0, 128, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			blank.SetGray(x, y, color.Gray{Y: 0xff})
		}
	}

	_, err := NewDecoder().DecodeImage(blank)
	if !errors.Is(err, ErrNoCode) {
		t.Errorf("DecodeImage() error = %v, want ErrNoCode", err)
	}
}

func TestDecodeImageNotBase64(t *testing.T) {
	img := renderQR(t, "definitely-not-base64!!!")

	_, err := NewDecoder().DecodeImage(img)
	if err == nil {
		t.Fatal("DecodeImage() error = nil, want error")
	}
	if errors.Is(err, ErrNoCode) || errors.Is(err, ErrBadImage) {
		t.Errorf("DecodeImage() error = %v, want plain rejection", err)
	}
}

func TestDecodeFile(t *testing.T) {
	payload := []byte("Mseam-metadata")
	img := renderQR(t, base64.StdEncoding.EncodeToString(payload))

	dir := t.TempDir()
	path := filepath.Join(dir, "frame_000001.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	f.Close()

	got, err := NewDecoder().DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("DecodeFile() = %q, want %q", got, payload)
	}
}

func TestDecodeFileBadImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-an-image.png")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "not an image", path: path},
		{name: "missing file", path: filepath.Join(dir, "absent.png")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder().DecodeFile(tt.path)
			if !errors.Is(err, ErrBadImage) {
				t.Errorf("DecodeFile() error = %v, want ErrBadImage", err)
			}
		})
	}
}
