// Package optic recovers raw frame payloads from captured images.
//
// Each capture holds at most one QR code whose text content is the standard
// base64 encoding of a frame payload. The package separates three failure
// classes so the scan loop can account for them: the image itself is
// unreadable (ErrBadImage), the image is readable but carries no code
// (ErrNoCode), or a code was found whose content is not a payload (plain
// error, the frame is rejected downstream).
package optic

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"os"

	// Capture sequences arrive as whatever the screen recorder emits.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

var (
	// ErrNoCode indicates a readable image in which no code was located.
	ErrNoCode = errors.New("no code found in image")
	// ErrBadImage indicates a file that could not be opened or decoded as
	// an image.
	ErrBadImage = errors.New("unreadable image")
)

// Decoder locates and decodes one code per image.
//
// A Decoder reuses reader state and is not safe for concurrent use; create
// one per goroutine.
type Decoder struct {
	reader gozxing.Reader
	hints  map[gozxing.DecodeHintType]interface{}
}

// NewDecoder creates a Decoder tuned for screen-captured frames.
func NewDecoder() *Decoder {
	return &Decoder{
		reader: qrcode.NewQRCodeReader(),
		hints: map[gozxing.DecodeHintType]interface{}{
			// Captures are low-contrast and often rescaled; spend the
			// extra time per image.
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// DecodeImage extracts the frame payload from a decoded image. Returns
// ErrNoCode when the image holds no locatable code, and a plain error when
// a code was found but its content is not base64.
func (d *Decoder) DecodeImage(img image.Image) ([]byte, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	result, err := d.reader.Decode(bmp, d.hints)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCode, err)
	}

	payload, err := base64.StdEncoding.DecodeString(result.GetText())
	if err != nil {
		return nil, fmt.Errorf("code content is not base64: %w", err)
	}
	return payload, nil
}

// DecodeFile opens an image file and extracts its frame payload. Returns
// ErrBadImage when the file cannot be read or decoded as an image.
func (d *Decoder) DecodeFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	return d.DecodeImage(img)
}
