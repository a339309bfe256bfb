package document

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	"image/png"

	_ "golang.org/x/image/bmp" // register decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"llmbroker/internal/domain"
)

const (
	// LongSideLimit caps the longer image edge in pixels.
	LongSideLimit = 2000
	// ShortSideLimit caps the shorter image edge once the long side fits.
	ShortSideLimit = 768
	// ByteLimit caps the encoded PNG size.
	ByteLimit = 20 * 1024 * 1024
)

// FitDimensions returns the target size for a w×h image. The long side is
// brought within LongSideLimit first, then the short side within ShortSideLimit,
// each step scaling both edges uniformly and truncating.
func FitDimensions(w, h int) (int, int) {
	if long := max(w, h); long > LongSideLimit {
		w = w * LongSideLimit / long
		h = h * LongSideLimit / long
	}
	if short := min(w, h); short > ShortSideLimit {
		w = w * ShortSideLimit / short
		h = h * ShortSideLimit / short
	}
	return max(w, 1), max(h, 1)
}

// ProcessImage decodes a raster image, resizes it per FitDimensions and
// re-encodes it as PNG.
func ProcessImage(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", domain.ErrDecode, err)
	}

	bounds := src.Bounds()
	w, h := FitDimensions(bounds.Dx(), bounds.Dy())

	out := src
	if w != bounds.Dx() || h != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	if buf.Len() > ByteLimit {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrImageTooLarge, buf.Len())
	}
	return buf.Bytes(), nil
}
