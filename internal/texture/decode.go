// Package texture decodes source texture images, detects transparency,
// downsizes them and encodes them for output.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Texture errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrNotImage          = errors.New("data is not an image")
)

// Image is a decoded texture.
type Image struct {
	Pixels   image.Image
	HasAlpha bool
	// Format is the source format name, e.g. "png" or "tga".
	Format string
}

// Decode sniffs the data, decodes it and checks it for transparency.
func Decode(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrNotImage
	}

	if filetype.IsImage(data) {
		img, format, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return Image{}, fmt.Errorf("decoding image: %w", err)
		}
		return Image{Pixels: img, HasAlpha: HasAlpha(img), Format: format}, nil
	}

	// TGA has no magic number; fall back to a header check.
	if looksLikeTGA(data) {
		img, err := DecodeTGA(data)
		if err != nil {
			return Image{}, fmt.Errorf("decoding TGA: %w", err)
		}
		return Image{Pixels: img, HasAlpha: HasAlpha(img), Format: "tga"}, nil
	}

	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return Image{}, fmt.Errorf("%w: %s", ErrNotImage, kind.MIME.Value)
	}
	return Image{}, ErrNotImage
}

// HasAlpha reports whether any pixel of img is not fully opaque.
func HasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

// Fit scales img down so neither side exceeds maxSide, keeping the aspect
// ratio. Images already small enough, or maxSide <= 0, are returned as is.
func Fit(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img
	}

	if w >= h {
		h = max(1, h*maxSide/w)
		w = maxSide
	} else {
		w = max(1, w*maxSide/h)
		h = maxSide
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
