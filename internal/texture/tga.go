package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types this decoder understands.
const (
	tgaTypeUncompressed = 2
	tgaTypeRLE          = 10

	tgaHeaderSize = 18
)

var errTGATruncated = errors.New("TGA data truncated")

// looksLikeTGA checks the header fields TGA files carry since the format has
// no magic number.
func looksLikeTGA(data []byte) bool {
	if len(data) < tgaHeaderSize {
		return false
	}
	imageType := data[2]
	bpp := data[16]
	return data[1] == 0 &&
		(imageType == tgaTypeUncompressed || imageType == tgaTypeRLE) &&
		(bpp == 24 || bpp == 32)
}

// DecodeTGA decodes uncompressed (type 2) and RLE (type 10) true-color TGA
// images, 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, errTGATruncated
	}
	if data[1] != 0 {
		return nil, fmt.Errorf("%w: color-mapped TGA", ErrUnsupportedFormat)
	}
	imageType := data[2]
	if imageType != tgaTypeUncompressed && imageType != tgaTypeRLE {
		return nil, fmt.Errorf("%w: TGA type %d", ErrUnsupportedFormat, imageType)
	}
	bpp := int(data[16])
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("%w: TGA bit depth %d", ErrUnsupportedFormat, bpp)
	}

	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	topDown := data[17]&0x20 != 0

	start := tgaHeaderSize + int(data[0])
	if start > len(data) {
		return nil, errTGATruncated
	}

	r := &tgaReader{
		img:     image.NewRGBA(image.Rect(0, 0, width, height)),
		src:     data[start:],
		stride:  bpp / 8,
		width:   width,
		height:  height,
		topDown: topDown,
	}

	var err error
	if imageType == tgaTypeUncompressed {
		err = r.readRaw()
	} else {
		err = r.readRLE()
	}
	if err != nil {
		return nil, err
	}
	return r.img, nil
}

// tgaReader writes BGR(A) pixels from src into img in file order.
type tgaReader struct {
	img     *image.RGBA
	src     []byte
	pos     int
	stride  int
	width   int
	height  int
	topDown bool
	pixel   int
}

func (r *tgaReader) total() int {
	return r.width * r.height
}

// next decodes one BGR(A) pixel from src.
func (r *tgaReader) next() (color.RGBA, bool) {
	if r.pos+r.stride > len(r.src) {
		return color.RGBA{}, false
	}
	p := r.src[r.pos:]
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.stride == 4 {
		c.A = p[3]
	}
	r.pos += r.stride
	return c, true
}

// emit stores c at the next pixel position.
func (r *tgaReader) emit(c color.RGBA) {
	x := r.pixel % r.width
	y := r.pixel / r.width
	if !r.topDown {
		y = r.height - 1 - y
	}
	r.img.SetRGBA(x, y, c)
	r.pixel++
}

func (r *tgaReader) readRaw() error {
	if len(r.src) < r.total()*r.stride {
		return errTGATruncated
	}
	for r.pixel < r.total() {
		c, _ := r.next()
		r.emit(c)
	}
	return nil
}

// readRLE decodes run-length packets. A truncated stream leaves the rest of
// the image transparent rather than failing.
func (r *tgaReader) readRLE() error {
	for r.pixel < r.total() && r.pos < len(r.src) {
		header := r.src[r.pos]
		r.pos++
		count := int(header&0x7f) + 1

		if header&0x80 != 0 {
			c, ok := r.next()
			if !ok {
				return nil
			}
			for i := 0; i < count && r.pixel < r.total(); i++ {
				r.emit(c)
			}
			continue
		}

		for i := 0; i < count && r.pixel < r.total(); i++ {
			c, ok := r.next()
			if !ok {
				return nil
			}
			r.emit(c)
		}
	}
	return nil
}
