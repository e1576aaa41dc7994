package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
)

// DarkThreshold is the exclusive upper bound for a channel to count as dark.
const DarkThreshold = 50

// Canvas draws img pixel-for-pixel onto a fresh canvas the size of img.
// JPEG targets get an opaque white backdrop so transparent regions do not
// turn black; PNG targets keep the source alpha.
func Canvas(img image.Image, f Format) *image.NRGBA {
	b := img.Bounds()
	origin := image.Pt(0, 0)
	if f == PNG {
		return imaging.Paste(imaging.New(b.Dx(), b.Dy(), color.NRGBA{}), img, origin)
	}
	bg := imaging.New(b.Dx(), b.Dy(), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return imaging.Overlay(bg, img, origin, 1.0)
}

// SuppressDark forces every pixel whose red, green and blue channels are all
// below DarkThreshold to opaque white. Applying it twice is a no-op.
func SuppressDark(img *image.NRGBA) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			if row[i] < DarkThreshold && row[i+1] < DarkThreshold && row[i+2] < DarkThreshold {
				row[i], row[i+1], row[i+2], row[i+3] = 255, 255, 255, 255
			}
		}
	}
}

// Encode serializes img in format f. Quality applies to JPEG only and is
// clamped to [0, 1]; 0 is the lowest quality the encoder accepts.
func Encode(img image.Image, f Format, quality float64) (*Encoded, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case PNG:
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
	case JPEG:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality(quality)))
	default:
		return nil, fmt.Errorf("imaging: cannot encode %v", f)
	}
	if err != nil {
		return nil, fmt.Errorf("imaging: encoding %v: %w", f, err)
	}
	return &Encoded{Data: buf.Bytes(), Format: f}, nil
}

func jpegQuality(q float64) int {
	n := int(math.Round(q * 100))
	if n < 1 {
		n = 1
	}
	if n > 100 {
		n = 100
	}
	return n
}

// Transform runs the canvas, suppression and encode steps on a decoded image.
func Transform(img image.Image, opts Options) (*Encoded, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmpty
	}
	canvas := Canvas(img, opts.Format)
	if opts.SuppressDark {
		SuppressDark(canvas)
	}
	return Encode(canvas, opts.Format, opts.Quality)
}
