// Package imaging acquires remote images and prepares them for embedding in
// a printable document.
//
// Acquisition never fails loudly: Loader.Load returns nil when an image
// cannot be fetched or decoded, and callers treat nil as "skip this visual
// element". Transformations follow a fixed pipeline: decode at native
// resolution, composite onto a canvas (opaque white for JPEG output,
// transparent for PNG), optionally blank near-black pixels, then encode.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // decoders for image.DecodeConfig
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format is the raster encoding of an embeddable image.
type Format int

const (
	JPEG Format = iota
	PNG
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case JPEG:
		return "jpeg"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat maps "png", "jpeg" and "jpg" to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "png", "PNG":
		return PNG, nil
	case "jpeg", "jpg", "JPEG", "JPG":
		return JPEG, nil
	}
	return JPEG, fmt.Errorf("imaging: unknown format %q", s)
}

// Options controls a single acquisition.
type Options struct {
	Quality      float64 // JPEG quality in [0,1], 0 lowest; ignored for PNG
	SuppressDark bool    // blank pixels whose R, G and B are all below DarkThreshold
	Format       Format
}

// Presets used by the document pipeline.
var (
	// CustomImage keeps customer artwork lossless.
	CustomImage = Options{Quality: 1.0, SuppressDark: false, Format: PNG}
	// ProductImage trades size for fidelity on catalog photography and
	// removes black mattes left by the photo pipeline.
	ProductImage = Options{Quality: 0.85, SuppressDark: true, Format: JPEG}
)

// Encoded is an image ready to be embedded in a document.
type Encoded struct {
	Data   []byte
	Format Format
}

// ErrEmpty is returned when probing an Encoded without data.
var ErrEmpty = errors.New("imaging: empty image data")

// Probe decodes only the header of e and returns its pixel dimensions.
func Probe(e *Encoded) (width, height int, err error) {
	if e == nil || len(e.Data) == 0 {
		return 0, 0, ErrEmpty
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(e.Data))
	if err != nil {
		return 0, 0, fmt.Errorf("imaging: probing dimensions: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
