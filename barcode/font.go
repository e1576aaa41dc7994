package barcode

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	parseOnce sync.Once
	regular   *opentype.Font
	parseErr  error
)

// newFace returns a face of px pixels. Faces hold glyph caches and are not
// safe for concurrent use, so each render gets its own.
func newFace(px int) (font.Face, error) {
	parseOnce.Do(func() {
		regular, parseErr = opentype.Parse(goregular.TTF)
	})
	if parseErr != nil {
		return nil, fmt.Errorf("barcode: parsing font: %w", parseErr)
	}
	face, err := opentype.NewFace(regular, &opentype.FaceOptions{
		Size:    float64(px),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("barcode: building face: %w", err)
	}
	return face, nil
}
