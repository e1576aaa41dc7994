package layout

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/ruudk/golang-pdf417"
	"golang.org/x/image/draw"
)

// PDF417 parameters for manifest symbols.
const (
	manifestColumns  = 8
	manifestSecurity = 3
	manifestModule   = 3 // pixels per symbol module
)

// Manifest draws payload as a PDF417 symbol of width w at (x, y) and returns
// its height. The symbol is embedded as an image of this document only.
func (w *PDFWriter) Manifest(payload string, x, y, width float64) (float64, error) {
	data, uw, uh, err := encodeManifest(payload)
	if err != nil {
		return 0, err
	}
	name, err := w.RegisterImage(data, "PNG")
	if err != nil {
		return 0, err
	}
	h := width * float64(uh) / float64(uw)
	if err := w.DrawImage(name, Rect{X: x, Y: y, W: width, H: h}); err != nil {
		return 0, err
	}
	return h, nil
}

// encodeManifest renders payload as a PNG and returns it with the symbol's
// unscaled size.
func encodeManifest(payload string) (data []byte, uw, uh int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("layout: encoding manifest: %v", r)
		}
	}()
	symbol := pdf417.Encode(payload, manifestColumns, manifestSecurity)
	b := symbol.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, 0, 0, fmt.Errorf("layout: manifest symbol has no size")
	}
	scaled, err := barcode.Scale(symbol, b.Dx()*manifestModule, b.Dy()*manifestModule)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("layout: scaling manifest: %w", err)
	}
	// gofpdf reads 8-bit PNGs only; the symbol reports a 16-bit model.
	gray := image.NewGray(scaled.Bounds())
	draw.Draw(gray, gray.Bounds(), scaled, scaled.Bounds().Min, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, 0, 0, fmt.Errorf("layout: encoding manifest: %w", err)
	}
	return buf.Bytes(), b.Dx(), b.Dy(), nil
}
