// Package barcode renders Code128 identifier symbols as raster images.
//
// Two fidelity tiers are available. Standard produces a moderate image with
// the payload printed under the bars on a white background. HighFidelity
// renders every dimension four times larger and then clears near-white
// pixels, so the symbol composites onto a page without a visible white box.
package barcode

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	orderimg "github.com/lvillar/orderpdf/imaging"
)

var (
	ErrEmptyPayload = errors.New("barcode: empty payload")
	ErrUnencodable  = errors.New("barcode: payload has characters outside printable ASCII")
)

// Tier selects the rendering fidelity.
type Tier int

const (
	Standard Tier = iota
	HighFidelity
)

// HighFidelityScale is the size factor of HighFidelity over Standard.
const HighFidelityScale = 4

// WhiteCutoff is the channel value above which a HighFidelity pixel is made
// transparent.
const WhiteCutoff = 250

func (t Tier) String() string {
	if t == HighFidelity {
		return "high-fidelity"
	}
	return "standard"
}

// Metrics are the pixel dimensions of a rendered symbol.
type Metrics struct {
	Module    int // width of the narrowest bar
	BarHeight int
	FontSize  int
	Margin    int // quiet zone on every side
	TextGap   int // space between bars and text
}

// Metrics returns the dimensions used for tier t.
func (t Tier) Metrics() Metrics {
	m := Metrics{Module: 2, BarHeight: 80, FontSize: 16, Margin: 10, TextGap: 4}
	if t == HighFidelity {
		m.Module *= HighFidelityScale
		m.BarHeight *= HighFidelityScale
		m.FontSize *= HighFidelityScale
		m.Margin *= HighFidelityScale
		m.TextGap *= HighFidelityScale
	}
	return m
}

// ItemPayload is the per-item code: "{orderID}-{index+1}".
func ItemPayload(orderID string, index int) string {
	return orderID + "-" + strconv.Itoa(index+1)
}

// OrderPayload is the code printed once per details page.
func OrderPayload(orderID string) string {
	return orderID
}

// Image renders payload at tier t.
func Image(payload string, t Tier) (*image.NRGBA, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	for _, r := range payload {
		if r < ' ' || r > '~' {
			return nil, fmt.Errorf("%w: %q", ErrUnencodable, payload)
		}
	}
	code, err := code128.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("barcode: encoding %q: %w", payload, err)
	}

	m := t.Metrics()
	barsW := code.Bounds().Dx() * m.Module
	bars, err := bc.Scale(code, barsW, m.BarHeight)
	if err != nil {
		return nil, fmt.Errorf("barcode: scaling: %w", err)
	}

	face, err := newFace(m.FontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	textW := font.MeasureString(face, payload).Ceil()
	fm := face.Metrics()
	textH := (fm.Ascent + fm.Descent).Ceil()

	contentW := barsW
	if textW > contentW {
		contentW = textW
	}
	w := contentW + 2*m.Margin
	h := m.Margin + m.BarHeight + m.TextGap + textH + m.Margin

	canvas := imaging.New(w, h, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	xdraw.Copy(canvas, image.Pt((w-barsW)/2, m.Margin), bars, bars.Bounds(), xdraw.Src, nil)

	d := font.Drawer{
		Dst:  canvas,
		Src:  image.Black,
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I((w - textW) / 2),
			Y: fixed.I(m.Margin+m.BarHeight+m.TextGap) + fm.Ascent,
		},
	}
	d.DrawString(payload)

	if t == HighFidelity {
		ClearNearWhite(canvas, WhiteCutoff)
	}
	return canvas, nil
}

// Render renders payload at tier t and encodes it as PNG.
func Render(payload string, t Tier) (*orderimg.Encoded, error) {
	img, err := Image(payload, t)
	if err != nil {
		return nil, err
	}
	return orderimg.Encode(img, orderimg.PNG, 1)
}

// ClearNearWhite makes every pixel whose red, green and blue channels all
// exceed cutoff fully transparent.
func ClearNearWhite(img *image.NRGBA, cutoff uint8) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			if row[i] > cutoff && row[i+1] > cutoff && row[i+2] > cutoff {
				row[i], row[i+1], row[i+2], row[i+3] = 0, 0, 0, 0
			}
		}
	}
}
