// Package layout places content blocks on the pages of a document.
//
// All coordinates are millimetres with the origin at the top-left corner of
// the page. Placement geometry is computed by pure functions on Geometry; an
// Engine applies it to a Writer while threading a Cursor through every call.
package layout

import (
	"github.com/sirupsen/logrus"

	"github.com/lvillar/orderpdf/imaging"
)

// Size is a width/height pair. For images it is measured in pixels and only
// its aspect ratio matters.
type Size struct {
	W, H float64
}

// DefaultSize is assumed when an image's dimensions cannot be probed.
var DefaultSize = Size{W: 800, H: 600}

// Rect is a placed area on the page.
type Rect struct {
	X, Y, W, H float64
}

// Bottom returns the y coordinate of the lower edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Geometry describes the page and its margins.
type Geometry struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64 // baseline margin on every side
	FillMargin float64 // reduced margin for full-page images
}

// A4 returns portrait A4 with a 20 mm margin and 5 mm full-page margin.
func A4() Geometry {
	return Geometry{PageWidth: 210, PageHeight: 297, Margin: 20, FillMargin: 5}
}

// ContentWidth is the page width minus both side margins.
func (g Geometry) ContentWidth() float64 { return g.PageWidth - 2*g.Margin }

// Bottom is the lowest y a placement may reach.
func (g Geometry) Bottom() float64 { return g.PageHeight - g.Margin }

// UsableHeight is the vertical space between top and bottom margins.
func (g Geometry) UsableHeight() float64 { return g.PageHeight - 2*g.Margin }

// FillArea is the region covered by FillPage placements.
func (g Geometry) FillArea() Rect {
	return Rect{
		X: g.FillMargin,
		Y: g.FillMargin,
		W: g.PageWidth - 2*g.FillMargin,
		H: g.PageHeight - 2*g.FillMargin,
	}
}

// Fits reports whether a block of height h starting at y stays above the
// bottom margin.
func (g Geometry) Fits(y, h float64) bool {
	return y+h <= g.Bottom()
}

// EnsureY returns y unchanged when a block of height h fits, otherwise the
// top margin of a fresh page.
func (g Geometry) EnsureY(y, h float64) float64 {
	if g.Fits(y, h) {
		return y
	}
	return g.Margin
}

// FullWidth scales img to the content width at y.
func (g Geometry) FullWidth(img Size, y float64) Rect {
	w := g.ContentWidth()
	return Rect{X: g.Margin, Y: y, W: w, H: w * aspect(img)}
}

// Centered scales img to maxWidth (capped at the content width) and centers
// it horizontally at y.
func (g Geometry) Centered(img Size, maxWidth, y float64) Rect {
	w := maxWidth
	if w <= 0 || w > g.ContentWidth() {
		w = g.ContentWidth()
	}
	return Rect{X: (g.PageWidth - w) / 2, Y: y, W: w, H: w * aspect(img)}
}

// FitHeight shrinks r, preserving its aspect ratio, so that it is at most
// maxH tall, keeping it horizontally centered on the page.
func (g Geometry) FitHeight(r Rect, maxH float64) Rect {
	if r.H <= maxH || r.H <= 0 {
		return r
	}
	r.W = r.W * maxH / r.H
	r.H = maxH
	r.X = (g.PageWidth - r.W) / 2
	return r
}

// FillPage computes a cover placement of img over the fill area: the larger
// of the two axis scale factors is applied so no blank margin remains, then
// each axis is clamped to the area while preserving the aspect ratio. The
// result is centered on both axes.
func (g Geometry) FillPage(img Size) Rect {
	area := g.FillArea()
	img = sane(img)
	scale := area.W / img.W
	if s := area.H / img.H; s > scale {
		scale = s
	}
	w, h := img.W*scale, img.H*scale
	if w > area.W {
		h *= area.W / w
		w = area.W
	}
	if h > area.H {
		w *= area.H / h
		h = area.H
	}
	return Rect{
		X: (g.PageWidth - w) / 2,
		Y: (g.PageHeight - h) / 2,
		W: w,
		H: h,
	}
}

func aspect(img Size) float64 {
	img = sane(img)
	return img.H / img.W
}

func sane(img Size) Size {
	if img.W <= 0 || img.H <= 0 {
		return DefaultSize
	}
	return img
}

// Measure probes the pixel size of e, falling back to DefaultSize so that
// layout can proceed deterministically.
func Measure(e *imaging.Encoded, log logrus.FieldLogger) Size {
	w, h, err := imaging.Probe(e)
	if err != nil || w <= 0 || h <= 0 {
		if log != nil {
			log.WithError(err).Warn("dimension probe failed, assuming default size")
		}
		return DefaultSize
	}
	return Size{W: float64(w), H: float64(h)}
}
