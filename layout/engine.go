package layout

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/lvillar/orderpdf/imaging"
)

// PointToMM converts font points to millimetres.
const PointToMM = 25.4 / 72

// Cursor is the vertical write position on the current page. Engine methods
// take a Cursor and return the advanced one; the engine keeps no position of
// its own.
type Cursor struct {
	Y float64
}

// Advance moves the cursor down by h.
func (c Cursor) Advance(h float64) Cursor { return Cursor{Y: c.Y + h} }

// SeparatorKind selects the weight of a horizontal rule.
type SeparatorKind int

const (
	Thin  SeparatorKind = iota // between items
	Thick                      // between orders in a combined document
)

// SeparatorGap is the space kept above and below a rule.
const SeparatorGap = 4.0

func (k SeparatorKind) stroke() Stroke {
	if k == Thick {
		return Stroke{Width: 0.8, Gray: 0}
	}
	return Stroke{Width: 0.2, Gray: 160}
}

// ImageRef is an image registered with the writer.
type ImageRef struct {
	Name string
	Size Size
}

// Engine applies placement geometry to a Writer.
type Engine struct {
	w   Writer
	g   Geometry
	log logrus.FieldLogger

	// vacant is set when a full-page image could not be drawn on the page
	// opened for it. The next NewPage reuses that page.
	vacant bool
}

// NewEngine returns an engine drawing on w.
func NewEngine(w Writer, g Geometry, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{w: w, g: g, log: log}
}

// NewPage starts a page and returns a cursor at its top margin.
func (e *Engine) NewPage() Cursor {
	if e.vacant {
		e.vacant = false
		return Cursor{Y: e.g.Margin}
	}
	e.w.AddPage()
	e.log.WithField("page", e.w.PageCount()).Debug("page added")
	return Cursor{Y: e.g.Margin}
}

// EnsureSpace starts a new page when a block of height h does not fit below
// c, returning the cursor the block must be placed at.
func (e *Engine) EnsureSpace(c Cursor, h float64) Cursor {
	if e.w.PageCount() == 0 {
		return e.NewPage()
	}
	if e.g.Fits(c.Y, h) {
		return c
	}
	return e.NewPage()
}

// LineHeight is the vertical advance of one text line in font f.
func LineHeight(f Font) float64 {
	return f.Size * PointToMM * 1.5
}

// Text writes a single line across the content width.
func (e *Engine) Text(c Cursor, s string, f Font, a Align) Cursor {
	h := LineHeight(f)
	c = e.EnsureSpace(c, h)
	e.w.SetFont(f)
	e.w.Text(Rect{X: e.g.Margin, Y: c.Y, W: e.g.ContentWidth(), H: h}, s, a)
	return c.Advance(h)
}

// Separator draws a horizontal rule across the content width.
func (e *Engine) Separator(c Cursor, k SeparatorKind) Cursor {
	c = e.EnsureSpace(c, 2*SeparatorGap)
	y := c.Y + SeparatorGap
	e.w.Line(e.g.Margin, y, e.g.PageWidth-e.g.Margin, y, k.stroke())
	return c.Advance(2 * SeparatorGap)
}

// Prepare probes and registers img. If registration fails it is retried
// once with the sniffed image type and DefaultSize geometry; if that fails
// too, ok is false and the image must be omitted.
func (e *Engine) Prepare(img *imaging.Encoded) (ref ImageRef, ok bool) {
	if img == nil {
		return ImageRef{}, false
	}
	size := Measure(img, e.log)
	name, err := e.w.RegisterImage(img.Data, imageType(img.Format))
	if err == nil {
		return ImageRef{Name: name, Size: size}, true
	}
	e.log.WithError(err).Warn("image registration failed, retrying with default geometry")

	name, err = e.w.RegisterImage(img.Data, sniffType(img.Data))
	if err != nil {
		e.log.WithError(err).Warn("image omitted")
		return ImageRef{}, false
	}
	return ImageRef{Name: name, Size: DefaultSize}, true
}

// PlaceFullWidth places ref across the content width below c.
func (e *Engine) PlaceFullWidth(c Cursor, ref ImageRef) (Cursor, float64) {
	return e.place(c, ref, func(s Size) Rect {
		return e.g.FitHeight(e.g.FullWidth(s, 0), e.g.UsableHeight())
	})
}

// PlaceCentered places ref at maxWidth, horizontally centered below c.
func (e *Engine) PlaceCentered(c Cursor, ref ImageRef, maxWidth float64) (Cursor, float64) {
	return e.place(c, ref, func(s Size) Rect {
		return e.g.FitHeight(e.g.Centered(s, maxWidth, 0), e.g.UsableHeight())
	})
}

// PlaceFillPage starts a page and covers it with ref. The returned cursor
// sits below the image. If the image cannot be drawn the page stays empty
// and is handed to the next NewPage.
func (e *Engine) PlaceFillPage(ref ImageRef) (Cursor, float64) {
	e.NewPage()
	r := e.g.FillPage(ref.Size)
	if err := e.w.DrawImage(ref.Name, r); err != nil {
		e.log.WithError(err).Warn("full-page placement failed, retrying with default geometry")
		r = e.g.FillPage(DefaultSize)
		if err := e.w.DrawImage(ref.Name, r); err != nil {
			e.log.WithError(err).Warn("image omitted")
			e.vacant = true
			return Cursor{Y: e.g.Margin}, 0
		}
	}
	return Cursor{Y: r.Bottom()}, r.H
}

// place reserves space for the rect computed from the image size and draws
// it at the resulting cursor. Rects are computed at y = 0.
func (e *Engine) place(c Cursor, ref ImageRef, rectFor func(Size) Rect) (Cursor, float64) {
	r := rectFor(ref.Size)
	c = e.EnsureSpace(c, r.H)
	r.Y = c.Y
	if err := e.w.DrawImage(ref.Name, r); err != nil {
		e.log.WithError(err).Warn("image placement failed, retrying with default geometry")
		r = rectFor(DefaultSize)
		c = e.EnsureSpace(c, r.H)
		r.Y = c.Y
		if err := e.w.DrawImage(ref.Name, r); err != nil {
			e.log.WithError(err).Warn("image omitted")
			return c, 0
		}
	}
	return c.Advance(r.H), r.H
}

// Background lays stationery under the current page when the writer
// supports it.
func (e *Engine) Background() {
	b, ok := e.w.(Backgrounder)
	if !ok {
		return
	}
	if err := b.DrawBackground(); err != nil {
		e.log.WithError(err).Warn("stationery omitted")
	}
}

// Manifest draws a centered manifest symbol of width w when the writer
// supports it.
func (e *Engine) Manifest(c Cursor, payload string, w float64) Cursor {
	m, ok := e.w.(Manifester)
	if !ok || payload == "" {
		return c
	}
	// Reserve a square; PDF417 symbols are wider than tall.
	c = e.EnsureSpace(c, w)
	h, err := m.Manifest(payload, (e.g.PageWidth-w)/2, c.Y, w)
	if err != nil {
		e.log.WithError(err).Warn("manifest symbol omitted")
		return c
	}
	return c.Advance(h)
}

func imageType(f imaging.Format) string {
	if f == imaging.PNG {
		return "PNG"
	}
	return "JPG"
}

// sniffType derives the writer image type from the data itself.
func sniffType(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPG"
	case "image/gif":
		return "GIF"
	}
	return ""
}
