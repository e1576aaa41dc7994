package layout

import "io"

// Align is a horizontal text alignment.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// Font selects one of the core Helvetica faces.
type Font struct {
	Bold bool
	Size float64 // points
}

// Stroke describes a straight line.
type Stroke struct {
	Width float64 // mm
	Gray  int     // 0 black .. 255 white
}

// Writer is the append-only drawing surface a document is assembled on.
// Elements are never moved or removed once written.
type Writer interface {
	AddPage()
	PageCount() int

	SetFont(f Font)
	Text(r Rect, s string, a Align)
	Line(x1, y1, x2, y2 float64, s Stroke)

	// RegisterImage makes encoded image data available for drawing.
	// imageType is "PNG", "JPG" or "GIF".
	RegisterImage(data []byte, imageType string) (name string, err error)
	DrawImage(name string, r Rect) error

	// Output finalizes the document. It may be called once.
	Output(w io.Writer) error
}

// Backgrounder is implemented by writers that can lay pre-printed
// stationery under the current page.
type Backgrounder interface {
	DrawBackground() error
}

// Manifester is implemented by writers that can draw a two-dimensional
// manifest symbol. It returns the height used at width w.
type Manifester interface {
	Manifest(payload string, x, y, w float64) (h float64, err error)
}
