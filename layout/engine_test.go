package layout_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/lvillar/orderpdf/imaging"
	"github.com/lvillar/orderpdf/layout"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func pngImage(t *testing.T, w, h int) *imaging.Encoded {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return &imaging.Encoded{Data: buf.Bytes(), Format: imaging.PNG}
}

func newEngine() (*layout.Engine, *layout.Recorder) {
	rec := layout.NewRecorder()
	return layout.NewEngine(rec, layout.A4(), quietLogger()), rec
}

func TestEnsureSpaceStartsFirstPage(t *testing.T) {
	e, rec := newEngine()
	c := e.EnsureSpace(layout.Cursor{}, 10)
	if rec.PageCount() != 1 {
		t.Fatalf("pages = %d, want 1", rec.PageCount())
	}
	if c.Y != 20 {
		t.Errorf("cursor = %v, want top margin", c.Y)
	}
}

func TestEnsureSpace(t *testing.T) {
	e, rec := newEngine()
	c := e.NewPage()

	same := e.EnsureSpace(layout.Cursor{Y: 100}, 177)
	if same.Y != 100 || rec.PageCount() != 1 {
		t.Errorf("fitting block moved: y=%v pages=%d", same.Y, rec.PageCount())
	}

	next := e.EnsureSpace(layout.Cursor{Y: 270}, 10)
	if next.Y != c.Y || rec.PageCount() != 2 {
		t.Errorf("overflowing block: y=%v pages=%d, want y=%v pages=2", next.Y, rec.PageCount(), c.Y)
	}
}

func TestTextAndSeparator(t *testing.T) {
	e, rec := newEngine()
	c := e.Text(layout.Cursor{}, "Order #A1", layout.Font{Bold: true, Size: 14}, layout.AlignLeft)
	if want := 20 + layout.LineHeight(layout.Font{Size: 14}); c.Y != want {
		t.Errorf("cursor after text = %v, want %v", c.Y, want)
	}
	c = e.Separator(c, layout.Thin)
	c = e.Separator(c, layout.Thick)

	want := []layout.Kind{layout.KindText, layout.KindLine, layout.KindLine}
	if diff := cmp.Diff(want, rec.Kinds(0)); diff != "" {
		t.Errorf("elements mismatch (-want +got):\n%s", diff)
	}
	els := rec.Pages()[0].Elements
	if els[1].Stroke.Width >= els[2].Stroke.Width {
		t.Errorf("thick separator (%v) not heavier than thin (%v)", els[2].Stroke.Width, els[1].Stroke.Width)
	}
	if els[1].Rect.X != 20 || els[1].Rect.W != 170 {
		t.Errorf("separator spans %+v, want content width", els[1].Rect)
	}
}

func TestSeparatorAtPageEnd(t *testing.T) {
	e, rec := newEngine()
	e.NewPage()
	c := e.Separator(layout.Cursor{Y: 275}, layout.Thin)
	if rec.PageCount() != 2 {
		t.Fatalf("pages = %d, want 2", rec.PageCount())
	}
	if c.Y != 20+2*layout.SeparatorGap {
		t.Errorf("cursor = %v", c.Y)
	}
}

func TestPrepare(t *testing.T) {
	e, rec := newEngine()

	ref, ok := e.Prepare(pngImage(t, 40, 20))
	if !ok {
		t.Fatal("valid image rejected")
	}
	if ref.Size != (layout.Size{W: 40, H: 20}) {
		t.Errorf("size = %v", ref.Size)
	}
	if got, _ := rec.ImageSize(ref.Name); got != ref.Size {
		t.Errorf("registered size = %v", got)
	}

	if _, ok := e.Prepare(nil); ok {
		t.Error("nil image accepted")
	}
	if _, ok := e.Prepare(&imaging.Encoded{Data: []byte("not an image")}); ok {
		t.Error("garbage accepted")
	}
}

func TestPrepareRetriesWithSniffedType(t *testing.T) {
	e, _ := newEngine()
	img := pngImage(t, 40, 20)
	img.Format = imaging.JPEG // mislabelled

	ref, ok := e.Prepare(img)
	if !ok {
		t.Fatal("retry did not recover")
	}
	if ref.Size != layout.DefaultSize {
		t.Errorf("size = %v, want default geometry", ref.Size)
	}
}

func TestPlaceFullWidth(t *testing.T) {
	e, rec := newEngine()
	ref, _ := e.Prepare(pngImage(t, 200, 100))
	c, h := e.PlaceFullWidth(layout.Cursor{}, ref)
	if h != 85 {
		t.Errorf("height = %v, want 85", h)
	}
	if c.Y != 105 {
		t.Errorf("cursor = %v, want 105", c.Y)
	}
	img := rec.Pages()[0].Elements[0]
	if img.Rect != (layout.Rect{X: 20, Y: 20, W: 170, H: 85}) {
		t.Errorf("rect = %+v", img.Rect)
	}
}

func TestPlaceFullWidthClampsTallImage(t *testing.T) {
	e, rec := newEngine()
	ref, _ := e.Prepare(pngImage(t, 10, 100))
	_, h := e.PlaceFullWidth(layout.Cursor{}, ref)
	if h != 257 {
		t.Errorf("height = %v, want usable height", h)
	}
	if rec.PageCount() != 1 {
		t.Errorf("pages = %d, want 1", rec.PageCount())
	}
}

func TestPlaceBreaksPage(t *testing.T) {
	e, rec := newEngine()
	ref, _ := e.Prepare(pngImage(t, 100, 100))
	c, _ := e.PlaceCentered(layout.Cursor{}, ref, 70)
	c, _ = e.PlaceCentered(c, ref, 70)
	c, _ = e.PlaceCentered(c, ref, 70)
	c, _ = e.PlaceCentered(c, ref, 70)
	if rec.PageCount() != 2 {
		t.Fatalf("pages = %d, want 2", rec.PageCount())
	}
	if c.Y != 20+70 {
		t.Errorf("cursor = %v, want 90", c.Y)
	}
	for _, p := range rec.Pages() {
		for _, el := range p.Elements {
			if el.Rect.Bottom() > 277 {
				t.Errorf("element %+v crosses the bottom margin", el.Rect)
			}
		}
	}
}

func TestPlaceFillPage(t *testing.T) {
	e, rec := newEngine()
	ref, _ := e.Prepare(pngImage(t, 800, 600))
	c, h := e.PlaceFillPage(ref)
	if rec.PageCount() != 1 {
		t.Fatalf("pages = %d, want 1", rec.PageCount())
	}
	r := rec.Pages()[0].Elements[0].Rect
	if r.W != 200 || h != r.H || c.Y != r.Bottom() {
		t.Errorf("fill placement %+v, h=%v, cursor=%v", r, h, c.Y)
	}
}

func TestFailedFillPageLeavesNoBlankPage(t *testing.T) {
	fw := &failingWriter{Recorder: layout.NewRecorder(), n: 2}
	e := layout.NewEngine(fw, layout.A4(), quietLogger())
	ref, _ := e.Prepare(pngImage(t, 800, 600))

	if _, h := e.PlaceFillPage(ref); h != 0 {
		t.Fatalf("height = %v, want 0", h)
	}
	c := e.NewPage()
	e.Text(c, "Order #A1", layout.Font{Size: 12}, layout.AlignLeft)
	e.NewPage()

	if fw.PageCount() != 2 {
		t.Fatalf("pages = %d, want 2", fw.PageCount())
	}
	if diff := cmp.Diff([]string{"Order #A1"}, fw.Texts(0)); diff != "" {
		t.Errorf("first page texts (-want +got):\n%s", diff)
	}
}

// failingWriter rejects the first n DrawImage calls.
type failingWriter struct {
	*layout.Recorder
	n     int
	calls []layout.Rect
}

func (w *failingWriter) DrawImage(name string, r layout.Rect) error {
	w.calls = append(w.calls, r)
	if w.n > 0 {
		w.n--
		return errors.New("boom")
	}
	return w.Recorder.DrawImage(name, r)
}

func TestPlacementRetry(t *testing.T) {
	fw := &failingWriter{Recorder: layout.NewRecorder(), n: 1}
	e := layout.NewEngine(fw, layout.A4(), quietLogger())
	ref, _ := e.Prepare(pngImage(t, 100, 400))

	_, h := e.PlaceFullWidth(layout.Cursor{}, ref)
	if len(fw.calls) != 2 {
		t.Fatalf("draw calls = %d, want 2", len(fw.calls))
	}
	// The retry uses the 800x600 default geometry.
	if want := 170 * 600.0 / 800; h != want {
		t.Errorf("height = %v, want %v", h, want)
	}
}

func TestPlacementOmittedAfterSecondFailure(t *testing.T) {
	fw := &failingWriter{Recorder: layout.NewRecorder(), n: 2}
	e := layout.NewEngine(fw, layout.A4(), quietLogger())
	ref, _ := e.Prepare(pngImage(t, 100, 100))

	c, h := e.PlaceCentered(layout.Cursor{}, ref, 70)
	if h != 0 || c.Y != 20 {
		t.Errorf("h=%v cursor=%v, want nothing consumed", h, c.Y)
	}
	if n := len(fw.Pages()[0].Elements); n != 0 {
		t.Errorf("%d elements placed, want 0", n)
	}
}

func TestBackgroundAndManifest(t *testing.T) {
	e, rec := newEngine()
	c := e.NewPage()
	e.Background()
	c = e.Manifest(c, "A1", 60)
	if c.Y != 40 {
		t.Errorf("cursor = %v, want 40", c.Y)
	}
	want := []layout.Kind{layout.KindBackground, layout.KindManifest}
	if diff := cmp.Diff(want, rec.Kinds(0)); diff != "" {
		t.Errorf("elements mismatch (-want +got):\n%s", diff)
	}
	if e.Manifest(c, "", 60) != c {
		t.Error("empty manifest payload moved the cursor")
	}
}
