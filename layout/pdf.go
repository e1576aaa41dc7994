package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
)

// PDFOption configures a PDFWriter.
type PDFOption func(*pdfConfig)

type pdfConfig struct {
	title      string
	author     string
	compress   bool
	stationery *Stationery
}

// WithTitle sets the document title metadata.
func WithTitle(title string) PDFOption {
	return func(c *pdfConfig) {
		c.title = title
	}
}

// WithAuthor sets the document author metadata.
func WithAuthor(author string) PDFOption {
	return func(c *pdfConfig) {
		c.author = author
	}
}

// WithCompression toggles stream compression. It is on by default.
func WithCompression(on bool) PDFOption {
	return func(c *pdfConfig) {
		c.compress = on
	}
}

// WithStationery lays page one of an existing PDF under every page that
// requests a background.
func WithStationery(s *Stationery) PDFOption {
	return func(c *pdfConfig) {
		c.stationery = s
	}
}

// PDFWriter is a Writer producing PDF through gofpdf. Automatic page breaks
// are disabled; the Engine decides where pages end.
type PDFWriter struct {
	pdf    *gofpdf.Fpdf
	g      Geometry
	tr     func(string) string
	images int
	font   Font

	stationery *Stationery
	importer   *gofpdi.Importer // nil until the stationery is first drawn
	tplID      int
}

// Ensure PDFWriter implements the writer interfaces.
var (
	_ Writer       = (*PDFWriter)(nil)
	_ Backgrounder = (*PDFWriter)(nil)
	_ Manifester   = (*PDFWriter)(nil)
)

// NewPDFWriter returns a writer for pages of geometry g.
func NewPDFWriter(g Geometry, opts ...PDFOption) *PDFWriter {
	cfg := &pdfConfig{compress: true}
	for _, opt := range opts {
		opt(cfg)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: g.PageWidth, Ht: g.PageHeight},
	})
	pdf.SetMargins(g.Margin, g.Margin, g.Margin)
	pdf.SetAutoPageBreak(false, g.Margin)
	pdf.SetCompression(cfg.compress)
	pdf.SetCreator("orderpdf", true)
	if cfg.title != "" {
		pdf.SetTitle(cfg.title, true)
	}
	if cfg.author != "" {
		pdf.SetAuthor(cfg.author, true)
	}

	w := &PDFWriter{
		pdf:        pdf,
		g:          g,
		tr:         pdf.UnicodeTranslatorFromDescriptor(""),
		stationery: cfg.stationery,
		font:       Font{Size: 11},
	}
	w.SetFont(w.font)
	return w
}

func (w *PDFWriter) AddPage() {
	w.pdf.AddPage()
	// gofpdf resets the font on a new page only when a header func is set;
	// re-apply it anyway so text never depends on page order.
	w.SetFont(w.font)
}

// PageCount returns the number of pages added so far. Pages are only ever
// appended, so the current page number equals the count.
func (w *PDFWriter) PageCount() int { return w.pdf.PageNo() }

func (w *PDFWriter) SetFont(f Font) {
	style := ""
	if f.Bold {
		style = "B"
	}
	w.font = f
	w.pdf.SetFont("Helvetica", style, f.Size)
}

func (w *PDFWriter) Text(r Rect, s string, a Align) {
	w.pdf.SetXY(r.X, r.Y)
	w.pdf.CellFormat(r.W, r.H, w.tr(s), "", 0, string(a)+"M", false, 0, "")
}

func (w *PDFWriter) Line(x1, y1, x2, y2 float64, s Stroke) {
	w.pdf.SetLineWidth(s.Width)
	w.pdf.SetDrawColor(s.Gray, s.Gray, s.Gray)
	w.pdf.Line(x1, y1, x2, y2)
	w.pdf.SetDrawColor(0, 0, 0)
	w.pdf.SetLineWidth(0.2)
}

func (w *PDFWriter) RegisterImage(data []byte, imageType string) (string, error) {
	if imageType == "" {
		return "", errors.New("layout: unknown image type")
	}
	w.images++
	name := fmt.Sprintf("img%04d", w.images)
	info := w.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(data))
	if err := w.takeError(); err != nil {
		return "", fmt.Errorf("layout: registering image: %w", err)
	}
	if info == nil {
		return "", errors.New("layout: registering image: no image info")
	}
	return name, nil
}

func (w *PDFWriter) DrawImage(name string, r Rect) error {
	w.pdf.ImageOptions(name, r.X, r.Y, r.W, r.H, false, gofpdf.ImageOptions{}, 0, "")
	if err := w.takeError(); err != nil {
		return fmt.Errorf("layout: drawing image: %w", err)
	}
	return nil
}

func (w *PDFWriter) Output(out io.Writer) error {
	if w.pdf.Err() {
		return w.pdf.Error()
	}
	return w.pdf.Output(out)
}

// takeError returns and clears gofpdf's sticky error so that one bad image
// does not poison the rest of the document.
func (w *PDFWriter) takeError() error {
	if !w.pdf.Err() {
		return nil
	}
	err := w.pdf.Error()
	w.pdf.ClearError()
	return err
}
