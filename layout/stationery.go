package layout

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
)

// Stationery is a page of an existing PDF (letterhead, packing-slip form)
// drawn under details pages.
type Stationery struct {
	path string
	page int
}

// LoadStationery checks that path is a readable PDF and selects page
// (1-based; values below 1 select the first page).
func LoadStationery(path string, page int) (*Stationery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("layout: opening stationery: %w", err)
	}
	defer f.Close()

	head := make([]byte, 5)
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, []byte("%PDF-")) {
		return nil, fmt.Errorf("layout: %s is not a PDF", path)
	}
	if page < 1 {
		page = 1
	}
	return &Stationery{path: path, page: page}, nil
}

// Path returns the stationery file.
func (s *Stationery) Path() string { return s.path }

// DrawBackground stretches the stationery page over the current page. The
// page is imported once per document.
func (w *PDFWriter) DrawBackground() (err error) {
	if w.stationery == nil {
		return nil
	}
	if w.pdf.PageNo() == 0 {
		return fmt.Errorf("layout: stationery needs a page")
	}
	// gofpdi reports unreadable sources by panicking.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("layout: importing stationery: %v", r)
		}
	}()

	if w.importer == nil {
		imp := gofpdi.NewImporter()
		tpl := imp.ImportPage(w.pdf, w.stationery.path, w.stationery.page, "/MediaBox")
		if err := w.takeError(); err != nil {
			return fmt.Errorf("layout: importing stationery: %w", err)
		}
		w.importer, w.tplID = imp, tpl
	}
	w.importer.UseImportedTemplate(w.pdf, w.tplID, 0, 0, w.g.PageWidth, w.g.PageHeight)
	return w.takeError()
}
