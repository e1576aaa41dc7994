package orderpdf

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lvillar/orderpdf/imaging"
	"github.com/lvillar/orderpdf/layout"
)

// LayoutMode selects how items are laid out.
type LayoutMode int

const (
	// Pages gives every item a visual page, a garment page and a details
	// page. Pages without an image are skipped.
	Pages LayoutMode = iota
	// Compact stacks every item on flowing pages: header, details line,
	// full-width image, item barcode and a separator.
	Compact
)

func (m LayoutMode) String() string {
	if m == Compact {
		return "compact"
	}
	return "pages"
}

// ParseLayoutMode maps "pages" and "compact" to a LayoutMode. The empty
// string selects Pages.
func ParseLayoutMode(s string) (LayoutMode, error) {
	switch s {
	case "", "pages":
		return Pages, nil
	case "compact":
		return Compact, nil
	}
	return Pages, fmt.Errorf("orderpdf: unknown layout %q", s)
}

// WriterFactory creates the drawing surface for one document.
type WriterFactory func(g layout.Geometry, title string) layout.Writer

// Option is a functional option for configuring a Generator via New.
type Option func(*config)

type config struct {
	log        logrus.FieldLogger
	loader     *imaging.Loader
	transport  imaging.Transport
	mode       LayoutMode
	saver      Saver
	newWriter  WriterFactory
	listener   Listener
	geometry   layout.Geometry
	stationery *layout.Stationery
	manifest   bool
}

// WithLogger sets the logger. The default is logrus.StandardLogger().
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithLoader sets the image loader. It takes precedence over WithTransport.
func WithLoader(l *imaging.Loader) Option {
	return func(c *config) {
		c.loader = l
	}
}

// WithTransport builds the image loader on t.
func WithTransport(t imaging.Transport) Option {
	return func(c *config) {
		c.transport = t
	}
}

// WithLayout selects the layout mode. The default is Pages.
func WithLayout(m LayoutMode) Option {
	return func(c *config) {
		c.mode = m
	}
}

// WithSaver sets where artifacts are stored. The default is the current
// directory.
func WithSaver(s Saver) Option {
	return func(c *config) {
		c.saver = s
	}
}

// WithWriterFactory replaces the PDF writer, e.g. with layout.NewRecorder
// for dry runs.
func WithWriterFactory(f WriterFactory) Option {
	return func(c *config) {
		c.newWriter = f
	}
}

// WithProgress sets the progress listener.
func WithProgress(l Listener) Option {
	return func(c *config) {
		c.listener = l
	}
}

// WithGeometry sets the page geometry. The default is layout.A4().
func WithGeometry(g layout.Geometry) Option {
	return func(c *config) {
		c.geometry = g
	}
}

// WithStationery lays s under every details page.
func WithStationery(s *layout.Stationery) Option {
	return func(c *config) {
		c.stationery = s
	}
}

// WithManifest adds a PDF417 symbol listing the item under its barcode on
// details pages.
func WithManifest(on bool) Option {
	return func(c *config) {
		c.manifest = on
	}
}

func defaultConfig() *config {
	return &config{
		log:      logrus.StandardLogger(),
		mode:     Pages,
		saver:    DirSaver{Dir: "."},
		listener: nopListener{},
		geometry: layout.A4(),
	}
}

// finish fills the fields that depend on other options.
func (c *config) finish() {
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	if c.listener == nil {
		c.listener = nopListener{}
	}
	if c.loader == nil {
		c.loader = imaging.NewLoader(c.transport, c.log)
	}
	if c.newWriter == nil {
		st := c.stationery
		c.newWriter = func(g layout.Geometry, title string) layout.Writer {
			opts := []layout.PDFOption{layout.WithTitle(title), layout.WithAuthor("orderpdf")}
			if st != nil {
				opts = append(opts, layout.WithStationery(st))
			}
			return layout.NewPDFWriter(g, opts...)
		}
	}
}
