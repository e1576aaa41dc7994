// Package orderpdf assembles printable documents from orders.
//
// A Generator lays out the items of one order (GenerateSingle) or of many
// orders (GenerateCombined) and saves the result as a single PDF. Images
// that cannot be fetched, decoded or embedded are left out; only failures
// to finalize or save the document are returned.
//
// Example:
//
//	gen := orderpdf.New(
//	    orderpdf.WithSaver(orderpdf.DirSaver{Dir: "out"}),
//	    orderpdf.WithProgress(orderpdf.ListenerFunc(func(done, total int) {
//	        fmt.Printf("%d/%d\n", done, total)
//	    })),
//	)
//	art, err := gen.GenerateSingle(ctx, order)
package orderpdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lvillar/orderpdf/layout"
	"github.com/lvillar/orderpdf/model"
)

// Artifact describes a saved document.
type Artifact struct {
	Name  string `json:"name"` // file name, e.g. "order-A1.pdf"
	Path  string `json:"path"` // location returned by the Saver
	Pages int    `json:"pages"`
	Bytes int    `json:"bytes"`
}

// Generator produces order documents. A Generator holds no per-call state
// and may be used from several goroutines, as long as two concurrent calls
// do not target the same artifact.
type Generator struct {
	opts []Option
	cfg  *config
}

// New returns a Generator configured by opts.
func New(opts ...Option) *Generator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.finish()
	return &Generator{opts: opts, cfg: cfg}
}

// With returns a copy of g with opts applied on top of its options.
func (g *Generator) With(opts ...Option) *Generator {
	all := make([]Option, 0, len(g.opts)+len(opts))
	all = append(all, g.opts...)
	all = append(all, opts...)
	return New(all...)
}

// Mode returns the layout mode.
func (g *Generator) Mode() LayoutMode { return g.cfg.mode }

// GenerateSingle lays out every item of o and saves the document as
// order-{id}.pdf. Progress is reported as (i+1, len(o.Items)) after each
// item. ctx bounds image acquisition only; once started, layout runs to
// completion.
func (g *Generator) GenerateSingle(ctx context.Context, o model.Order) (Artifact, error) {
	if err := o.Validate(); err != nil {
		return Artifact{}, newGenerateError("validate", err)
	}
	name := SingleName(o.ID)
	d := g.newDocument(ctx, "Order "+o.ID.String(), name)
	p := &progress{l: g.cfg.listener, total: len(o.Items)}

	err := d.run(func() {
		c := layout.Cursor{}
		for i := range o.Items {
			c = d.item(c, &o, i)
			p.step()
		}
	})
	if err != nil {
		return Artifact{}, newGenerateError("layout", err)
	}
	return g.finish(d, name)
}

// GenerateCombined lays out all orders in sequence into one document saved
// as orders-{groupKey}.pdf, with every rune of groupKey outside [A-Za-z0-9]
// replaced by '_'. Progress counts items across all orders. In Compact mode
// a thick separator marks the start of every order after the first.
func (g *Generator) GenerateCombined(ctx context.Context, orders []model.Order, groupKey string) (Artifact, error) {
	if len(orders) == 0 {
		return Artifact{}, newGenerateError("validate", ErrNoOrders)
	}
	if groupKey == "" {
		return Artifact{}, newGenerateError("validate", ErrNoGroupKey)
	}
	for i := range orders {
		if err := orders[i].Validate(); err != nil {
			return Artifact{}, newGenerateError("validate", fmt.Errorf("order %d: %w", i+1, err))
		}
	}
	name := CombinedName(groupKey)
	d := g.newDocument(ctx, "Orders "+groupKey, name)
	p := &progress{l: g.cfg.listener, total: model.TotalItems(orders)}

	err := d.run(func() {
		c := layout.Cursor{}
		for k := range orders {
			if k > 0 && g.cfg.mode == Compact {
				c = d.e.Separator(c, layout.Thick)
			}
			for i := range orders[k].Items {
				c = d.item(c, &orders[k], i)
				p.step()
			}
		}
	})
	if err != nil {
		return Artifact{}, newGenerateError("layout", err)
	}
	return g.finish(d, name)
}

func (g *Generator) newDocument(ctx context.Context, title, name string) *document {
	if ctx == nil {
		ctx = context.Background()
	}
	w := g.cfg.newWriter(g.cfg.geometry, title)
	log := g.cfg.log.WithFields(logrus.Fields{
		"document": name,
		"layout":   g.cfg.mode.String(),
	})
	return &document{
		ctx:   ctx,
		cfg:   g.cfg,
		w:     w,
		e:     layout.NewEngine(w, g.cfg.geometry, log),
		log:   log,
		codes: make(map[string]codeRef),
	}
}

// finish renders the document and hands it to the saver. Nothing is saved
// when rendering fails.
func (g *Generator) finish(d *document, name string) (Artifact, error) {
	if g.cfg.saver == nil {
		return Artifact{}, newGenerateError("save", ErrNoSaver)
	}
	var buf bytes.Buffer
	if err := d.w.Output(&buf); err != nil {
		return Artifact{}, newGenerateError("output", err)
	}
	path, err := g.cfg.saver.Save(name, buf.Bytes())
	if err != nil {
		return Artifact{}, newGenerateError("save", err)
	}
	a := Artifact{Name: name, Path: path, Pages: d.w.PageCount(), Bytes: buf.Len()}
	d.log.WithFields(logrus.Fields{
		"path":  a.Path,
		"pages": a.Pages,
		"bytes": a.Bytes,
	}).Info("document saved")
	return a, nil
}
