package orderpdf

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lvillar/orderpdf/barcode"
	"github.com/lvillar/orderpdf/layout"
	"github.com/lvillar/orderpdf/model"
)

// Placement widths in millimetres.
const (
	GarmentWidth   = 150.0 // garment preview on its own page
	OrderCodeWidth = 100.0 // high-fidelity order barcode on details pages
	ItemCodeWidth  = 70.0  // per-item barcode in compact layout
	ManifestWidth  = 60.0
)

var (
	headingFont = layout.Font{Bold: true, Size: 16}
	subtleFont  = layout.Font{Size: 10}
	labelFont   = layout.Font{Bold: true, Size: 12}
	bodyFont    = layout.Font{Size: 12}
)

// document is the state of one generation call.
type document struct {
	ctx context.Context
	cfg *config
	w   layout.Writer
	e   *layout.Engine
	log logrus.FieldLogger

	// codes holds barcodes already registered with w, by payload.
	codes map[string]codeRef
}

type codeRef struct {
	ref layout.ImageRef
	ok  bool
}

// run executes fn and turns a panic escaping the layout into an error.
func (d *document) run(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	fn()
	return nil
}

// item lays out item i of o starting at c.
func (d *document) item(c layout.Cursor, o *model.Order, i int) layout.Cursor {
	if d.cfg.mode == Compact {
		return d.compactItem(c, o, i)
	}
	return d.pagesItem(o, i)
}

// pagesItem emits up to three pages: the visual page, the garment page and
// the details page. Image pages are skipped when the image is missing or
// cannot be embedded.
func (d *document) pagesItem(o *model.Order, i int) layout.Cursor {
	it := &o.Items[i]
	log := d.log.WithFields(logrus.Fields{"order": o.ID, "item": i + 1})

	// Registering before AddPage keeps failed images from leaving blank pages.
	if ref, ok := d.e.Prepare(d.cfg.loader.LoadCustom(d.ctx, it.VisualImageURL())); ok {
		d.e.PlaceFillPage(ref)
	} else if it.VisualImageURL() != "" {
		log.Warn("visual page skipped")
	}

	if ref, ok := d.e.Prepare(d.cfg.loader.LoadProduct(d.ctx, it.GarmentURL())); ok {
		c := d.e.NewPage()
		d.e.PlaceCentered(c, ref, GarmentWidth)
	} else if it.GarmentURL() != "" {
		log.Warn("garment page skipped")
	}

	return d.details(o, i)
}

func (d *document) details(o *model.Order, i int) layout.Cursor {
	it := &o.Items[i]
	c := d.e.NewPage()
	if d.cfg.stationery != nil {
		d.e.Background()
	}

	c = d.e.Text(c, "Order #"+o.ID.String(), headingFont, layout.AlignLeft)
	c = d.e.Text(c, fmt.Sprintf("Item %d of %d", i+1, len(o.Items)), subtleFont, layout.AlignLeft)
	c = c.Advance(4)
	c = d.e.Text(c, it.DisplayName(), labelFont, layout.AlignLeft)
	c = d.e.Text(c, "SKU: "+it.SKUOrNA(), bodyFont, layout.AlignLeft)
	c = d.e.Text(c, "Quantity: "+it.QtyString(), bodyFont, layout.AlignLeft)
	c = d.e.Text(c, "Size: "+it.FormattedSize(), bodyFont, layout.AlignLeft)
	c = c.Advance(10)

	if ref, ok := d.code(barcode.OrderPayload(o.ID.String()), barcode.HighFidelity); ok {
		c, _ = d.e.PlaceCentered(c, ref, OrderCodeWidth)
	}
	if d.cfg.manifest {
		c = d.e.Manifest(c.Advance(6), manifestPayload(o, i), ManifestWidth)
	}
	return c
}

// compactItem stacks header, details line, visual image, item barcode and
// a thin separator on the flowing page.
func (d *document) compactItem(c layout.Cursor, o *model.Order, i int) layout.Cursor {
	it := &o.Items[i]

	c = d.e.Text(c, fmt.Sprintf("Order #%s - Item %d of %d", o.ID, i+1, len(o.Items)), labelFont, layout.AlignLeft)
	c = d.e.Text(c, fmt.Sprintf("%s | SKU: %s | Qty: %s | Size: %s",
		it.DisplayName(), it.SKUOrNA(), it.QtyString(), it.FormattedSize()), subtleFont, layout.AlignLeft)

	if ref, ok := d.e.Prepare(d.cfg.loader.LoadCustom(d.ctx, it.VisualImageURL())); ok {
		c, _ = d.e.PlaceFullWidth(c, ref)
	}
	if ref, ok := d.code(barcode.ItemPayload(o.ID.String(), i), barcode.Standard); ok {
		c, _ = d.e.PlaceCentered(c, ref, ItemCodeWidth)
	}
	return d.e.Separator(c, layout.Thin)
}

// code renders and registers a barcode once per document.
func (d *document) code(payload string, t barcode.Tier) (layout.ImageRef, bool) {
	key := t.String() + ":" + payload
	if cr, seen := d.codes[key]; seen {
		return cr.ref, cr.ok
	}
	var cr codeRef
	enc, err := barcode.Render(payload, t)
	if err != nil {
		d.log.WithError(err).WithField("payload", payload).Warn("barcode omitted")
	} else {
		cr.ref, cr.ok = d.e.Prepare(enc)
	}
	d.codes[key] = cr
	return cr.ref, cr.ok
}

func manifestPayload(o *model.Order, i int) string {
	it := &o.Items[i]
	return fmt.Sprintf("order=%s;item=%d/%d;sku=%s;qty=%d;size=%s",
		o.ID, i+1, len(o.Items), it.SKUOrNA(), it.Qty(), it.FormattedSize())
}
