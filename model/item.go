package model

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fallback text printed for absent item fields.
const (
	NotAvailable = "N/A"
	DefaultName  = "Customizable Product"
)

// Item is one purchasable line of an order.
type Item struct {
	Name             string `json:"name,omitempty"`
	SKU              string `json:"sku,omitempty"`
	Quantity         int    `json:"quantity,omitempty"`
	Size             string `json:"size,omitempty"`
	CustomImageURL   string `json:"customImageUrl,omitempty"`
	RenderedImageURL string `json:"renderedImageUrl,omitempty"`
	GarmentImageURL  string `json:"garmentImageUrl,omitempty"`
}

// DisplayName returns the item name or DefaultName.
func (it *Item) DisplayName() string {
	if s := strings.TrimSpace(it.Name); s != "" {
		return s
	}
	return DefaultName
}

// SKUOrNA returns the stock-keeping code or NotAvailable.
func (it *Item) SKUOrNA() string {
	if s := strings.TrimSpace(it.SKU); s != "" {
		return s
	}
	return NotAvailable
}

// Qty returns the quantity, defaulting to 1.
func (it *Item) Qty() int {
	if it.Quantity <= 0 {
		return 1
	}
	return it.Quantity
}

// QtyString is Qty formatted for printing.
func (it *Item) QtyString() string {
	return strconv.Itoa(it.Qty())
}

// FormattedSize normalizes the free-text size descriptor. Tokens separated by
// whitespace, commas or slashes are upper-cased and joined with " / ", so
// "xl, tall" prints as "XL / TALL".
func (it *Item) FormattedSize() string {
	tokens := strings.FieldsFunc(it.Size, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '/'
	})
	if len(tokens) == 0 {
		return NotAvailable
	}
	// Casers carry state, so each call gets its own.
	upper := cases.Upper(language.Und)
	for i, t := range tokens {
		tokens[i] = upper.String(t)
	}
	return strings.Join(tokens, " / ")
}

// VisualImageURL returns the customization image, falling back to the
// rendered mock-up. Empty when the item has neither.
func (it *Item) VisualImageURL() string {
	if s := strings.TrimSpace(it.CustomImageURL); s != "" {
		return s
	}
	return strings.TrimSpace(it.RenderedImageURL)
}

// GarmentURL returns the trimmed garment preview URL.
func (it *Item) GarmentURL() string {
	return strings.TrimSpace(it.GarmentImageURL)
}
