// Package model defines the order records consumed by the document engine.
//
// Orders arrive from an external retrieval service as a JSON envelope:
//
//	{
//	  "success": true,
//	  "data": [{
//	    "id": "A1",
//	    "createdAt": "2024-05-01T10:00:00Z",
//	    "totalAmount": 59.90,
//	    "items": [{"name": "Hoodie", "sku": "HD-01", "quantity": 2, "size": "xl"}]
//	  }]
//	}
//
// Only the fields the engine prints or places are modelled. Every item
// field is optional; accessors degrade absent values to printable fallbacks.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNoOrderID = errors.New("model: order has no identifier")
	ErrNoItems   = errors.New("model: order has no items")
)

// ID is an order identifier. The retrieval service emits it either as a
// string or as a bare number; both decode to the same textual form.
type ID string

// UnmarshalJSON accepts JSON strings and numbers.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("model: order id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Order is a single customer order.
type Order struct {
	ID        ID        `json:"id"`
	Items     []Item    `json:"items"`
	Total     float64   `json:"totalAmount,omitempty"` // displayed elsewhere, unused by the engine
	CreatedAt time.Time `json:"createdAt,omitempty"`   // used only for grouping
}

// Validate reports whether the order can be turned into a document.
func (o *Order) Validate() error {
	if o.ID == "" {
		return ErrNoOrderID
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("%w: order %s", ErrNoItems, o.ID)
	}
	return nil
}

// TotalItems returns the number of items across all orders.
func TotalItems(orders []Order) int {
	n := 0
	for i := range orders {
		n += len(orders[i].Items)
	}
	return n
}
