package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrFetchFailed is returned when the retrieval envelope does not carry a
// successful payload.
var ErrFetchFailed = errors.New("model: order fetch failed")

// Response is the envelope produced by the order retrieval service.
type Response struct {
	Success bool    `json:"success"`
	Data    []Order `json:"data"`
}

// DecodeResponse parses a retrieval envelope. Any shape other than
// {"success": true, "data": [...]} is reported as ErrFetchFailed.
func DecodeResponse(r io.Reader) ([]Order, error) {
	var raw struct {
		Success *bool            `json:"success"`
		Data    *json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if raw.Success == nil || !*raw.Success {
		return nil, fmt.Errorf("%w: success flag not set", ErrFetchFailed)
	}
	if raw.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrFetchFailed)
	}
	var orders []Order
	if err := json.Unmarshal(*raw.Data, &orders); err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrFetchFailed, err)
	}
	return orders, nil
}

// Group is a run of orders sharing a grouping key.
type Group struct {
	Key    string
	Orders []Order
}

// DateKeyLayout formats the grouping key produced by GroupByDate.
const DateKeyLayout = "2006-01-02"

// GroupByDate partitions orders by calendar day of CreatedAt in loc.
// Groups appear in order of first occurrence and keep input order within.
// Orders without a timestamp are grouped under "undated".
func GroupByDate(orders []Order, loc *time.Location) []Group {
	if loc == nil {
		loc = time.UTC
	}
	var groups []Group
	index := make(map[string]int)
	for _, o := range orders {
		key := "undated"
		if !o.CreatedAt.IsZero() {
			key = o.CreatedAt.In(loc).Format(DateKeyLayout)
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Orders = append(groups[i].Orders, o)
	}
	return groups
}
