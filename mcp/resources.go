package mcp

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/lvillar/orderpdf"
	"github.com/lvillar/orderpdf/model"
)

// RegisterDefaultResources adds the order resources to the server.
// Resources use the orders:// scheme and take the file path as a query
// parameter.
func RegisterDefaultResources(s *Server) {
	s.AddResource(Resource{
		URI:         "orders://summary",
		Name:        "Order File Summary",
		Description: "Summarize an order service response saved as JSON ({success, data}): order and item counts per date group and the artifact names generation would produce. Pass the file path as a query parameter: orders://summary?path=/path/to/orders.json",
		MIMEType:    "application/json",
		Handler:     handleSummaryResource,
	})
}

type orderSummary struct {
	ID       string `json:"id"`
	Items    int    `json:"items"`
	Artifact string `json:"artifact"`
}

type groupSummary struct {
	Key      string         `json:"key"`
	Items    int            `json:"items"`
	Artifact string         `json:"artifact"`
	Orders   []orderSummary `json:"orders"`
}

func handleSummaryResource(u *url.URL) ([]ResourceContent, error) {
	path := u.Query().Get("path")
	if path == "" {
		return nil, fmt.Errorf("missing 'path' parameter in URI")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening orders: %w", err)
	}
	defer f.Close()

	orders, err := model.DecodeResponse(f)
	if err != nil {
		return nil, err
	}

	groups := make([]groupSummary, 0)
	for _, g := range model.GroupByDate(orders, nil) {
		gs := groupSummary{
			Key:      g.Key,
			Items:    model.TotalItems(g.Orders),
			Artifact: orderpdf.CombinedName(g.Key),
		}
		for _, o := range g.Orders {
			gs.Orders = append(gs.Orders, orderSummary{
				ID:       o.ID.String(),
				Items:    len(o.Items),
				Artifact: orderpdf.SingleName(o.ID),
			})
		}
		groups = append(groups, gs)
	}

	info := map[string]interface{}{
		"orders": len(orders),
		"items":  model.TotalItems(orders),
		"groups": groups,
	}

	jsonBytes, _ := json.MarshalIndent(info, "", "  ")
	return []ResourceContent{{
		URI:      u.String(),
		MIMEType: "application/json",
		Text:     string(jsonBytes),
	}}, nil
}
