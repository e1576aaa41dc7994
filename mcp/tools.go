package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lvillar/orderpdf"
	"github.com/lvillar/orderpdf/layout"
	"github.com/lvillar/orderpdf/model"
)

// RegisterDefaultTools adds the order document tools to the server. Every
// call runs on a copy of gen with the call's layout and progress applied.
func RegisterDefaultTools(s *Server, gen *orderpdf.Generator) {
	s.AddTool(generateOrderTool(gen))
	s.AddTool(generateCombinedTool(gen))
	s.AddTool(planDocumentTool(gen))
}

var layoutProperty = map[string]interface{}{
	"type":        "string",
	"enum":        []string{"pages", "compact"},
	"description": "pages: visual, garment and details page per item (default). compact: all items flowing on shared pages.",
}

var outputDirProperty = map[string]interface{}{
	"type":        "string",
	"description": "Directory the PDF is written to. Defaults to the server's output directory.",
}

func generateOrderTool(gen *orderpdf.Generator) Tool {
	return Tool{
		Name:        "generate_order_pdf",
		Description: "Generate the printable PDF for one order. Items get a visual page, a garment preview page and a details page with a Code128 barcode. Returns the artifact name, path and page count.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"order": map[string]interface{}{
					"type":        "object",
					"description": "Order record: {id, items: [{name, sku, quantity, size, customImageUrl, renderedImageUrl, garmentImageUrl}]}",
				},
				"layout":    layoutProperty,
				"outputDir": outputDirProperty,
			},
			"required": []string{"order"},
		},
		Handler: func(call *Call) (ToolResult, error) {
			var order model.Order
			if err := decodeArg(call.Args, "order", &order); err != nil {
				return ToolResult{}, err
			}
			g, err := callGenerator(gen, call)
			if err != nil {
				return ToolResult{}, err
			}
			art, err := g.GenerateSingle(call.Context(), order)
			if err != nil {
				return ToolResult{}, err
			}
			return artifactResult(art)
		},
	}
}

func generateCombinedTool(gen *orderpdf.Generator) Tool {
	return Tool{
		Name:        "generate_combined_pdf",
		Description: "Generate one PDF for many orders. Pass either 'orders' or an order service 'response' ({success, data}). With groupByDate, one PDF is produced per order date; otherwise groupKey names the file.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"orders": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "object"},
					"description": "Order records in print order",
				},
				"response": map[string]interface{}{
					"type":        "object",
					"description": "Order service response: {success: true, data: [orders]}",
				},
				"groupKey": map[string]interface{}{
					"type":        "string",
					"description": "Label used for the file name, e.g. a date",
				},
				"groupByDate": map[string]interface{}{
					"type":        "boolean",
					"description": "Split the orders by creation date, one PDF per date",
				},
				"layout":    layoutProperty,
				"outputDir": outputDirProperty,
			},
		},
		Handler: func(call *Call) (ToolResult, error) {
			orders, err := ordersArg(call.Args)
			if err != nil {
				return ToolResult{}, err
			}
			groups, err := groupsArg(call.Args, orders)
			if err != nil {
				return ToolResult{}, err
			}
			g, err := callGenerator(gen, call)
			if err != nil {
				return ToolResult{}, err
			}

			// Progress spans all groups.
			total := model.TotalItems(orders)
			offset := 0
			var arts []orderpdf.Artifact
			for _, grp := range groups {
				base := offset
				gg := g.With(orderpdf.WithProgress(orderpdf.ListenerFunc(func(done, _ int) {
					call.Progress(base+done, total)
				})))
				art, err := gg.GenerateCombined(call.Context(), grp.Orders, grp.Key)
				if err != nil {
					return ToolResult{}, fmt.Errorf("group %s: %w", grp.Key, err)
				}
				arts = append(arts, art)
				offset += model.TotalItems(grp.Orders)
			}
			return artifactResult(arts...)
		},
	}
}

func planDocumentTool(gen *orderpdf.Generator) Tool {
	return Tool{
		Name:        "plan_document",
		Description: "Lay out an order, or several orders combined, without rendering or saving anything. Returns the pages with their text, image and line elements in millimetres.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"order": map[string]interface{}{
					"type":        "object",
					"description": "A single order record",
				},
				"orders": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "object"},
					"description": "Several orders, planned as one combined document",
				},
				"layout": layoutProperty,
			},
		},
		Handler: func(call *Call) (ToolResult, error) {
			saver := new(orderpdf.MemorySaver)
			g, err := callGenerator(gen, call)
			if err != nil {
				return ToolResult{}, err
			}
			g = g.With(
				orderpdf.WithSaver(saver),
				orderpdf.WithWriterFactory(func(layout.Geometry, string) layout.Writer {
					return layout.NewRecorder()
				}),
			)

			var art orderpdf.Artifact
			if _, ok := call.Args["order"]; ok {
				var order model.Order
				if err := decodeArg(call.Args, "order", &order); err != nil {
					return ToolResult{}, err
				}
				art, err = g.GenerateSingle(call.Context(), order)
			} else {
				var orders []model.Order
				if err := decodeArg(call.Args, "orders", &orders); err != nil {
					return ToolResult{}, err
				}
				art, err = g.GenerateCombined(call.Context(), orders, "plan")
			}
			if err != nil {
				return ToolResult{}, err
			}
			plan, _ := saver.Get(art.Name)
			return ToolResult{Content: []ContentBlock{{
				Type:     "text",
				MIMEType: "application/json",
				Text:     string(plan),
			}}}, nil
		},
	}
}

// callGenerator applies the per-call arguments shared by all tools.
func callGenerator(gen *orderpdf.Generator, call *Call) (*orderpdf.Generator, error) {
	opts := []orderpdf.Option{orderpdf.WithProgress(orderpdf.ListenerFunc(call.Progress))}
	if s, ok := call.Args["layout"].(string); ok {
		mode, err := orderpdf.ParseLayoutMode(s)
		if err != nil {
			return nil, err
		}
		opts = append(opts, orderpdf.WithLayout(mode))
	}
	if dir, ok := call.Args["outputDir"].(string); ok && dir != "" {
		opts = append(opts, orderpdf.WithSaver(orderpdf.DirSaver{Dir: dir}))
	}
	return gen.With(opts...), nil
}

// decodeArg re-encodes a JSON argument into v.
func decodeArg(args map[string]interface{}, name string, v interface{}) error {
	raw, ok := args[name]
	if !ok {
		return fmt.Errorf("missing '%s' argument", name)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding '%s': %w", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("invalid '%s': %w", name, err)
	}
	return nil
}

func ordersArg(args map[string]interface{}) ([]model.Order, error) {
	if raw, ok := args["response"]; ok {
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("encoding 'response': %w", err)
		}
		return model.DecodeResponse(bytes.NewReader(b))
	}
	var orders []model.Order
	if err := decodeArg(args, "orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func groupsArg(args map[string]interface{}, orders []model.Order) ([]model.Group, error) {
	if by, _ := args["groupByDate"].(bool); by {
		return model.GroupByDate(orders, nil), nil
	}
	key, _ := args["groupKey"].(string)
	if key == "" {
		return nil, fmt.Errorf("groupKey is required unless groupByDate is set")
	}
	return []model.Group{{Key: key, Orders: orders}}, nil
}

func artifactResult(arts ...orderpdf.Artifact) (ToolResult, error) {
	var v interface{} = arts
	if len(arts) == 1 {
		v = arts[0]
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ToolResult{}, err
	}
	return ToolResult{Content: []ContentBlock{{Type: "text", Text: string(b)}}}, nil
}
