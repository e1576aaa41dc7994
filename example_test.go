package orderpdf_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/lvillar/orderpdf"
	"github.com/lvillar/orderpdf/layout"
	"github.com/lvillar/orderpdf/model"
)

// ExampleGenerator_GenerateSingle plans an order without rendering it.
func ExampleGenerator_GenerateSingle() {
	var rec *layout.Recorder
	saver := new(orderpdf.MemorySaver)
	gen := orderpdf.New(
		orderpdf.WithLogger(quietLogger()),
		orderpdf.WithSaver(saver),
		orderpdf.WithWriterFactory(func(layout.Geometry, string) layout.Writer {
			rec = layout.NewRecorder()
			return rec
		}),
		orderpdf.WithProgress(orderpdf.ListenerFunc(func(done, total int) {
			fmt.Printf("progress %d/%d\n", done, total)
		})),
	)

	order := model.Order{ID: "A1", Items: []model.Item{
		{Name: "Hoodie", SKU: "HD-01", Size: "m"},
		{Name: "Cap"},
	}}
	art, err := gen.GenerateSingle(context.Background(), order)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(art.Name, art.Pages)
	fmt.Println(strings.Join(rec.Texts(0), "; "))
	// Output:
	// progress 1/2
	// progress 2/2
	// order-A1.pdf 2
	// Order #A1; Item 1 of 2; Hoodie; SKU: HD-01; Quantity: 1; Size: M
}

// ExampleGenerator_GenerateCombined groups orders by date and reports
// progress across all of them.
func ExampleGenerator_GenerateCombined() {
	orders, err := model.DecodeResponse(strings.NewReader(`{
		"success": true,
		"data": [
			{"id": "B1", "createdAt": "2024-05-01T10:00:00Z", "items": [{"name": "Mug"}, {"name": "Cap"}]},
			{"id": 7, "createdAt": "2024-05-01T12:00:00Z", "items": [{"name": "Tee"}]}
		]
	}`))
	if err != nil {
		fmt.Println(err)
		return
	}

	gen := orderpdf.New(
		orderpdf.WithLogger(quietLogger()),
		orderpdf.WithSaver(new(orderpdf.MemorySaver)),
		orderpdf.WithLayout(orderpdf.Compact),
		orderpdf.WithWriterFactory(func(layout.Geometry, string) layout.Writer {
			return layout.NewRecorder()
		}),
		orderpdf.WithProgress(orderpdf.ListenerFunc(func(done, total int) {
			fmt.Printf("%d/%d ", done, total)
		})),
	)
	for _, g := range model.GroupByDate(orders, nil) {
		art, err := gen.GenerateCombined(context.Background(), g.Orders, g.Key)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(art.Name)
	}
	// Output:
	// 1/3 2/3 3/3 orders-2024_05_01.pdf
}
