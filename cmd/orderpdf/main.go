// Command orderpdf turns an order service response into printable PDFs.
//
//	orderpdf -in orders.json                     one PDF per order
//	orderpdf -in orders.json -order 1042         a single order
//	orderpdf -in orders.json -group-by-date      one combined PDF per day
//	orderpdf -in orders.json -group batch-7      everything in one PDF
//
// The input is the JSON the order service returns: {"success": true,
// "data": [...]}. Use -in - to read it from standard input. With -dry-run
// nothing is rendered; the page plan is printed as JSON instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/lvillar/orderpdf"
	"github.com/lvillar/orderpdf/layout"
	"github.com/lvillar/orderpdf/model"
)

var (
	inPath      = flag.String("in", "-", "order service response, - for stdin")
	configPath  = flag.String("config", "", "JSON configuration file")
	outDir      = flag.String("out", "", "output directory, overrides the configuration")
	layoutName  = flag.String("layout", "", "pages or compact, overrides the configuration")
	orderID     = flag.String("order", "", "generate only the order with this id")
	groupKey    = flag.String("group", "", "combine all orders into one PDF named after this key")
	groupByDate = flag.Bool("group-by-date", false, "combine orders into one PDF per creation date")
	stationery  = flag.String("stationery", "", "PDF whose page is laid under the details pages")
	manifest    = flag.Bool("manifest", false, "add a PDF417 manifest to details pages")
	dryRun      = flag.Bool("dry-run", false, "print the page plan instead of writing PDFs")
	verbose     = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if err := run(log); err != nil {
		log.WithError(err).Error("orderpdf failed")
		os.Exit(1)
	}
}

func run(log *logrus.Logger) error {
	cfg := new(orderpdf.Config)
	if *configPath != "" {
		var err error
		if cfg, err = orderpdf.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *layoutName != "" {
		cfg.Layout = *layoutName
	}
	if *stationery != "" {
		cfg.Stationery = *stationery
	}
	cfg.Manifest = cfg.Manifest || *manifest

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if *verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	orders, err := readOrders(*inPath)
	if err != nil {
		return err
	}
	if *orderID != "" {
		if orders, err = pick(orders, *orderID); err != nil {
			return err
		}
	}

	opts, closer, err := cfg.Options(log)
	if err != nil {
		return err
	}
	defer closer()

	saver := new(orderpdf.MemorySaver)
	if *dryRun {
		opts = append(opts,
			orderpdf.WithSaver(saver),
			orderpdf.WithWriterFactory(func(layout.Geometry, string) layout.Writer {
				return layout.NewRecorder()
			}),
		)
	}
	bar := newProgressBar(os.Stderr)
	opts = append(opts, orderpdf.WithProgress(bar))
	gen := orderpdf.New(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var arts []orderpdf.Artifact
	switch {
	case *groupByDate || *groupKey != "":
		groups := []model.Group{{Key: *groupKey, Orders: orders}}
		if *groupByDate {
			groups = model.GroupByDate(orders, nil)
		}
		for _, g := range groups {
			bar.label = g.Key
			art, err := gen.GenerateCombined(ctx, g.Orders, g.Key)
			bar.finish()
			if err != nil {
				return fmt.Errorf("group %s: %w", g.Key, err)
			}
			arts = append(arts, art)
		}
	default:
		for _, o := range orders {
			bar.label = o.ID.String()
			art, err := gen.GenerateSingle(ctx, o)
			bar.finish()
			if err != nil {
				return fmt.Errorf("order %s: %w", o.ID, err)
			}
			arts = append(arts, art)
		}
	}

	for _, art := range arts {
		if *dryRun {
			plan, _ := saver.Get(art.Name)
			fmt.Printf("%s\n%s\n", art.Name, plan)
			continue
		}
		fmt.Printf("%s\t%d pages\t%d bytes\n", art.Path, art.Pages, art.Bytes)
	}
	return nil
}

func readOrders(path string) ([]model.Order, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return model.DecodeResponse(r)
}

func pick(orders []model.Order, id string) ([]model.Order, error) {
	for _, o := range orders {
		if o.ID.String() == id {
			return []model.Order{o}, nil
		}
	}
	return nil, fmt.Errorf("order %s not found", id)
}

// progressBar draws item progress on a terminal and stays silent otherwise.
type progressBar struct {
	out   *os.File
	tty   bool
	label string
	drawn bool
}

func newProgressBar(out *os.File) *progressBar {
	return &progressBar{out: out, tty: term.IsTerminal(int(out.Fd()))}
}

func (b *progressBar) Progress(done, total int) {
	if !b.tty || total == 0 {
		return
	}
	width := 80
	if w, _, err := term.GetSize(int(b.out.Fd())); err == nil && w > 0 {
		width = w
	}
	head := fmt.Sprintf("%s %d/%d ", b.label, done, total)
	n := width - len(head) - 2
	if n < 10 {
		fmt.Fprintf(b.out, "\r%s", head)
		b.drawn = true
		return
	}
	fill := n * done / total
	fmt.Fprintf(b.out, "\r%s[%s%s]", head, strings.Repeat("#", fill), strings.Repeat(" ", n-fill))
	b.drawn = true
}

func (b *progressBar) finish() {
	if b.drawn {
		fmt.Fprintln(b.out)
		b.drawn = false
	}
}
