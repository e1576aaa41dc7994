package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
)

// Kind identifies a recorded element.
type Kind string

const (
	KindText       Kind = "text"
	KindImage      Kind = "image"
	KindLine       Kind = "line"
	KindBackground Kind = "background"
	KindManifest   Kind = "manifest"
)

// Element is one placed element of a recorded page.
type Element struct {
	Kind   Kind    `json:"kind"`
	Rect   Rect    `json:"rect"`
	Text   string  `json:"text,omitempty"`
	Image  string  `json:"image,omitempty"`
	Font   *Font   `json:"font,omitempty"`
	Stroke *Stroke `json:"stroke,omitempty"`
}

// Page is an ordered list of elements.
type Page struct {
	Elements []Element `json:"elements"`
}

// Recorder is a Writer that keeps the document model instead of rendering
// it. Images are decoded to check they are well formed, so registration
// fails for the same inputs a real writer rejects.
type Recorder struct {
	pages  []Page
	images map[string]image.Config
	font   Font
	stray  int
	done   bool
}

var (
	_ Writer       = (*Recorder)(nil)
	_ Backgrounder = (*Recorder)(nil)
	_ Manifester   = (*Recorder)(nil)
)

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{images: make(map[string]image.Config)}
}

func (r *Recorder) AddPage()       { r.pages = append(r.pages, Page{}) }
func (r *Recorder) PageCount() int { return len(r.pages) }
func (r *Recorder) SetFont(f Font) { r.font = f }

func (r *Recorder) Text(rect Rect, s string, _ Align) {
	f := r.font
	r.add(Element{Kind: KindText, Rect: rect, Text: s, Font: &f})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64, s Stroke) {
	r.add(Element{Kind: KindLine, Rect: Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}, Stroke: &s})
}

func (r *Recorder) RegisterImage(data []byte, imageType string) (string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("layout: registering image: %w", err)
	}
	if !typeMatches(format, imageType) {
		return "", fmt.Errorf("layout: registering image: %s data declared as %q", format, imageType)
	}
	name := fmt.Sprintf("img%04d", len(r.images)+1)
	r.images[name] = cfg
	return name, nil
}

func (r *Recorder) DrawImage(name string, rect Rect) error {
	if _, ok := r.images[name]; !ok {
		return fmt.Errorf("layout: drawing image: %s not registered", name)
	}
	if len(r.pages) == 0 {
		return errors.New("layout: drawing image: no page")
	}
	r.add(Element{Kind: KindImage, Rect: rect, Image: name})
	return nil
}

func (r *Recorder) DrawBackground() error {
	r.add(Element{Kind: KindBackground})
	return nil
}

// Manifest records the symbol with a 3:1 aspect ratio.
func (r *Recorder) Manifest(payload string, x, y, w float64) (float64, error) {
	r.add(Element{Kind: KindManifest, Rect: Rect{X: x, Y: y, W: w, H: w / 3}, Text: payload})
	return w / 3, nil
}

// Output writes the recorded pages as JSON.
func (r *Recorder) Output(w io.Writer) error {
	if r.done {
		return errors.New("layout: document already finalized")
	}
	r.done = true
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Pages []Page `json:"pages"`
	}{r.pages})
}

// Pages returns the recorded pages.
func (r *Recorder) Pages() []Page { return r.pages }

// ImageSize returns the pixel size of a registered image.
func (r *Recorder) ImageSize(name string) (Size, bool) {
	cfg, ok := r.images[name]
	return Size{W: float64(cfg.Width), H: float64(cfg.Height)}, ok
}

// Kinds lists the element kinds of page i in placement order.
func (r *Recorder) Kinds(i int) []Kind {
	var ks []Kind
	for _, e := range r.pages[i].Elements {
		ks = append(ks, e.Kind)
	}
	return ks
}

// Texts returns the text runs of page i.
func (r *Recorder) Texts(i int) []string {
	var ts []string
	for _, e := range r.pages[i].Elements {
		if e.Kind == KindText {
			ts = append(ts, e.Text)
		}
	}
	return ts
}

// Stray counts elements drawn before the first page was added.
func (r *Recorder) Stray() int { return r.stray }

func (r *Recorder) add(e Element) {
	if len(r.pages) == 0 {
		r.stray++
		return
	}
	p := &r.pages[len(r.pages)-1]
	p.Elements = append(p.Elements, e)
}

func typeMatches(format, imageType string) bool {
	switch strings.ToUpper(imageType) {
	case "PNG":
		return format == "png"
	case "JPG", "JPEG":
		return format == "jpeg"
	case "GIF":
		return format == "gif"
	}
	return false
}
