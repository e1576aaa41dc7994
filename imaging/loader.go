package imaging

import (
	"bytes"
	"context"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

// Loader acquires and transforms images. It is safe for concurrent use when
// its Transport is.
type Loader struct {
	transport Transport
	log       logrus.FieldLogger
}

// NewLoader returns a Loader fetching through t. A nil t uses
// DefaultTransport and a nil log uses the logrus standard logger.
func NewLoader(t Transport, log logrus.FieldLogger) *Loader {
	if t == nil {
		t = DefaultTransport()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{transport: t, log: log}
}

// Load fetches rawURL, transforms it according to opts and returns the
// encoded result, or nil if any step fails. Failures are logged, never
// returned.
func (l *Loader) Load(ctx context.Context, rawURL string, opts Options) *Encoded {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil
	}
	logger := l.log.WithFields(logrus.Fields{
		"url":    shortURL(rawURL),
		"format": opts.Format.String(),
	})

	data, err := l.transport.Fetch(ctx, rawURL)
	if err != nil {
		logger.WithError(err).Warn("image acquisition failed")
		return nil
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		logger.WithError(err).Warn("image decode failed")
		return nil
	}
	enc, err := Transform(img, opts)
	if err != nil {
		logger.WithError(err).Warn("image transform failed")
		return nil
	}
	b := img.Bounds()
	logger.WithFields(logrus.Fields{
		"width":  b.Dx(),
		"height": b.Dy(),
		"bytes":  len(enc.Data),
	}).Debug("image acquired")
	return enc
}

// LoadCustom loads customer artwork with the CustomImage preset.
func (l *Loader) LoadCustom(ctx context.Context, rawURL string) *Encoded {
	return l.Load(ctx, rawURL, CustomImage)
}

// LoadProduct loads catalog photography with the ProductImage preset.
func (l *Loader) LoadProduct(ctx context.Context, rawURL string) *Encoded {
	return l.Load(ctx, rawURL, ProductImage)
}

// shortURL keeps log lines readable when URLs carry inline data.
func shortURL(s string) string {
	const max = 96
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
