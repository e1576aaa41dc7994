package imaging

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnsupportedScheme is returned by a Transport that does not handle the
// URL it was given; FallbackTransport moves on to the next strategy.
var ErrUnsupportedScheme = errors.New("imaging: unsupported URL scheme")

// Transport fetches the raw bytes behind an image URL.
type Transport interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, rawURL string) ([]byte, error)

func (f TransportFunc) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return f(ctx, rawURL)
}

// DefaultMaxBytes caps a single download.
const DefaultMaxBytes = 32 << 20

// HTTPTransport downloads http and https URLs.
type HTTPTransport struct {
	Client    *http.Client // nil uses a client with a 30s timeout
	UserAgent string
	MaxBytes  int64 // 0 means DefaultMaxBytes
}

var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

func (t *HTTPTransport) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("imaging: parsing url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrUnsupportedScheme
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("imaging: building request: %w", err)
	}
	req.Header.Set("Accept", "image/*")
	if t.UserAgent != "" {
		req.Header.Set("User-Agent", t.UserAgent)
	}

	client := t.Client
	if client == nil {
		client = defaultHTTPClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imaging: fetching %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("imaging: fetching %s: HTTP status %d", u.Host, resp.StatusCode)
	}

	max := t.MaxBytes
	if max <= 0 {
		max = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, max+1))
	if err != nil {
		return nil, fmt.Errorf("imaging: reading body: %w", err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("imaging: image exceeds %d bytes", max)
	}
	return data, nil
}

// FileTransport reads file:// URLs and bare filesystem paths. When Root is
// set, paths are resolved inside it and may not escape it.
type FileTransport struct {
	Root string
}

func (t *FileTransport) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	path := rawURL
	if strings.Contains(rawURL, "://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("imaging: parsing url: %w", err)
		}
		if u.Scheme != "file" {
			return nil, ErrUnsupportedScheme
		}
		path = u.Path
	} else if strings.HasPrefix(rawURL, "data:") {
		return nil, ErrUnsupportedScheme
	}

	if t.Root != "" {
		rel := filepath.Clean("/" + path)
		path = filepath.Join(t.Root, rel)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("imaging: reading file: %w", err)
	}
	return data, nil
}

// DataURITransport decodes RFC 2397 data: URIs inline.
type DataURITransport struct{}

func (DataURITransport) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	rest, ok := strings.CutPrefix(rawURL, "data:")
	if !ok {
		return nil, ErrUnsupportedScheme
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("imaging: malformed data URI")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some producers drop the padding.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, fmt.Errorf("imaging: decoding data URI: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("imaging: decoding data URI: %w", err)
	}
	return []byte(s), nil
}

// FallbackTransport tries each strategy in order and returns the first
// success. Strategies answering ErrUnsupportedScheme are skipped silently.
type FallbackTransport []Transport

func (ts FallbackTransport) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var errs []error
	for _, t := range ts {
		data, err := t.Fetch(ctx, rawURL)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrUnsupportedScheme) {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil, ErrUnsupportedScheme
	}
	return nil, errors.Join(errs...)
}

// DefaultTransport handles data URIs and http(s). Local files are only read
// through an explicitly configured FileTransport.
func DefaultTransport() Transport {
	return FallbackTransport{DataURITransport{}, &HTTPTransport{}}
}
