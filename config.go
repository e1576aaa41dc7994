package orderpdf

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lvillar/orderpdf/imaging"
	"github.com/lvillar/orderpdf/layout"
)

// Config is the JSON configuration file read by the command-line tools.
//
//	{
//	  "output_dir": "out",
//	  "layout": "pages",
//	  "stationery": "letterhead.pdf",
//	  "manifest": false,
//	  "log_level": "info",
//	  "http": {"timeout_seconds": 30, "user_agent": "orderpdf"},
//	  "cache": {"redis_addr": "localhost:6379", "ttl_seconds": 3600}
//	}
type Config struct {
	OutputDir      string       `json:"output_dir"`
	Layout         string       `json:"layout"`          // "pages" or "compact"
	Stationery     string       `json:"stationery"`      // PDF laid under details pages
	StationeryPage int          `json:"stationery_page"` // 1-based
	Manifest       bool         `json:"manifest"`
	FileRoot       string       `json:"file_root"` // enables file:// and path image URLs inside this directory
	LogLevel       string       `json:"log_level"`
	HTTP           HTTPConfig   `json:"http"`
	Cache          *CacheConfig `json:"cache"` // nil disables caching
}

// HTTPConfig tunes image downloads.
type HTTPConfig struct {
	TimeoutSeconds int    `json:"timeout_seconds"`
	UserAgent      string `json:"user_agent"`
	MaxBytes       int64  `json:"max_bytes"`
}

// CacheConfig selects the image cache. An empty RedisAddr keeps images in
// process memory.
type CacheConfig struct {
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
	TTLSeconds    int    `json:"ttl_seconds"`
}

// LoadConfig reads a Config from a JSON file.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("orderpdf: reading config: %w", err)
	}
	c := new(Config)
	if err := json.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("orderpdf: parsing config %s: %w", path, err)
	}
	return c, nil
}

// Level returns the configured log level, defaulting to info.
func (c *Config) Level() (logrus.Level, error) {
	if c.LogLevel == "" {
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(c.LogLevel)
}

// Options translates the configuration into Generator options. The returned
// closer releases cache connections and must be called when the Generator
// is no longer used.
func (c *Config) Options(log logrus.FieldLogger) (opts []Option, closer func() error, err error) {
	closer = func() error { return nil }
	if log == nil {
		log = logrus.StandardLogger()
	}

	mode, err := ParseLayoutMode(c.Layout)
	if err != nil {
		return nil, closer, err
	}
	opts = append(opts,
		WithLogger(log),
		WithLayout(mode),
		WithSaver(DirSaver{Dir: c.OutputDir}),
		WithManifest(c.Manifest),
	)

	if c.Stationery != "" {
		st, err := layout.LoadStationery(c.Stationery, c.StationeryPage)
		if err != nil {
			return nil, closer, err
		}
		opts = append(opts, WithStationery(st))
	}

	web := &imaging.HTTPTransport{UserAgent: c.HTTP.UserAgent, MaxBytes: c.HTTP.MaxBytes}
	if c.HTTP.TimeoutSeconds > 0 {
		web.Client = &http.Client{Timeout: time.Duration(c.HTTP.TimeoutSeconds) * time.Second}
	}
	chain := imaging.FallbackTransport{imaging.DataURITransport{}}
	if c.FileRoot != "" {
		chain = append(chain, &imaging.FileTransport{Root: c.FileRoot})
	}
	var tr imaging.Transport = append(chain, web)

	if c.Cache != nil {
		var cache imaging.Cache
		if c.Cache.RedisAddr != "" {
			rc := imaging.NewRedisCache(c.Cache.RedisAddr, c.Cache.RedisPassword, c.Cache.RedisDB)
			cache, closer = rc, rc.Close
		} else {
			cache = imaging.NewMemoryCache()
		}
		tr = &imaging.CachedTransport{
			Next:   tr,
			Cache:  cache,
			TTL:    time.Duration(c.Cache.TTLSeconds) * time.Second,
			Logger: log,
		}
	}
	opts = append(opts, WithTransport(tr))
	return opts, closer, nil
}
