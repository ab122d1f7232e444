// Package config handles configuration for a page process: defaults, JSON
// overlay and command-line flags.
package config

import (
	"time"

	"github.com/google/uuid"
)

// Config holds runtime settings for one page context.
//
// Fields:
//   - CoordinatorAddr: gRPC address of the coordinator.
//   - PageID: identity of this page context; random when not given.
//   - PageFile: HTML document to load.
//   - WatchDir: directory whose *.html files are appended to the body as
//     they appear. Empty disables the feed.
//   - OutputFile: where the highlighted page is rendered. Defaults to
//     PageFile with a ".highlighted.html" suffix.
//   - DebounceDelay: quiet period for keyword changes.
//   - SyncRetries: extra attempts for the initial sync.
//   - TrustPushedValues: apply pushed values without re-reading them.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	CoordinatorAddr   string
	PageID            string
	PageFile          string
	WatchDir          string
	OutputFile        string
	DebounceDelay     time.Duration
	SyncRetries       int
	TrustPushedValues bool
	LogLevel          string
}

func (c *Config) LoadDefaults() {
	c.CoordinatorAddr = "localhost:50061"
	c.PageID = uuid.NewString()
	c.DebounceDelay = 200 * time.Millisecond
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then the optional JSON file, then flags.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if cfg.OutputFile == "" && cfg.PageFile != "" {
		cfg.OutputFile = cfg.PageFile + ".highlighted.html"
	}
	return cfg, nil
}
