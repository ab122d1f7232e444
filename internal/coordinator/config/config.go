// Package config handles configuration for the coordinator, including
// defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for the coordinator.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the gRPC endpoint.
//   - StoreDSN: settings store; "memory", "sqlite://file", "postgres://…"
//     or "redis://host:port/db".
//   - NotifyPolicy: "active" (focused page only) or "all".
//   - EventBuffer: per-page event buffer; a full buffer drops events.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrGRPC string
	StoreDSN         string
	NotifyPolicy     string
	EventBuffer      int
	LogLevel         string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50061"
	c.StoreDSN = "memory"
	c.NotifyPolicy = "active"
	c.EventBuffer = 16
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
