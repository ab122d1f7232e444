package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/hlsync/internal/flagx"
)

// JsonConfig is the on-disk shape of Config. Absent fields keep the value
// they already had.
type JsonConfig struct {
	EndpointAddrGRPC string `json:"endpoint_addr_grpc"`
	StoreDSN         string `json:"store_dsn"`
	NotifyPolicy     string `json:"notify_policy"`
	EventBuffer      int    `json:"event_buffer"`
	LogLevel         string `json:"log_level"`
}

// parseJson overlays the file named by -c/-config, if any.
func parseJson(config *Config, args []string) error {
	jsonConfigFile := flagx.ConfigPath(args)
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("decode config %s: %w", jsonConfigFile, err)
	}

	if c.EndpointAddrGRPC != "" {
		config.EndpointAddrGRPC = c.EndpointAddrGRPC
	}
	if c.StoreDSN != "" {
		config.StoreDSN = c.StoreDSN
	}
	if c.NotifyPolicy != "" {
		config.NotifyPolicy = c.NotifyPolicy
	}
	if c.EventBuffer > 0 {
		config.EventBuffer = c.EventBuffer
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	return nil
}
