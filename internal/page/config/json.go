package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/hlsync/internal/flagx"
	"github.com/dmitrijs2005/hlsync/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations accept "200ms" or
// integer nanoseconds.
type JsonConfig struct {
	CoordinatorAddr   string         `json:"coordinator_addr"`
	PageID            string         `json:"page_id"`
	PageFile          string         `json:"page_file"`
	WatchDir          string         `json:"watch_dir"`
	OutputFile        string         `json:"output_file"`
	DebounceDelay     timex.Duration `json:"debounce_delay"`
	SyncRetries       int            `json:"sync_retries"`
	TrustPushedValues bool           `json:"trust_pushed_values"`
	LogLevel          string         `json:"log_level"`
}

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

	if c.CoordinatorAddr != "" {
		config.CoordinatorAddr = c.CoordinatorAddr
	}
	if c.PageID != "" {
		config.PageID = c.PageID
	}
	if c.PageFile != "" {
		config.PageFile = c.PageFile
	}
	if c.WatchDir != "" {
		config.WatchDir = c.WatchDir
	}
	if c.OutputFile != "" {
		config.OutputFile = c.OutputFile
	}
	if c.DebounceDelay.Duration > 0 {
		config.DebounceDelay = c.DebounceDelay.Duration
	}
	if c.SyncRetries > 0 {
		config.SyncRetries = c.SyncRetries
	}
	if c.TrustPushedValues {
		config.TrustPushedValues = true
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	return nil
}
