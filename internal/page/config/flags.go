package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/hlsync/internal/flagx"
)

var ownFlags = flagx.Set{
	"-a": true, "-id": true, "-f": true, "-w": true, "-o": true,
	"-t": true, "-r": true, "-l": true, "-trust": false,
}

// parseFlags populates Config fields from command-line flags.
//
//	-a string   coordinator address
//	-id string  page id
//	-f string   HTML page file
//	-w string   fragment watch directory
//	-o string   output file
//	-t int      keyword debounce, milliseconds
//	-r int      initial sync retries
//	-l string   log level
//	-trust      apply pushed values without re-reading
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("page", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.CoordinatorAddr, "a", config.CoordinatorAddr, "coordinator address")
	fs.StringVar(&config.PageID, "id", config.PageID, "page id")
	fs.StringVar(&config.PageFile, "f", config.PageFile, "HTML page file")
	fs.StringVar(&config.WatchDir, "w", config.WatchDir, "directory of inserted fragments")
	fs.StringVar(&config.OutputFile, "o", config.OutputFile, "rendered output file")
	debounceMs := fs.Int("t", int(config.DebounceDelay.Milliseconds()), "keyword debounce (in milliseconds)")
	fs.IntVar(&config.SyncRetries, "r", config.SyncRetries, "initial sync retries")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.TrustPushedValues, "trust", config.TrustPushedValues, "trust pushed values")

	if err := fs.Parse(flagx.FilterArgs(args, ownFlags)); err != nil {
		return err
	}

	config.DebounceDelay = time.Duration(*debounceMs) * time.Millisecond
	return nil
}
