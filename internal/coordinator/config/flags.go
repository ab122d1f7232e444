package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/hlsync/internal/flagx"
)

var ownFlags = flagx.Set{"-a": true, "-d": true, "-p": true, "-b": true, "-l": true}

// parseFlags populates Config fields from command-line flags.
//
//	-a string   gRPC bind address (e.g. ":50061")
//	-d string   store DSN
//	-p string   notify policy, active|all
//	-b int      per-page event buffer
//	-l string   log level
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("coordinator", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.StoreDSN, "d", config.StoreDSN, "settings store DSN")
	fs.StringVar(&config.NotifyPolicy, "p", config.NotifyPolicy, "change notification policy (active|all)")
	fs.IntVar(&config.EventBuffer, "b", config.EventBuffer, "per-page event buffer")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(flagx.FilterArgs(args, ownFlags))
}
