package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/hlsync/internal/buildinfo"
	"github.com/dmitrijs2005/hlsync/internal/coordinator"
	"github.com/dmitrijs2005/hlsync/internal/coordinator/config"
	"github.com/dmitrijs2005/hlsync/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel)

	app, err := coordinator.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
