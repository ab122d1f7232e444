package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/hlsync/internal/buildinfo"
	"github.com/dmitrijs2005/hlsync/internal/client/client"
	"github.com/dmitrijs2005/hlsync/internal/logging"
	"github.com/dmitrijs2005/hlsync/internal/page"
	"github.com/dmitrijs2005/hlsync/internal/page/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stderr)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}
	if cfg.PageFile == "" {
		log.Fatalf("page file is required (-f)")
	}

	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	f, err := os.Open(cfg.PageFile)
	if err != nil {
		log.Fatalf("%v", err)
	}

	c, err := client.NewCoordinatorClient(cfg.CoordinatorAddr, cfg.PageID)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer c.Close()

	app, err := page.NewApp(cfg, c, f, logger)
	_ = f.Close()
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
