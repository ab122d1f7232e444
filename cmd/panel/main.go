package main

import (
	"context"
	"io"
	"os"

	"github.com/pterm/pterm"

	"github.com/dmitrijs2005/hlsync/internal/client/client"
	"github.com/dmitrijs2005/hlsync/internal/panel"
)

func connect(addr string) (panel.Settings, io.Closer, error) {
	c, err := client.NewCoordinatorClient(addr, "")
	if err != nil {
		return nil, nil, err
	}
	return c, c, nil
}

func main() {
	if err := panel.NewRootCmd(connect).ExecuteContext(context.Background()); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}
