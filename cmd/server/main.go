package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/ocrdesk/internal/buildinfo"
	"github.com/dmitrijs2005/ocrdesk/internal/logging"
	"github.com/dmitrijs2005/ocrdesk/internal/server"
	"github.com/dmitrijs2005/ocrdesk/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(os.Stdout, cfg.LogLevel, "json")

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}
