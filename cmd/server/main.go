package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/lookboard/internal/logging"
	"github.com/dmitrijs2005/lookboard/internal/server"
	"github.com/dmitrijs2005/lookboard/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)
	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}
