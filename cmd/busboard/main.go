package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/busboard"
	"github.com/theoremus-urban-solutions/busboard/config"
	"github.com/theoremus-urban-solutions/busboard/internal"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (default: ./config.yml, ./config/config.yml)")
	flag.Parse()

	var paths []string
	if *configPath != "" {
		paths = []string{*configPath}
	}

	cfg, missing, err := config.LoadAppConfig(paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := internal.NewLogger(cfg.Log.Level, cfg.Server.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	for _, key := range missing {
		logger.Warn("missing environment variable", zap.String("key", key))
	}
	logger.Info("configuration loaded",
		zap.String("environment", cfg.Server.Environment),
		zap.Strings("stop_ids", cfg.GTFSRT.StopIDs),
		zap.Bool("metrics", cfg.Server.MetricsEnabled))

	srv := busboard.NewFromConfig(cfg, logger)
	srv.Start()
	srv.HandleGracefulShutdown()
}
