package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/lunchsync/pkg/config"
	"github.com/yurifrl/lunchsync/pkg/parser"
	"github.com/yurifrl/lunchsync/pkg/server"
)

func main() {
	var (
		port    = flag.String("port", "3000", "Server port")
		cfgFile = flag.String("c", "", "Config file")
		verbose = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	level := log.InfoLevel
	if *verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "lunchsync",
		Level:           level,
	})

	cfg, err := config.Build(*cfgFile, nil)
	if err != nil {
		logger.Fatal("failed to load config", "err", err)
	}

	srv := server.New(cfg, parser.DefaultRegistry(logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	}()

	addr := fmt.Sprintf("0.0.0.0:%s", *port)
	logger.Info("starting server", "addr", addr, "config", cfg.Path())
	if err := srv.Start(addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
