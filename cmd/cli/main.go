package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/aither/internal/buildinfo"
	"github.com/dmitrijs2005/aither/internal/client/cli"
	"github.com/dmitrijs2005/aither/internal/client/config"
	"github.com/dmitrijs2005/aither/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewLogger(cfg.LogLevel, os.Stderr)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		app.Run(ctx)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// the REPL may be blocked on stdin; give in-flight work a bounded grace period
		select {
		case <-done:
		case <-time.After(cfg.ShutdownTimeout):
			logger.Warn(context.Background(), "shutdown timeout exceeded")
		}
	}
}
