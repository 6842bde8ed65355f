package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/apresai/sflstudio/internal/generate"
	"github.com/apresai/sflstudio/internal/mcpserver"
	"github.com/apresai/sflstudio/internal/observability"
)

func main() {
	logger := observability.InitLogger()

	logger.Info("SFL Studio MCP server starting...")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if observability.TracingConfigured() {
		tp, err := observability.InitTracer(ctx, "sflstudio-mcp", "1.0.0")
		if err != nil {
			logger.Warn("Failed to init tracer, continuing without tracing", "error", err)
		} else {
			defer func() {
				if err := tp.Shutdown(context.Background()); err != nil {
					logger.Error("Tracer shutdown error", "error", err)
				}
			}()
		}
	}

	cfg := mcpserver.DefaultConfig()

	gen, err := generate.NewGenerator(ctx, cfg.Provider, cfg.Model)
	if err != nil {
		logger.Error("Failed to create model client", "error", err)
		os.Exit(1)
	}

	srv := mcpserver.New(cfg, gen, logger)

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
		os.Exit(0)
	}()

	if err := srv.Start(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
