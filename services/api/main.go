package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/config"
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/engine"
	httpserver "github.com/02loveslollipop/borsuk-ulam-viewer/services/api/http"
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/logger"
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/viewer"
)

func main() {
	cfg, err := config.Load()
	log := logger.Setup() // after Load so .env can set LOG_LEVEL
	if err != nil {
		log.Error("config_error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Error("server_error", "error", err)
		os.Exit(1)
	}
}

// run serves until ctx is done. Every resource it opens is released before
// it returns.
func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	var eng engine.Engine
	if cfg.EngineDatabaseURL != "" {
		store, err := engine.NewStore(ctx, cfg.EngineDatabaseURL)
		if err != nil {
			return fmt.Errorf("engine db connect: %w", err)
		}
		defer store.Close()
		eng = store
		log.Info("engine_selected", "source", "postgres")
	} else {
		eng = engine.NewHTTPEngine(&http.Client{Timeout: cfg.EngineTimeout}, cfg.EngineURL)
		log.Info("engine_selected", "source", "http", "url", cfg.EngineURL)
	}

	session := viewer.New(eng,
		viewer.WithLogger(log),
		viewer.WithTimeout(cfg.EngineTimeout),
		viewer.WithRepeatTiming(cfg.RepeatDelay, cfg.RepeatInterval),
	)

	srv := httpserver.New(cfg, session, log)
	log.Info("server_listening", "addr", cfg.ListenAddr())
	return srv.Run(ctx)
}
