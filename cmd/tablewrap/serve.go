package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/tablewrap/internal/config"
	"github.com/JonMunkholm/tablewrap/internal/report"
	"github.com/JonMunkholm/tablewrap/internal/store"
	"github.com/JonMunkholm/tablewrap/internal/web"
)

// serve runs the HTTP API until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config) error {
	var saver web.Saver
	if cfg.Database.Enabled() {
		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()
		saver = store.New(pool)
	} else {
		slog.Info("DATABASE_URL not set, saving records is disabled")
	}

	slog.Info("shapes registered",
		"count", report.Count(),
		"groups", len(report.Groups()),
	)

	server, err := web.NewServer(cfg, saver)
	if err != nil {
		return err
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("server stopped")
	return nil
}
