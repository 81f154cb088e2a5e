// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qrforge/internal/cache"
	"qrforge/internal/config"
	"qrforge/internal/handlers"
	"qrforge/internal/middleware"
	"qrforge/internal/payload"
	"qrforge/internal/qr"
	"qrforge/internal/render"
	"qrforge/internal/router"
	"qrforge/internal/session"
	"qrforge/internal/studio"
)

// runServe wires all components together and serves until SIGINT or SIGTERM.
func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	slog.Info("starting qrforge",
		"version", version,
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"history", cfg.HistoryBackend,
		"history_capacity", cfg.HistoryCapacity,
	)

	studioOpts := []studio.Option{
		studio.WithFormatter(payload.Formatter{EscapeURLText: cfg.EscapeURLText}),
	}

	// History lives in process memory unless Valkey is configured, in which
	// case it survives restarts and is shared between replicas.
	var history session.Store
	if cfg.UsesValkey() {
		client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return fmt.Errorf("connect to valkey: %w", err)
		}
		defer client.Close()

		history = session.NewValkeyStore(client, cfg.HistoryCapacity, cfg.SessionTTL.Duration)
		if cfg.QRCacheEnabled() {
			qrCache := cache.NewQRCache(client, cfg.QRCacheTTL.Duration)
			// Bitmaps drawn by a previous build may differ from this one's.
			qrCache.InvalidateAll(context.Background())
			studioOpts = append(studioOpts, studio.WithCache(qrCache))
		}
		slog.Info("valkey connected", "addr", cfg.ValkeyHost+":"+cfg.ValkeyPort, "qr_cache", cfg.QRCacheEnabled())
	} else {
		mem := session.NewMemoryStore(cfg.HistoryCapacity, cfg.SessionTTL.Duration)
		defer mem.Stop()
		history = mem
	}

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		return fmt.Errorf("init templates: %w", err)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow.Duration)
	defer limiter.Stop()

	// Session cookies are Secure outside development.
	secureCookies := !cfg.IsDev()
	svc := studio.New(qr.NewEncoder(), studioOpts...)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.New(router.Options{
			Sessions:      session.NewManager(cfg.SessionTTL.Duration, secureCookies),
			Studio:        handlers.NewStudio(renderer, svc, history, cfg.MaxUploadBytes()),
			RateLimiter:   limiter,
			MaxUpload:     cfg.MaxUploadBytes(),
			SecureCookies: secureCookies,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second, // background uploads
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
