// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the IPTV site server. It loads
// configuration, opens the content store, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iptvsite/internal/cache"
	"iptvsite/internal/config"
	"iptvsite/internal/content"
	"iptvsite/internal/handlers"
	"iptvsite/internal/metrics"
	"iptvsite/internal/middleware"
	"iptvsite/internal/router"
	"iptvsite/internal/session"
	"iptvsite/internal/slug"
	"iptvsite/internal/storage"
	"iptvsite/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// JSON logs in production, text in development.
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsDev() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, opts)))
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreBackend,
	)

	resolver, err := loadResolver(cfg.RoutesFile)
	if err != nil {
		slog.Error("failed to load slug routes", "error", err)
		os.Exit(1)
	}

	backend, err := store.Open(cfg)
	if err != nil {
		slog.Error("failed to open content store", "error", err)
		os.Exit(1)
	}
	rec := metrics.NewRecorder()
	var contentStore store.Store = rec.InstrumentStore(backend, cfg.StoreBackend)

	// Valkey backs the document cache and shared sessions when configured.
	secureCookies := !cfg.IsDev()
	sessionBackend := session.Backend(session.NewMemoryBackend())
	var purger handlers.CachePurger
	if cfg.UseValkey() {
		client, err := cache.ConnectValkey(context.Background(), cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer client.Close()

		docs := cache.NewDocuments(client, cfg.CacheTTL)
		contentStore = store.NewCachedStore(contentStore, docs)
		sessionBackend = session.NewValkeyBackend(client)
		purger = docs
	} else {
		slog.Warn("valkey not configured; document cache disabled and sessions kept in memory")
	}
	sessionStore := session.NewStore(sessionBackend, secureCookies)

	// Public reads may be served from cache; admin reads always see the
	// current token.
	adminStore := store.Fresh(contentStore)
	public := handlers.NewPublic(resolver,
		content.NewBlog(contentStore, cfg.BlogPath),
		content.NewMetadata(contentStore, cfg.MetadataDir),
		content.NewTranslations(contentStore, cfg.TranslationsDir),
		cfg.SiteURL, cfg.ExtraPages,
	)
	admin := handlers.NewAdmin(
		content.NewTranslations(adminStore, cfg.TranslationsDir),
		content.NewMetadata(adminStore, cfg.MetadataDir),
		content.NewBlog(adminStore, cfg.BlogPath),
		purger,
	)
	auth := handlers.NewAuth(sessionStore, handlers.AuthConfig{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
		TOTPSecret:   cfg.AdminTOTPSecret,
	})

	// Object storage is optional; uploads answer 503 without it.
	var uploader handlers.Uploader
	storageClient, err := storage.New(storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
		Prefix:    cfg.S3Prefix,
	})
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		uploader = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured; media uploads disabled")
	}
	media := handlers.NewMedia(uploader, cfg.UploadMaxBytes, cfg.ImageMaxWidth)

	loginLimiter := middleware.NewRateLimiter(cfg.LoginBurst, cfg.LoginWindow)
	defer loginLimiter.Stop()

	r := router.New(router.Handlers{
		Public: public,
		Admin:  admin,
		Auth:   auth,
		Media:  media,
	}, router.Options{
		Sessions:      sessionStore,
		Metrics:       rec,
		LoginLimiter:  loginLimiter,
		SecureCookies: secureCookies,
	})

	// WriteTimeout leaves room for a GitHub write, which is a read plus a
	// commit round trip.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func loadResolver(path string) (*slug.Resolver, error) {
	if path == "" {
		return slug.Default()
	}
	slog.Info("loading slug routes", "file", path)
	return slug.LoadFile(path)
}
