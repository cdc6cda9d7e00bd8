// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains. It
// organizes routes into the public renderer API and the admin API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"iptvsite/internal/handlers"
	"iptvsite/internal/metrics"
	"iptvsite/internal/middleware"
	"iptvsite/internal/session"
)

// Handlers are the handler groups mounted by New.
type Handlers struct {
	Public *handlers.Public
	Admin  *handlers.Admin
	Auth   *handlers.Auth
	Media  *handlers.Media
}

// Options carries the cross-cutting dependencies. Metrics and
// LoginLimiter may be nil.
type Options struct {
	Sessions      *session.Store
	Metrics       *metrics.Recorder
	LoginLimiter  *middleware.RateLimiter
	SecureCookies bool
}

// New creates the chi router with all middleware and route groups wired up.
func New(h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(opts.SecureCookies))
	r.Use(middleware.TrailingSlash("/admin", "/api", "/health", "/metrics"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error":"not found"}`)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, `{"error":"method not allowed"}`)
	})

	r.Get("/health", healthHandler)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	// Admin API: session, CSRF and no caching.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.LoadSession(opts.Sessions))
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		r.Get("/session", h.Auth.Session)
		r.With(limit(opts.LoginLimiter)...).Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)

		// Second factor: requires a password-checked session only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Get("/2fa/qr", h.Auth.QRCode)
			r.With(limit(opts.LoginLimiter)...).Post("/2fa/verify", h.Auth.Verify2FA)
		})

		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/translations/{locale}", h.Admin.GetTranslations)
			r.Put("/translations/{locale}", h.Admin.PutTranslations)
			r.Get("/metadata/{locale}", h.Admin.GetMetadata)
			r.Put("/metadata/{locale}", h.Admin.PutMetadata)

			r.Route("/blog", func(r chi.Router) {
				r.Get("/", h.Admin.ListPosts)
				r.Post("/", h.Admin.CreatePost)
				r.Get("/{id}", h.Admin.GetPost)
				r.Put("/{id}", h.Admin.UpdatePost)
				r.Delete("/{id}", h.Admin.DeletePost)
			})

			r.Post("/media", h.Media.Upload)
			r.Delete("/media", h.Media.Delete)
			r.Post("/cache/purge", h.Admin.PurgeCache)
		})
	})

	// Public renderer API.
	r.Get("/sitemap.xml", h.Public.Sitemap)
	r.Get("/api/i18n/{locale}", h.Public.Translations)
	r.Get("/", h.Public.Root)
	r.Get("/{locale}/", h.Public.Home)
	r.Get("/{locale}/blog/", h.Public.BlogIndex)
	r.Get("/{locale}/blog/{slug}/", h.Public.BlogPost)
	r.Get("/{locale}/{slug}/", h.Public.Page)

	return r
}

func limit(rl *middleware.RateLimiter) []func(http.Handler) http.Handler {
	if rl == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{rl.Middleware}
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, `{"status":"ok"}`)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
