// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// studio server.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"qrforge/internal/handlers"
	"qrforge/internal/middleware"
	"qrforge/internal/session"
	"qrforge/web"
)

// formOverhead is the body allowance for the non-file form fields sent
// alongside a background upload.
const formOverhead = 1 << 20

// Options carries the router's dependencies.
type Options struct {
	Sessions      *session.Manager
	Studio        *handlers.Studio
	RateLimiter   *middleware.RateLimiter
	MaxUpload     int64 // background upload limit in bytes
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and routes wired up.
func New(opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check: no session, no CSRF.
	r.Get("/health", healthHandler)

	// Static assets embedded in the binary.
	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("router: embedded static dir missing: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	csrf := middleware.NewCSRF(opts.SecureCookies)

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(opts.Sessions))

		// Rendering is CPU-bound: rate limit it, and cap the body before
		// CSRF validation parses the multipart form.
		r.With(
			opts.RateLimiter.Middleware,
			middleware.MaxBody(opts.MaxUpload+formOverhead),
			csrf,
		).Post("/generate", opts.Studio.Generate)

		r.Group(func(r chi.Router) {
			r.Use(csrf)

			r.Get("/", opts.Studio.Index)
			r.Get("/history/{id}.png", opts.Studio.HistoryImage)
			r.Get("/download/{id}", opts.Studio.Download)
			r.Post("/history/clear", opts.Studio.ClearHistory)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
