// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package middleware provides the HTTP middleware shared by the public
// and admin routes.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// StatusWriter wraps http.ResponseWriter to capture the status code and
// the number of body bytes written.
type StatusWriter struct {
	http.ResponseWriter
	Status  int
	Bytes   int
	written bool
}

// NewStatusWriter wraps w with a default status of 200.
func NewStatusWriter(w http.ResponseWriter) *StatusWriter {
	return &StatusWriter{ResponseWriter: w, Status: http.StatusOK}
}

// WriteHeader captures the status code before writing it.
func (sw *StatusWriter) WriteHeader(code int) {
	if !sw.written {
		sw.Status = code
		sw.written = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *StatusWriter) Write(b []byte) (int, error) {
	if !sw.written {
		sw.written = true
	}
	n, err := sw.ResponseWriter.Write(b)
	sw.Bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *StatusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// Logger records method, path, status, size and duration for every
// request. Server errors are logged at error level.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := NewStatusWriter(w)
		next.ServeHTTP(sw, r)

		level := slog.LevelInfo
		if sw.Status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.Status,
			"bytes", sw.Bytes,
			"duration", time.Since(start).String(),
			"remote", r.RemoteAddr,
		)
	})
}
