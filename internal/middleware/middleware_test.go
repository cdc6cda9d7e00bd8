// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iptvsite/internal/session"
)

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

func TestLoadSession(t *testing.T) {
	store := session.NewStore(session.NewMemoryBackend(), false)
	w := httptest.NewRecorder()
	_, err := store.Create(context.Background(), w, &session.Data{Username: "admin", TwoFADone: true})
	require.NoError(t, err)

	var got *session.Data
	h := LoadSession(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/api/blog", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	assert.Equal(t, "admin", got.Username)

	got = nil
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, got)
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		sess       *session.Data
		wantStatus int
		wantCalled bool
	}{
		{"no session", nil, http.StatusUnauthorized, false},
		{"password only", &session.Data{Username: "admin"}, http.StatusUnauthorized, false},
		{"fully authenticated", &session.Data{Username: "admin", TwoFADone: true}, http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := okHandler()
			req := httptest.NewRequest(http.MethodGet, "/admin/api/blog", nil)
			if tt.sess != nil {
				req = req.WithContext(ctxWithSession(req.Context(), tt.sess))
			}
			rr := httptest.NewRecorder()
			RequireAdmin(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCalled, *called)
			if !tt.wantCalled {
				assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
			}
		})
	}
}

func TestRequireSessionAllowsPendingSecondFactor(t *testing.T) {
	next, called := okHandler()
	req := httptest.NewRequest(http.MethodGet, "/admin/2fa/qr", nil)
	req = req.WithContext(ctxWithSession(req.Context(), &session.Data{Username: "admin"}))
	rr := httptest.NewRecorder()
	RequireSession(next).ServeHTTP(rr, req)
	assert.True(t, *called)

	next, called = okHandler()
	rr = httptest.NewRecorder()
	RequireSession(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/2fa/qr", nil))
	assert.False(t, *called)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoggerCapturesStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"implicit ok", 0, "hello"},
		{"not found", http.StatusNotFound, ""},
		{"server error", http.StatusInternalServerError, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sw *StatusWriter
			h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				sw, _ = w.(*StatusWriter)
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				_, _ = w.Write([]byte(tt.body))
			}))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/en/", nil))

			require.NotNil(t, sw)
			want := tt.status
			if want == 0 {
				want = http.StatusOK
			}
			assert.Equal(t, want, sw.Status)
			assert.Equal(t, len(tt.body), sw.Bytes)
			assert.Equal(t, want, rr.Code)
		})
	}
}

func TestStatusWriterIgnoresSecondWriteHeader(t *testing.T) {
	sw := NewStatusWriter(httptest.NewRecorder())
	sw.WriteHeader(http.StatusConflict)
	sw.WriteHeader(http.StatusOK)
	assert.Equal(t, http.StatusConflict, sw.Status)
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	}))
	rr := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/en/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String())
}

func TestRecovererRepanicsAbort(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestSecureHeaders(t *testing.T) {
	for _, hsts := range []bool{false, true} {
		next, _ := okHandler()
		rr := httptest.NewRecorder()
		SecureHeaders(hsts)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "SAMEORIGIN", rr.Header().Get("X-Frame-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", rr.Header().Get("Referrer-Policy"))
		assert.Equal(t, hsts, rr.Header().Get("Strict-Transport-Security") != "")
	}

	next, _ := okHandler()
	rr := httptest.NewRecorder()
	NoStore(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/api/blog", nil))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}

func TestCSRF(t *testing.T) {
	next, _ := okHandler()
	h := NewCSRF(true)(next)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/api/blog", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Len(t, cookie.Value, csrfTokenLength*2)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusForbidden},
		{"wrong token", strings.Repeat("0", csrfTokenLength*2), http.StatusForbidden},
		{"matching token", cookie.Value, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/admin/api/metadata/en", nil)
			req.AddCookie(cookie)
			if tt.header != "" {
				req.Header.Set(CSRFHeaderName, tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestCSRFWithoutCookieRejectsMutation(t *testing.T) {
	next, called := okHandler()
	req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	req.Header.Set(CSRFHeaderName, "guess")
	rr := httptest.NewRecorder()
	NewCSRF(false)(next).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.False(t, *called)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	next, _ := okHandler()
	h := rl.Middleware(next)
	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
		req.RemoteAddr = ip + ":1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, hit("10.0.0.1").Code)

	rr := hit("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "30", rr.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, hit("10.0.0.2").Code, "other clients are unaffected")

	now = now.Add(30 * time.Second)
	assert.Equal(t, http.StatusOK, hit("10.0.0.1").Code, "one token refilled")

	now = now.Add(2 * time.Minute)
	rl.cleanup()
	rl.mu.Lock()
	assert.Empty(t, rl.clients)
	rl.mu.Unlock()

	rl.Stop() // idempotent
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"ipv6 remote", nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"forwarded for", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.1:80", "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.1:80", "198.51.100.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}

func TestTrailingSlash(t *testing.T) {
	tests := []struct {
		method   string
		path     string
		location string
	}{
		{http.MethodGet, "/en", "/en/"},
		{http.MethodGet, "/fr/guide-installation-iptv?x=1", "/fr/guide-installation-iptv/?x=1"},
		{http.MethodHead, "/es/blog", "/es/blog/"},
		{http.MethodGet, "/", ""},
		{http.MethodGet, "/en/", ""},
		{http.MethodGet, "/sitemap.xml", ""},
		{http.MethodGet, "/health", ""},
		{http.MethodGet, "/admin/api/blog", ""},
		{http.MethodPost, "/en", ""},
	}
	h := TrailingSlash("/admin", "/health", "/metrics")
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			next, called := okHandler()
			rr := httptest.NewRecorder()
			h(next).ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			if tt.location == "" {
				assert.True(t, *called)
				return
			}
			assert.False(t, *called)
			assert.Equal(t, http.StatusMovedPermanently, rr.Code)
			assert.Equal(t, tt.location, rr.Header().Get("Location"))
		})
	}
}
