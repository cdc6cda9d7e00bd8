// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"iptvsite/internal/middleware"
	"iptvsite/internal/session"
)

const testSecret = "JBSWY3DPEHPK3PXP"

func newTestAuth(t *testing.T, secret string) (*Auth, *session.Store) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	sessions := session.NewStore(session.NewMemoryBackend(), false)
	a := NewAuth(sessions, AuthConfig{Username: "admin", PasswordHash: string(hash), TOTPSecret: secret})
	a.now = func() time.Time { return testNow }
	return a, sessions
}

func currentCode(t *testing.T) string {
	t.Helper()
	code, err := totp.GenerateCode(testSecret, testNow)
	require.NoError(t, err)
	return code
}

// withSession runs req through LoadSession so the handler sees the
// session behind the cookies.
func withSession(sessions *session.Store, h http.HandlerFunc) http.Handler {
	return middleware.LoadSession(sessions)(h)
}

func cookiesOf(rr *httptest.ResponseRecorder) []*http.Cookie {
	return rr.Result().Cookies()
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a, _ := newTestAuth(t, testSecret)
	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"wrong password", map[string]string{"username": "admin", "password": "nope"}, http.StatusUnauthorized},
		{"wrong user", map[string]string{"username": "root", "password": "correct horse"}, http.StatusUnauthorized},
		{"missing password", map[string]string{"username": "admin"}, http.StatusBadRequest},
		{"malformed code", map[string]string{"username": "admin", "password": "correct horse", "code": "12"}, http.StatusBadRequest},
		{"wrong code", map[string]string{"username": "admin", "password": "correct horse", "code": "000000"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			a.Login(rr, jsonRequest(t, http.MethodPost, "/admin/login", tt.body))
			assert.Equal(t, tt.status, rr.Code)
			assert.Empty(t, cookiesOf(rr))
		})
	}
}

func TestLoginTwoStep(t *testing.T) {
	a, sessions := newTestAuth(t, testSecret)

	rr := httptest.NewRecorder()
	a.Login(rr, jsonRequest(t, http.MethodPost, "/admin/login", map[string]string{"username": "admin", "password": "correct horse"}))
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[sessionResponse](t, rr)
	assert.False(t, resp.Authenticated)
	assert.True(t, resp.TwoFactorRequired)
	cookies := cookiesOf(rr)
	require.NotEmpty(t, cookies)

	verify := func(code string) *httptest.ResponseRecorder {
		req := jsonRequest(t, http.MethodPost, "/admin/2fa/verify", map[string]string{"code": code})
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rr := httptest.NewRecorder()
		withSession(sessions, a.Verify2FA).ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusUnauthorized, verify("000000").Code)

	rr = verify(currentCode(t))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[sessionResponse](t, rr).Authenticated)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	data, err := sessions.Get(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, data.Authenticated())
}

func TestLoginWithCodeInOneStep(t *testing.T) {
	a, _ := newTestAuth(t, testSecret)
	rr := httptest.NewRecorder()
	a.Login(rr, jsonRequest(t, http.MethodPost, "/admin/login", map[string]string{
		"username": "admin", "password": "correct horse", "code": currentCode(t),
	}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[sessionResponse](t, rr).Authenticated)
}

func TestLoginWithoutSecondFactorConfigured(t *testing.T) {
	a, _ := newTestAuth(t, "")
	rr := httptest.NewRecorder()
	a.Login(rr, jsonRequest(t, http.MethodPost, "/admin/login", map[string]string{"username": "admin", "password": "correct horse"}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[sessionResponse](t, rr).Authenticated)

	rr = httptest.NewRecorder()
	a.QRCode(rr, httptest.NewRequest(http.MethodGet, "/admin/2fa/qr", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLoginNotConfigured(t *testing.T) {
	a := NewAuth(session.NewStore(session.NewMemoryBackend(), false), AuthConfig{Username: "admin"})
	rr := httptest.NewRecorder()
	a.Login(rr, jsonRequest(t, http.MethodPost, "/admin/login", map[string]string{"username": "admin", "password": "x"}))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestQRCode(t *testing.T) {
	a, _ := newTestAuth(t, testSecret)
	rr := httptest.NewRecorder()
	a.QRCode(rr, httptest.NewRequest(http.MethodGet, "/admin/2fa/qr", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())

	key, err := a.totpKey()
	require.NoError(t, err)
	assert.Equal(t, testSecret, key.Secret())
	assert.Equal(t, totpIssuer, key.Issuer())
	assert.Equal(t, "admin", key.AccountName())
}

func TestSessionAndLogout(t *testing.T) {
	a, sessions := newTestAuth(t, testSecret)

	rr := httptest.NewRecorder()
	withSession(sessions, a.Session).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/session", nil))
	resp := decode[sessionResponse](t, rr)
	assert.False(t, resp.Authenticated)
	assert.Empty(t, resp.Username)

	rr = httptest.NewRecorder()
	a.Login(rr, jsonRequest(t, http.MethodPost, "/admin/login", map[string]string{
		"username": "admin", "password": "correct horse", "code": currentCode(t),
	}))
	cookies := cookiesOf(rr)

	req := httptest.NewRequest(http.MethodGet, "/admin/session", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr = httptest.NewRecorder()
	withSession(sessions, a.Session).ServeHTTP(rr, req)
	assert.Equal(t, "admin", decode[sessionResponse](t, rr).Username)

	rr = httptest.NewRecorder()
	a.Logout(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	data, err := sessions.Get(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, data)
}
