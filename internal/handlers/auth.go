// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"

	"iptvsite/internal/middleware"
	"iptvsite/internal/session"
)

// totpIssuer labels the account in authenticator apps.
const totpIssuer = "IPTV Site Admin"

// AuthConfig holds the single admin account.
type AuthConfig struct {
	Username     string
	PasswordHash string // bcrypt
	TOTPSecret   string // base32; empty disables the second factor
}

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions *session.Store
	cfg      AuthConfig
	now      func() time.Time
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, cfg AuthConfig) *Auth {
	if cfg.TOTPSecret == "" {
		slog.Warn("ADMIN_TOTP_SECRET is not set; admin sessions skip the second factor")
	}
	return &Auth{sessions: sessions, cfg: cfg, now: time.Now}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

type codeRequest struct {
	Code string `json:"code"`
}

// sessionResponse reports where the caller stands in the login flow.
type sessionResponse struct {
	Username          string `json:"username"`
	Authenticated     bool   `json:"authenticated"`
	TwoFactorRequired bool   `json:"twoFactorRequired"`
}

func newSessionResponse(d *session.Data) sessionResponse {
	return sessionResponse{
		Username:          d.Username,
		Authenticated:     d.Authenticated(),
		TwoFactorRequired: !d.TwoFADone,
	}
}

// Login checks the password and, when supplied, the TOTP code. A session
// that has not passed the second factor yet can only call Verify2FA and
// QRCode.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	if a.cfg.PasswordHash == "" {
		writeError(w, http.StatusServiceUnavailable, "admin login is not configured")
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateCredentials(req.Username, req.Password, req.Code); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(a.cfg.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(a.cfg.PasswordHash), []byte(req.Password))
	if !userOK || passErr != nil {
		slog.Warn("admin login failed", "remote", middleware.ClientIP(r))
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	data := &session.Data{Username: a.cfg.Username, TwoFADone: a.cfg.TOTPSecret == ""}
	if req.Code != "" && !data.TwoFADone {
		if !a.validCode(req.Code) {
			writeError(w, http.StatusUnauthorized, "invalid code")
			return
		}
		data.TwoFADone = true
	}

	if _, err := a.sessions.Create(r.Context(), w, data); err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	slog.Info("admin login", "user", data.Username, "two_factor_done", data.TwoFADone)
	writeJSON(w, http.StatusOK, newSessionResponse(data))
}

// Verify2FA completes a pending session with a TOTP code.
func (a *Auth) Verify2FA(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	var req codeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateCode(req.Code); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !a.validCode(req.Code) {
		writeError(w, http.StatusUnauthorized, "invalid code")
		return
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

// QRCode renders the TOTP enrolment URL of the configured secret as a PNG.
func (a *Auth) QRCode(w http.ResponseWriter, r *http.Request) {
	if a.cfg.TOTPSecret == "" {
		writeError(w, http.StatusNotFound, "two-factor authentication is not configured")
		return
	}
	key, err := a.totpKey()
	if err != nil {
		slog.Error("totp key failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	png, err := qrcode.Encode(key.String(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// Session reports the caller's login state. It also hands a fresh client
// its CSRF cookie before the first POST.
func (a *Auth) Session(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusOK, sessionResponse{TwoFactorRequired: a.cfg.TOTPSecret != ""})
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *Auth) validCode(code string) bool {
	ok, err := totp.ValidateCustom(code, a.cfg.TOTPSecret, a.now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

func (a *Auth) totpKey() (*otp.Key, error) {
	q := url.Values{}
	q.Set("secret", a.cfg.TOTPSecret)
	q.Set("issuer", totpIssuer)
	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + totpIssuer + ":" + a.cfg.Username,
		RawQuery: q.Encode(),
	}
	return otp.NewKeyFromURL(u.String())
}
