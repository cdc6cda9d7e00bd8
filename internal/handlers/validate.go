// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"iptvsite/internal/locale"
)

// Validation limits for request fields.
const (
	maxUsernameLen = 100
	maxPasswordLen = 72 // bcrypt ignores anything longer
	totpCodeLen    = 6
)

// allowedImageTypes are the sniffed MIME types accepted for blog images.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// validateCredentials checks login inputs and returns the first error found.
func validateCredentials(username, password, code string) string {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "Username and password are required."
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return "Username is too long (max 100 characters)."
	}
	if len(password) > maxPasswordLen {
		return "Password is too long (max 72 bytes)."
	}
	if code != "" {
		return validateCode(code)
	}
	return ""
}

// validateCode checks a TOTP code's shape before it is verified.
func validateCode(code string) string {
	if len(code) != totpCodeLen {
		return "Code must be 6 digits."
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return "Code must be 6 digits."
		}
	}
	return ""
}

// validateImage checks an upload's sniffed type and size.
func validateImage(head []byte, size, maxBytes int64) string {
	if size <= 0 {
		return "File is empty."
	}
	if size > maxBytes {
		return fmt.Sprintf("File too large. Maximum size is %d MB.", maxBytes>>20)
	}
	if ct := http.DetectContentType(head); !allowedImageTypes[ct] {
		return fmt.Sprintf("File type %q is not allowed.", ct)
	}
	return ""
}

// localeParam parses a {locale} URL parameter.
func localeParam(raw string) (locale.Locale, bool) {
	l, ok := locale.Parse(raw)
	if !ok || string(l) != raw {
		return "", false
	}
	return l, true
}
