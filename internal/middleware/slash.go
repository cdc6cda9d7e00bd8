// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"path"
	"strings"
)

// TrailingSlash permanently redirects public GET and HEAD requests to the
// same path with a trailing slash. Paths under one of the skip prefixes and
// paths whose last segment looks like a file (sitemap.xml) pass through.
func TrailingSlash(skip ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := r.URL.Path
			if (r.Method != http.MethodGet && r.Method != http.MethodHead) ||
				p == "/" || strings.HasSuffix(p, "/") || path.Ext(p) != "" || hasAnyPrefix(p, skip) {
				next.ServeHTTP(w, r)
				return
			}

			target := p + "/"
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusMovedPermanently)
		})
	}
}

func hasAnyPrefix(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}
