// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package locale defines the closed set of site languages and picks the
// best one for a visitor from their cookie or Accept-Language header.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported site language code.
type Locale string

const (
	EN Locale = "en"
	ES Locale = "es"
	FR Locale = "fr"

	// Default is used when nothing better can be negotiated.
	Default = EN

	// CookieName stores the visitor's explicit language choice.
	CookieName = "site_locale"
)

// supported is ordered; the first entry is the matcher's fallback.
var supported = []Locale{EN, ES, FR}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Spanish,
	language.French,
})

// All returns the supported locales in their canonical order.
func All() []Locale {
	out := make([]Locale, len(supported))
	copy(out, supported)
	return out
}

// Parse normalises s and reports whether it names a supported locale.
func Parse(s string) (Locale, bool) {
	l := Locale(strings.ToLower(strings.TrimSpace(s)))
	for _, candidate := range supported {
		if candidate == l {
			return l, true
		}
	}
	return "", false
}

// Valid reports whether l is one of the supported locales.
func (l Locale) Valid() bool {
	_, ok := Parse(string(l))
	return ok
}

func (l Locale) String() string { return string(l) }

// Negotiate picks a locale from an explicit cookie value first, then from
// the Accept-Language header. Unparseable input falls back to Default.
func Negotiate(cookieValue, acceptLanguage string) Locale {
	if l, ok := Parse(cookieValue); ok {
		return l
	}
	if strings.TrimSpace(acceptLanguage) == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return supported[idx]
}
