// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"iptvsite/internal/locale"
)

// LocalizedText holds one string per locale. Not every locale has to be
// present.
type LocalizedText map[locale.Locale]string

// Get returns the text for loc, or for fallback when loc has none.
func (t LocalizedText) Get(loc, fallback locale.Locale) string {
	if s := strings.TrimSpace(t[loc]); s != "" {
		return t[loc]
	}
	return t[fallback]
}

// Has reports whether loc has non-blank text.
func (t LocalizedText) Has(loc locale.Locale) bool {
	return strings.TrimSpace(t[loc]) != ""
}

// LocalizedList holds an ordered list of strings per locale.
type LocalizedList map[locale.Locale][]string

// Get returns the items for loc, or for fallback when loc has none.
func (l LocalizedList) Get(loc, fallback locale.Locale) []string {
	if items := l[loc]; len(items) > 0 {
		return items
	}
	return l[fallback]
}

// LocalizedSlug is either one slug shared by every locale or a slug per
// locale. In JSON it is a plain string or an object keyed by locale.
type LocalizedSlug struct {
	Shared    string
	PerLocale map[locale.Locale]string
}

// SharedSlug returns a LocalizedSlug using s for every locale.
func SharedSlug(s string) LocalizedSlug {
	return LocalizedSlug{Shared: s}
}

// For returns the slug used in loc. Locales missing from a per-locale map
// fall back to fallback's slug.
func (s LocalizedSlug) For(loc, fallback locale.Locale) string {
	if s.PerLocale == nil {
		return s.Shared
	}
	if v := s.PerLocale[loc]; v != "" {
		return v
	}
	return s.PerLocale[fallback]
}

// Matches reports whether slug is this post's slug in loc.
func (s LocalizedSlug) Matches(slug string, loc, fallback locale.Locale) bool {
	return slug != "" && s.For(loc, fallback) == slug
}

// IsZero reports whether no slug is set at all.
func (s LocalizedSlug) IsZero() bool {
	if s.PerLocale == nil {
		return strings.TrimSpace(s.Shared) == ""
	}
	for _, v := range s.PerLocale {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (s LocalizedSlug) MarshalJSON() ([]byte, error) {
	if s.PerLocale == nil {
		return json.Marshal(s.Shared)
	}
	return json.Marshal(s.PerLocale)
}

func (s *LocalizedSlug) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = LocalizedSlug{}
		return nil
	case data[0] == '"':
		var shared string
		if err := json.Unmarshal(data, &shared); err != nil {
			return err
		}
		*s = LocalizedSlug{Shared: shared}
		return nil
	case data[0] == '{':
		var per map[locale.Locale]string
		if err := json.Unmarshal(data, &per); err != nil {
			return err
		}
		*s = LocalizedSlug{PerLocale: per}
		return nil
	default:
		return fmt.Errorf("slug must be a string or an object keyed by locale")
	}
}
