// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package seo

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iptvsite/internal/locale"
	"iptvsite/internal/models"
	"iptvsite/internal/slug"
)

func TestSitemapBuilderAdd(t *testing.T) {
	b := NewSitemapBuilder("https://example.com/")
	b.Add(Entry{
		Paths: map[locale.Locale]string{
			locale.EN: "/en/refund-policy/",
			locale.FR: "/fr/politique-de-remboursement/",
		},
		UpdatedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		Priority:  "0.3",
	})

	require.Equal(t, 2, b.Len())
	en := b.urls[0]
	assert.Equal(t, "https://example.com/en/refund-policy/", en.Loc)
	assert.Equal(t, "2026-01-15T10:00:00Z", en.LastMod)
	require.Len(t, en.Alternates, 3)
	assert.Equal(t, "en", en.Alternates[0].Hreflang)
	assert.Equal(t, "fr", en.Alternates[1].Hreflang)
	assert.Equal(t, XDefault, en.Alternates[2].Hreflang)
	assert.Equal(t, "https://example.com/en/refund-policy/", en.Alternates[2].Href)
	assert.Equal(t, en.Alternates, b.urls[1].Alternates)
}

func TestSitemapBuilderSingleLocaleHasNoAlternates(t *testing.T) {
	b := NewSitemapBuilder("https://example.com")
	b.Add(Entry{Paths: map[locale.Locale]string{locale.ES: "/es/blog/solo/"}})
	require.Equal(t, 1, b.Len())
	assert.Empty(t, b.urls[0].Alternates)
}

func TestGenerateSitemap(t *testing.T) {
	r, err := slug.Default()
	require.NoError(t, err)

	posts := []models.BlogPost{{
		ID:            "p1",
		Slug:          models.LocalizedSlug{PerLocale: map[locale.Locale]string{locale.EN: "iptv-guide", locale.ES: "guia-iptv"}},
		Title:         models.LocalizedText{locale.EN: "Guide", locale.ES: "Guía"},
		PrimaryLocale: locale.EN,
		UpdatedAt:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}}

	out, err := GenerateSitemap("https://iptv.example", r, []string{"about", "refund-policy"}, posts)
	require.NoError(t, err)
	s := string(out)

	assert.True(t, strings.HasPrefix(s, xml.Header))
	assert.Contains(t, s, `xmlns:xhtml="http://www.w3.org/1999/xhtml"`)
	assert.Contains(t, s, "<loc>https://iptv.example/es/guia-instalacion-iptv/</loc>")
	assert.Contains(t, s, `hreflang="fr" href="https://iptv.example/fr/guide-installation-iptv/"`)
	assert.Contains(t, s, "<loc>https://iptv.example/fr/about/</loc>")
	assert.Contains(t, s, "<loc>https://iptv.example/es/blog/guia-iptv/</loc>")
	assert.NotContains(t, s, "/fr/blog/iptv-guide/")
	assert.Equal(t, 1, strings.Count(s, "<loc>https://iptv.example/en/refund-policy/</loc>"))

	var parsed struct {
		URLs []struct {
			Loc string `xml:"loc"`
		} `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(out, &parsed))
	// home + 9 family pages + about + blog index, three locales each, plus two post URLs.
	assert.Len(t, parsed.URLs, (1+9+1+1)*3+2)
}
