// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package seo builds the multilingual sitemap. Every localized URL lists
// its siblings in the other locales as hreflang alternates.
package seo

import (
	"encoding/xml"
	"strings"
	"time"

	"iptvsite/internal/locale"
	"iptvsite/internal/models"
	"iptvsite/internal/slug"
)

const (
	// XMLNamespace is the sitemap XML namespace.
	XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

	// XHTMLNamespace declares the xhtml:link alternate elements.
	XHTMLNamespace = "http://www.w3.org/1999/xhtml"

	// XDefault is the hreflang value pointing search engines at the
	// fallback locale.
	XDefault = "x-default"
)

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
	ChangeFreqYearly  ChangeFreq = "yearly"
)

// Alternate is one xhtml:link rel="alternate" element.
type Alternate struct {
	XMLName  xml.Name `xml:"xhtml:link"`
	Rel      string   `xml:"rel,attr"`
	Hreflang string   `xml:"hreflang,attr"`
	Href     string   `xml:"href,attr"`
}

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string      `xml:"loc"`
	LastMod    string      `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq  `xml:"changefreq,omitempty"`
	Priority   string      `xml:"priority,omitempty"`
	Alternates []Alternate `xml:"xhtml:link,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName    xml.Name     `xml:"urlset"`
	XMLNS      string       `xml:"xmlns,attr"`
	XMLNSXHTML string       `xml:"xmlns:xhtml,attr"`
	URLs       []SitemapURL `xml:"url"`
}

// Entry is one page available under several localized paths.
type Entry struct {
	Paths      map[locale.Locale]string // site-relative, e.g. /es/guia-instalacion-iptv/
	UpdatedAt  time.Time
	ChangeFreq ChangeFreq
	Priority   string
}

// SitemapBuilder accumulates entries and renders the sitemap XML.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a builder for the site at siteURL.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{siteURL: strings.TrimRight(siteURL, "/")}
}

// Add emits one <url> per locale of e, each carrying the full set of
// alternates plus x-default.
func (b *SitemapBuilder) Add(e Entry) {
	var alts []Alternate
	for _, l := range locale.All() {
		if p, ok := e.Paths[l]; ok {
			alts = append(alts, Alternate{Rel: "alternate", Hreflang: string(l), Href: b.siteURL + p})
		}
	}
	if p, ok := e.Paths[locale.Default]; ok {
		alts = append(alts, Alternate{Rel: "alternate", Hreflang: XDefault, Href: b.siteURL + p})
	}

	for _, l := range locale.All() {
		p, ok := e.Paths[l]
		if !ok {
			continue
		}
		u := SitemapURL{
			Loc:        b.siteURL + p,
			ChangeFreq: e.ChangeFreq,
			Priority:   e.Priority,
		}
		if len(alts) > 1 {
			u.Alternates = alts
		}
		if !e.UpdatedAt.IsZero() {
			u.LastMod = e.UpdatedAt.UTC().Format(time.RFC3339)
		}
		b.urls = append(b.urls, u)
	}
}

// Len returns the number of <url> elements added so far.
func (b *SitemapBuilder) Len() int {
	return len(b.urls)
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS:      XMLNamespace,
		XMLNSXHTML: XHTMLNamespace,
		URLs:       b.urls,
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(output, xmlBytes...), nil
}

// GenerateSitemap builds the sitemap for the home page, every page of
// every slug family, any extra page ids, the blog index and each
// published post in the locales it is available in.
func GenerateSitemap(siteURL string, r *slug.Resolver, extraPages []string, posts []models.BlogPost) ([]byte, error) {
	b := NewSitemapBuilder(siteURL)

	home := make(map[locale.Locale]string)
	blog := make(map[locale.Locale]string)
	for _, l := range locale.All() {
		home[l] = "/" + string(l) + "/"
		blog[l] = "/" + string(l) + "/blog/"
	}
	b.Add(Entry{Paths: home, ChangeFreq: ChangeFreqDaily, Priority: "1.0"})

	seen := map[string]bool{slug.HomeID: true}
	for _, fam := range r.Families() {
		priority := "0.8"
		freq := ChangeFreqMonthly
		if fam == slug.FamilyLegal {
			priority = "0.3"
			freq = ChangeFreqYearly
		}
		for _, id := range r.CanonicalIDs(fam) {
			seen[id] = true
			b.Add(Entry{Paths: r.Alternates(id), ChangeFreq: freq, Priority: priority})
		}
	}
	for _, id := range extraPages {
		if seen[id] {
			continue
		}
		seen[id] = true
		b.Add(Entry{Paths: r.Alternates(id), ChangeFreq: ChangeFreqMonthly, Priority: "0.5"})
	}

	b.Add(Entry{Paths: blog, ChangeFreq: ChangeFreqWeekly, Priority: "0.7"})

	for i := range posts {
		p := &posts[i]
		paths := make(map[locale.Locale]string)
		for _, l := range p.AvailableLocales() {
			if s := p.SlugFor(l); s != "" {
				paths[l] = "/" + string(l) + "/blog/" + s + "/"
			}
		}
		if len(paths) == 0 {
			continue
		}
		b.Add(Entry{Paths: paths, UpdatedAt: p.UpdatedAt, ChangeFreq: ChangeFreqMonthly, Priority: "0.6"})
	}

	return b.Build()
}
