// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the site API. Handlers
// are grouped by concern (public, admin, auth) and receive their
// dependencies through the handler struct.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"iptvsite/internal/content"
	"iptvsite/internal/locale"
	"iptvsite/internal/markdown"
	"iptvsite/internal/models"
	"iptvsite/internal/seo"
	"iptvsite/internal/slug"
	"iptvsite/internal/store"
)

// Public groups the read-only handlers consumed by the site renderer.
type Public struct {
	resolver     *slug.Resolver
	blog         *content.Blog
	metadata     *content.Metadata
	translations *content.Translations
	siteURL      string
	extraPages   []string
	now          func() time.Time
}

// NewPublic creates the public handler group. The content services should
// sit on the cached store.
func NewPublic(resolver *slug.Resolver, blog *content.Blog, metadata *content.Metadata, translations *content.Translations, siteURL string, extraPages []string) *Public {
	return &Public{
		resolver:     resolver,
		blog:         blog,
		metadata:     metadata,
		translations: translations,
		siteURL:      siteURL,
		extraPages:   extraPages,
		now:          time.Now,
	}
}

// PageView describes a resolved page for the renderer.
type PageView struct {
	Locale     locale.Locale            `json:"locale"`
	Canonical  string                   `json:"canonical"`
	Family     slug.Family              `json:"family"`
	URL        string                   `json:"url"`
	Alternates map[locale.Locale]string `json:"alternates"`
	Meta       models.PageMetadata      `json:"meta"`
}

// PostSummary is a blog post as listed on the blog index.
type PostSummary struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Excerpt       string    `json:"excerpt"`
	PublishedAt   time.Time `json:"publishedAt"`
	FeaturedImage string    `json:"featuredImage,omitempty"`
}

// PostView is a single blog post resolved to one locale.
type PostView struct {
	PostSummary
	Locale     locale.Locale            `json:"locale"`
	Fallback   bool                     `json:"fallback"`
	UpdatedAt  time.Time                `json:"updatedAt"`
	Author     string                   `json:"author,omitempty"`
	Keywords   string                   `json:"keywords,omitempty"`
	Alternates map[locale.Locale]string `json:"alternates"`
	Blocks     []markdown.RenderedBlock `json:"blocks"`
}

// Root sends visitors to their preferred locale's home page.
func (p *Public) Root(w http.ResponseWriter, r *http.Request) {
	var cookie string
	if c, err := r.Cookie(locale.CookieName); err == nil {
		cookie = c.Value
	}
	loc := locale.Negotiate(cookie, r.Header.Get("Accept-Language"))
	w.Header().Add("Vary", "Accept-Language")
	w.Header().Add("Vary", "Cookie")
	http.Redirect(w, r, "/"+string(loc)+"/", http.StatusFound)
}

// Home returns the page view of a locale's home page.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	loc, ok := localeParam(chi.URLParam(r, "locale"))
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, p.pageView(r, slug.HomeID, loc, p.metadata.Resolve(r.Context(), loc)))
}

// Page resolves a localized slug to its page view. A family page reached
// through another locale's slug is redirected to this locale's URL. Slugs
// outside every family are generic pages and exist only when the
// locale's metadata document describes them.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	loc, ok := localeParam(chi.URLParam(r, "locale"))
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s := chi.URLParam(r, "slug")

	id, found := p.resolver.Canonicalize(s, loc)
	if found {
		if id != slug.HomeID && p.resolver.Localize(id, loc) != s {
			http.Redirect(w, r, p.resolver.BuildURL(id, loc), http.StatusMovedPermanently)
			return
		}
		writeJSON(w, http.StatusOK, p.pageView(r, id, loc, p.metadata.Resolve(r.Context(), loc)))
		return
	}

	doc := p.metadata.Resolve(r.Context(), loc)
	if _, ok := doc[s]; !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, p.pageView(r, s, loc, doc))
}

func (p *Public) pageView(r *http.Request, id string, loc locale.Locale, doc models.MetadataDocument) PageView {
	meta, ok := doc[id]
	if !ok {
		meta = models.PageMetadata{Title: content.DefaultTitle}
	}
	alternates := p.resolver.Alternates(id)
	if id == slug.HomeID {
		for _, l := range locale.All() {
			alternates[l] = "/" + string(l) + "/"
		}
	}
	return PageView{
		Locale:     loc,
		Canonical:  id,
		Family:     p.resolver.Classify(id),
		URL:        alternates[loc],
		Alternates: alternates,
		Meta:       meta,
	}
}

// Translations serves a locale's UI string bundle.
func (p *Public) Translations(w http.ResponseWriter, r *http.Request) {
	loc, ok := localeParam(chi.URLParam(r, "locale"))
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	bundle, _, err := p.translations.Get(r.Context(), loc)
	if err != nil {
		writeContentError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

// BlogIndex lists the posts published in a locale, newest first.
func (p *Public) BlogIndex(w http.ResponseWriter, r *http.Request) {
	loc, ok := localeParam(chi.URLParam(r, "locale"))
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	posts, err := p.blog.ListForLocale(r.Context(), loc)
	if err != nil {
		writeContentError(w, r, err)
		return
	}

	out := make([]PostSummary, 0, len(posts))
	for i := range posts {
		out = append(out, summarize(&posts[i], loc))
	}
	writeJSON(w, http.StatusOK, map[string]any{"locale": loc, "posts": out})
}

// BlogPost returns one post with its blocks rendered to sanitized HTML.
// A slug that belongs to the post in another locale redirects to this
// locale's slug.
func (p *Public) BlogPost(w http.ResponseWriter, r *http.Request) {
	loc, ok := localeParam(chi.URLParam(r, "locale"))
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s := chi.URLParam(r, "slug")
	ctx := r.Context()

	post, err := p.blog.FindBySlug(ctx, s, loc)
	if errors.Is(err, store.ErrNotFound) {
		for _, other := range locale.All() {
			if other == loc {
				continue
			}
			if found, ferr := p.blog.FindBySlug(ctx, s, other); ferr == nil {
				http.Redirect(w, r, postURL(found, loc), http.StatusMovedPermanently)
				return
			}
		}
	}
	if err != nil {
		writeContentError(w, r, err)
		return
	}

	blocks, err := markdown.RenderBlocks(post.Blocks, loc, post.PrimaryLocale)
	if err != nil {
		slog.Error("render blog blocks failed", "error", err, "post", post.ID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	alternates := make(map[locale.Locale]string)
	for _, l := range post.AvailableLocales() {
		alternates[l] = postURL(post, l)
	}
	writeJSON(w, http.StatusOK, PostView{
		PostSummary: summarize(post, loc),
		Locale:      loc,
		Fallback:    !post.AvailableIn(loc),
		UpdatedAt:   post.UpdatedAt,
		Author:      post.Author,
		Keywords:    post.Keywords.Get(loc, post.PrimaryLocale),
		Alternates:  alternates,
		Blocks:      blocks,
	})
}

// Sitemap serves sitemap.xml with hreflang alternates.
func (p *Public) Sitemap(w http.ResponseWriter, r *http.Request) {
	posts, _, err := p.blog.ListAll(r.Context())
	if err != nil {
		writeContentError(w, r, err)
		return
	}
	now := p.now()
	published := posts[:0:0]
	for _, post := range posts {
		if !post.PublishedAt.After(now) {
			published = append(published, post)
		}
	}

	data, err := seo.GenerateSitemap(p.siteURL, p.resolver, p.extraPages, published)
	if err != nil {
		slog.Error("sitemap generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(data)
}

func summarize(p *models.BlogPost, loc locale.Locale) PostSummary {
	return PostSummary{
		ID:            p.ID,
		Slug:          p.SlugFor(loc),
		URL:           postURL(p, loc),
		Title:         p.TitleFor(loc),
		Excerpt:       p.ExcerptFor(loc),
		PublishedAt:   p.PublishedAt,
		FeaturedImage: p.FeaturedImage,
	}
}

func postURL(p *models.BlogPost, loc locale.Locale) string {
	return "/" + string(loc) + "/blog/" + p.SlugFor(loc) + "/"
}
