// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"iptvsite/internal/content"
	"iptvsite/internal/middleware"
	"iptvsite/internal/models"
	"iptvsite/internal/store"
)

// CachePurger drops every cached document.
type CachePurger interface {
	InvalidateAll(ctx context.Context) (int, error)
}

// Admin groups the document editing handlers. Every read returns the
// document's version token and every write must echo it back.
type Admin struct {
	translations *content.Translations
	metadata     *content.Metadata
	blog         *content.Blog
	cache        CachePurger
}

// NewAdmin creates the admin handler group. The content services must sit
// on an uncached store view so tokens are never stale. cache may be nil.
func NewAdmin(translations *content.Translations, metadata *content.Metadata, blog *content.Blog, cache CachePurger) *Admin {
	return &Admin{
		translations: translations,
		metadata:     metadata,
		blog:         blog,
		cache:        cache,
	}
}

// documentResponse is returned by document reads.
type documentResponse struct {
	Locale  string `json:"locale"`
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Content any    `json:"content"`
}

// documentUpdate is the body of a document replacement.
type documentUpdate struct {
	SHA     string          `json:"sha"`
	Content json.RawMessage `json:"content"`
}

// shaResponse carries the token of the revision a write produced.
type shaResponse struct {
	SHA string `json:"sha"`
}

// GetTranslations returns a locale's translation bundle with its token.
func (a *Admin) GetTranslations(w http.ResponseWriter, r *http.Request) {
	loc, ok := localeParam(chi.URLParam(r, "locale"))
	if !ok {
		writeError(w, http.StatusNotFound, "unsupported locale")
		return
	}
	bundle, sha, err := a.translations.Get(r.Context(), loc)
	if err != nil {
		writeContentError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{Locale: loc.String(), Path: a.translations.Path(loc), SHA: sha, Content: bundle})
}

// PutTranslations replaces a locale's translation bundle.
func (a *Admin) PutTranslations(w http.ResponseWriter, r *http.Request) {
	loc, ok := localeParam(chi.URLParam(r, "locale"))
	if !ok {
		writeError(w, http.StatusNotFound, "unsupported locale")
		return
	}
	var body documentUpdate
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sha, err := a.translations.PutRaw(r.Context(), loc, body.Content, body.SHA)
	if err != nil {
		writeContentError(w, r, err)
		return
	}
	a.audit(r, "translations updated", "locale", loc, "sha", sha)
	writeJSON(w, http.StatusOK, shaResponse{SHA: sha})
}

// GetMetadata returns a locale's page metadata with its token. A locale
// without a document gets the default document and an empty token.
func (a *Admin) GetMetadata(w http.ResponseWriter, r *http.Request) {
	loc, ok := localeParam(chi.URLParam(r, "locale"))
	if !ok {
		writeError(w, http.StatusNotFound, "unsupported locale")
		return
	}
	doc, sha, err := a.metadata.Get(r.Context(), loc)
	if err != nil {
		writeContentError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{Locale: loc.String(), Path: a.metadata.Path(loc), SHA: sha, Content: doc})
}

// PutMetadata validates and replaces a locale's page metadata.
func (a *Admin) PutMetadata(w http.ResponseWriter, r *http.Request) {
	loc, ok := localeParam(chi.URLParam(r, "locale"))
	if !ok {
		writeError(w, http.StatusNotFound, "unsupported locale")
		return
	}
	var body documentUpdate
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var doc models.MetadataDocument
	if err := json.Unmarshal(body.Content, &doc); err != nil || doc == nil {
		writeError(w, http.StatusBadRequest, "content must be an object of page metadata")
		return
	}

	sha, err := a.metadata.Put(r.Context(), loc, doc, body.SHA)
	if err != nil {
		writeContentError(w, r, err)
		return
	}
	a.audit(r, "metadata updated", "locale", loc, "sha", sha)
	writeJSON(w, http.StatusOK, shaResponse{SHA: sha})
}

// postRequest is the body of a blog post create or update.
type postRequest struct {
	SHA  string          `json:"sha"`
	Post models.BlogPost `json:"post"`
}

// postResponse carries a post and the collection token after the call.
type postResponse struct {
	SHA  string           `json:"sha"`
	Post *models.BlogPost `json:"post"`
}

// ListPosts returns every post, including unpublished ones, with the
// collection token.
func (a *Admin) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, sha, err := a.blog.ListAll(r.Context())
	if err != nil {
		writeContentError(w, r, err)
		return
	}
	if posts == nil {
		posts = []models.BlogPost{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sha": sha, "posts": posts})
}

// GetPost returns one post with the collection token.
func (a *Admin) GetPost(w http.ResponseWriter, r *http.Request) {
	post, sha, err := a.blog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeContentError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postResponse{SHA: sha, Post: post})
}

// CreatePost adds a post. Missing id, slug and publish date are generated.
func (a *Admin) CreatePost(w http.ResponseWriter, r *http.Request) {
	var body postRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx := r.Context()

	if body.Post.ID != "" {
		_, _, err := a.blog.Get(ctx, body.Post.ID)
		switch {
		case err == nil:
			writeError(w, http.StatusConflict, "a post with this id already exists")
			return
		case !errors.Is(err, store.ErrNotFound):
			writeContentError(w, r, err)
			return
		}
	}

	saved, sha, err := a.blog.Upsert(ctx, body.Post, body.SHA)
	if err != nil {
		writeContentError(w, r, err)
		return
	}
	a.audit(r, "blog post created", "id", saved.ID, "sha", sha)
	writeJSON(w, http.StatusCreated, postResponse{SHA: sha, Post: saved})
}

// UpdatePost replaces an existing post. The id in the path wins.
func (a *Admin) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body postRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Post.ID != "" && body.Post.ID != id {
		writeError(w, http.StatusBadRequest, "post id does not match the URL")
		return
	}
	body.Post.ID = id
	ctx := r.Context()

	if _, _, err := a.blog.Get(ctx, id); err != nil {
		writeContentError(w, r, err)
		return
	}

	saved, sha, err := a.blog.Upsert(ctx, body.Post, body.SHA)
	if err != nil {
		writeContentError(w, r, err)
		return
	}
	a.audit(r, "blog post updated", "id", saved.ID, "sha", sha)
	writeJSON(w, http.StatusOK, postResponse{SHA: sha, Post: saved})
}

// DeletePost removes a post. The token is passed as the sha query
// parameter.
func (a *Admin) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sha, err := a.blog.Delete(r.Context(), id, r.URL.Query().Get("sha"))
	if err != nil {
		writeContentError(w, r, err)
		return
	}
	a.audit(r, "blog post deleted", "id", id, "sha", sha)
	writeJSON(w, http.StatusOK, shaResponse{SHA: sha})
}

// PurgeCache drops every cached document so the public site rereads the
// content repository.
func (a *Admin) PurgeCache(w http.ResponseWriter, r *http.Request) {
	if a.cache == nil {
		writeJSON(w, http.StatusOK, map[string]int{"purged": 0})
		return
	}
	n, err := a.cache.InvalidateAll(r.Context())
	if err != nil {
		slog.Error("cache purge failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "cache unavailable")
		return
	}
	a.audit(r, "document cache purged", "keys", n)
	writeJSON(w, http.StatusOK, map[string]int{"purged": n})
}

func (a *Admin) audit(r *http.Request, msg string, args ...any) {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		args = append(args, "user", sess.Username)
	}
	slog.Info(msg, args...)
}
