// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"iptvsite/internal/content"
	"iptvsite/internal/locale"
	"iptvsite/internal/models"
	"iptvsite/internal/slug"
	"iptvsite/internal/store"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

// fixture wires the content services over one in-memory store.
type fixture struct {
	store        *store.MemoryStore
	resolver     *slug.Resolver
	blog         *content.Blog
	metadata     *content.Metadata
	translations *content.Translations
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	resolver, err := slug.Default()
	require.NoError(t, err)
	m := store.NewMemoryStore()
	return &fixture{
		store:        m,
		resolver:     resolver,
		blog:         content.NewBlog(m, ""),
		metadata:     content.NewMetadata(m, ""),
		translations: content.NewTranslations(m, ""),
	}
}

func (f *fixture) public() *Public {
	p := NewPublic(f.resolver, f.blog, f.metadata, f.translations, "https://iptv.example.com", []string{"about"})
	p.now = func() time.Time { return testNow }
	return p
}

func (f *fixture) seedPost(t *testing.T, p models.BlogPost) string {
	t.Helper()
	_, sha, err := f.blog.ListAll(context.Background())
	require.NoError(t, err)
	_, sha, err = f.blog.Upsert(context.Background(), p, sha)
	require.NoError(t, err)
	return sha
}

func testPost(id string) models.BlogPost {
	return models.BlogPost{
		ID:            id,
		Slug:          models.LocalizedSlug{PerLocale: map[locale.Locale]string{locale.EN: "setup-guide", locale.ES: "guia-configuracion"}},
		Title:         models.LocalizedText{locale.EN: "Setup guide", locale.ES: "Guía de configuración"},
		Excerpt:       models.LocalizedText{locale.EN: "How to set up."},
		PrimaryLocale: locale.EN,
		Translations:  []locale.Locale{locale.EN, locale.ES},
		PublishedAt:   testNow.Add(-24 * time.Hour),
		Keywords:      models.LocalizedText{locale.EN: "iptv, setup"},
		Blocks: models.Blocks{
			models.HeadingBlock{Text: models.LocalizedText{locale.EN: "Step <one>", locale.ES: "Paso uno"}, Level: 2},
			models.ParagraphBlock{Text: models.LocalizedText{locale.EN: "Open the **app**."}},
		},
	}
}

// serve routes a single request through pattern so chi URL params are set.
func serve(t *testing.T, method, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Method(method, pattern, h)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
