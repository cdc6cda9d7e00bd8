// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iptvsite/internal/locale"
	"iptvsite/internal/models"
	"iptvsite/internal/store"
)

var fixedNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestBlog(t *testing.T) (*Blog, *store.MemoryStore) {
	t.Helper()
	m := store.NewMemoryStore()
	b := NewBlog(m, "")
	b.now = func() time.Time { return fixedNow }
	return b, m
}

func post(id, title string, published time.Time) models.BlogPost {
	return models.BlogPost{
		ID:            id,
		Title:         models.LocalizedText{locale.EN: title},
		Excerpt:       models.LocalizedText{locale.EN: "Excerpt for " + title},
		PrimaryLocale: locale.EN,
		Translations:  []locale.Locale{locale.EN},
		PublishedAt:   published,
		Blocks: models.Blocks{
			models.ParagraphBlock{Text: models.LocalizedText{locale.EN: "Body"}},
		},
	}
}

func TestBlogEmptyCollection(t *testing.T) {
	b, _ := newTestBlog(t)
	posts, sha, err := b.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Empty(t, sha)
}

func TestBlogUpsertCreatesAndUpdates(t *testing.T) {
	ctx := context.Background()
	b, m := newTestBlog(t)

	saved, sha1, err := b.Upsert(ctx, post("", "Best IPTV Apps for 2026", time.Time{}), "")
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "best-iptv-apps-for-2026", saved.SlugFor(locale.EN))
	assert.Equal(t, fixedNow, saved.PublishedAt)
	assert.Equal(t, fixedNow, saved.UpdatedAt)

	saved.Title[locale.ES] = "Mejores apps IPTV"
	saved.Translations = append(saved.Translations, locale.ES)
	_, sha2, err := b.Upsert(ctx, *saved, sha1)
	require.NoError(t, err)
	assert.NotEqual(t, sha1, sha2)

	posts, sha, err := b.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, sha2, sha)
	require.Len(t, posts, 1)
	assert.Equal(t, "Mejores apps IPTV", posts[0].Title[locale.ES])

	h := m.History()
	require.Len(t, h, 2)
	assert.Equal(t, "Create blog post "+saved.ID, h[0].Message)
	assert.Equal(t, "Update blog post "+saved.ID, h[1].Message)
	assert.Equal(t, DefaultBlogPath, h[0].Path)
}

func TestBlogUpsertKeepsPublishDate(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBlog(t)

	original := time.Date(2020, 1, 1, 9, 0, 0, 0, time.UTC)
	saved, sha, err := b.Upsert(ctx, post("a", "First", original), "")
	require.NoError(t, err)

	edit := *saved
	edit.PublishedAt = time.Time{}
	edit.Title = models.LocalizedText{locale.EN: "First, revised"}
	updated, _, err := b.Upsert(ctx, edit, sha)
	require.NoError(t, err)
	assert.Equal(t, original, updated.PublishedAt)
	assert.Equal(t, fixedNow, updated.UpdatedAt)

	got, _, err := b.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, original.Equal(got.PublishedAt))
	assert.Equal(t, "First, revised", got.TitleFor(locale.EN))
}

func TestBlogUpsertStaleToken(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBlog(t)

	_, t1, err := b.Upsert(ctx, post("a", "First", fixedNow), "")
	require.NoError(t, err)

	// Editor A saves with T1.
	_, _, err = b.Upsert(ctx, post("b", "Second", fixedNow), t1)
	require.NoError(t, err)

	// Editor B still holds T1.
	_, _, err = b.Upsert(ctx, post("c", "Third", fixedNow), t1)
	assert.ErrorIs(t, err, store.ErrConflict)

	// A blind save against an existing collection is also stale.
	_, _, err = b.Upsert(ctx, post("d", "Fourth", fixedNow), "")
	assert.ErrorIs(t, err, store.ErrConflict)

	posts, _, err := b.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestBlogUpsertValidation(t *testing.T) {
	ctx := context.Background()
	b, m := newTestBlog(t)

	p := post("a", "First", fixedNow)
	p.Translations = []locale.Locale{locale.ES}
	_, _, err := b.Upsert(ctx, p, "")
	assert.ErrorIs(t, err, models.ErrValidation)

	p = post("a", "First", fixedNow)
	p.FeaturedImage = "blob:http://localhost/abc"
	_, _, err = b.Upsert(ctx, p, "")
	assert.ErrorIs(t, err, models.ErrValidation)

	assert.Empty(t, m.History(), "invalid posts must never be written")
}

func TestBlogUpsertDuplicateSlug(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBlog(t)

	_, sha, err := b.Upsert(ctx, post("a", "Same Title", fixedNow), "")
	require.NoError(t, err)
	_, _, err = b.Upsert(ctx, post("b", "Same Title", fixedNow), sha)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestBlogMalformedRecordsPreserved(t *testing.T) {
	ctx := context.Background()
	b, m := newTestBlog(t)

	good, err := json.Marshal(post("good", "Good Post", fixedNow))
	require.NoError(t, err)
	doc := `[` + string(good) + `, {"id": "broken", "blocks": [{"type": "video"}]}, "garbage"]`
	sha, err := m.Write(ctx, DefaultBlogPath, []byte(doc), "", "seed")
	require.NoError(t, err)

	posts, _, err := b.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "good", posts[0].ID)

	_, _, err = b.Upsert(ctx, post("new", "New Post", fixedNow), sha)
	require.NoError(t, err)

	rec, err := m.Read(ctx, DefaultBlogPath)
	require.NoError(t, err)
	var raws []json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Content, &raws))
	assert.Len(t, raws, 4)
	assert.Contains(t, string(rec.Content), `"broken"`)
	assert.Contains(t, string(rec.Content), `"garbage"`)
}

func TestBlogDelete(t *testing.T) {
	ctx := context.Background()
	b, m := newTestBlog(t)

	_, sha, err := b.Upsert(ctx, post("a", "First", fixedNow), "")
	require.NoError(t, err)
	_, sha, err = b.Upsert(ctx, post("b", "Second", fixedNow), sha)
	require.NoError(t, err)

	_, err = b.Delete(ctx, "missing", sha)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = b.Delete(ctx, "a", "stale")
	assert.ErrorIs(t, err, store.ErrConflict)

	_, err = b.Delete(ctx, "a", sha)
	require.NoError(t, err)

	posts, _, err := b.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "b", posts[0].ID)

	h := m.History()
	assert.Equal(t, "Delete blog post a", h[len(h)-1].Message)
}

func TestBlogGetAndFindBySlug(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBlog(t)

	p := post("guide", "Setup Guide", fixedNow.Add(-time.Hour))
	p.Slug = models.LocalizedSlug{PerLocale: map[locale.Locale]string{locale.EN: "setup-guide", locale.FR: "guide-installation"}}
	_, sha, err := b.Upsert(ctx, p, "")
	require.NoError(t, err)

	got, gotSHA, err := b.Get(ctx, "guide")
	require.NoError(t, err)
	assert.Equal(t, sha, gotSHA)
	assert.Equal(t, "Setup Guide", got.TitleFor(locale.EN))

	_, _, err = b.Get(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)

	found, err := b.FindBySlug(ctx, "guide-installation", locale.FR)
	require.NoError(t, err)
	assert.Equal(t, "guide", found.ID)

	_, err = b.FindBySlug(ctx, "guide-installation", locale.EN)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBlogListForLocale(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBlog(t)

	older := post("older", "Older", fixedNow.Add(-48*time.Hour))
	newer := post("newer", "Newer", fixedNow.Add(-time.Hour))
	newer.Title[locale.FR] = "Plus récent"
	newer.Translations = append(newer.Translations, locale.FR)
	future := post("future", "Scheduled", fixedNow.Add(24*time.Hour))

	sha := ""
	var err error
	for _, p := range []models.BlogPost{older, newer, future} {
		_, sha, err = b.Upsert(ctx, p, sha)
		require.NoError(t, err)
	}

	en, err := b.ListForLocale(ctx, locale.EN)
	require.NoError(t, err)
	require.Len(t, en, 2)
	assert.Equal(t, "newer", en[0].ID)
	assert.Equal(t, "older", en[1].ID)

	fr, err := b.ListForLocale(ctx, locale.FR)
	require.NoError(t, err)
	require.Len(t, fr, 1)
	assert.Equal(t, "newer", fr[0].ID)
}
