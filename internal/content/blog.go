// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"iptvsite/internal/locale"
	"iptvsite/internal/models"
	"iptvsite/internal/slug"
	"iptvsite/internal/store"
)

// DefaultBlogPath is where the blog collection lives in the content repo.
const DefaultBlogPath = "data/blog/posts.json"

// Blog exposes record-level operations over the blog collection, which the
// store only knows as one JSON array document.
type Blog struct {
	store store.Store
	path  string
	now   func() time.Time
}

// NewBlog creates a Blog backed by the collection at path.
func NewBlog(s store.Store, path string) *Blog {
	if path == "" {
		path = DefaultBlogPath
	}
	return &Blog{store: s, path: path, now: time.Now}
}

// collection is a decoded blog document. raws keeps every element as
// stored, including ones that failed to decode, so a save never drops
// records it could not understand.
type collection struct {
	raws  []json.RawMessage
	posts []models.BlogPost
	index []int // index[i] is the position in raws of posts[i]
	sha   string
}

func (b *Blog) load(ctx context.Context) (*collection, error) {
	rec, err := b.store.Read(ctx, b.path)
	if errors.Is(err, store.ErrNotFound) {
		return &collection{}, nil
	}
	if err != nil {
		return nil, err
	}

	c := &collection{sha: rec.SHA}
	if len(strings.TrimSpace(string(rec.Content))) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(rec.Content, &c.raws); err != nil {
		return nil, fmt.Errorf("blog collection %s: %w", b.path, err)
	}

	for i, raw := range c.raws {
		var p models.BlogPost
		if err := json.Unmarshal(raw, &p); err != nil {
			slog.Warn("skipping malformed blog record", "path", b.path, "index", i, "error", err)
			continue
		}
		if p.ID == "" {
			slog.Warn("skipping blog record without id", "path", b.path, "index", i)
			continue
		}
		c.posts = append(c.posts, p)
		c.index = append(c.index, i)
	}
	return c, nil
}

func (c *collection) find(id string) int {
	for i, p := range c.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// ListAll returns every well-formed post and the collection's version
// token. A missing collection is an empty blog.
func (b *Blog) ListAll(ctx context.Context) ([]models.BlogPost, string, error) {
	c, err := b.load(ctx)
	if err != nil {
		return nil, "", err
	}
	return c.posts, c.sha, nil
}

// ListForLocale returns the published posts with content in loc, newest
// first.
func (b *Blog) ListForLocale(ctx context.Context, loc locale.Locale) ([]models.BlogPost, error) {
	posts, _, err := b.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := b.now()
	out := make([]models.BlogPost, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		if p.PublishedAt.After(now) || !p.AvailableIn(loc) {
			continue
		}
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out, nil
}

// Get returns the post with id and the collection's version token.
func (b *Blog) Get(ctx context.Context, id string) (*models.BlogPost, string, error) {
	c, err := b.load(ctx)
	if err != nil {
		return nil, "", err
	}
	i := c.find(id)
	if i < 0 {
		return nil, c.sha, &store.Error{Op: "get", Path: b.path + "#" + id, Kind: store.ErrNotFound}
	}
	return &c.posts[i], c.sha, nil
}

// FindBySlug returns the published post whose slug in loc is s.
func (b *Blog) FindBySlug(ctx context.Context, s string, loc locale.Locale) (*models.BlogPost, error) {
	posts, _, err := b.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	now := b.now()
	for i := range posts {
		p := &posts[i]
		if p.PublishedAt.After(now) {
			continue
		}
		if p.SlugFor(loc) == s {
			return p, nil
		}
	}
	return nil, &store.Error{Op: "find", Path: b.path + "#" + s, Kind: store.ErrNotFound}
}

// Upsert validates post and saves it into the collection, replacing any
// record with the same id. sha must be the token the caller read the
// collection at; it may only be empty while the collection does not
// exist. A new post without an id, slug or publish date gets generated
// ones; an existing post saved without a publish date keeps its stored
// one. The saved post is returned with the new token.
func (b *Blog) Upsert(ctx context.Context, post models.BlogPost, sha string) (*models.BlogPost, string, error) {
	now := b.now().UTC().Truncate(time.Second)
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.Slug.IsZero() {
		post.Slug = models.SharedSlug(slug.Generate(post.Title[post.PrimaryLocale]))
	}
	post.UpdatedAt = now

	c, err := b.load(ctx)
	if err != nil {
		return nil, "", err
	}
	if post.PublishedAt.IsZero() {
		if i := c.find(post.ID); i >= 0 {
			post.PublishedAt = c.posts[i].PublishedAt
		}
	}
	if post.PublishedAt.IsZero() {
		post.PublishedAt = now
	}

	if err := post.Validate(); err != nil {
		return nil, "", err
	}
	if sha != c.sha {
		return nil, "", &store.Error{Op: "upsert", Path: b.path, Kind: store.ErrConflict,
			Err: fmt.Errorf("collection changed since it was read")}
	}
	if err := c.checkSlugs(post); err != nil {
		return nil, "", err
	}

	raw, err := json.Marshal(post)
	if err != nil {
		return nil, "", fmt.Errorf("encode blog post: %w", err)
	}

	message := fmt.Sprintf(msgCreatePost, post.ID)
	if i := c.find(post.ID); i >= 0 {
		c.raws[c.index[i]] = raw
		message = fmt.Sprintf(msgUpdatePost, post.ID)
	} else {
		c.raws = append(c.raws, raw)
	}

	newSHA, err := b.save(ctx, c, message)
	if err != nil {
		return nil, "", err
	}
	return &post, newSHA, nil
}

// Delete removes the post with id. sha follows the same rule as Upsert.
func (b *Blog) Delete(ctx context.Context, id, sha string) (string, error) {
	c, err := b.load(ctx)
	if err != nil {
		return "", err
	}
	if sha != c.sha {
		return "", &store.Error{Op: "delete", Path: b.path, Kind: store.ErrConflict,
			Err: fmt.Errorf("collection changed since it was read")}
	}
	i := c.find(id)
	if i < 0 {
		return "", &store.Error{Op: "delete", Path: b.path + "#" + id, Kind: store.ErrNotFound}
	}

	pos := c.index[i]
	c.raws = append(c.raws[:pos:pos], c.raws[pos+1:]...)
	return b.save(ctx, c, fmt.Sprintf(msgDeletePost, id))
}

func (b *Blog) save(ctx context.Context, c *collection, message string) (string, error) {
	if c.raws == nil {
		c.raws = []json.RawMessage{}
	}
	data, err := encodeDocument(c.raws)
	if err != nil {
		return "", err
	}
	return b.store.Write(ctx, b.path, data, c.sha, message)
}

// checkSlugs rejects post when another post already uses one of its
// slugs in the same locale.
func (c *collection) checkSlugs(post models.BlogPost) error {
	for _, other := range c.posts {
		if other.ID == post.ID {
			continue
		}
		for _, l := range locale.All() {
			if s := post.SlugFor(l); s != "" && s == other.SlugFor(l) {
				return &models.ValidationError{Fields: validation.Errors{
					"slug": fmt.Errorf("%q is already used by post %s in %s", s, other.ID, l),
				}}
			}
		}
	}
	return nil
}
