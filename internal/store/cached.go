// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"bytes"
	"context"
	"errors"
)

// DocumentCache is the cache a CachedStore reads through. Implementations
// log their own failures; a failed Get is a miss.
type DocumentCache interface {
	Get(ctx context.Context, path string) (*Record, bool)
	Set(ctx context.Context, rec *Record)
	Invalidate(ctx context.Context, path string)
}

// CachedStore serves reads from a DocumentCache and falls back to the
// wrapped backend on a miss. Successful writes refresh the cached entry.
type CachedStore struct {
	backend Store
	cache   DocumentCache
}

// NewCachedStore wraps backend with cache.
func NewCachedStore(backend Store, cache DocumentCache) *CachedStore {
	return &CachedStore{backend: backend, cache: cache}
}

// Read returns the cached document when present.
func (c *CachedStore) Read(ctx context.Context, p string) (*Record, error) {
	p, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	if rec, ok := c.cache.Get(ctx, p); ok {
		return rec, nil
	}
	return c.readThrough(ctx, p)
}

func (c *CachedStore) readThrough(ctx context.Context, p string) (*Record, error) {
	rec, err := c.backend.Read(ctx, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.cache.Invalidate(ctx, p)
		}
		return nil, err
	}
	c.cache.Set(ctx, rec)
	return rec, nil
}

// Write forwards to the backend. On success the cache holds the new
// revision; on conflict the stale entry is dropped.
func (c *CachedStore) Write(ctx context.Context, p string, content []byte, sha, message string) (string, error) {
	p, err := CleanPath(p)
	if err != nil {
		return "", err
	}

	newSHA, err := c.backend.Write(ctx, p, content, sha, message)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			c.cache.Invalidate(ctx, p)
		}
		return "", err
	}
	c.cache.Set(ctx, &Record{Path: p, Content: bytes.Clone(content), SHA: newSHA})
	return newSHA, nil
}

// Fresh returns a view that always reads from the backend, for
// read-modify-write flows that must start from the latest token. Writes
// through the view still refresh the cache.
func (c *CachedStore) Fresh() Store {
	return freshView{c}
}

type freshView struct {
	c *CachedStore
}

func (f freshView) Read(ctx context.Context, p string) (*Record, error) {
	p, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	return f.c.readThrough(ctx, p)
}

func (f freshView) Write(ctx context.Context, p string, content []byte, sha, message string) (string, error) {
	return f.c.Write(ctx, p, content, sha, message)
}

// Fresh returns s itself unless s offers a cache-bypassing view.
func Fresh(s Store) Store {
	if f, ok := s.(interface{ Fresh() Store }); ok {
		return f.Fresh()
	}
	return s
}
