// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"iptvsite/internal/store"
)

const (
	// docKeyPrefix is the Valkey key prefix for cached documents.
	docKeyPrefix = "doc:"

	// DefaultDocumentTTL bounds how stale a document can be when a commit
	// lands on the host without going through this service.
	DefaultDocumentTTL = 5 * time.Minute
)

// cachedDocument is the value stored under each key.
type cachedDocument struct {
	Content []byte `json:"content"`
	SHA     string `json:"sha"`
}

// Documents caches store records in Valkey, keyed by document path. It
// satisfies store.DocumentCache.
type Documents struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDocuments creates a document cache backed by the given Valkey client.
func NewDocuments(client *redis.Client, ttl time.Duration) *Documents {
	if ttl == 0 {
		ttl = DefaultDocumentTTL
	}
	return &Documents{client: client, ttl: ttl}
}

// Get returns the cached record for path. Errors count as a miss.
func (d *Documents) Get(ctx context.Context, path string) (*store.Record, bool) {
	val, err := d.client.Get(ctx, DocumentKey(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("document cache get error", "path", path, "error", err)
		return nil, false
	}

	var doc cachedDocument
	if err := json.Unmarshal(val, &doc); err != nil {
		slog.Warn("document cache entry corrupt", "path", path, "error", err)
		d.Invalidate(ctx, path)
		return nil, false
	}
	slog.Debug("document cache hit", "path", path)
	return &store.Record{Path: path, Content: doc.Content, SHA: doc.SHA}, true
}

// Set stores rec with the configured TTL.
func (d *Documents) Set(ctx context.Context, rec *store.Record) {
	val, err := json.Marshal(cachedDocument{Content: rec.Content, SHA: rec.SHA})
	if err != nil {
		slog.Warn("document cache encode error", "path", rec.Path, "error", err)
		return
	}
	if err := d.client.Set(ctx, DocumentKey(rec.Path), val, d.ttl).Err(); err != nil {
		slog.Warn("document cache set error", "path", rec.Path, "error", err)
	}
}

// Invalidate removes a single document from the cache.
func (d *Documents) Invalidate(ctx context.Context, path string) {
	if err := d.client.Del(ctx, DocumentKey(path)).Err(); err != nil {
		slog.Warn("document cache invalidate error", "path", path, "error", err)
		return
	}
	slog.Debug("document cache invalidated", "path", path)
}

// InvalidateAll removes every cached document by scanning for the prefix.
// It returns the number of keys deleted.
func (d *Documents) InvalidateAll(ctx context.Context) (int, error) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := d.client.Scan(ctx, cursor, docKeyPrefix+"*", 100).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			if err := d.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, err
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("document cache cleared", "deleted", deleted)
	}
	return deleted, nil
}

// DocumentKey returns the Valkey key for a document path.
func DocumentKey(path string) string {
	return docKeyPrefix + path
}
