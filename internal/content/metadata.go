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
	"path"

	"iptvsite/internal/locale"
	"iptvsite/internal/models"
	"iptvsite/internal/store"
)

// DefaultMetadataDir is the directory holding one metadata document per
// locale.
const DefaultMetadataDir = "data/metadata"

// DefaultTitle is used whenever a locale has no metadata document. It is
// deliberately not localized.
const DefaultTitle = "IPTV Subscription Service | Premium Live TV Streaming"

// DefaultMetadata returns the document served when none is stored.
func DefaultMetadata() models.MetadataDocument {
	return models.MetadataDocument{
		"home": {
			Title:       DefaultTitle,
			Description: "Stream thousands of live TV channels, movies and series in HD and 4K.",
			Keywords:    "iptv, iptv subscription, live tv, streaming",
		},
	}
}

// Metadata reads and writes per-locale SEO metadata documents.
type Metadata struct {
	store store.Store
	dir   string
}

// NewMetadata creates a Metadata service rooted at dir.
func NewMetadata(s store.Store, dir string) *Metadata {
	if dir == "" {
		dir = DefaultMetadataDir
	}
	return &Metadata{store: s, dir: dir}
}

// Path returns the document path of loc's metadata.
func (m *Metadata) Path(loc locale.Locale) string {
	return path.Join(m.dir, string(loc)+".json")
}

// Get returns loc's metadata document and its token. When the document
// does not exist the default document is returned with an empty token.
func (m *Metadata) Get(ctx context.Context, loc locale.Locale) (models.MetadataDocument, string, error) {
	rec, err := m.store.Read(ctx, m.Path(loc))
	if errors.Is(err, store.ErrNotFound) {
		return DefaultMetadata(), "", nil
	}
	if err != nil {
		return nil, "", err
	}

	var doc models.MetadataDocument
	if err := json.Unmarshal(rec.Content, &doc); err != nil {
		return nil, "", fmt.Errorf("metadata %s: %w", loc, err)
	}
	if doc == nil {
		doc = models.MetadataDocument{}
	}
	return doc, rec.SHA, nil
}

// Resolve is Get for the public site: any failure is logged and the
// default document is served instead.
func (m *Metadata) Resolve(ctx context.Context, loc locale.Locale) models.MetadataDocument {
	doc, _, err := m.Get(ctx, loc)
	if err != nil {
		slog.Warn("metadata unavailable, serving defaults", "locale", loc, "error", err)
		return DefaultMetadata()
	}
	return doc
}

// Put validates doc and replaces loc's metadata document.
func (m *Metadata) Put(ctx context.Context, loc locale.Locale, doc models.MetadataDocument, sha string) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}
	data, err := encodeDocument(doc)
	if err != nil {
		return "", err
	}
	return m.store.Write(ctx, m.Path(loc), data, sha, fmt.Sprintf(msgMetadata, loc))
}
