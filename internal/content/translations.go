// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"errors"
	"fmt"
	"path"

	"iptvsite/internal/locale"
	"iptvsite/internal/models"
	"iptvsite/internal/store"
)

// DefaultTranslationsDir is the directory holding one bundle per locale.
const DefaultTranslationsDir = "lib/i18n/translations"

// Translations reads and writes per-locale UI string bundles.
type Translations struct {
	store store.Store
	dir   string
}

// NewTranslations creates a Translations service rooted at dir.
func NewTranslations(s store.Store, dir string) *Translations {
	if dir == "" {
		dir = DefaultTranslationsDir
	}
	return &Translations{store: s, dir: dir}
}

// Path returns the document path of loc's bundle.
func (t *Translations) Path(loc locale.Locale) string {
	return path.Join(t.dir, string(loc)+".json")
}

// Get returns loc's bundle and its token. A bundle that does not exist yet
// is returned empty with an empty token, so the first save creates it.
func (t *Translations) Get(ctx context.Context, loc locale.Locale) (models.TranslationBundle, string, error) {
	rec, err := t.store.Read(ctx, t.Path(loc))
	if errors.Is(err, store.ErrNotFound) {
		return models.TranslationBundle{}, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	bundle, err := models.ParseTranslationBundle(rec.Content)
	if err != nil {
		return nil, "", fmt.Errorf("translations %s: %w", loc, err)
	}
	return bundle, rec.SHA, nil
}

// Put replaces loc's bundle. sha is the token from Get.
func (t *Translations) Put(ctx context.Context, loc locale.Locale, bundle models.TranslationBundle, sha string) (string, error) {
	if bundle == nil {
		bundle = models.TranslationBundle{}
	}
	data, err := encodeDocument(bundle)
	if err != nil {
		return "", err
	}
	return t.store.Write(ctx, t.Path(loc), data, sha, fmt.Sprintf(msgTranslations, loc))
}

// PutRaw validates data as a bundle before saving it.
func (t *Translations) PutRaw(ctx context.Context, loc locale.Locale, data []byte, sha string) (string, error) {
	bundle, err := models.ParseTranslationBundle(data)
	if err != nil {
		return "", err
	}
	return t.Put(ctx, loc, bundle, sha)
}
