// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content maps the site's documents (translation bundles, page
// metadata and the blog collection) onto store paths. Every save is a
// whole-document write guarded by the version token the caller read.
package content

import (
	"encoding/json"
	"fmt"
)

// Commit messages recorded with each save. They form the audit trail.
const (
	msgTranslations = "Update %s translations via admin dashboard"
	msgMetadata     = "Update %s metadata via admin dashboard"
	msgCreatePost   = "Create blog post %s"
	msgUpdatePost   = "Update blog post %s"
	msgDeletePost   = "Delete blog post %s"
)

// encodeDocument renders v the way documents are committed: two-space
// indentation and a trailing newline.
func encodeDocument(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(data, '\n'), nil
}
