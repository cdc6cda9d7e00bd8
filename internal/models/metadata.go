// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Length limits for SEO metadata fields.
const (
	maxMetaTitleLen    = 300
	maxMetaDescLen     = 500
	maxMetaKeywordsLen = 500
)

// PageMetadata is the SEO metadata of one page in one locale.
type PageMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
}

func (m PageMetadata) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Title, validation.Required, validation.RuneLength(0, maxMetaTitleLen)),
		validation.Field(&m.Description, validation.RuneLength(0, maxMetaDescLen)),
		validation.Field(&m.Keywords, validation.RuneLength(0, maxMetaKeywordsLen)),
	)
}

// MetadataDocument maps page identifiers to their metadata for one locale.
type MetadataDocument map[string]PageMetadata

// Validate checks every entry and reports failures keyed by page id.
func (d MetadataDocument) Validate() error {
	errs := validation.Errors{}
	for id, m := range d {
		if id == "" {
			errs["(empty)"] = errors.New("page id cannot be blank")
			continue
		}
		if err := m.Validate(); err != nil {
			errs[id] = err
		}
	}
	return wrapValidation(errs.Filter())
}

// TranslationBundle is a locale's UI string tree. Its shape is owned by
// the front end; the only requirement here is that it is a JSON object.
type TranslationBundle map[string]any

// ParseTranslationBundle decodes data and rejects anything but an object.
func ParseTranslationBundle(data []byte) (TranslationBundle, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Fields: validation.Errors{"bundle": err}}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &ValidationError{Fields: validation.Errors{"bundle": errors.New("must be a JSON object")}}
	}
	return TranslationBundle(obj), nil
}
