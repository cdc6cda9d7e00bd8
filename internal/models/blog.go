// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"net/url"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"iptvsite/internal/locale"
)

// BlogPost is one article of the blog collection. Text fields are keyed
// by locale so a post can be partially translated.
type BlogPost struct {
	ID            string          `json:"id"`
	Slug          LocalizedSlug   `json:"slug"`
	Title         LocalizedText   `json:"title"`
	Excerpt       LocalizedText   `json:"excerpt,omitempty"`
	PrimaryLocale locale.Locale   `json:"primaryLocale"`
	Translations  []locale.Locale `json:"translations"`
	PublishedAt   time.Time       `json:"publishedAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Author        string          `json:"author,omitempty"`
	FeaturedImage string          `json:"featuredImage,omitempty"`
	Keywords      LocalizedText   `json:"keywords,omitempty"`
	Blocks        Blocks          `json:"blocks"`
}

// AvailableLocales returns the locales with a non-blank title or excerpt,
// in canonical locale order.
func (p *BlogPost) AvailableLocales() []locale.Locale {
	var out []locale.Locale
	for _, l := range locale.All() {
		if p.Title.Has(l) || p.Excerpt.Has(l) {
			out = append(out, l)
		}
	}
	return out
}

// AvailableIn reports whether the post has usable content in loc.
func (p *BlogPost) AvailableIn(loc locale.Locale) bool {
	return slices.Contains(p.AvailableLocales(), loc)
}

// SlugFor returns the post's slug in loc.
func (p *BlogPost) SlugFor(loc locale.Locale) string {
	return p.Slug.For(loc, p.PrimaryLocale)
}

// TitleFor returns the title in loc, falling back to the primary locale.
func (p *BlogPost) TitleFor(loc locale.Locale) string {
	return p.Title.Get(loc, p.PrimaryLocale)
}

// ExcerptFor returns the excerpt in loc, falling back to the primary locale.
func (p *BlogPost) ExcerptFor(loc locale.Locale) string {
	return p.Excerpt.Get(loc, p.PrimaryLocale)
}

// Validate checks the invariants a post must satisfy before it is saved:
// the primary locale is listed in Translations and has a title, and every
// image reference points at durable storage.
func (p BlogPost) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.Slug, validation.By(func(any) error {
			if p.Slug.IsZero() {
				return errors.New("cannot be blank")
			}
			return nil
		})),
		validation.Field(&p.PrimaryLocale, validation.Required, validation.By(supportedLocale)),
		validation.Field(&p.Translations,
			validation.Required,
			validation.Each(validation.By(supportedLocale)),
			validation.By(func(any) error {
				if !slices.Contains(p.Translations, p.PrimaryLocale) {
					return errors.New("must include the primary locale")
				}
				return nil
			}),
		),
		validation.Field(&p.Title, validation.By(func(any) error {
			if !p.Title.Has(p.PrimaryLocale) {
				return errors.New("is required in the primary locale")
			}
			return nil
		})),
		validation.Field(&p.PublishedAt, validation.Required),
		validation.Field(&p.FeaturedImage, validation.By(permanentRef)),
		validation.Field(&p.Blocks),
	)
	return wrapValidation(err)
}

// IsPermanentRef reports whether ref is an absolute http(s) URL or a
// site-rooted path. Browser preview handles such as blob: and data: URLs
// and local file references are not permanent.
func IsPermanentRef(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	if strings.HasPrefix(ref, "/") {
		return !strings.HasPrefix(ref, "//")
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}

// permanentRef is an ozzo rule; empty values are left to Required.
func permanentRef(value any) error {
	s, _ := value.(string)
	if s == "" || IsPermanentRef(s) {
		return nil
	}
	return errors.New("must be a permanent URL, not a temporary upload handle")
}

// someText is an ozzo rule requiring non-blank text in at least one locale.
func someText(value any) error {
	t, _ := value.(LocalizedText)
	for l := range t {
		if t.Has(l) {
			return nil
		}
	}
	return errors.New("cannot be blank")
}

func supportedLocale(value any) error {
	l, _ := value.(locale.Locale)
	if l == "" || l.Valid() {
		return nil
	}
	return errors.New("must be one of en, es, fr")
}
