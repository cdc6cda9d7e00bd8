// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"fmt"
	"html"

	"iptvsite/internal/locale"
	"iptvsite/internal/models"
)

// RenderedBlock is a block resolved to one locale with its text converted
// to HTML. Fields not used by a block type are left empty.
type RenderedBlock struct {
	Type  string   `json:"type"`
	HTML  string   `json:"html,omitempty"`
	Items []string `json:"items,omitempty"`
	Level int      `json:"level,omitempty"`
	Align string   `json:"align,omitempty"`
	Src   string   `json:"src,omitempty"`
	Alt   string   `json:"alt,omitempty"`
	Width string   `json:"width,omitempty"`
}

// RenderBlocks renders blocks for loc. Text missing in loc falls back to
// the fallback locale, so partially translated posts still read through.
func RenderBlocks(blocks models.Blocks, loc, fallback locale.Locale) ([]RenderedBlock, error) {
	out := make([]RenderedBlock, 0, len(blocks))
	for i, b := range blocks {
		rb, err := renderBlock(b, loc, fallback)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, rb)
	}
	return out, nil
}

func renderBlock(b models.Block, loc, fallback locale.Locale) (RenderedBlock, error) {
	switch v := b.(type) {
	case models.HeadingBlock:
		// Headings are plain text.
		return RenderedBlock{
			Type:  models.BlockHeading,
			HTML:  html.EscapeString(v.Text.Get(loc, fallback)),
			Level: v.Level,
			Align: string(v.Align),
		}, nil

	case models.ParagraphBlock:
		h, err := ToHTML(v.Text.Get(loc, fallback))
		if err != nil {
			return RenderedBlock{}, err
		}
		return RenderedBlock{Type: models.BlockParagraph, HTML: h, Align: string(v.Align)}, nil

	case models.ImageBlock:
		return RenderedBlock{
			Type:  models.BlockImage,
			Src:   v.Src,
			Alt:   v.Alt.Get(loc, fallback),
			Width: string(v.Width),
			Align: string(v.Align),
		}, nil

	case models.QuoteBlock:
		h, err := Inline(v.Text.Get(loc, fallback))
		if err != nil {
			return RenderedBlock{}, err
		}
		return RenderedBlock{Type: models.BlockQuote, HTML: h}, nil

	case models.ListBlock:
		src := v.Items.Get(loc, fallback)
		items := make([]string, 0, len(src))
		for _, it := range src {
			h, err := Inline(it)
			if err != nil {
				return RenderedBlock{}, err
			}
			items = append(items, h)
		}
		return RenderedBlock{Type: models.BlockList, Items: items}, nil

	default:
		return RenderedBlock{}, fmt.Errorf("unsupported block %T", b)
	}
}
