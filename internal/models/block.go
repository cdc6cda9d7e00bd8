// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Block types as they appear in the "type" field of stored JSON.
const (
	BlockHeading   = "heading"
	BlockParagraph = "paragraph"
	BlockImage     = "image"
	BlockQuote     = "quote"
	BlockList      = "list"
)

// Alignment positions a block horizontally. Empty means the default.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// ImageWidth is the width class of an image block.
type ImageWidth string

const (
	WidthSmall  ImageWidth = "small"
	WidthMedium ImageWidth = "medium"
	WidthLarge  ImageWidth = "large"
	WidthFull   ImageWidth = "full"
)

// Block is one unit of a blog post body. The set of implementations is
// closed: HeadingBlock, ParagraphBlock, ImageBlock, QuoteBlock, ListBlock.
type Block interface {
	BlockType() string
	Validate() error
	block()
}

type HeadingBlock struct {
	Text  LocalizedText `json:"text"`
	Level int           `json:"level"`
	Align Alignment     `json:"align,omitempty"`
}

// ParagraphBlock text may contain inline markdown emphasis and links.
type ParagraphBlock struct {
	Text  LocalizedText `json:"text"`
	Align Alignment     `json:"align,omitempty"`
}

type ImageBlock struct {
	Src   string        `json:"src"`
	Alt   LocalizedText `json:"alt,omitempty"`
	Width ImageWidth    `json:"width,omitempty"`
	Align Alignment     `json:"align,omitempty"`
}

type QuoteBlock struct {
	Text LocalizedText `json:"text"`
}

type ListBlock struct {
	Items LocalizedList `json:"items"`
}

func (HeadingBlock) BlockType() string   { return BlockHeading }
func (ParagraphBlock) BlockType() string { return BlockParagraph }
func (ImageBlock) BlockType() string     { return BlockImage }
func (QuoteBlock) BlockType() string     { return BlockQuote }
func (ListBlock) BlockType() string      { return BlockList }

func (HeadingBlock) block()   {}
func (ParagraphBlock) block() {}
func (ImageBlock) block()     {}
func (QuoteBlock) block()     {}
func (ListBlock) block()      {}

var alignments = []any{Alignment(""), AlignLeft, AlignCenter, AlignRight}

func (b HeadingBlock) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Text, validation.Required, validation.By(someText)),
		validation.Field(&b.Level, validation.Required, validation.Min(1), validation.Max(6)),
		validation.Field(&b.Align, validation.In(alignments...)),
	)
}

func (b ParagraphBlock) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Text, validation.Required, validation.By(someText)),
		validation.Field(&b.Align, validation.In(alignments...)),
	)
}

func (b ImageBlock) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Src, validation.Required, validation.By(permanentRef)),
		validation.Field(&b.Width, validation.In(ImageWidth(""), WidthSmall, WidthMedium, WidthLarge, WidthFull)),
		validation.Field(&b.Align, validation.In(alignments...)),
	)
}

func (b QuoteBlock) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Text, validation.Required, validation.By(someText)),
	)
}

func (b ListBlock) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Items, validation.Required),
	)
}

// Blocks is an ordered block sequence with a tagged JSON encoding.
type Blocks []Block

func (bs Blocks) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(bs))
	for i, b := range bs {
		raw, err := marshalBlock(b)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

func marshalBlock(b Block) ([]byte, error) {
	switch v := b.(type) {
	case HeadingBlock:
		type alias HeadingBlock
		return json.Marshal(struct {
			Type string `json:"type"`
			alias
		}{BlockHeading, alias(v)})
	case ParagraphBlock:
		type alias ParagraphBlock
		return json.Marshal(struct {
			Type string `json:"type"`
			alias
		}{BlockParagraph, alias(v)})
	case ImageBlock:
		type alias ImageBlock
		return json.Marshal(struct {
			Type string `json:"type"`
			alias
		}{BlockImage, alias(v)})
	case QuoteBlock:
		type alias QuoteBlock
		return json.Marshal(struct {
			Type string `json:"type"`
			alias
		}{BlockQuote, alias(v)})
	case ListBlock:
		type alias ListBlock
		return json.Marshal(struct {
			Type string `json:"type"`
			alias
		}{BlockList, alias(v)})
	default:
		return nil, fmt.Errorf("unsupported block %T", b)
	}
}

func (bs *Blocks) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(Blocks, 0, len(raws))
	for i, raw := range raws {
		b, err := unmarshalBlock(raw)
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, b)
	}
	*bs = out
	return nil
}

func unmarshalBlock(raw json.RawMessage) (Block, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case BlockHeading:
		var b HeadingBlock
		err := json.Unmarshal(raw, &b)
		return b, err
	case BlockParagraph:
		var b ParagraphBlock
		err := json.Unmarshal(raw, &b)
		return b, err
	case BlockImage:
		var b ImageBlock
		err := json.Unmarshal(raw, &b)
		return b, err
	case BlockQuote:
		var b QuoteBlock
		err := json.Unmarshal(raw, &b)
		return b, err
	case BlockList:
		var b ListBlock
		err := json.Unmarshal(raw, &b)
		return b, err
	default:
		return nil, fmt.Errorf("unknown block type %q", head.Type)
	}
}
