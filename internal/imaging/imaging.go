// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalises uploaded blog images: it applies the EXIF
// orientation, caps the width so editors cannot publish camera-sized
// originals, and re-encodes the result. Images are never upscaled.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxWidth is the widest image the site ever displays.
	DefaultMaxWidth = 1920

	// maxPixels rejects decompression bombs before a full decode.
	maxPixels = 50_000_000

	jpegQuality = 82
)

// ErrUnsupported is returned for data that is not a decodable image.
var ErrUnsupported = errors.New("imaging: unsupported image format")

// ProcessedImage is the re-encoded upload ready for storage.
type ProcessedImage struct {
	Data        []byte
	Width       int
	Height      int
	ContentType string
	Ext         string
}

// Process decodes original, resizes it down to maxWidth if wider, and
// encodes it again. Photos (JPEG, WebP) become JPEG; formats that may carry
// transparency (PNG, GIF) become PNG.
func Process(original []byte, maxWidth int) (*ProcessedImage, error) {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("imaging: image too large (%dx%d)", cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(original), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode %s: %w", format, err)
	}
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	out := &ProcessedImage{
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}

	var buf bytes.Buffer
	switch format {
	case "png", "gif":
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
		out.ContentType, out.Ext = "image/png", "png"
	default:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
		out.ContentType, out.Ext = "image/jpeg", "jpg"
	}
	if err != nil {
		return nil, fmt.Errorf("imaging: encode: %w", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}
