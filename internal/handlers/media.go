// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"iptvsite/internal/imaging"
)

// Uploader stores blog images and hands back their permanent URL.
// *storage.Client implements it.
type Uploader interface {
	NewKey(ext string, now time.Time) string
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	ExtractKey(rawURL string) (string, bool)
	Delete(ctx context.Context, key string) error
}

// Media handles blog image uploads. Editors preview images locally; only
// the URL returned here may be saved into a post.
type Media struct {
	uploader Uploader
	maxBytes int64
	maxWidth int
	now      func() time.Time
}

// NewMedia creates the media handler group. uploader may be nil when
// object storage is not configured.
func NewMedia(uploader Uploader, maxBytes int64, maxWidth int) *Media {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Media{uploader: uploader, maxBytes: maxBytes, maxWidth: maxWidth, now: time.Now}
}

type uploadResponse struct {
	URL         string `json:"url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"contentType"`
}

// Upload accepts a multipart "file" field, resizes the image and stores
// it under a fresh key.
func (m *Media) Upload(w http.ResponseWriter, r *http.Request) {
	if m.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, m.maxBytes+1024)
	if err := r.ParseMultipartForm(m.maxBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large or malformed upload")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	original, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	head := original
	if len(head) > 512 {
		head = head[:512]
	}
	if msg := validateImage(head, int64(len(original)), m.maxBytes); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	img, err := imaging.Process(original, m.maxWidth)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupported) {
			writeError(w, http.StatusBadRequest, "unsupported image")
			return
		}
		slog.Warn("image processing failed", "error", err, "filename", header.Filename)
		writeError(w, http.StatusUnprocessableEntity, "image could not be processed")
		return
	}

	key := m.uploader.NewKey(img.Ext, m.now())
	url, err := m.uploader.Upload(r.Context(), key, img.ContentType, bytes.NewReader(img.Data), int64(len(img.Data)))
	if err != nil {
		slog.Error("image upload failed", "error", err, "key", key)
		writeError(w, http.StatusServiceUnavailable, "failed to upload file")
		return
	}

	slog.Info("image uploaded", "key", key, "bytes", len(img.Data), "width", img.Width)
	writeJSON(w, http.StatusCreated, uploadResponse{
		URL:         url,
		Width:       img.Width,
		Height:      img.Height,
		ContentType: img.ContentType,
	})
}

// Delete removes an uploaded image identified by its url query parameter.
func (m *Media) Delete(w http.ResponseWriter, r *http.Request) {
	if m.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}
	key, ok := m.uploader.ExtractKey(r.URL.Query().Get("url"))
	if !ok {
		writeError(w, http.StatusBadRequest, "url is not an uploaded image")
		return
	}
	if err := m.uploader.Delete(r.Context(), key); err != nil {
		slog.Error("image delete failed", "error", err, "key", key)
		writeError(w, http.StatusServiceUnavailable, "failed to delete file")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
