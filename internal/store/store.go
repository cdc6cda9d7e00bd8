// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides versioned document storage on top of a
// commit-based file host. Every read returns a version token (the blob SHA
// of the file revision) and every write must present the token it was
// based on; a stale token is rejected with ErrConflict instead of silently
// overwriting someone else's edit.
package store

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrNotFound is returned when no document exists at the path.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when the supplied version token is stale.
	ErrConflict = errors.New("version conflict")

	// ErrUnavailable covers transport, authentication and host failures.
	ErrUnavailable = errors.New("store unavailable")
)

// Record is one stored document at a specific revision.
type Record struct {
	Path    string
	Content []byte
	SHA     string
}

// Store is the read/write contract shared by every backend.
//
// Write replaces the whole document and records message as the commit
// message. A non-empty sha must equal the current token of the path or the
// write fails with ErrConflict. An empty sha creates the document or
// overwrites it blindly. Every successful write records a commit, even
// when the content is unchanged.
type Store interface {
	Read(ctx context.Context, path string) (*Record, error)
	Write(ctx context.Context, path string, content []byte, sha, message string) (string, error)
}

// Error describes a failed store operation. Kind is one of ErrNotFound,
// ErrConflict or ErrUnavailable, so errors.Is works on the sentinel.
type Error struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func notFound(op, p string) error {
	return &Error{Op: op, Path: p, Kind: ErrNotFound}
}

func conflict(op, p string, err error) error {
	return &Error{Op: op, Path: p, Kind: ErrConflict, Err: err}
}

func unavailable(op, p string, err error) error {
	return &Error{Op: op, Path: p, Kind: ErrUnavailable, Err: err}
}

// CleanPath normalises a document path to the slash-separated,
// repository-relative form every backend expects. Paths that escape the
// repository root are rejected.
func CleanPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	cleaned := strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" || cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("store: empty path")
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", fmt.Errorf("store: path %q escapes repository root", p)
		}
	}
	return cleaned, nil
}
