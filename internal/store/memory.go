// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
)

// BlobSHA returns the git blob hash of content, the same token GitHub
// reports for a file with these bytes.
func BlobSHA(content []byte) string {
	return plumbing.ComputeHash(plumbing.BlobObject, content).String()
}

// Commit is one entry of a MemoryStore's write history.
type Commit struct {
	Path    string
	SHA     string
	Message string
	Content []byte
	At      time.Time
}

// MemoryStore keeps documents in process memory. It enforces the same
// token rules as the remote backends and is used in development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	files   map[string]*Record
	history []Commit
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string]*Record)}
}

// Read returns a copy of the document at p.
func (m *MemoryStore) Read(ctx context.Context, p string) (*Record, error) {
	p, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, unavailable("read", p, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.files[p]
	if !ok {
		return nil, notFound("read", p)
	}
	return &Record{Path: rec.Path, Content: bytes.Clone(rec.Content), SHA: rec.SHA}, nil
}

// Write stores content at p after checking sha against the current token.
func (m *MemoryStore) Write(ctx context.Context, p string, content []byte, sha, message string) (string, error) {
	p, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", unavailable("write", p, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cur, exists := m.files[p]
	if sha != "" {
		if !exists {
			return "", conflict("write", p, nil)
		}
		if cur.SHA != sha {
			return "", conflict("write", p, nil)
		}
	}

	newSHA := BlobSHA(content)
	m.files[p] = &Record{Path: p, Content: bytes.Clone(content), SHA: newSHA}
	m.history = append(m.history, Commit{
		Path:    p,
		SHA:     newSHA,
		Message: message,
		Content: bytes.Clone(content),
		At:      time.Now(),
	})
	return newSHA, nil
}

// History returns every write recorded so far, oldest first.
func (m *MemoryStore) History() []Commit {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Commit, len(m.history))
	copy(out, m.history)
	return out
}
