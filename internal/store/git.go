// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitStore keeps documents in a local git working copy. Reads come from
// the HEAD commit, so uncommitted edits in the working tree are invisible,
// and every successful write is a commit.
type GitStore struct {
	dir    string
	repo   *git.Repository
	author object.Signature

	mu sync.Mutex
}

// OpenGitStore opens the repository at dir, initialising an empty one if
// none exists yet.
func OpenGitStore(dir, authorName, authorEmail string) (*GitStore, error) {
	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("git store: create %s: %w", dir, err)
		}
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		return nil, fmt.Errorf("git store: open %s: %w", dir, err)
	}

	if authorName == "" {
		authorName = "Content Admin"
	}
	if authorEmail == "" {
		authorEmail = "admin@localhost"
	}

	return &GitStore{
		dir:    dir,
		repo:   repo,
		author: object.Signature{Name: authorName, Email: authorEmail},
	}, nil
}

// Read returns the document at p as of HEAD.
func (g *GitStore) Read(ctx context.Context, p string) (*Record, error) {
	p, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, unavailable("read", p, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.readHead(p)
}

func (g *GitStore) readHead(p string) (*Record, error) {
	ref, err := g.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, notFound("read", p)
	}
	if err != nil {
		return nil, unavailable("read", p, err)
	}

	commit, err := g.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, unavailable("read", p, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, unavailable("read", p, err)
	}

	file, err := tree.File(p)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, notFound("read", p)
	}
	if err != nil {
		return nil, unavailable("read", p, err)
	}

	contents, err := file.Contents()
	if err != nil {
		return nil, unavailable("read", p, err)
	}
	return &Record{Path: p, Content: []byte(contents), SHA: file.Hash.String()}, nil
}

// Write writes content to the working tree and commits it. The token check
// and the commit happen under one lock.
func (g *GitStore) Write(ctx context.Context, p string, content []byte, sha, message string) (string, error) {
	p, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", unavailable("write", p, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	cur, err := g.readHead(p)
	exists := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}
	if sha != "" && (!exists || cur.SHA != sha) {
		return "", conflict("write", p, nil)
	}

	newSHA := BlobSHA(content)
	full := filepath.Join(g.dir, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", unavailable("write", p, err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return "", unavailable("write", p, err)
	}

	wt, err := g.repo.Worktree()
	if err != nil {
		return "", unavailable("write", p, err)
	}
	if _, err := wt.Add(p); err != nil {
		return "", unavailable("write", p, err)
	}

	author := g.author
	author.When = time.Now()
	if _, err := wt.Commit(message, &git.CommitOptions{Author: &author, AllowEmptyCommits: true}); err != nil {
		return "", unavailable("write", p, fmt.Errorf("commit: %w", err))
	}
	return newSHA, nil
}
