// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"iptvsite/internal/content"
	"iptvsite/internal/locale"
	"iptvsite/internal/slug"
	"iptvsite/internal/store"
)

// GetCmd implements 'get'.
type GetCmd struct {
	Path string `arg:"" help:"Document path inside the content repository"`
}

func (c *GetCmd) Run(g *Global) error {
	rec, err := g.Store.Read(g.Ctx, c.Path)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Err, "sha: %s\n", rec.SHA)
	_, err = g.Out.Write(rec.Content)
	return err
}

// PutCmd implements 'put'. Without --sha the write only succeeds when
// the document does not exist yet.
type PutCmd struct {
	Path    string `arg:"" help:"Document path inside the content repository"`
	File    string `short:"f" help:"Read content from this file instead of stdin" type:"existingfile"`
	SHA     string `help:"Version token the edit is based on"`
	Message string `short:"m" help:"Commit message" default:"Update content via contentctl"`
}

func (c *PutCmd) Run(g *Global) error {
	in := g.In
	if c.File != "" {
		f, err := os.Open(c.File)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading content: %w", err)
	}

	if c.SHA == "" {
		_, err := g.Store.Read(g.Ctx, c.Path)
		if err == nil {
			return &store.Error{Op: "put", Path: c.Path, Kind: store.ErrConflict, Err: errors.New("document exists; pass --sha")}
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}

	sha, err := g.Store.Write(g.Ctx, c.Path, data, c.SHA, c.Message)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.Out, sha)
	return nil
}

// RoutesCmd groups the route table commands.
type RoutesCmd struct {
	Check RoutesCheckCmd `cmd:"" help:"Validate a route file and list its families"`
	URL   RoutesURLCmd   `cmd:"" name:"url" help:"Print the localized URL of a canonical page"`
}

// RoutesCheckCmd implements 'routes check'.
type RoutesCheckCmd struct {
	File string `arg:"" optional:"" help:"Route file; defaults to ROUTES_FILE or the built-in table"`
}

func (c *RoutesCheckCmd) Run(g *Global) error {
	r, err := resolverFor(c.File, g.Config.RoutesFile)
	if err != nil {
		return err
	}
	for _, fam := range r.Families() {
		ids := r.CanonicalIDs(fam)
		fmt.Fprintf(g.Out, "%s\t%d pages\n", fam, len(ids))
		for _, id := range ids {
			alts := r.Alternates(id)
			fmt.Fprintf(g.Out, "  %s", id)
			for _, l := range locale.All() {
				fmt.Fprintf(g.Out, "\t%s", alts[l])
			}
			fmt.Fprintln(g.Out)
		}
	}
	return nil
}

// RoutesURLCmd implements 'routes url'.
type RoutesURLCmd struct {
	ID     string `arg:"" help:"Canonical page id"`
	Locale string `arg:"" help:"Target locale (en, es, fr)"`
	File   string `short:"f" help:"Route file; defaults to ROUTES_FILE or the built-in table"`
}

func (c *RoutesURLCmd) Run(g *Global) error {
	loc, ok := locale.Parse(c.Locale)
	if !ok {
		return fmt.Errorf("unsupported locale %q", c.Locale)
	}
	r, err := resolverFor(c.File, g.Config.RoutesFile)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.Out, r.BuildURL(c.ID, loc))
	return nil
}

func resolverFor(file, fallback string) (*slug.Resolver, error) {
	if file == "" {
		file = fallback
	}
	if file == "" {
		return slug.Default()
	}
	return slug.LoadFile(file)
}

// BlogCmd groups the blog commands.
type BlogCmd struct {
	List BlogListCmd `cmd:"" help:"List posts with their slugs"`
}

// BlogListCmd implements 'blog list'.
type BlogListCmd struct {
	Locale string `short:"l" help:"Only posts published in this locale"`
}

func (c *BlogListCmd) Run(g *Global) error {
	blog := content.NewBlog(g.Store, g.Config.BlogPath)
	if c.Locale != "" {
		loc, ok := locale.Parse(c.Locale)
		if !ok {
			return fmt.Errorf("unsupported locale %q", c.Locale)
		}
		posts, err := blog.ListForLocale(g.Ctx, loc)
		if err != nil {
			return err
		}
		for _, p := range posts {
			fmt.Fprintf(g.Out, "%s\t%s\t%s\n", p.ID, p.SlugFor(loc), p.TitleFor(loc))
		}
		return nil
	}

	posts, sha, err := blog.ListAll(g.Ctx)
	if err != nil {
		return err
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	fmt.Fprintf(g.Err, "sha: %s\n", sha)
	for _, p := range posts {
		fmt.Fprintf(g.Out, "%s\t%s\t%v\n", p.ID, p.PublishedAt.Format("2006-01-02"), p.AvailableLocales())
	}
	return nil
}
