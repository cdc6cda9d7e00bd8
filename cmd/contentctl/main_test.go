// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iptvsite/internal/config"
	"iptvsite/internal/store"
)

type harness struct {
	g   *Global
	out *bytes.Buffer
	err *bytes.Buffer
}

func newHarness(t *testing.T, s store.Store) *harness {
	t.Helper()
	h := &harness{out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	h.g = &Global{
		Ctx:    context.Background(),
		Config: &config.Config{BlogPath: "data/blog/posts.json"},
		Store:  s,
		In:     strings.NewReader(""),
		Out:    h.out,
		Err:    h.err,
	}
	return h
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	h.out.Reset()
	h.err.Reset()
	var cli CLI
	parser, err := kong.New(&cli, kong.Bind(h.g), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return kctx.Run()
}

func TestPutAndGet(t *testing.T) {
	m := store.NewMemoryStore()
	h := newHarness(t, m)

	h.g.In = strings.NewReader(`{"nav":{"home":"Accueil"}}`)
	require.NoError(t, h.run(t, "put", "lib/i18n/translations/fr.json", "-m", "Seed fr"))
	sha := strings.TrimSpace(h.out.String())
	assert.Equal(t, store.BlobSHA([]byte(`{"nav":{"home":"Accueil"}}`)), sha)

	require.NoError(t, h.run(t, "get", "lib/i18n/translations/fr.json"))
	assert.Equal(t, `{"nav":{"home":"Accueil"}}`, h.out.String())
	assert.Equal(t, "sha: "+sha+"\n", h.err.String())

	// A blind write over an existing document is rejected.
	file := filepath.Join(t.TempDir(), "fr.json")
	require.NoError(t, os.WriteFile(file, []byte(`{}`), 0o644))
	err := h.run(t, "put", "lib/i18n/translations/fr.json", "--file", file)
	assert.ErrorIs(t, err, store.ErrConflict)

	require.NoError(t, h.run(t, "put", "lib/i18n/translations/fr.json", "--file", file, "--sha", sha))
	hist := m.History()
	require.Len(t, hist, 2)
	assert.Equal(t, "Seed fr", hist[0].Message)
	assert.Equal(t, "Update content via contentctl", hist[1].Message)
}

func TestGetMissing(t *testing.T) {
	h := newHarness(t, store.NewMemoryStore())
	err := h.run(t, "get", "data/metadata/en.json")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRoutesCommands(t *testing.T) {
	h := newHarness(t, store.NewMemoryStore())

	require.NoError(t, h.run(t, "routes", "url", "iptv-installation-guide", "es"))
	assert.Equal(t, "/es/guia-instalacion-iptv/\n", h.out.String())

	assert.Error(t, h.run(t, "routes", "url", "iptv-installation-guide", "de"))

	require.NoError(t, h.run(t, "routes", "check"))
	assert.Contains(t, h.out.String(), "installation\t")
	assert.Contains(t, h.out.String(), "iptv-installation-guide\t/en/iptv-installation-guide/\t/es/guia-instalacion-iptv/\t/fr/guide-installation-iptv/")

	bad := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("unknown-family:\n  - id: x\n"), 0o644))
	assert.Error(t, h.run(t, "routes", "check", bad))
}

func TestBlogList(t *testing.T) {
	m := store.NewMemoryStore()
	h := newHarness(t, m)

	require.NoError(t, h.run(t, "blog", "list"))
	assert.Empty(t, h.out.String())
	assert.Equal(t, "sha: \n", h.err.String())

	posts := `[{"id":"guide","slug":"setup-guide","title":{"en":"Setup Guide"},"excerpt":{"en":"How to"},` +
		`"primaryLocale":"en","translations":["en"],"publishedAt":"2026-01-02T10:00:00Z","blocks":[]}]`
	_, err := m.Write(context.Background(), "data/blog/posts.json", []byte(posts), "", "seed")
	require.NoError(t, err)

	require.NoError(t, h.run(t, "blog", "list"))
	assert.Equal(t, "guide\t2026-01-02\t[en]\n", h.out.String())

	require.NoError(t, h.run(t, "blog", "list", "--locale", "en"))
	assert.Equal(t, "guide\tsetup-guide\tSetup Guide\n", h.out.String())

	require.NoError(t, h.run(t, "blog", "list", "-l", "fr"))
	assert.Empty(t, h.out.String())
}
