// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Command contentctl reads and writes site content through the same store
// the server uses, and checks slug route files before they are deployed.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"iptvsite/internal/config"
	"iptvsite/internal/store"
)

// Global carries the dependencies every command runs against.
type Global struct {
	Ctx    context.Context
	Config *config.Config
	Store  store.Store
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
}

// CLI is the command tree.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Get    GetCmd    `cmd:"" help:"Print a document from the content store"`
	Put    PutCmd    `cmd:"" help:"Write a document to the content store"`
	Routes RoutesCmd `cmd:"" help:"Inspect slug route tables"`
	Blog   BlogCmd   `cmd:"" help:"Inspect blog posts"`
}

// AfterApply sets up logging once flags are parsed.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	s, err := store.Open(cfg)
	if err != nil {
		slog.Error("failed to open content store", "error", err)
		os.Exit(1)
	}

	g := &Global{Ctx: context.Background(), Config: cfg, Store: s, In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("contentctl"),
		kong.Description("Manage IPTV site content."),
		kong.Bind(g),
	)
	if err := kctx.Run(); err != nil {
		slog.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
