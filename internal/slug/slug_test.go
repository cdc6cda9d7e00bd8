// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGenerate exercises the slug generator with typical titles in all
// three site languages, special characters and boundary conditions.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal titles ---
		{name: "simple two words", input: "Hello World", want: "hello-world"},
		{name: "title with year", input: "Best IPTV 2026", want: "best-iptv-2026"},
		{name: "already lowercase", input: "already lowercase", want: "already-lowercase"},
		{name: "single word", input: "Firestick", want: "firestick"},

		// --- Special characters ---
		{name: "punctuation marks", input: "Hello, World! How's it going?", want: "hello-world-hows-it-going"},
		{name: "ampersand", input: "Movies & Series", want: "movies-series"},
		{name: "parentheses", input: "Smart TV (Samsung)", want: "smart-tv-samsung"},
		{name: "plus and equals", input: "1 + 1 = 2", want: "1-1-2"},

		// --- Accents are transliterated, not dropped ---
		{name: "spanish accents", input: "Guía de instalación", want: "guia-de-instalacion"},
		{name: "spanish question", input: "¿Qué es IPTV?", want: "que-es-iptv"},
		{name: "spanish enye", input: "Año nuevo", want: "ano-nuevo"},
		{name: "french cedilla", input: "Ça marche très bien", want: "ca-marche-tres-bien"},
		{name: "french ligature", input: "Cœur de l'été", want: "coeur-de-lete"},

		// --- Whitespace handling ---
		{name: "leading and trailing spaces", input: "  hello world  ", want: "hello-world"},
		{name: "multiple consecutive spaces collapsed", input: "hello    world", want: "hello-world"},
		{name: "tabs become hyphens", input: "hello\tworld", want: "hello-world"},
		{name: "newlines become hyphens", input: "hello\nworld", want: "hello-world"},

		// --- Hyphen handling ---
		{name: "leading hyphens", input: "---hello world", want: "hello-world"},
		{name: "multiple hyphens between words", input: "hello---world", want: "hello-world"},
		{name: "single hyphen preserved", input: "well-known fact", want: "well-known-fact"},
		{name: "hyphens and spaces mixed", input: "  --hello -- world--  ", want: "hello-world"},

		// --- Edge cases ---
		{name: "empty string", input: "", want: ""},
		{name: "only spaces", input: "     ", want: ""},
		{name: "only special characters", input: "!@#$%^&*()", want: ""},
		{name: "version number", input: "Version 2.0.1", want: "version-201"},
		{name: "date-like string", input: "2026-02-25", want: "2026-02-25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.input))
		})
	}
}

// TestGenerate_Idempotent verifies that generating a slug from an already
// valid slug produces the same result.
func TestGenerate_Idempotent(t *testing.T) {
	for _, s := range []string{"hello-world", "guia-instalacion-iptv", "a", "123"} {
		t.Run(s, func(t *testing.T) {
			assert.Equal(t, s, Generate(s))
		})
	}
}
