// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// resolver.go maps canonical page identifiers to localized URL slugs for
// the installation, reseller and legal page families. A Resolver is built
// once at startup and never mutated, so it is safe to share between
// requests.
package slug

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"iptvsite/internal/locale"
)

// Family names a group of pages whose slugs are translated together.
type Family string

const (
	FamilyInstallation Family = "installation"
	FamilyReseller     Family = "reseller"
	FamilyLegal        Family = "legal"
	FamilyNone         Family = "none"
)

// HomeID is the canonical identifier an empty slug resolves to.
const HomeID = "home"

// precedence is the fixed order used by reverse lookups.
var precedence = []Family{FamilyInstallation, FamilyReseller, FamilyLegal}

//go:embed routes.yaml
var defaultRoutes []byte

// Route associates one canonical identifier with a slug per locale.
type Route struct {
	ID    string
	Slugs map[locale.Locale]string
}

// Table is the set of routes belonging to one family.
type Table struct {
	Family Family
	Routes []Route
}

type family struct {
	name   Family
	routes []Route
	byID   map[string]Route
	bySlug map[locale.Locale]map[string]string
}

// Resolver translates between canonical identifiers and localized slugs.
type Resolver struct {
	families []*family
}

// NewResolver validates the tables and builds an immutable Resolver.
// Every route must define a non-empty slug for every supported locale,
// and no slug may be claimed by two different pages of the same family.
func NewResolver(tables ...Table) (*Resolver, error) {
	byName := make(map[Family]*family, len(tables))
	owner := make(map[string]Family)

	for _, t := range tables {
		if !isFamily(t.Family) {
			return nil, fmt.Errorf("slug: unknown family %q", t.Family)
		}
		if _, dup := byName[t.Family]; dup {
			return nil, fmt.Errorf("slug: family %q defined twice", t.Family)
		}

		f := &family{
			name:   t.Family,
			byID:   make(map[string]Route, len(t.Routes)),
			bySlug: make(map[locale.Locale]map[string]string),
		}
		// seen tracks slug ownership across every locale of the family.
		seen := make(map[string]string)

		for _, rt := range t.Routes {
			id := strings.TrimSpace(rt.ID)
			if id == "" {
				return nil, fmt.Errorf("slug: %s: route with empty id", t.Family)
			}
			if other, ok := owner[id]; ok {
				return nil, fmt.Errorf("slug: id %q appears in both %s and %s", id, other, t.Family)
			}
			owner[id] = t.Family

			slugs := make(map[locale.Locale]string, len(rt.Slugs))
			for _, l := range locale.All() {
				s := strings.TrimSpace(rt.Slugs[l])
				if s == "" {
					return nil, fmt.Errorf("slug: %s: %q has no %s slug", t.Family, id, l)
				}
				if prev, ok := seen[s]; ok && prev != id {
					return nil, fmt.Errorf("slug: %s: slug %q used by both %q and %q", t.Family, s, prev, id)
				}
				seen[s] = id
				slugs[l] = s

				if f.bySlug[l] == nil {
					f.bySlug[l] = make(map[string]string)
				}
				f.bySlug[l][s] = id
			}
			for l := range rt.Slugs {
				if !l.Valid() {
					return nil, fmt.Errorf("slug: %s: %q has unsupported locale %q", t.Family, id, l)
				}
			}

			route := Route{ID: id, Slugs: slugs}
			f.routes = append(f.routes, route)
			f.byID[id] = route
		}
		byName[t.Family] = f
	}

	r := &Resolver{}
	for _, name := range precedence {
		if f, ok := byName[name]; ok {
			r.families = append(r.families, f)
		}
	}
	return r, nil
}

// routeFile is the on-disk YAML layout of a route table.
type routeFile map[string][]struct {
	ID    string            `yaml:"id"`
	Slugs map[string]string `yaml:"slugs"`
}

// Parse builds a Resolver from YAML route data.
func Parse(data []byte) (*Resolver, error) {
	var rf routeFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("slug: parse routes: %w", err)
	}

	var tables []Table
	for _, name := range precedence {
		entries, ok := rf[string(name)]
		if !ok {
			continue
		}
		t := Table{Family: name}
		for _, e := range entries {
			rt := Route{ID: e.ID, Slugs: make(map[locale.Locale]string, len(e.Slugs))}
			for l, s := range e.Slugs {
				rt.Slugs[locale.Locale(l)] = s
			}
			t.Routes = append(t.Routes, rt)
		}
		tables = append(tables, t)
	}
	for name := range rf {
		if !isFamily(Family(name)) {
			return nil, fmt.Errorf("slug: unknown family %q", name)
		}
	}
	return NewResolver(tables...)
}

// LoadFile reads a YAML route table from disk.
func LoadFile(path string) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("slug: read routes: %w", err)
	}
	return Parse(data)
}

// Default returns the Resolver for the route table compiled into the binary.
func Default() (*Resolver, error) {
	return Parse(defaultRoutes)
}

// Localize returns the slug shown to users of loc for canonicalID. An
// identifier outside every family is returned unchanged, so pages whose
// slug is identical in all locales need no table entry.
func (r *Resolver) Localize(canonicalID string, loc locale.Locale) string {
	for _, f := range r.families {
		if rt, ok := f.byID[canonicalID]; ok {
			if s, ok := rt.Slugs[loc]; ok {
				return s
			}
			return canonicalID
		}
	}
	return canonicalID
}

// Canonicalize maps a localized slug back to its canonical identifier.
// When loc is a supported locale its slugs are searched first, family by
// family; otherwise, or when that finds nothing, every locale of every
// family is scanned in the same order. Blank slugs resolve to HomeID.
// The boolean is false when no family knows the slug.
func (r *Resolver) Canonicalize(s string, loc locale.Locale) (string, bool) {
	s = strings.Trim(strings.TrimSpace(s), "/")
	if s == "" {
		return HomeID, true
	}

	if loc.Valid() {
		for _, f := range r.families {
			if id, ok := f.bySlug[loc][s]; ok {
				return id, true
			}
		}
	}

	for _, f := range r.families {
		for _, l := range locale.All() {
			if id, ok := f.bySlug[l][s]; ok {
				return id, true
			}
		}
	}
	return "", false
}

// Classify reports which family canonicalID belongs to.
func (r *Resolver) Classify(canonicalID string) Family {
	for _, f := range r.families {
		if _, ok := f.byID[canonicalID]; ok {
			return f.name
		}
	}
	return FamilyNone
}

// BuildURL returns the site path for canonicalID in loc. The trailing
// slash is required by the static export.
func (r *Resolver) BuildURL(canonicalID string, loc locale.Locale) string {
	return "/" + string(loc) + "/" + r.Localize(canonicalID, loc) + "/"
}

// Alternates returns the URL of canonicalID in every supported locale,
// suitable for hreflang links.
func (r *Resolver) Alternates(canonicalID string) map[locale.Locale]string {
	out := make(map[locale.Locale]string, len(locale.All()))
	for _, l := range locale.All() {
		out[l] = r.BuildURL(canonicalID, l)
	}
	return out
}

// Families returns the configured families in precedence order.
func (r *Resolver) Families() []Family {
	out := make([]Family, 0, len(r.families))
	for _, f := range r.families {
		out = append(out, f.name)
	}
	return out
}

// CanonicalIDs returns the identifiers of fam in table order.
func (r *Resolver) CanonicalIDs(fam Family) []string {
	for _, f := range r.families {
		if f.name != fam {
			continue
		}
		ids := make([]string, 0, len(f.routes))
		for _, rt := range f.routes {
			ids = append(ids, rt.ID)
		}
		return ids
	}
	return nil
}

func isFamily(f Family) bool {
	for _, name := range precedence {
		if f == name {
			return true
		}
	}
	return false
}
