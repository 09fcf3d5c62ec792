/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package models

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/google/hubtables/core/columns"
	"github.com/google/hubtables/core/expansion"
	"github.com/google/hubtables/core/filtering"
	"github.com/google/hubtables/core/persistence"
	"github.com/google/hubtables/core/sorting"
	"github.com/google/hubtables/core/tables"
	"github.com/google/hubtables/core/views"
)

// Hub resource names.
const (
	ResourceAdvisory      = "advisory"
	ResourceVulnerability = "vulnerability"
	ResourcePackage       = "purl"
	ResourceSBOM          = "sbom"
)

// Options are the per-request parts of a table declaration.
type Options struct {
	Prefix  string
	URL     *persistence.URLStore
	Local   persistence.Store
	Persist map[persistence.Slice]persistence.Target
	Logger  *zerolog.Logger
}

// DefaultPersist keeps shareable state in the URL and layout preferences in
// the local store.
var DefaultPersist = map[persistence.Slice]persistence.Target{
	persistence.SliceFilters:    persistence.TargetURL,
	persistence.SliceSort:       persistence.TargetURL,
	persistence.SlicePagination: persistence.TargetURL,
	persistence.SliceExpanded:   persistence.TargetURL,
	persistence.SliceColumns:    persistence.TargetLocal,
}

// Definition declares one dashboard table over items of type T.
type Definition[T any] struct {
	name     string
	title    string
	resource string
	build    func() tables.Config[T, string]
	Cell     views.CellFunc[T]
}

func (d *Definition[T]) Name() string     { return d.name }
func (d *Definition[T]) Title() string    { return d.title }
func (d *Definition[T]) Resource() string { return d.resource }

// Config returns the table declaration bound to the given stores.
func (d *Definition[T]) Config(o Options) tables.Config[T, string] {
	cfg := d.build()
	cfg.PersistPrefix = o.Prefix
	cfg.URL = o.URL
	cfg.Local = o.Local
	cfg.Persist = o.Persist
	if cfg.Persist == nil {
		cfg.Persist = DefaultPersist
	}
	cfg.Logger = o.Logger
	return cfg
}

func (d *Definition[T]) Columns() []columns.Column {
	return d.build().Columns
}

func (d *Definition[T]) Sortable() []string {
	return d.build().Sorter.Sortable
}

func (d *Definition[T]) FilterKeys() []string {
	cats := d.build().Categories
	keys := make([]string, len(cats))
	for i, c := range cats {
		keys[i] = c.Key
	}
	return keys
}

func search[T any](placeholder string, text func(T) string) filtering.Category[T] {
	return filtering.Category[T]{
		Key:          "search",
		Title:        "Search",
		Kind:         filtering.KindSearch,
		Placeholder:  placeholder,
		GetItemValue: text,
	}
}

func severity[T any](get func(T) Severity) filtering.Category[T] {
	return filtering.Category[T]{
		Key:          "severity",
		Title:        "Severity",
		Kind:         filtering.KindMultiselect,
		Options:      SeverityOptions,
		HubField:     "severity",
		GetItemValue: func(item T) string { return string(get(item)) },
	}
}

func published[T any](get func(T) string) filtering.Category[T] {
	return filtering.Category[T]{
		Key:          "published",
		Title:        "Published",
		Kind:         filtering.KindDateRange,
		HubField:     "published",
		GetItemValue: get,
	}
}

// Advisories is the advisory list page.
var Advisories = &Definition[Advisory]{
	name:     "advisories",
	title:    "Advisories",
	resource: ResourceAdvisory,
	build: func() tables.Config[Advisory, string] {
		return tables.Config[Advisory, string]{
			Name: "advisories",
			Columns: []columns.Column{
				{Key: "identifier", Title: "ID"},
				{Key: "title", Title: "Title"},
				{Key: "severity", Title: "Aggregate severity"},
				{Key: "published", Title: "Published"},
				{Key: "vulnerabilities", Title: "Vulnerabilities"},
				{Key: "labels", Title: "Labels", Hidden: true},
			},
			Features: tables.AllFeatures,
			Categories: []filtering.Category[Advisory]{
				search("Search by ID or title", func(a Advisory) string { return a.Identifier + " " + a.Title }),
				severity(func(a Advisory) Severity { return a.Severity }),
				published(func(a Advisory) string { return date(a.Published) }),
				{
					Key:           "label",
					Title:         "Label",
					Kind:          filtering.KindMultiselect,
					Logic:         filtering.LogicAnd,
					HubField:      "label",
					GetItemValues: func(a Advisory) []string { return a.Labels },
				},
			},
			Sorter: sorting.Sorter[Advisory]{
				Sortable: []string{"identifier", "title", "severity", "published"},
				GetSortValues: func(a Advisory) map[string]any {
					return map[string]any{
						"identifier": a.Identifier,
						"title":      a.Title,
						"severity":   a.Severity.Rank(),
						"published":  a.Published,
					}
				},
				HubFields: map[string]string{
					"identifier": "identifier",
					"title":      "title",
					"severity":   "severity",
					"published":  "published",
				},
			},
			InitialSort:      sorting.Sort{Column: "published", Direction: sorting.Desc},
			ID:               func(a Advisory) string { return a.Identifier },
			ExpansionVariant: expansion.Compound,
		}
	},
	Cell: func(a Advisory, column string) string {
		switch column {
		case "identifier":
			return a.Identifier
		case "title":
			return a.Title
		case "severity":
			return string(a.Severity)
		case "published":
			return date(a.Published)
		case "vulnerabilities":
			return strconv.Itoa(len(a.Vulnerabilities))
		case "labels":
			return strings.Join(a.Labels, ", ")
		}
		return ""
	},
}

// Vulnerabilities is the CVE list page.
var Vulnerabilities = &Definition[Vulnerability]{
	name:     "vulnerabilities",
	title:    "CVEs",
	resource: ResourceVulnerability,
	build: func() tables.Config[Vulnerability, string] {
		return tables.Config[Vulnerability, string]{
			Name: "vulnerabilities",
			Columns: []columns.Column{
				{Key: "identifier", Title: "ID"},
				{Key: "title", Title: "Title"},
				{Key: "severity", Title: "Severity"},
				{Key: "base_score", Title: "CVSS"},
				{Key: "published", Title: "Published"},
				{Key: "advisories", Title: "Advisories", Hidden: true},
			},
			Features: tables.AllFeatures,
			Categories: []filtering.Category[Vulnerability]{
				search("Search by CVE or title", func(v Vulnerability) string { return v.Identifier + " " + v.Title }),
				severity(func(v Vulnerability) Severity { return v.Severity }),
				published(func(v Vulnerability) string { return date(v.Published) }),
			},
			Sorter: sorting.Sorter[Vulnerability]{
				Sortable: []string{"identifier", "severity", "base_score", "published"},
				GetSortValues: func(v Vulnerability) map[string]any {
					return map[string]any{
						"identifier": v.Identifier,
						"severity":   v.Severity.Rank(),
						"base_score": v.BaseScore,
						"published":  v.Published,
					}
				},
				HubFields: map[string]string{
					"identifier": "identifier",
					"severity":   "severity",
					"base_score": "base_score",
					"published":  "published",
				},
			},
			InitialSort:      sorting.Sort{Column: "published", Direction: sorting.Desc},
			ID:               func(v Vulnerability) string { return v.Identifier },
			ExpansionVariant: expansion.Single,
		}
	},
	Cell: func(v Vulnerability, column string) string {
		switch column {
		case "identifier":
			return v.Identifier
		case "title":
			return v.Title
		case "severity":
			return string(v.Severity)
		case "base_score":
			return strconv.FormatFloat(v.BaseScore, 'f', 1, 64)
		case "published":
			return date(v.Published)
		case "advisories":
			return strings.Join(v.Advisories, ", ")
		}
		return ""
	},
}

// Packages is the package list page.
var Packages = &Definition[Package]{
	name:     "packages",
	title:    "Packages",
	resource: ResourcePackage,
	build: func() tables.Config[Package, string] {
		return tables.Config[Package, string]{
			Name: "packages",
			Columns: []columns.Column{
				{Key: "name", Title: "Name"},
				{Key: "namespace", Title: "Namespace"},
				{Key: "version", Title: "Version"},
				{Key: "type", Title: "Type"},
				{Key: "license", Title: "License", Hidden: true},
				{Key: "advisories", Title: "Advisories"},
			},
			Features: tables.AllFeatures,
			Categories: []filtering.Category[Package]{
				search("Search by name or purl", func(p Package) string { return p.PURL }),
				{
					Key:   "type",
					Title: "Type",
					Kind:  filtering.KindMultiselect,
					Options: []filtering.Option{
						{Label: "Maven", Value: "maven"},
						{Label: "npm", Value: "npm"},
						{Label: "Go", Value: "golang"},
						{Label: "RPM", Value: "rpm"},
						{Label: "PyPI", Value: "pypi"},
					},
					HubField:     "type",
					GetItemValue: func(p Package) string { return p.Type },
				},
				{
					Key:          "license",
					Title:        "License",
					Kind:         filtering.KindSelect,
					HubField:     "license",
					GetItemValue: func(p Package) string { return p.License },
				},
			},
			Sorter: sorting.Sorter[Package]{
				Sortable: []string{"name", "namespace", "version", "advisories"},
				GetSortValues: func(p Package) map[string]any {
					return map[string]any{
						"name":       p.Name,
						"namespace":  p.Namespace,
						"version":    p.SemVer(),
						"advisories": p.Advisories,
					}
				},
				// versions only sort on the client
				HubFields: map[string]string{
					"name":       "name",
					"namespace":  "namespace",
					"advisories": "advisories",
				},
			},
			InitialSort:      sorting.Sort{Column: "name", Direction: sorting.Asc},
			ID:               func(p Package) string { return p.PURL },
			ExpansionVariant: expansion.Compound,
		}
	},
	Cell: func(p Package, column string) string {
		switch column {
		case "name":
			return p.Name
		case "namespace":
			return p.Namespace
		case "version":
			return p.Version
		case "type":
			return p.Type
		case "license":
			return p.License
		case "advisories":
			return strconv.Itoa(p.Advisories)
		}
		return ""
	},
}

// SBOMs is the SBOM list page.
var SBOMs = &Definition[SBOM]{
	name:     "sboms",
	title:    "SBOMs",
	resource: ResourceSBOM,
	build: func() tables.Config[SBOM, string] {
		return tables.Config[SBOM, string]{
			Name: "sboms",
			Columns: []columns.Column{
				{Key: "name", Title: "Name"},
				{Key: "version", Title: "Version"},
				{Key: "supplier", Title: "Supplier"},
				{Key: "published", Title: "Created on"},
				{Key: "packages", Title: "Packages"},
				{Key: "labels", Title: "Labels", Hidden: true},
			},
			Features: tables.AllFeatures,
			Categories: []filtering.Category[SBOM]{
				search("Search by name", func(s SBOM) string { return s.Name }),
				{
					Key:          "supplier",
					Title:        "Supplier",
					Kind:         filtering.KindSelect,
					HubField:     "supplier",
					GetItemValue: func(s SBOM) string { return s.Supplier },
				},
				published(func(s SBOM) string { return date(s.Published) }),
				{
					Key:           "label",
					Title:         "Label",
					Kind:          filtering.KindMultiselect,
					HubField:      "label",
					GetItemValues: func(s SBOM) []string { return s.Labels },
				},
			},
			Sorter: sorting.Sorter[SBOM]{
				Sortable: []string{"name", "published", "packages"},
				GetSortValues: func(s SBOM) map[string]any {
					return map[string]any{
						"name":      s.Name,
						"published": s.Published,
						"packages":  s.Packages,
					}
				},
				HubFields: map[string]string{
					"name":      "name",
					"published": "published",
					"packages":  "packages",
				},
			},
			InitialSort:      sorting.Sort{Column: "published", Direction: sorting.Desc},
			ID:               func(s SBOM) string { return s.ID },
			ExpansionVariant: expansion.Single,
		}
	},
	Cell: func(s SBOM, column string) string {
		switch column {
		case "name":
			return s.Name
		case "version":
			return s.Version
		case "supplier":
			return s.Supplier
		case "published":
			return date(s.Published)
		case "packages":
			return strconv.Itoa(s.Packages)
		case "labels":
			return strings.Join(s.Labels, ", ")
		}
		return ""
	},
}
