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

package views

import (
	"encoding/json"
	"net/url"
	"strconv"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/hubtables/core/columns"
	"github.com/google/hubtables/core/expansion"
	"github.com/google/hubtables/core/filtering"
	"github.com/google/hubtables/core/persistence"
	"github.com/google/hubtables/core/sorting"
	"github.com/google/hubtables/core/tables"
)

type cve struct {
	ID       string
	Severity string
	Score    float64
}

var cves = []cve{
	{"CVE-2021-44228", "critical", 10},
	{"CVE-2022-22965", "critical", 9.8},
	{"CVE-2023-44487", "important", 7.5},
	{"CVE-2014-0160", "important", 7.5},
	{"CVE-2021-3156", "important", 7.8},
}

func cveConfig(features tables.Features) tables.Config[cve, string] {
	u, _ := url.Parse("/cves")
	return tables.Config[cve, string]{
		Name: "cves",
		Columns: []columns.Column{
			{Key: "id", Title: "ID"},
			{Key: "severity", Title: "Severity"},
			{Key: "score", Title: "CVSS", Hidden: true},
		},
		Features: features,
		Categories: []filtering.Category[cve]{{
			Key:   "severity",
			Title: "Severity",
			Kind:  filtering.KindMultiselect,
			Options: []filtering.Option{
				{Label: "Critical", Value: "critical"},
				{Label: "Important", Value: "important"},
			},
			GetItemValue: func(c cve) string { return c.Severity },
		}},
		Sorter: sorting.Sorter[cve]{
			Sortable: []string{"id", "score"},
			GetSortValues: func(c cve) map[string]any {
				return map[string]any{"id": c.ID, "score": c.Score}
			},
		},
		InitialItemsPerPage: 2,
		ID:                  func(c cve) string { return c.ID },
		ExpansionVariant:    expansion.Compound,
		URL:                 persistence.NewURLStore(u),
		Persist: map[persistence.Slice]persistence.Target{
			persistence.SliceFilters:    persistence.TargetURL,
			persistence.SliceSort:       persistence.TargetURL,
			persistence.SlicePagination: persistence.TargetURL,
			persistence.SliceColumns:    persistence.TargetURL,
			persistence.SliceExpanded:   persistence.TargetURL,
		},
	}
}

func cell(c cve, column string) string {
	switch column {
	case "id":
		return c.ID
	case "severity":
		return c.Severity
	case "score":
		return strconv.FormatFloat(c.Score, 'f', 1, 64)
	}
	return ""
}

func TestBuildTableViewModel(t *testing.T) {
	table, err := tables.NewClientTable(cveConfig(tables.AllFeatures))
	require.NoError(t, err)
	table.SetItems(cves)
	table.SetFilterValue("severity", filtering.Value{"important"})
	table.SetActiveSort("score")
	table.ToggleSelected(cves[3])
	table.ToggleExpanded(cves[2], "severity")

	vm := BuildTableViewModel("CVEs", table, table.Derive(), cell)

	assert.Equal(t, 4, vm.NumRenderedColumns, "two data columns plus selection and expansion")
	require.Len(t, vm.Headers, 2)
	assert.True(t, vm.Headers[0].Sortable)
	assert.False(t, vm.Headers[1].Sortable)
	assert.Empty(t, vm.Headers[0].SortDirection)

	require.NotNil(t, vm.Pagination)
	assert.Equal(t, 3, vm.Pagination.TotalItemCount)
	assert.Equal(t, 2, vm.Pagination.PageCount)
	assert.Equal(t, 1, vm.Pagination.FirstItem)
	assert.Equal(t, 2, vm.Pagination.LastItem)
	assert.True(t, vm.Pagination.HasNext)
	assert.False(t, vm.Pagination.HasPrev)

	require.Len(t, vm.Rows, 2)
	assert.Equal(t, "CVE-2023-44487", vm.Rows[0].ID)
	assert.Equal(t, "CVE-2014-0160", vm.Rows[1].ID)
	assert.True(t, vm.Rows[1].Selected)
	assert.True(t, vm.Rows[0].Cells[1].Expanded)
	assert.False(t, vm.Rows[0].Expanded)

	require.NotNil(t, vm.Toolbar)
	assert.True(t, vm.Toolbar.HasActiveFilters)
	control := vm.Toolbar.Filters[0]
	assert.Equal(t, []Chip{{Label: "Important", RemoveURL: control.Chips[0].RemoveURL}}, control.Chips)
	assert.True(t, control.Options[1].Selected)

	assert.Equal(t, 1, vm.Selection.Count)
	assert.False(t, vm.Selection.AllOnPageSelected)

	assert.Len(t, vm.AllColumns, 3)
	assert.False(t, vm.AllColumns[2].IsVisible)
}

func TestLinksRoundTripThroughTheURL(t *testing.T) {
	cfg := cveConfig(tables.AllFeatures)
	table, err := tables.NewClientTable(cfg)
	require.NoError(t, err)
	table.SetItems(cves)

	vm := BuildTableViewModel("CVEs", table, table.Derive(), cell)

	follow := func(link Link) *tables.ClientTable[cve, string] {
		u, err := url.Parse(link.String())
		require.NoError(t, err)
		next := cfg
		next.URL = persistence.NewURLStore(u)
		tbl, err := tables.NewClientTable(next)
		require.NoError(t, err)
		tbl.SetItems(cves)
		return tbl
	}

	next := follow(vm.Pagination.NextURL)
	assert.Equal(t, 2, next.PageParams().PageNumber)

	sorted := follow(vm.Headers[0].SortURL)
	assert.Equal(t, sorting.Sort{Column: "id", Direction: sorting.Asc}, sorted.ActiveSort())

	critical := follow(vm.Toolbar.Filters[0].Options[0].ToggleURL)
	assert.Equal(t, 2, critical.Derive().TotalItemCount)

	withScore := follow(vm.AllColumns[2].ToggleURL)
	assert.True(t, withScore.IsColumnVisible("score"))

	expanded := follow(vm.Rows[0].ExpandURL)
	assert.True(t, expanded.IsExpanded(cves[0]))
}

func TestDisabledFeaturesAreOmitted(t *testing.T) {
	cfg := cveConfig(tables.Features{Sort: true})
	cfg.ID = nil
	table, err := tables.NewClientTable(cfg)
	require.NoError(t, err)
	table.SetItems(cves)

	vm := BuildTableViewModel("CVEs", table, table.Derive(), cell)
	assert.Nil(t, vm.Toolbar)
	assert.Nil(t, vm.Pagination)
	assert.Nil(t, vm.Selection)
	assert.Equal(t, 2, vm.NumRenderedColumns)
	assert.Len(t, vm.Rows, 5)
	assert.Empty(t, vm.Rows[0].ID)
}

func TestJSON(t *testing.T) {
	table, err := tables.NewServerTable(cveConfig(tables.AllFeatures))
	require.NoError(t, err)
	req := table.Begin()
	table.Resolve(req, tables.Page[cve]{Items: cves[:2], Total: 5}, nil)

	vm := BuildTableViewModel("CVEs", table, table.Derive(), cell).WithStatus(false, errors.New("stale token"))
	b, err := json.Marshal(vm)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "stale token", decoded["error"])
	assert.Equal(t, "/cves", decoded["currentUrl"])
	pagination := decoded["pagination"].(map[string]any)
	assert.EqualValues(t, 3, pagination["pageCount"])
	assert.Contains(t, pagination["nextUrl"], "cves%3Apagination=")
}
