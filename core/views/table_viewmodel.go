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
	"fmt"
	"slices"

	"github.com/google/safehtml"

	"github.com/google/hubtables/core/columns"
	"github.com/google/hubtables/core/filtering"
	"github.com/google/hubtables/core/paging"
	"github.com/google/hubtables/core/sorting"
	"github.com/google/hubtables/core/tables"
)

// Link is a sanitized URL that encodes to JSON as a string.
type Link struct {
	safehtml.URL
}

func (l Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// FilterFeature is implemented by tables with filter controls.
type FilterFeature interface {
	FilterValue(key string) filtering.Value
	FilterLink(key string, v filtering.Value) safehtml.URL
	ResetFiltersLink() safehtml.URL
}

// SortFeature is implemented by tables with sortable headers.
type SortFeature interface {
	ActiveSort() sorting.Sort
	SortLink(column string) safehtml.URL
}

// PaginationFeature is implemented by paged tables.
type PaginationFeature interface {
	PageParams() paging.Params
	PageLink(n int) safehtml.URL
}

// ColumnFeature is implemented by tables with column visibility controls.
type ColumnFeature interface {
	Columns() []columns.Column
	VisibleColumns() []columns.Column
	ColumnToggleLink(column string) safehtml.URL
}

// SelectionFeature is implemented by tables with row selection.
type SelectionFeature[T any] interface {
	IsSelected(item T) bool
	AllSelected(items []T) bool
	Selected() []T
}

// ExpansionFeature is implemented by tables with expandable rows and cells.
type ExpansionFeature[T any] interface {
	IsExpanded(item T, column ...string) bool
	ExpandLink(item T, column ...string) safehtml.URL
}

// Table is the union of all features, satisfied by tables.ClientTable and
// tables.ServerTable.
type Table[T any, K comparable] interface {
	Config() tables.Config[T, K]
	CurrentLink() safehtml.URL
	FilterFeature
	SortFeature
	PaginationFeature
	ColumnFeature
	SelectionFeature[T]
	ExpansionFeature[T]
}

// CellFunc renders the value of one column for an item.
type CellFunc[T any] func(item T, column string) string

// TableViewModel contains the table state formatted for template or JSON
// consumption
type TableViewModel struct {
	Title      string       `json:"title"`
	CurrentURL Link         `json:"currentUrl"`
	Toolbar    *Toolbar     `json:"toolbar,omitempty"`
	Headers    []HeaderInfo `json:"headers"`
	Rows       []RowInfo    `json:"rows"`
	AllColumns []ColumnInfo `json:"allColumns"`

	Pagination *PaginationInfo `json:"pagination,omitempty"`
	Selection  *SelectionInfo  `json:"selection,omitempty"`

	// NumRenderedColumns counts data columns plus the selection and
	// expansion columns, for spanning empty-state and expanded rows.
	NumRenderedColumns int `json:"numRenderedColumns"`

	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

type Toolbar struct {
	Filters          []FilterControl `json:"filters"`
	HasActiveFilters bool            `json:"hasActiveFilters"`
	ResetURL         Link            `json:"resetUrl"`
}

// FilterControl describes one filter category input.
type FilterControl struct {
	Key         string          `json:"key"`
	Title       string          `json:"title"`
	Kind        filtering.Kind  `json:"kind"`
	Placeholder string          `json:"placeholder,omitempty"`
	Value       filtering.Value `json:"value"`
	Options     []OptionInfo    `json:"options,omitempty"`
	Chips       []Chip          `json:"chips,omitempty"`
}

type OptionInfo struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	Selected  bool   `json:"selected"`
	ToggleURL Link   `json:"toggleUrl"`
}

// Chip is one active filter value with a link removing it.
type Chip struct {
	Label     string `json:"label"`
	RemoveURL Link   `json:"removeUrl"`
}

type HeaderInfo struct {
	Key           string            `json:"key"`
	Title         string            `json:"title"`
	Sortable      bool              `json:"sortable"`
	SortDirection sorting.Direction `json:"sortDirection,omitempty"`
	SortURL       Link              `json:"sortUrl"`
}

type RowInfo struct {
	ID        string     `json:"id"`
	Cells     []CellInfo `json:"cells"`
	Selected  bool       `json:"selected"`
	Expanded  bool       `json:"expanded"`
	ExpandURL Link       `json:"expandUrl"`
}

type CellInfo struct {
	Column    string `json:"column"`
	Value     string `json:"value"`
	Expanded  bool   `json:"expanded"`
	ExpandURL Link   `json:"expandUrl"`
}

// ColumnInfo contains information about a column for the visibility menu
type ColumnInfo struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	IsVisible bool   `json:"isVisible"`
	ToggleURL Link   `json:"toggleUrl"`
}

type PaginationInfo struct {
	PageNumber     int  `json:"pageNumber"`
	ItemsPerPage   int  `json:"itemsPerPage"`
	PageCount      int  `json:"pageCount"`
	TotalItemCount int  `json:"totalItemCount"`
	FirstItem      int  `json:"firstItem"`
	LastItem       int  `json:"lastItem"`
	HasPrev        bool `json:"hasPrev"`
	HasNext        bool `json:"hasNext"`
	PrevURL        Link `json:"prevUrl"`
	NextURL        Link `json:"nextUrl"`
}

type SelectionInfo struct {
	Count             int  `json:"count"`
	AllOnPageSelected bool `json:"allOnPageSelected"`
}

// BuildTableViewModel merges the prop bindings of every enabled feature.
func BuildTableViewModel[T any, K comparable](title string, t Table[T, K], d tables.Derived[T], cell CellFunc[T]) *TableViewModel {
	cfg := t.Config()
	visible := t.VisibleColumns()

	vm := &TableViewModel{
		Title:              title,
		CurrentURL:         Link{t.CurrentLink()},
		Headers:            buildHeaders(cfg, t, visible),
		AllColumns:         buildColumns(t),
		NumRenderedColumns: len(visible),
	}

	if cfg.Features.Filter {
		vm.Toolbar = buildToolbar(cfg.Categories, t)
	}
	if cfg.Features.Pagination {
		vm.Pagination = buildPagination(t, d)
	}
	if cfg.Features.Selection {
		vm.NumRenderedColumns++
		vm.Selection = &SelectionInfo{
			Count:             len(t.Selected()),
			AllOnPageSelected: t.AllSelected(d.CurrentPageItems),
		}
	}
	if cfg.Features.Expansion {
		vm.NumRenderedColumns++
	}

	vm.Rows = make([]RowInfo, 0, len(d.CurrentPageItems))
	for _, item := range d.CurrentPageItems {
		vm.Rows = append(vm.Rows, buildRow(cfg, t, visible, item, cell))
	}
	return vm
}

// WithStatus records the fetch status of a server table.
func (vm *TableViewModel) WithStatus(loading bool, err error) *TableViewModel {
	vm.Loading = loading
	if err != nil {
		vm.Error = err.Error()
	}
	return vm
}

func buildHeaders[T any, K comparable](cfg tables.Config[T, K], t SortFeature, visible []columns.Column) []HeaderInfo {
	active := t.ActiveSort()
	headers := make([]HeaderInfo, len(visible))
	for i, c := range visible {
		h := HeaderInfo{Key: c.Key, Title: c.Title}
		if cfg.Features.Sort && cfg.Sorter.IsSortable(c.Key) {
			h.Sortable = true
			h.SortURL = Link{t.SortLink(c.Key)}
			if active.Column == c.Key {
				h.SortDirection = active.Direction
			}
		}
		headers[i] = h
	}
	return headers
}

func buildColumns(t ColumnFeature) []ColumnInfo {
	visible := make(map[string]bool)
	for _, c := range t.VisibleColumns() {
		visible[c.Key] = true
	}
	all := t.Columns()
	out := make([]ColumnInfo, len(all))
	for i, c := range all {
		out[i] = ColumnInfo{
			Key:       c.Key,
			Title:     c.Title,
			IsVisible: visible[c.Key],
			ToggleURL: Link{t.ColumnToggleLink(c.Key)},
		}
	}
	return out
}

func buildToolbar[T any](categories []filtering.Category[T], t FilterFeature) *Toolbar {
	tb := &Toolbar{
		Filters:  make([]FilterControl, 0, len(categories)),
		ResetURL: Link{t.ResetFiltersLink()},
	}
	for _, c := range categories {
		v := t.FilterValue(c.Key)
		if !v.IsEmpty() {
			tb.HasActiveFilters = true
		}
		fc := FilterControl{
			Key:         c.Key,
			Title:       c.Title,
			Kind:        c.Kind,
			Placeholder: c.Placeholder,
			Value:       v,
		}
		for _, o := range c.Options {
			selected := slices.Contains(v, o.Value)
			fc.Options = append(fc.Options, OptionInfo{
				Label:     o.Label,
				Value:     o.Value,
				Selected:  selected,
				ToggleURL: Link{t.FilterLink(c.Key, toggledValue(c.Kind, v, o.Value))},
			})
		}
		fc.Chips = buildChips(c, t, v)
		tb.Filters = append(tb.Filters, fc)
	}
	return tb
}

func toggledValue(kind filtering.Kind, v filtering.Value, option string) filtering.Value {
	if kind != filtering.KindMultiselect {
		if slices.Equal(v, filtering.Value{option}) {
			return nil
		}
		return filtering.Value{option}
	}
	if slices.Contains(v, option) {
		return slices.DeleteFunc(slices.Clone(v), func(s string) bool { return s == option })
	}
	return append(slices.Clone(v), option)
}

func buildChips[T any](c filtering.Category[T], t FilterFeature, v filtering.Value) []Chip {
	if v.IsEmpty() {
		return nil
	}
	switch c.Kind {
	case filtering.KindMultiselect:
		chips := make([]Chip, 0, len(v))
		for _, s := range v {
			chips = append(chips, Chip{
				Label:     c.OptionLabel(s),
				RemoveURL: Link{t.FilterLink(c.Key, toggledValue(c.Kind, v, s))},
			})
		}
		return chips
	case filtering.KindDateRange:
		from, to := "", ""
		if len(v) > 0 {
			from = v[0]
		}
		if len(v) > 1 {
			to = v[1]
		}
		return []Chip{{Label: fmt.Sprintf("%s..%s", from, to), RemoveURL: Link{t.FilterLink(c.Key, nil)}}}
	default:
		return []Chip{{Label: c.OptionLabel(v[0]), RemoveURL: Link{t.FilterLink(c.Key, nil)}}}
	}
}

func buildPagination[T any](t PaginationFeature, d tables.Derived[T]) *PaginationInfo {
	p := d.Page
	info := &PaginationInfo{
		PageNumber:     p.PageNumber,
		ItemsPerPage:   p.ItemsPerPage,
		PageCount:      d.PageCount,
		TotalItemCount: d.TotalItemCount,
		HasPrev:        p.PageNumber > 1,
		HasNext:        p.PageNumber < d.PageCount,
	}
	if len(d.CurrentPageItems) > 0 {
		info.FirstItem = p.Offset() + 1
		info.LastItem = p.Offset() + len(d.CurrentPageItems)
	}
	if info.HasPrev {
		info.PrevURL = Link{t.PageLink(p.PageNumber - 1)}
	}
	if info.HasNext {
		info.NextURL = Link{t.PageLink(p.PageNumber + 1)}
	}
	return info
}

func buildRow[T any, K comparable](cfg tables.Config[T, K], t Table[T, K], visible []columns.Column, item T, cell CellFunc[T]) RowInfo {
	row := RowInfo{Cells: make([]CellInfo, len(visible))}
	if cfg.ID != nil {
		row.ID = fmt.Sprint(cfg.ID(item))
	}
	if cfg.Features.Selection {
		row.Selected = t.IsSelected(item)
	}
	if cfg.Features.Expansion {
		row.Expanded = t.IsExpanded(item)
		row.ExpandURL = Link{t.ExpandLink(item)}
	}
	for i, c := range visible {
		ci := CellInfo{Column: c.Key, Value: cell(item, c.Key)}
		if cfg.Features.Expansion {
			ci.Expanded = t.IsExpanded(item, c.Key)
			ci.ExpandURL = Link{t.ExpandLink(item, c.Key)}
		}
		row.Cells[i] = ci
	}
	return row
}
