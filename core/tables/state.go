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

package tables

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/google/hubtables/core/columns"
	"github.com/google/hubtables/core/expansion"
	"github.com/google/hubtables/core/filtering"
	"github.com/google/hubtables/core/paging"
	"github.com/google/hubtables/core/persistence"
	"github.com/google/hubtables/core/selection"
	"github.com/google/hubtables/core/sorting"
)

// State holds every control state of one table. Each mutation is written
// through to its persistence target before the method returns.
type State[T any, K comparable] struct {
	mu sync.Mutex

	cfg       Config[T, K]
	persister *persistence.Persister
	logger    zerolog.Logger

	filters   *filtering.State
	sort      *sorting.State
	pages     *paging.State
	selection *selection.State[T, K]
	expansion *expansion.State[K]
	columns   *columns.State
}

// NewState builds the control states of cfg and hydrates them from the
// configured stores.
func NewState[T any, K comparable](cfg Config[T, K]) (*State[T, K], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &State[T, K]{
		cfg:       cfg,
		logger:    zerolog.Nop(),
		filters:   filtering.NewState(cfg.categoryKeys()),
		sort:      sorting.NewState(cfg.Sorter.Sortable, cfg.InitialSort),
		pages:     paging.NewState(cfg.InitialItemsPerPage),
		expansion: expansion.NewState[K](cfg.ExpansionVariant),
		columns:   columns.NewState(cfg.Columns),
	}
	if cfg.Logger != nil {
		s.logger = *cfg.Logger
	}
	id := cfg.ID
	if id == nil {
		id = func(T) K {
			var zero K
			return zero
		}
	}
	s.selection = selection.NewState(id)

	pc := persistence.Config{
		Prefix:  cfg.PersistPrefix,
		Table:   cfg.Name,
		Targets: cfg.Persist,
		Local:   cfg.Local,
		Logger:  cfg.Logger,
	}
	if cfg.URL != nil {
		pc.URL = cfg.URL
	}
	s.persister = persistence.New(pc)
	s.hydrate()
	return s, nil
}

func (s *State[T, K]) hydrate() {
	f := s.cfg.Features
	var filters map[string]filtering.Value
	if f.Filter && s.persister.Read(persistence.SliceFilters, &filters) {
		s.filters.Restore(filters)
	}
	var sort sorting.Sort
	if f.Sort && s.persister.Read(persistence.SliceSort, &sort) {
		s.sort.Restore(sort)
	}
	var page paging.Params
	if f.Pagination && s.persister.Read(persistence.SlicePagination, &page) {
		s.pages.Restore(page)
	}
	var expanded []expansion.Key[K]
	if f.Expansion && s.persister.Read(persistence.SliceExpanded, &expanded) {
		s.expansion.Restore(expanded)
	}
	var visible map[string]bool
	if s.persister.Read(persistence.SliceColumns, &visible) {
		s.columns.Restore(visible)
	}
}

func (s *State[T, K]) persist(slice persistence.Slice) {
	var v any
	switch slice {
	case persistence.SliceFilters:
		v = s.filters.Values()
	case persistence.SliceSort:
		v = s.sort.Active()
	case persistence.SlicePagination:
		v = s.pages.Params()
	case persistence.SliceExpanded:
		v = s.expansion.Expanded()
	case persistence.SliceColumns:
		v = s.columns.Snapshot()
	}
	if err := s.persister.Write(slice, v); err != nil {
		s.logger.Warn().Err(err).Str("table", s.cfg.Name).Str("slice", string(slice)).Msg("failed to persist table state")
	}
}

// Config returns the table declaration.
func (s *State[T, K]) Config() Config[T, K] {
	return s.cfg
}

// Namespace is the persistence namespace of the table.
func (s *State[T, K]) Namespace() string {
	return s.persister.Namespace()
}

// SetFilterValue sets the value of one filter category and returns to the
// first page.
func (s *State[T, K]) SetFilterValue(key string, v filtering.Value) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Features.Filter || !s.filters.SetValue(key, v) {
		return false
	}
	s.persist(persistence.SliceFilters)
	s.resetPage()
	return true
}

// ResetFilters clears every filter category.
func (s *State[T, K]) ResetFilters() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Features.Filter || !s.filters.Reset() {
		return false
	}
	s.persist(persistence.SliceFilters)
	s.resetPage()
	return true
}

func (s *State[T, K]) resetPage() {
	if s.cfg.Features.Pagination && s.pages.SetPage(1) {
		s.persist(persistence.SlicePagination)
	}
}

// FilterValues returns a copy of the active filter values.
func (s *State[T, K]) FilterValues() map[string]filtering.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.Values()
}

// FilterValue returns the value of one category, nil when inactive.
func (s *State[T, K]) FilterValue(key string) filtering.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.Value(key)
}

// SetActiveSort toggles the sort on column.
func (s *State[T, K]) SetActiveSort(column string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Features.Sort || !s.sort.SetActiveSort(column) {
		return false
	}
	s.persist(persistence.SliceSort)
	return true
}

// SetSort selects column with an explicit direction.
func (s *State[T, K]) SetSort(column string, dir sorting.Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Features.Sort || !s.sort.SetSort(column, dir) {
		return false
	}
	s.persist(persistence.SliceSort)
	return true
}

// ClearSort removes the active sort.
func (s *State[T, K]) ClearSort() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Features.Sort || !s.sort.Clear() {
		return false
	}
	s.persist(persistence.SliceSort)
	return true
}

// ActiveSort returns the current sort; the zero Sort when none.
func (s *State[T, K]) ActiveSort() sorting.Sort {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort.Active()
}

// SetPage moves to page n. Values below 1 select page 1.
func (s *State[T, K]) SetPage(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Features.Pagination || !s.pages.SetPage(n) {
		return false
	}
	s.persist(persistence.SlicePagination)
	return true
}

// SetItemsPerPage changes the page size, keeping the first visible item
// on screen.
func (s *State[T, K]) SetItemsPerPage(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Features.Pagination || !s.pages.SetItemsPerPage(n) {
		return false
	}
	s.persist(persistence.SlicePagination)
	return true
}

// PageParams returns the current page position.
func (s *State[T, K]) PageParams() paging.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages.Params()
}

// clampPage keeps the page within total items.
func (s *State[T, K]) clampPage(total int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Features.Pagination || !s.pages.Clamp(total) {
		return false
	}
	s.persist(persistence.SlicePagination)
	return true
}

// ToggleSelected flips the selection of item.
func (s *State[T, K]) ToggleSelected(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.Features.Selection {
		s.selection.Toggle(item)
	}
}

// SetSelected selects or deselects item. Returns true if it changed.
func (s *State[T, K]) SetSelected(item T, selected bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Features.Selection && s.selection.SetSelected(item, selected)
}

// SelectAll selects items, typically every filtered item.
func (s *State[T, K]) SelectAll(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.Features.Selection {
		s.selection.SelectAll(items)
	}
}

// SelectNone clears the selection.
func (s *State[T, K]) SelectNone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.SelectNone()
}

// IsSelected reports whether item is selected.
func (s *State[T, K]) IsSelected(item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Features.Selection && s.selection.IsSelected(item)
}

// AllSelected reports whether every one of items is selected.
func (s *State[T, K]) AllSelected(items []T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Features.Selection && s.selection.AllSelected(items)
}

// Selected returns the selected items in selection order.
func (s *State[T, K]) Selected() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Selected()
}

// RevalidateSelection drops selected items missing from items.
func (s *State[T, K]) RevalidateSelection(items []T) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Revalidate(items)
}

// ToggleExpanded flips the expansion of a row or, with a column, of a cell.
func (s *State[T, K]) ToggleExpanded(item T, column ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Features.Expansion {
		return
	}
	s.expansion.Toggle(s.cfg.ID(item), column...)
	s.persist(persistence.SliceExpanded)
}

// SetExpanded expands or collapses a row, or a cell when column is set.
func (s *State[T, K]) SetExpanded(item T, column string, expanded bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Features.Expansion || !s.expansion.SetExpanded(s.cfg.ID(item), column, expanded) {
		return false
	}
	s.persist(persistence.SliceExpanded)
	return true
}

// IsExpanded reports whether the row, or the cell of column, is expanded.
func (s *State[T, K]) IsExpanded(item T, column ...string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Features.Expansion && s.expansion.IsExpanded(s.cfg.ID(item), column...)
}

// Expanded returns the expanded keys in expansion order.
func (s *State[T, K]) Expanded() []expansion.Key[K] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expansion.Expanded()
}

// CollapseAll collapses every row and cell.
func (s *State[T, K]) CollapseAll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.expansion.CollapseAll() {
		return false
	}
	s.persist(persistence.SliceExpanded)
	return true
}

// SetColumnVisible shows or hides a column.
func (s *State[T, K]) SetColumnVisible(key string, visible bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.columns.SetVisible(key, visible) {
		return false
	}
	s.persist(persistence.SliceColumns)
	return true
}

// IsColumnVisible reports whether the column is shown.
func (s *State[T, K]) IsColumnVisible(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.columns.IsVisible(key)
}

// VisibleColumns returns the shown columns in declaration order.
func (s *State[T, K]) VisibleColumns() []columns.Column {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.columns.Visible()
}

// Columns returns every declared column.
func (s *State[T, K]) Columns() []columns.Column {
	return s.columns.Columns()
}
