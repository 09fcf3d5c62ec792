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
	"github.com/google/safehtml"

	"github.com/google/hubtables/core/expansion"
	"github.com/google/hubtables/core/filtering"
	"github.com/google/hubtables/core/paging"
	"github.com/google/hubtables/core/persistence"
)

// link returns the current URL with the given slices replaced. Slices that
// are not persisted in the URL are left out, so the link only carries what
// a reload would read back.
func (s *State[T, K]) link(writes map[persistence.Slice]any) safehtml.URL {
	if s.cfg.URL == nil {
		return safehtml.URLSanitized("#")
	}
	clone := s.cfg.URL.Clone()
	p := persistence.New(persistence.Config{
		Prefix:  s.cfg.PersistPrefix,
		Table:   s.cfg.Name,
		Targets: s.cfg.Persist,
		URL:     clone,
	})
	for slice, v := range writes {
		if err := p.Write(slice, v); err != nil {
			s.logger.Debug().Err(err).Str("table", s.cfg.Name).Msg("failed to build link")
		}
	}
	return clone.Link()
}

// CurrentLink returns the URL of the current state.
func (s *State[T, K]) CurrentLink() safehtml.URL {
	return s.link(nil)
}

// SortLink returns a URL with the sort toggled on column
func (s *State[T, K]) SortLink(column string) safehtml.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Features.Sort || !s.sort.IsSortable(column) {
		return s.link(nil)
	}
	return s.link(map[persistence.Slice]any{
		persistence.SliceSort: s.sort.Active().Toggled(column),
	})
}

// PageLink returns a URL showing page n
func (s *State[T, K]) PageLink(n int) safehtml.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Features.Pagination {
		return s.link(nil)
	}
	p := s.pages.Params()
	p.PageNumber = max(n, 1)
	return s.link(map[persistence.Slice]any{persistence.SlicePagination: p})
}

// FilterLink returns a URL with one filter category set to v, on the first
// page.
func (s *State[T, K]) FilterLink(key string, v filtering.Value) safehtml.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Features.Filter {
		return s.link(nil)
	}
	next := filtering.NewState(s.filters.Keys())
	next.Restore(s.filters.Values())
	next.SetValue(key, v)
	return s.link(s.filterWrites(next.Values()))
}

// ResetFiltersLink returns a URL with every filter cleared.
func (s *State[T, K]) ResetFiltersLink() safehtml.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Features.Filter {
		return s.link(nil)
	}
	return s.link(s.filterWrites(map[string]filtering.Value{}))
}

func (s *State[T, K]) filterWrites(values map[string]filtering.Value) map[persistence.Slice]any {
	writes := map[persistence.Slice]any{persistence.SliceFilters: values}
	if s.cfg.Features.Pagination {
		p := s.pages.Params()
		p.PageNumber = 1
		writes[persistence.SlicePagination] = p
	}
	return writes
}

// ColumnToggleLink returns a URL with the visibility of column flipped.
func (s *State[T, K]) ColumnToggleLink(column string) safehtml.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible := s.columns.Snapshot()
	if _, ok := visible[column]; !ok {
		return s.link(nil)
	}
	visible[column] = !visible[column]
	return s.link(map[persistence.Slice]any{persistence.SliceColumns: visible})
}

// ExpandLink returns a URL with the row (or cell, given a column) of item
// toggled.
func (s *State[T, K]) ExpandLink(item T, column ...string) safehtml.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Features.Expansion {
		return s.link(nil)
	}
	next := expansion.NewState[K](s.expansion.Variant())
	next.Restore(s.expansion.Expanded())
	next.Toggle(s.cfg.ID(item), column...)
	return s.link(map[persistence.Slice]any{persistence.SliceExpanded: next.Expanded()})
}

// ItemsPerPageLink returns a URL with a different page size.
func (s *State[T, K]) ItemsPerPageLink(n int) safehtml.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Features.Pagination {
		return s.link(nil)
	}
	next := paging.NewState(0)
	next.Restore(s.pages.Params())
	next.SetItemsPerPage(n)
	return s.link(map[persistence.Slice]any{persistence.SlicePagination: next.Params()})
}
