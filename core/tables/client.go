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
	"encoding/json"
	"slices"
	"strconv"
	"sync"

	"github.com/google/hubtables/core/filtering"
	"github.com/google/hubtables/core/paging"
	"github.com/google/hubtables/core/sorting"
)

// Derived is the visible result of a table state. Its slices belong to the
// caller.
type Derived[T any] struct {
	FilteredItems    []T
	CurrentPageItems []T
	TotalItemCount   int
	Page             paging.Params
	PageCount        int
}

// ClientTable filters, sorts and pages an in-memory item slice.
type ClientTable[T any, K comparable] struct {
	*State[T, K]

	mu       sync.Mutex
	items    []T
	itemsRev uint64

	// memoized filter and sort result
	memoKey      string
	memoFiltered []T
	computations int
}

// NewClientTable creates a table derived in memory from SetItems.
func NewClientTable[T any, K comparable](cfg Config[T, K]) (*ClientTable[T, K], error) {
	s, err := NewState(cfg)
	if err != nil {
		return nil, err
	}
	return &ClientTable[T, K]{State: s}, nil
}

// SetItems replaces the backing items. The slice must not be modified
// afterwards.
func (t *ClientTable[T, K]) SetItems(items []T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = items
	t.itemsRev++
}

// Items returns the backing items as last set.
func (t *ClientTable[T, K]) Items() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.items
}

// Derive computes paginate(sort(filter(items))). The filter and sort result
// is reused while items, filter values and sort are unchanged. The page is
// moved back when the filtered total no longer reaches it.
func (t *ClientTable[T, K]) Derive() Derived[T] {
	t.mu.Lock()
	defer t.mu.Unlock()

	cfg := t.cfg
	values := t.FilterValues()
	active := t.ActiveSort()

	key := t.memoKeyFor(values, active)
	if key != t.memoKey || t.memoFiltered == nil {
		items := t.items
		if cfg.Features.Filter {
			items = filtering.FilterSlice(items, cfg.Categories, values)
		}
		if cfg.Features.Sort {
			items = cfg.Sorter.Sort(items, active)
		}
		if items == nil {
			items = []T{}
		}
		t.memoKey = key
		t.memoFiltered = items
		t.computations++
	}

	filtered := slices.Clone(t.memoFiltered)
	d := Derived[T]{
		FilteredItems:  filtered,
		TotalItemCount: len(filtered),
	}
	if !cfg.Features.Pagination {
		d.CurrentPageItems = filtered
		d.Page = paging.Params{PageNumber: 1, ItemsPerPage: max(len(filtered), 1)}
		d.PageCount = 1
		return d
	}

	t.clampPage(len(filtered))
	d.Page = t.PageParams()
	d.CurrentPageItems = paging.Slice(filtered, d.Page)
	d.PageCount = paging.PageCount(len(filtered), d.Page.ItemsPerPage)
	return d
}

func (t *ClientTable[T, K]) memoKeyFor(values map[string]filtering.Value, active sorting.Sort) string {
	// json.Marshal orders map keys, so equal values give equal keys
	b, _ := json.Marshal(values)
	return strconv.FormatUint(t.itemsRev, 10) + "|" + string(b) + "|" + active.Column + ":" + string(active.Direction)
}
