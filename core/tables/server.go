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
	"context"
	"sync"

	"github.com/google/hubtables/core/filtering"
	"github.com/google/hubtables/core/paging"
	"github.com/google/hubtables/core/query"
)

// Page is one page of items returned by the Hub along with the total number
// of items matching the request.
type Page[T any] struct {
	Items []T
	Total int
}

// Fetcher loads one page for the given request parameters.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, params query.Params) (Page[T], error)
}

// FetcherFunc adapts a function to a Fetcher.
type FetcherFunc[T any] func(ctx context.Context, params query.Params) (Page[T], error)

// Fetch calls f.
func (f FetcherFunc[T]) Fetch(ctx context.Context, params query.Params) (Page[T], error) {
	return f(ctx, params)
}

// Request is an issued fetch, tagged with the state it was derived from.
type Request struct {
	Seq    uint64
	Params query.Params
	// Snapshot is the canonical query string of Params.
	Snapshot string
}

// ServerTable keeps the state of a table whose rows come from the Hub.
// Responses arrive on other goroutines; a response is only applied if the
// state still produces the request it answers and no newer response has
// been applied.
type ServerTable[T any, K comparable] struct {
	*State[T, K]

	mu         sync.Mutex
	issued     uint64
	resolved   uint64
	applied    uint64
	snapshot   string
	items      []T
	total      int
	fetchErr   error
	hasResults bool
}

// NewServerTable creates a table whose pages are fetched from the Hub.
func NewServerTable[T any, K comparable](cfg Config[T, K]) (*ServerTable[T, K], error) {
	s, err := NewState(cfg)
	if err != nil {
		return nil, err
	}
	return &ServerTable[T, K]{State: s}, nil
}

// RequestParams derives the Hub request for the current state.
func (t *ServerTable[T, K]) RequestParams() query.Params {
	cfg := t.cfg
	var p query.Params
	if cfg.Features.Filter {
		p.Filters = filtering.HubFilters(cfg.Categories, t.FilterValues())
	}
	if cfg.Features.Sort {
		p.Sort = cfg.Sorter.HubSort(t.ActiveSort())
	}
	if cfg.Features.Pagination {
		p.Page = t.PageParams().HubPage()
	}
	return p
}

// Begin issues a request for the current state.
func (t *ServerTable[T, K]) Begin() Request {
	params := t.RequestParams()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.issued++
	return Request{Seq: t.issued, Params: params, Snapshot: params.Query()}
}

// Resolve applies the outcome of req. It returns false and leaves the table
// untouched when the response is stale: the state moved on since req was
// issued, or a newer response was already applied.
func (t *ServerTable[T, K]) Resolve(req Request, page Page[T], err error) bool {
	current := t.RequestParams().Query()

	t.mu.Lock()
	t.resolved = max(t.resolved, req.Seq)
	if req.Seq <= t.applied || req.Snapshot != current {
		t.mu.Unlock()
		return false
	}
	t.applied = req.Seq
	t.snapshot = req.Snapshot
	t.hasResults = true
	if err != nil {
		t.fetchErr = err
		t.mu.Unlock()
		return true
	}
	t.fetchErr = nil
	t.items = page.Items
	t.total = page.Total
	t.mu.Unlock()

	// a shrunk total can leave the page out of range; the next fetch
	// requests the clamped page
	t.clampPage(page.Total)
	return true
}

// Fetch issues a request, loads it through f and resolves it. The fetch
// error is returned unchanged.
func (t *ServerTable[T, K]) Fetch(ctx context.Context, f Fetcher[T]) error {
	req := t.Begin()
	page, err := f.Fetch(ctx, req.Params)
	t.Resolve(req, page, err)
	return err
}

// IsLoading reports whether an issued request has not resolved yet.
func (t *ServerTable[T, K]) IsLoading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resolved < t.issued
}

// NeedsFetch reports whether the shown page does not belong to the current
// state.
func (t *ServerTable[T, K]) NeedsFetch() bool {
	current := t.RequestParams().Query()
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.hasResults || t.snapshot != current
}

// FetchError is the error of the last applied response, if any.
func (t *ServerTable[T, K]) FetchError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fetchErr
}

// CurrentPageItems returns the items of the last applied page.
func (t *ServerTable[T, K]) CurrentPageItems() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.items
}

// TotalItemCount is the Hub total of the last applied page.
func (t *ServerTable[T, K]) TotalItemCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Derive returns the last applied page in the shape of a client derivation.
// FilteredItems holds only the current page since the rest lives on the Hub.
func (t *ServerTable[T, K]) Derive() Derived[T] {
	page := t.PageParams()
	t.mu.Lock()
	defer t.mu.Unlock()
	items := t.items
	if items == nil {
		items = []T{}
	}
	d := Derived[T]{
		FilteredItems:    items,
		CurrentPageItems: items,
		TotalItemCount:   t.total,
		Page:             page,
		PageCount:        paging.PageCount(t.total, page.ItemsPerPage),
	}
	if !t.cfg.Features.Pagination {
		d.PageCount = 1
	}
	return d
}
