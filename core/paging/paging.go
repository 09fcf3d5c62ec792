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

package paging

import (
	"math"

	"github.com/google/hubtables/core/query"
)

// DefaultItemsPerPage is used when a table does not declare a page size.
const DefaultItemsPerPage = 10

// Params is a 1-indexed page position.
type Params struct {
	PageNumber   int `json:"pageNumber"`
	ItemsPerPage int `json:"itemsPerPage"`
}

func (p Params) normalized() Params {
	if p.ItemsPerPage < 1 {
		p.ItemsPerPage = DefaultItemsPerPage
	}
	// the offset of the page must fit in an int
	if p.PageNumber < 1 || p.PageNumber > math.MaxInt/p.ItemsPerPage {
		p.PageNumber = 1
	}
	return p
}

// Offset returns the index of the first item on the page.
func (p Params) Offset() int {
	p = p.normalized()
	return (p.PageNumber - 1) * p.ItemsPerPage
}

// HubPage converts the position to a Hub page request.
func (p Params) HubPage() *query.Page {
	p = p.normalized()
	return &query.Page{PageNumber: p.PageNumber, ItemsPerPage: p.ItemsPerPage}
}

// PageCount returns the number of pages needed for total items; at least 1.
func PageCount(total, itemsPerPage int) int {
	if itemsPerPage < 1 {
		itemsPerPage = DefaultItemsPerPage
	}
	if total <= 0 {
		return 1
	}
	return (total + itemsPerPage - 1) / itemsPerPage
}

// Slice returns the items visible on page p. Out of range pages are empty.
func Slice[T any](items []T, p Params) []T {
	p = p.normalized()
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+p.ItemsPerPage, len(items))
	return items[start:end]
}

// State holds the page position of one table.
type State struct {
	params   Params
	revision uint64
}

// NewState creates a State on page 1 with the given page size.
func NewState(itemsPerPage int) *State {
	return &State{params: Params{PageNumber: 1, ItemsPerPage: itemsPerPage}.normalized()}
}

// Params returns the current position.
func (s *State) Params() Params {
	return s.params
}

// SetPage moves to pageNumber; values below 1, or too large to address,
// select page 1.
func (s *State) SetPage(pageNumber int) bool {
	pageNumber = Params{PageNumber: pageNumber, ItemsPerPage: s.params.ItemsPerPage}.normalized().PageNumber
	if pageNumber == s.params.PageNumber {
		return false
	}
	s.params.PageNumber = pageNumber
	s.revision++
	return true
}

// SetItemsPerPage changes the page size and moves to the page that still
// shows the first item of the current page.
func (s *State) SetItemsPerPage(n int) bool {
	if n < 1 || n == s.params.ItemsPerPage {
		return false
	}
	first := s.params.Offset()
	s.params = Params{PageNumber: first/n + 1, ItemsPerPage: n}
	s.revision++
	return true
}

// Clamp moves back to the last non-empty page when total no longer reaches
// the current one. Returns true if the page changed.
func (s *State) Clamp(total int) bool {
	last := PageCount(total, s.params.ItemsPerPage)
	if s.params.PageNumber <= last {
		return false
	}
	s.params.PageNumber = last
	s.revision++
	return true
}

// Restore replaces the position, normalizing invalid values.
func (s *State) Restore(p Params) {
	s.params = p.normalized()
	s.revision++
}

// Revision increases on every change.
func (s *State) Revision() uint64 {
	return s.revision
}
