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

package expansion

import "slices"

// Variant selects how many cells may be expanded at once.
type Variant string

const (
	// Single allows at most one expanded row or cell per table.
	Single Variant = "single"
	// Compound allows any number of expanded cells.
	Compound Variant = "compound"
)

// Key identifies an expanded cell. An empty Column refers to the whole row.
type Key[K comparable] struct {
	Item   K      `json:"item"`
	Column string `json:"column,omitempty"`
}

// State tracks expanded rows and cells.
type State[K comparable] struct {
	variant  Variant
	expanded map[Key[K]]bool
	order    []Key[K]
	revision uint64
}

func NewState[K comparable](variant Variant) *State[K] {
	if variant != Single {
		variant = Compound
	}
	return &State[K]{
		variant:  variant,
		expanded: make(map[Key[K]]bool),
	}
}

func (s *State[K]) Variant() Variant {
	return s.variant
}

func key[K comparable](item K, column []string) Key[K] {
	k := Key[K]{Item: item}
	if len(column) > 0 {
		k.Column = column[0]
	}
	return k
}

// IsExpanded reports whether item (or the given column of item) is expanded.
func (s *State[K]) IsExpanded(item K, column ...string) bool {
	return s.expanded[key(item, column)]
}

// Toggle flips the expansion of item, optionally scoped to a column.
func (s *State[K]) Toggle(item K, column ...string) {
	k := key(item, column)
	s.SetExpanded(k.Item, k.Column, !s.expanded[k])
}

// SetExpanded sets the expansion of one cell. In the Single variant expanding
// a cell collapses every other one. Returns true if the state changed.
func (s *State[K]) SetExpanded(item K, column string, expanded bool) bool {
	k := Key[K]{Item: item, Column: column}
	if s.expanded[k] == expanded && (s.variant != Single || !expanded || len(s.order) == 1) {
		return false
	}

	if s.variant == Single {
		// Build the replacement off to the side so no reader sees zero or
		// two expanded entries in between.
		next := make(map[Key[K]]bool, 1)
		var order []Key[K]
		if expanded {
			next[k] = true
			order = []Key[K]{k}
		}
		s.expanded, s.order = next, order
		s.revision++
		return true
	}

	if expanded {
		s.expanded[k] = true
		s.order = append(s.order, k)
	} else {
		delete(s.expanded, k)
		s.order = slices.DeleteFunc(s.order, func(o Key[K]) bool { return o == k })
	}
	s.revision++
	return true
}

// Expanded returns the expanded cells in expansion order.
func (s *State[K]) Expanded() []Key[K] {
	return slices.Clone(s.order)
}

// CollapseAll collapses every row and cell.
func (s *State[K]) CollapseAll() bool {
	if len(s.order) == 0 {
		return false
	}
	s.expanded = make(map[Key[K]]bool)
	s.order = nil
	s.revision++
	return true
}

// Restore replaces the expanded set. The Single variant keeps only the last
// entry.
func (s *State[K]) Restore(keys []Key[K]) {
	if s.variant == Single && len(keys) > 1 {
		keys = keys[len(keys)-1:]
	}
	expanded := make(map[Key[K]]bool, len(keys))
	order := make([]Key[K], 0, len(keys))
	for _, k := range keys {
		if expanded[k] {
			continue
		}
		expanded[k] = true
		order = append(order, k)
	}
	s.expanded, s.order = expanded, order
	s.revision++
}

func (s *State[K]) Revision() uint64 {
	return s.revision
}
