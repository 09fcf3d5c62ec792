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

// Package selection tracks selected rows by identity, independent of which
// page is visible.
package selection

// State is an insertion-ordered set of selected items keyed by ID.
// Entries are never pruned implicitly; call Revalidate after the backing
// data changes to drop items that disappeared.
type State[T any, K comparable] struct {
	id       func(T) K
	order    []K
	items    map[K]T
	revision uint64
}

// NewState creates an empty selection using id to identify items.
func NewState[T any, K comparable](id func(T) K) *State[T, K] {
	return &State[T, K]{
		id:    id,
		items: make(map[K]T),
	}
}

// IsSelected reports whether item is selected.
func (s *State[T, K]) IsSelected(item T) bool {
	_, ok := s.items[s.id(item)]
	return ok
}

// IsSelectedID reports whether the item with the given ID is selected.
func (s *State[T, K]) IsSelectedID(id K) bool {
	_, ok := s.items[id]
	return ok
}

// SetSelected selects or deselects item. Returns true if the state changed.
func (s *State[T, K]) SetSelected(item T, selected bool) bool {
	key := s.id(item)
	_, had := s.items[key]
	switch {
	case selected && !had:
		s.items[key] = item
		s.order = append(s.order, key)
	case !selected && had:
		delete(s.items, key)
		s.removeFromOrder(key)
	default:
		return false
	}
	s.revision++
	return true
}

// Toggle flips the selection of item.
func (s *State[T, K]) Toggle(item T) {
	s.SetSelected(item, !s.IsSelected(item))
}

// SelectAll adds every given item. Pass the filtered items for "select all
// matching" or the full set for "select all".
func (s *State[T, K]) SelectAll(items []T) {
	changed := false
	for _, item := range items {
		key := s.id(item)
		if _, ok := s.items[key]; ok {
			continue
		}
		s.items[key] = item
		s.order = append(s.order, key)
		changed = true
	}
	if changed {
		s.revision++
	}
}

// SelectNone clears the selection.
func (s *State[T, K]) SelectNone() {
	if len(s.items) == 0 {
		return
	}
	s.items = make(map[K]T)
	s.order = nil
	s.revision++
}

// AllSelected reports whether every given item is selected. An empty set is
// never fully selected.
func (s *State[T, K]) AllSelected(items []T) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !s.IsSelected(item) {
			return false
		}
	}
	return true
}

// Selected returns the selected items in selection order.
func (s *State[T, K]) Selected() []T {
	out := make([]T, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.items[key])
	}
	return out
}

// Len returns the number of selected items.
func (s *State[T, K]) Len() int {
	return len(s.items)
}

// Revalidate drops selected items whose IDs are absent from items and
// refreshes the stored copies of the rest. Returns the number dropped.
func (s *State[T, K]) Revalidate(items []T) int {
	present := make(map[K]T, len(items))
	for _, item := range items {
		present[s.id(item)] = item
	}
	kept := s.order[:0]
	dropped := 0
	for _, key := range s.order {
		if item, ok := present[key]; ok {
			s.items[key] = item
			kept = append(kept, key)
		} else {
			delete(s.items, key)
			dropped++
		}
	}
	s.order = kept
	if dropped > 0 {
		s.revision++
	}
	return dropped
}

// Revision increases on every change.
func (s *State[T, K]) Revision() uint64 {
	return s.revision
}

func (s *State[T, K]) removeFromOrder(key K) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
