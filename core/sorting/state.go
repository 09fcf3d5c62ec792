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

package sorting

import "slices"

// State holds the active sort of one table.
type State struct {
	sortable []string
	active   Sort
	revision uint64
}

// NewState creates a State for the given sortable columns. An initial sort
// on an undeclared column is dropped.
func NewState(sortable []string, initial Sort) *State {
	s := &State{sortable: slices.Clone(sortable)}
	s.Restore(initial)
	return s
}

// Active returns the active sort.
func (s *State) Active() Sort {
	return s.active
}

// IsSortable reports whether column is declared sortable.
func (s *State) IsSortable(column string) bool {
	return slices.Contains(s.sortable, column)
}

// SetActiveSort flips the direction when column is already active and
// otherwise selects column ascending. Undeclared columns are ignored.
// Returns true if the state changed.
func (s *State) SetActiveSort(column string) bool {
	if !s.IsSortable(column) {
		return false
	}
	s.active = s.active.Toggled(column)
	s.revision++
	return true
}

// SetSort selects column with an explicit direction.
func (s *State) SetSort(column string, dir Direction) bool {
	if !s.IsSortable(column) || !dir.Valid() {
		return false
	}
	next := Sort{Column: column, Direction: dir}
	if next == s.active {
		return false
	}
	s.active = next
	s.revision++
	return true
}

// Clear removes the active sort.
func (s *State) Clear() bool {
	if !s.active.IsActive() {
		return false
	}
	s.active = Sort{}
	s.revision++
	return true
}

// Restore replaces the active sort, dropping undeclared columns and invalid
// directions.
func (s *State) Restore(sort Sort) {
	switch {
	case !sort.IsActive() || !s.IsSortable(sort.Column):
		s.active = Sort{}
	case !sort.Direction.Valid():
		s.active = Sort{Column: sort.Column, Direction: Asc}
	default:
		s.active = sort
	}
	s.revision++
}

// Revision increases on every change.
func (s *State) Revision() uint64 {
	return s.revision
}
