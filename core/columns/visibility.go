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

package columns

import "slices"

// Column describes one column of a table.
type Column struct {
	Key    string // must not contain any of the following characters: & = : ,
	Title  string
	Hidden bool // hidden by default
}

// State tracks which columns are shown, in declaration order.
type State struct {
	columns  []Column
	visible  map[string]bool
	revision uint64
}

// NewState creates a State with every column at its default visibility.
func NewState(columns []Column) *State {
	s := &State{columns: slices.Clone(columns)}
	s.reset()
	return s
}

func (s *State) reset() {
	s.visible = make(map[string]bool, len(s.columns))
	for _, c := range s.columns {
		s.visible[c.Key] = !c.Hidden
	}
}

// Columns returns all declared columns.
func (s *State) Columns() []Column {
	return slices.Clone(s.columns)
}

// IsVisible reports whether key is declared and shown.
func (s *State) IsVisible(key string) bool {
	return s.visible[key]
}

// SetVisible shows or hides a column. Undeclared keys are ignored.
func (s *State) SetVisible(key string, visible bool) bool {
	current, ok := s.visible[key]
	if !ok || current == visible {
		return false
	}
	s.visible[key] = visible
	s.revision++
	return true
}

// Visible returns the shown columns in declaration order.
func (s *State) Visible() []Column {
	out := make([]Column, 0, len(s.columns))
	for _, c := range s.columns {
		if s.visible[c.Key] {
			out = append(out, c)
		}
	}
	return out
}

func (s *State) NumVisible() int {
	n := 0
	for _, v := range s.visible {
		if v {
			n++
		}
	}
	return n
}

// Snapshot returns the visibility of every declared column.
func (s *State) Snapshot() map[string]bool {
	out := make(map[string]bool, len(s.visible))
	for k, v := range s.visible {
		out[k] = v
	}
	return out
}

// Restore applies persisted visibility. Missing columns keep their default
// and undeclared keys are dropped.
func (s *State) Restore(visible map[string]bool) {
	s.reset()
	for k, v := range visible {
		if _, ok := s.visible[k]; ok {
			s.visible[k] = v
		}
	}
	s.revision++
}

func (s *State) Revision() uint64 {
	return s.revision
}
