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

package filtering

import (
	"slices"
)

// State holds the active filter values of one table, keyed by category.
type State struct {
	keys     []string
	declared map[string]bool
	values   map[string]Value
	revision uint64
}

// NewState creates an empty State accepting only the given category keys
func NewState(keys []string) *State {
	declared := make(map[string]bool, len(keys))
	for _, k := range keys {
		declared[k] = true
	}
	return &State{
		keys:     slices.Clone(keys),
		declared: declared,
		values:   make(map[string]Value),
	}
}

// Keys returns the declared category keys in declaration order.
func (s *State) Keys() []string {
	return slices.Clone(s.keys)
}

// SetValue replaces the value of a category. An empty value clears it.
// Undeclared keys are ignored. Returns true if the state changed.
func (s *State) SetValue(key string, v Value) bool {
	if !s.declared[key] {
		return false
	}
	current, had := s.values[key]
	if v.IsEmpty() {
		if !had {
			return false
		}
		delete(s.values, key)
		s.revision++
		return true
	}
	if had && slices.Equal(current, v) {
		return false
	}
	s.values[key] = slices.Clone(v)
	s.revision++
	return true
}

// Value returns the value of a category, or nil when inactive.
func (s *State) Value(key string) Value {
	return slices.Clone(s.values[key])
}

// Values returns a copy of all active values.
func (s *State) Values() map[string]Value {
	out := make(map[string]Value, len(s.values))
	for k, v := range s.values {
		out[k] = slices.Clone(v)
	}
	return out
}

// HasActive reports whether any category is active.
func (s *State) HasActive() bool {
	return len(s.values) > 0
}

// Reset clears every category. Returns true if the state changed.
func (s *State) Reset() bool {
	if len(s.values) == 0 {
		return false
	}
	s.values = make(map[string]Value)
	s.revision++
	return true
}

// Restore replaces all values, dropping undeclared keys and empty values.
func (s *State) Restore(values map[string]Value) {
	s.values = make(map[string]Value, len(values))
	for k, v := range values {
		if s.declared[k] && !v.IsEmpty() {
			s.values[k] = slices.Clone(v)
		}
	}
	s.revision++
}

// Revision increases on every change.
func (s *State) Revision() uint64 {
	return s.revision
}
