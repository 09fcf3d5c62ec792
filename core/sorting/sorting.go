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

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/Masterminds/semver"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/google/hubtables/core/query"
)

// Direction is the sort direction of the active column.
type Direction = query.Direction

const (
	Asc  = query.Asc
	Desc = query.Desc
)

// Sort is the active sort column and direction. An empty Column means the
// table is unsorted.
type Sort struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// IsActive reports whether a column is selected.
func (s Sort) IsActive() bool {
	return s.Column != ""
}

// Toggled returns the sort after a click on column: the active column flips
// direction, any other column becomes the active one ascending.
func (s Sort) Toggled(column string) Sort {
	if s.Column != column {
		return Sort{Column: column, Direction: Asc}
	}
	if s.Direction == Asc {
		return Sort{Column: column, Direction: Desc}
	}
	return Sort{Column: column, Direction: Asc}
}

// Sorter describes how items of a table are sorted on the client and which
// Hub field each sortable column maps to on the server.
type Sorter[T any] struct {
	Sortable []string

	// GetSortValues extracts the comparable value of every sortable column.
	// Supported value types are strings, integers, floats, bools, time.Time
	// and *semver.Version.
	GetSortValues func(item T) map[string]any

	HubFields map[string]string
}

// IsSortable reports whether column is declared sortable.
func (s Sorter[T]) IsSortable(column string) bool {
	return slices.Contains(s.Sortable, column)
}

// Comparator returns a comparison function for the active sort, or nil
// when there is nothing to sort by.
func (s Sorter[T]) Comparator(active Sort) func(a, b T) int {
	if !active.IsActive() || s.GetSortValues == nil || !s.IsSortable(active.Column) {
		return nil
	}
	sign := 1
	if active.Direction == Desc {
		sign = -1
	}
	coll := collate.New(language.English)
	return func(a, b T) int {
		return sign * Compare(coll, s.GetSortValues(a)[active.Column], s.GetSortValues(b)[active.Column])
	}
}

// Sort returns a sorted copy of items. Equal items keep their relative
// order.
func (s Sorter[T]) Sort(items []T, active Sort) []T {
	out := slices.Clone(items)
	if c := s.Comparator(active); c != nil {
		slices.SortStableFunc(out, c)
	}
	return out
}

// HubSort maps the active column to its Hub sort field. Returns nil when the
// column has no mapping.
func (s Sorter[T]) HubSort(active Sort) *query.Sort {
	if !active.IsActive() {
		return nil
	}
	field, ok := s.HubFields[active.Column]
	if !ok || field == "" {
		return nil
	}
	dir := active.Direction
	if !dir.Valid() {
		dir = Asc
	}
	return &query.Sort{Field: field, Direction: dir}
}

// FromHub maps a Hub sort directive back onto a sortable column. The zero
// Sort is returned when no column declares the field.
func (s Sorter[T]) FromHub(hs *query.Sort) Sort {
	if hs == nil {
		return Sort{}
	}
	for _, column := range s.Sortable {
		if field, ok := s.HubFields[column]; ok && field == hs.Field {
			return Sort{Column: column, Direction: hs.Direction}
		}
	}
	return Sort{}
}

// Compare orders two extracted sort values. nil sorts first, strings use
// the collator when one is given, values of different types fall back to
// comparing their printed form.
func Compare(coll *collate.Collator, a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			if coll != nil {
				return coll.CompareString(x, y)
			}
			return cmp.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			return cmp.Compare(boolRank(x), boolRank(y))
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case *semver.Version:
		if y, ok := b.(*semver.Version); ok {
			switch {
			case x == nil && y == nil:
				return 0
			case x == nil:
				return -1
			case y == nil:
				return 1
			}
			return x.Compare(y)
		}
	}

	if x, ok := toFloat(a); ok {
		if y, ok := toFloat(b); ok {
			return cmp.Compare(x, y)
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
