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

// Package filtering holds the active filter selections of a table and
// derives client-side predicates and Hub query filters from them.
package filtering

import (
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/google/hubtables/core/query"
)

// Kind determines the shape of a category's value and how it matches.
type Kind string

const (
	KindSearch      Kind = "search"
	KindSelect      Kind = "select"
	KindMultiselect Kind = "multiselect"
	KindDateRange   Kind = "dateRange"
)

// Logic combines the selected options of a multiselect category.
type Logic string

const (
	LogicOr  Logic = "OR"
	LogicAnd Logic = "AND"
)

// Option is one selectable value of a select or multiselect category.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Value is the active value of a category. Search and select hold one
// element, multiselect holds the selected option values, and a date range
// holds [from, to] as YYYY-MM-DD where either side may be empty.
type Value []string

// IsEmpty reports whether v selects nothing.
func (v Value) IsEmpty() bool {
	for _, s := range v {
		if s != "" {
			return false
		}
	}
	return true
}

// Category is a named filtering dimension of a table toolbar.
type Category[T any] struct {
	Key         string
	Title       string
	Kind        Kind
	Logic       Logic
	Options     []Option
	Placeholder string

	// HubField is the wire field used in server mode. Empty means the
	// category is a free-text search.
	HubField string

	// GetItemValue extracts the value matched against the filter.
	GetItemValue func(item T) string
	// GetItemValues is used instead of GetItemValue for multi-valued items.
	GetItemValues func(item T) []string
}

func (c Category[T]) itemValues(item T) ([]string, bool) {
	switch {
	case c.GetItemValues != nil:
		return c.GetItemValues(item), true
	case c.GetItemValue != nil:
		return []string{c.GetItemValue(item)}, true
	}
	return nil, false
}

// OptionLabel returns the label for an option value, or the value itself.
func (c Category[T]) OptionLabel(value string) string {
	for _, o := range c.Options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// Matches reports whether item satisfies v. Categories without an extractor
// match everything.
func (c Category[T]) Matches(item T, v Value) bool {
	if v.IsEmpty() {
		return true
	}
	values, ok := c.itemValues(item)
	if !ok {
		return true
	}

	switch c.Kind {
	case KindSearch:
		needle := strings.ToLower(strings.TrimSpace(v[0]))
		if needle == "" {
			return true
		}
		for _, s := range values {
			if strings.Contains(strings.ToLower(s), needle) {
				return true
			}
		}
		return false

	case KindMultiselect:
		if c.Logic == LogicAnd {
			for _, want := range v {
				if !slices.Contains(values, want) {
					return false
				}
			}
			return true
		}
		for _, want := range v {
			if slices.Contains(values, want) {
				return true
			}
		}
		return false

	case KindDateRange:
		from, to := dateBounds(v)
		for _, s := range values {
			d, ok := parseDate(s)
			if !ok {
				continue
			}
			if (from.IsZero() || !d.Before(from)) && (to.IsZero() || !d.After(to)) {
				return true
			}
		}
		return false

	default:
		return slices.Contains(values, v[0])
	}
}

func dateBounds(v Value) (from, to time.Time) {
	if len(v) > 0 {
		from, _ = parseDate(v[0])
	}
	if len(v) > 1 {
		to, _ = parseDate(v[1])
	}
	return from, to
}

// parseDate accepts a date or the date prefix of an RFC 3339 timestamp.
func parseDate(s string) (time.Time, bool) {
	if len(s) < 10 {
		return time.Time{}, false
	}
	d, err := time.Parse(time.DateOnly, s[:10])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Filter lazily yields the items matching every active category.
func Filter[T any](items []T, categories []Category[T], values map[string]Value) iter.Seq[T] {
	active := make([]Category[T], 0, len(categories))
	for _, c := range categories {
		if v, ok := values[c.Key]; ok && !v.IsEmpty() {
			active = append(active, c)
		}
	}
	return func(yield func(T) bool) {
		for _, item := range items {
			if matchesAll(item, active, values) && !yield(item) {
				return
			}
		}
	}
}

// FilterSlice collects Filter into a slice.
func FilterSlice[T any](items []T, categories []Category[T], values map[string]Value) []T {
	out := make([]T, 0, len(items))
	for item := range Filter(items, categories, values) {
		out = append(out, item)
	}
	return out
}

func matchesAll[T any](item T, active []Category[T], values map[string]Value) bool {
	for _, c := range active {
		if !c.Matches(item, values[c.Key]) {
			return false
		}
	}
	return true
}

// HubFilters converts the active values into Hub filters, in category order.
func HubFilters[T any](categories []Category[T], values map[string]Value) []query.Filter {
	var filters []query.Filter
	for _, c := range categories {
		v, ok := values[c.Key]
		if !ok || v.IsEmpty() {
			continue
		}
		switch c.Kind {
		case KindSearch:
			filters = append(filters, query.Filter{
				Field:    c.HubField,
				Operator: query.OpLike,
				Value:    query.Text(strings.TrimSpace(v[0])),
			})
		case KindMultiselect:
			op := query.Or
			if c.Logic == LogicAnd {
				op = query.And
			}
			filters = append(filters, query.Filter{
				Field:    c.HubField,
				Operator: query.OpEqual,
				Value:    query.List(op, v...),
			})
		case KindDateRange:
			from, to := "", ""
			if len(v) > 0 {
				from = v[0]
			}
			if len(v) > 1 {
				to = v[1]
			}
			if from != "" {
				filters = append(filters, query.Filter{Field: c.HubField, Operator: query.OpGreaterOrEqual, Value: query.Text(from)})
			}
			if to != "" {
				filters = append(filters, query.Filter{Field: c.HubField, Operator: query.OpLessOrEqual, Value: query.Text(to)})
			}
		default:
			filters = append(filters, query.Filter{
				Field:    c.HubField,
				Operator: query.OpEqual,
				Value:    query.Text(v[0]),
			})
		}
	}
	return filters
}

// accepts reports whether f is a filter HubFilters could emit for c.
func (c Category[T]) accepts(f query.Filter) bool {
	switch c.Kind {
	case KindSearch:
		return f.Operator == query.OpLike && !f.Value.IsList()
	case KindMultiselect:
		if f.Operator != query.OpEqual {
			return false
		}
		if !f.Value.IsList() {
			return true
		}
		if c.Logic == LogicAnd {
			return f.Value.ListOperator == query.And
		}
		return f.Value.ListOperator != query.And
	case KindDateRange:
		switch f.Operator {
		case query.OpEqual, query.OpGreaterOrEqual, query.OpGreater, query.OpLessOrEqual, query.OpLess:
			return !f.Value.IsList()
		}
		return false
	default:
		return f.Operator == query.OpEqual && !f.Value.IsList()
	}
}

// FromHub maps Hub filters back onto category values, matching each filter
// to the first category declaring its field that can express its operator
// and list logic. Filters no category claims are returned separately.
func FromHub[T any](categories []Category[T], filters []query.Filter) (map[string]Value, []query.Filter) {
	values := make(map[string]Value)
	var unknown []query.Filter
	for _, f := range filters {
		idx := slices.IndexFunc(categories, func(c Category[T]) bool {
			if f.Field == "" {
				return c.Kind == KindSearch && c.HubField == "" && c.accepts(f)
			}
			return c.HubField == f.Field && c.accepts(f)
		})
		if idx < 0 {
			unknown = append(unknown, f)
			continue
		}
		c := categories[idx]
		members := f.Value.List
		if !f.Value.IsList() {
			members = []string{f.Value.Text}
		}

		switch c.Kind {
		case KindDateRange:
			v := values[c.Key]
			if len(v) < 2 {
				v = Value{"", ""}
			}
			switch f.Operator {
			case query.OpGreaterOrEqual, query.OpGreater:
				v[0] = f.Value.Text
			case query.OpLessOrEqual, query.OpLess:
				v[1] = f.Value.Text
			default:
				v = Value{f.Value.Text, f.Value.Text}
			}
			values[c.Key] = v
		case KindMultiselect:
			values[c.Key] = append(values[c.Key], members...)
		default:
			values[c.Key] = Value{members[0]}
		}
	}
	return values, unknown
}
