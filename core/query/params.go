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

package query

import (
	"math"
	"slices"
	"strconv"
)

// Operator is a comparison operator of the Hub query language.
type Operator string

const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "!="
	OpLike           Operator = "~"
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
)

// ListOperator combines the members of a list value.
type ListOperator string

const (
	And ListOperator = "AND"
	Or  ListOperator = "OR"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Valid reports whether d is asc or desc.
func (d Direction) Valid() bool {
	return d == Asc || d == Desc
}

// Value is the right-hand side of a filter: either a single text value or a
// list joined with a ListOperator. Numbers are carried as their text form.
type Value struct {
	Text         string
	List         []string
	ListOperator ListOperator
}

// Text returns a single-valued filter value.
func Text(s string) Value {
	return Value{Text: s}
}

// Number returns a numeric filter value.
func Number(f float64) Value {
	return Value{Text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// List returns a list value. A list with one member collapses to Text since
// the wire format cannot tell them apart.
func List(op ListOperator, items ...string) Value {
	if len(items) == 1 {
		return Text(items[0])
	}
	if op != And {
		op = Or
	}
	return Value{List: slices.Clone(items), ListOperator: op}
}

// IsList reports whether v holds more than one member.
func (v Value) IsList() bool {
	return len(v.List) > 0
}

// Filter is a single field/operator/value clause.
// An empty Field denotes a free-text search token.
type Filter struct {
	Field    string
	Operator Operator
	Value    Value
}

// Sort is a wire-level sort directive.
type Sort struct {
	Field     string
	Direction Direction
}

// Page is a 1-indexed page request.
type Page struct {
	PageNumber   int
	ItemsPerPage int
}

// Offset returns the index of the first item on the page.
func (p Page) Offset() int {
	if p.PageNumber < 1 || p.ItemsPerPage < 1 || p.PageNumber > math.MaxInt/p.ItemsPerPage {
		return 0
	}
	return (p.PageNumber - 1) * p.ItemsPerPage
}

// Params is the derived request sent to the Hub for one table state.
// It is never persisted directly.
type Params struct {
	Filters []Filter
	Sort    *Sort
	Page    *Page
}

// Clone creates a deep copy of the Params
func (p Params) Clone() Params {
	clone := Params{}
	if p.Filters != nil {
		clone.Filters = make([]Filter, len(p.Filters))
		for i, f := range p.Filters {
			clone.Filters[i] = f
			clone.Filters[i].Value.List = slices.Clone(f.Value.List)
		}
	}
	if p.Sort != nil {
		s := *p.Sort
		clone.Sort = &s
	}
	if p.Page != nil {
		pg := *p.Page
		clone.Page = &pg
	}
	return clone
}

// WithFilter returns a copy with the filter appended
func (p Params) WithFilter(f Filter) Params {
	clone := p.Clone()
	clone.Filters = append(clone.Filters, f)
	return clone
}

// WithSort returns a copy with the sort replaced
func (p Params) WithSort(field string, dir Direction) Params {
	clone := p.Clone()
	clone.Sort = &Sort{Field: field, Direction: dir}
	return clone
}

// WithPage returns a copy requesting a different page
func (p Params) WithPage(pageNumber, itemsPerPage int) Params {
	clone := p.Clone()
	clone.Page = &Page{PageNumber: pageNumber, ItemsPerPage: itemsPerPage}
	return clone
}

// Query returns the canonical encoded form of the Params. Two Params with the
// same Query request the same data.
func (p Params) Query() string {
	return Encode(p).Encode()
}
