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

// Package tables combines the filter, sort, pagination, selection, expansion
// and column states of one table, keeps them persisted, and derives the rows
// to show either locally or from a remote Hub.
package tables

import (
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/google/hubtables/core/columns"
	"github.com/google/hubtables/core/expansion"
	"github.com/google/hubtables/core/filtering"
	"github.com/google/hubtables/core/persistence"
	"github.com/google/hubtables/core/sorting"
)

var (
	ErrNoName = errors.New("table has no name")
	ErrNoID   = errors.New("selection and expansion need an item id")
)

// Features switches the table controls on. A disabled feature ignores its
// setters and is skipped when deriving rows and Hub requests.
type Features struct {
	Filter     bool
	Sort       bool
	Pagination bool
	Selection  bool
	Expansion  bool
}

// AllFeatures enables every control.
var AllFeatures = Features{Filter: true, Sort: true, Pagination: true, Selection: true, Expansion: true}

// Config declares one table.
type Config[T any, K comparable] struct {
	Name string
	// PersistPrefix distinguishes tables sharing a name on one page.
	PersistPrefix string

	Columns    []columns.Column
	Features   Features
	Categories []filtering.Category[T]
	Sorter     sorting.Sorter[T]

	InitialSort         sorting.Sort
	InitialItemsPerPage int

	ID               func(item T) K
	ExpansionVariant expansion.Variant

	Persist map[persistence.Slice]persistence.Target
	URL     *persistence.URLStore
	Local   persistence.Store

	Logger *zerolog.Logger
}

func (c Config[T, K]) validate() error {
	if c.Name == "" {
		return ErrNoName
	}
	if (c.Features.Selection || c.Features.Expansion) && c.ID == nil {
		return errors.Wrapf(ErrNoID, "table %s", c.Name)
	}
	return nil
}

func (c Config[T, K]) categoryKeys() []string {
	keys := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		keys[i] = cat.Key
	}
	return keys
}

// Category returns the filter category declared under key.
func (c Config[T, K]) Category(key string) (filtering.Category[T], bool) {
	for _, cat := range c.Categories {
		if cat.Key == key {
			return cat, true
		}
	}
	return filtering.Category[T]{}, false
}
