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
package main

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"

	"github.com/google/hubtables/core/filtering"
	"github.com/google/hubtables/core/sorting"
)

// bindFlag binds a flag to the viper key of the same name. Unset flags do
// not shadow the environment.
func bindFlag(name string, flags *pflag.FlagSet) {
	_ = v.BindPFlag(name, flags.Lookup(name))
}

// tableFlags are the state flags shared by list and encode.
type tableFlags struct {
	filters    []string
	sort       string
	page       int
	allColumns bool
}

func (f *tableFlags) register(flags *pflag.FlagSet) {
	flags.StringArrayVar(&f.filters, "filter", nil, "filter as key=value[,value...]; repeatable")
	flags.StringVar(&f.sort, "sort", "", "sort as column[:asc|desc]")
	flags.IntVar(&f.page, "page", 1, "page number")
	flags.BoolVar(&f.allColumns, "all-columns", false, "show hidden columns")
}

// stateSetter is the part of a table state the flags drive.
type stateSetter interface {
	SetFilterValue(key string, v filtering.Value) bool
	SetSort(column string, dir sorting.Direction) bool
	SetPage(n int) bool
	SetItemsPerPage(n int) bool
	SetColumnVisible(key string, visible bool) bool
}

var errFlag = errors.New("invalid flag")

// apply writes the flags into t. Unknown filter keys and sort columns are
// reported rather than ignored.
func (f *tableFlags) apply(t stateSetter, filterKeys, sortable []string, columns []string, itemsPerPage int) error {
	for _, raw := range f.filters {
		key, value, ok := strings.Cut(raw, "=")
		if !ok || !slices.Contains(filterKeys, key) {
			return errors.Wrapf(errFlag, "--filter %q: keys are %s", raw, strings.Join(filterKeys, ", "))
		}
		t.SetFilterValue(key, filtering.Value(strings.Split(value, ",")))
	}
	if f.sort != "" {
		column, dir, _ := strings.Cut(f.sort, ":")
		if dir == "" {
			dir = string(sorting.Asc)
		}
		if !slices.Contains(sortable, column) || !sorting.Direction(dir).Valid() {
			return errors.Wrapf(errFlag, "--sort %q: sortable columns are %s", f.sort, strings.Join(sortable, ", "))
		}
		t.SetSort(column, sorting.Direction(dir))
	}
	if itemsPerPage > 0 {
		t.SetItemsPerPage(itemsPerPage)
	}
	// page after filters, which reset it
	t.SetPage(f.page)
	if f.allColumns {
		for _, c := range columns {
			t.SetColumnVisible(c, true)
		}
	}
	return nil
}
