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

package models

import (
	"slices"
	"strconv"

	"github.com/google/hubtables/core/columns"
	"github.com/google/hubtables/core/filtering"
	"github.com/google/hubtables/core/sorting"
	"github.com/google/hubtables/core/tables"
)

// System table name constants
const (
	ColumnsTableName = "_columns"
)

// ColumnRow is one row of the _columns system table.
type ColumnRow struct {
	TableName  string `json:"table_name"`
	ColumnName string `json:"column_name"`
	Title      string `json:"title"`
	Hidden     bool   `json:"hidden"`
	Sortable   bool   `json:"sortable"`
	Position   int    `json:"position"`
}

// BuildColumnsTable lists every column of every non-system table in the
// DataModel, ordered by table name and then declaration order.
func BuildColumnsTable(dm *DataModel) []ColumnRow {
	var rows []ColumnRow
	for _, name := range dm.TableNames() {
		if isSystemTable(name) {
			continue
		}
		def := dm.GetTable(name)
		sortable := def.Sortable()
		for position, c := range def.Columns() {
			rows = append(rows, ColumnRow{
				TableName:  name,
				ColumnName: c.Key,
				Title:      c.Title,
				Hidden:     c.Hidden,
				Sortable:   slices.Contains(sortable, c.Key),
				Position:   position,
			})
		}
	}
	return rows
}

// isSystemTable returns true if the table name is a system table
func isSystemTable(name string) bool {
	return name == ColumnsTableName
}

// ColumnsTable declares the _columns system table. It is client driven over
// the rows of BuildColumnsTable.
var ColumnsTable = &Definition[ColumnRow]{
	name:     ColumnsTableName,
	title:    "Columns",
	resource: "",
	build: func() tables.Config[ColumnRow, string] {
		return tables.Config[ColumnRow, string]{
			Name: ColumnsTableName,
			Columns: []columns.Column{
				{Key: "table_name", Title: "Table"},
				{Key: "column_name", Title: "Column"},
				{Key: "title", Title: "Title"},
				{Key: "hidden", Title: "Hidden"},
				{Key: "sortable", Title: "Sortable"},
				{Key: "position", Title: "Position", Hidden: true},
			},
			Features: tables.Features{Filter: true, Sort: true, Pagination: true},
			Categories: []filtering.Category[ColumnRow]{
				{
					Key:          "table",
					Title:        "Table",
					Kind:         filtering.KindSelect,
					GetItemValue: func(r ColumnRow) string { return r.TableName },
				},
				{
					Key:          "search",
					Title:        "Search",
					Kind:         filtering.KindSearch,
					GetItemValue: func(r ColumnRow) string { return r.ColumnName + " " + r.Title },
				},
			},
			Sorter: sorting.Sorter[ColumnRow]{
				Sortable: []string{"table_name", "column_name", "position"},
				GetSortValues: func(r ColumnRow) map[string]any {
					return map[string]any{
						"table_name":  r.TableName,
						"column_name": r.ColumnName,
						"position":    r.Position,
					}
				},
			},
			InitialItemsPerPage: 25,
		}
	},
	Cell: func(r ColumnRow, column string) string {
		switch column {
		case "table_name":
			return r.TableName
		case "column_name":
			return r.ColumnName
		case "title":
			return r.Title
		case "hidden":
			return strconv.FormatBool(r.Hidden)
		case "sortable":
			return strconv.FormatBool(r.Sortable)
		case "position":
			return strconv.Itoa(r.Position)
		}
		return ""
	},
}

// AddSystemTables adds all system tables to the DataModel.
// This should be called after all user tables have been added.
func AddSystemTables(dm *DataModel) {
	dm.AddTable(ColumnsTable)
}
