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

package tables

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/google/hubtables/core/columns"
	"github.com/google/hubtables/core/sorting"
)

// WriteASCII renders rows under the visible columns as a plain text table.
// The active sort column is marked in the header.
func WriteASCII[T any](w io.Writer, visible []columns.Column, active sorting.Sort, rows []T, cell func(item T, column string) string) {
	table := tablewriter.NewWriter(w)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetHeaderLine(true)
	table.SetRowLine(false)
	table.SetColumnSeparator("")

	header := make([]string, len(visible))
	for i, c := range visible {
		header[i] = c.Title
		if active.Column == c.Key {
			header[i] = fmt.Sprintf("%s %s", c.Title, arrow(active.Direction))
		}
	}
	table.SetHeader(header)

	for _, item := range rows {
		row := make([]string, len(visible))
		for i, c := range visible {
			row[i] = cell(item, c.Key)
		}
		table.Append(row)
	}
	table.Render()
}

func arrow(dir sorting.Direction) string {
	if dir == sorting.Desc {
		return "v"
	}
	return "^"
}
