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
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/google/hubtables/core/hub"
	"github.com/google/hubtables/core/models"
	"github.com/google/hubtables/core/query"
	"github.com/google/hubtables/core/tables"
)

var listFlags, encodeFlags tableFlags

// tableCommand runs a command against one typed table definition.
type tableCommand struct {
	list   func(ctx context.Context, w io.Writer, f *tableFlags) error
	encode func(w io.Writer, f *tableFlags) error
}

var tableCommands = map[string]tableCommand{
	models.Advisories.Name():      commandsFor(models.Advisories),
	models.Vulnerabilities.Name(): commandsFor(models.Vulnerabilities),
	models.Packages.Name():        commandsFor(models.Packages),
	models.SBOMs.Name():           commandsFor(models.SBOMs),
}

func tableNames() string {
	return strings.Join(models.Default().TableNames(), ", ")
}

var listCmd = &cobra.Command{
	Use:   "list <table>",
	Short: "Fetch one page of a table from the Hub and print it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tc, ok := tableCommands[args[0]]
		if !ok {
			return errors.Newf("unknown table %q, expected one of %s", args[0], tableNames())
		}
		return tc.list(cmd.Context(), cmd.OutOrStdout(), &listFlags)
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode <table>",
	Short: "Print the Hub query parameters for a table state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tc, ok := tableCommands[args[0]]
		if !ok {
			return errors.Newf("unknown table %q, expected one of %s", args[0], tableNames())
		}
		return tc.encode(cmd.OutOrStdout(), &encodeFlags)
	},
}

func init() {
	listFlags.register(listCmd.Flags())
	encodeFlags.register(encodeCmd.Flags())
	rootCmd.AddCommand(listCmd, encodeCmd)
}

func newTable[T any](def *models.Definition[T], f *tableFlags) (*tables.ServerTable[T, string], error) {
	table, err := tables.NewServerTable(def.Config(models.Options{Prefix: cfg.PersistPrefix, Logger: &logger}))
	if err != nil {
		return nil, err
	}
	var columns []string
	for _, c := range def.Columns() {
		columns = append(columns, c.Key)
	}
	if err := f.apply(table, def.FilterKeys(), def.Sortable(), columns, cfg.ItemsPerPage); err != nil {
		return nil, err
	}
	return table, nil
}

func commandsFor[T any](def *models.Definition[T]) tableCommand {
	return tableCommand{
		list: func(ctx context.Context, w io.Writer, f *tableFlags) error {
			table, err := newTable(def, f)
			if err != nil {
				return err
			}
			if err := table.Fetch(ctx, hub.Fetcher[T](newClient(), def.Resource())); err != nil {
				return err
			}
			d := table.Derive()
			tables.WriteASCII(w, table.VisibleColumns(), table.ActiveSort(), d.CurrentPageItems, def.Cell)
			_, err = fmt.Fprintf(w, "\npage %d of %d, %d %s\n", d.Page.PageNumber, d.PageCount, d.TotalItemCount, strings.ToLower(def.Title()))
			return err
		},
		encode: func(w io.Writer, f *tableFlags) error {
			table, err := newTable(def, f)
			if err != nil {
				return err
			}
			values := query.Encode(table.RequestParams())
			_, err = fmt.Fprintf(w, "%s%s%s?%s\n", strings.TrimSuffix(cfg.HubURL, "/"), hub.APIPrefix, def.Resource(), values.Encode())
			return err
		},
	}
}
