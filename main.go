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
// Command hubtables runs the demo Hub, the dashboard server, and command
// line views of the dashboard tables.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/google/hubtables/core/config"
)

var (
	v      = viper.New()
	cfg    config.Config
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:           "hubtables",
	Short:         "Filterable, sortable, paginated tables over the Hub API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		loaded, err := config.Load(v, envFile)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = cfg.Logger(os.Stderr)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("env-file", ".env", "optional file of HUBTABLES_* variables")
	flags.String("hub-url", "", "base URL of the Hub")
	flags.Int("items-per-page", 0, "default page size")
	flags.Duration("http-timeout", 0, "timeout of Hub requests")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")
	flags.String("persist-prefix", "", "prefix of persisted table state keys")

	for _, name := range []string{"hub-url", "items-per-page", "http-timeout", "log-level", "log-format", "persist-prefix"} {
		bindFlag(name, flags)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
