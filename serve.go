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
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/google/hubtables/core/hub"
	"github.com/google/hubtables/core/metrics"
	"github.com/google/hubtables/core/models"
	"github.com/google/hubtables/core/persistence"
	"github.com/google/hubtables/core/server"
	"github.com/google/hubtables/datasources"
	"github.com/google/hubtables/demo"
)

var hubCmd = &cobra.Command{
	Use:   "hub",
	Short: "Serve the Hub list API over fixture data",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := openFixtures(cfg.Fixtures)
		if err != nil {
			return err
		}
		h := demo.NewHub(manager, metrics.New("hub", nil), &logger)
		return listenAndServe(cmd.Context(), cfg.HubListen, h.Handler())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard tables as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		var local persistence.Store
		if cfg.StateDB != "" {
			store, err := persistence.OpenSQLiteStore(cfg.StateDB, &logger)
			if err != nil {
				return err
			}
			defer store.Close()
			local = store
		}
		cacheTTL, _ := cmd.Flags().GetDuration("cache-ttl")

		dm := models.Default()
		models.AddSystemTables(dm)
		s := server.NewServer(dm, server.Options{
			Client:        newClient(),
			Local:         local,
			Metrics:       metrics.New("dashboard", nil),
			Logger:        &logger,
			PersistPrefix: cfg.PersistPrefix,
			ItemsPerPage:  cfg.ItemsPerPage,
			FetchTimeout:  cfg.HTTPTimeout,
			CacheTTL:      cacheTTL,
		})
		logger.Info().Str("hub", cfg.HubURL).Msg("using hub")
		return listenAndServe(cmd.Context(), cfg.Listen, s.Handler())
	},
}

func init() {
	hubCmd.Flags().String("hub-listen", "", "address of the demo Hub")
	hubCmd.Flags().String("fixtures", "", "directory holding sources.yaml; bundled fixtures when empty")
	bindFlag("hub-listen", hubCmd.Flags())
	bindFlag("fixtures", hubCmd.Flags())

	serveCmd.Flags().String("listen", "", "address of the dashboard")
	serveCmd.Flags().String("state-db", "", "SQLite file for per-user table state; in memory when empty")
	serveCmd.Flags().Duration("cache-ttl", 15*time.Second, "reuse of identical Hub pages per user")
	bindFlag("listen", serveCmd.Flags())
	bindFlag("state-db", serveCmd.Flags())

	rootCmd.AddCommand(hubCmd, serveCmd)
}

func newClient() *hub.Client {
	return hub.NewClient(cfg.HubURL, &http.Client{Timeout: cfg.HTTPTimeout}, &logger)
}

func openFixtures(dir string) (*datasources.Manager, error) {
	if dir == "" {
		return datasources.Embedded(&logger)
	}
	manager := datasources.NewManager(os.DirFS(dir), &logger)
	if err := manager.LoadConfig("sources.yaml"); err != nil {
		return nil, err
	}
	return manager, nil
}

// listenAndServe runs handler until ctx is done or an interrupt arrives.
func listenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("address", addr).Msg("start http server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "http server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}
