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
// Package server serves the dashboard tables as JSON view models. Table
// state is hydrated per request from the request URL and a per-user local
// store; rows of Hub backed tables are fetched through the hub client.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/google/hubtables/core/columns"
	"github.com/google/hubtables/core/hub"
	"github.com/google/hubtables/core/metrics"
	"github.com/google/hubtables/core/models"
	"github.com/google/hubtables/core/persistence"
	"github.com/google/hubtables/core/tables"
	"github.com/google/hubtables/core/views"
)

// Options configure a Server.
type Options struct {
	Client        *hub.Client
	Local         persistence.Store
	Metrics       *metrics.Metrics
	Logger        *zerolog.Logger
	PersistPrefix string
	ItemsPerPage  int
	FetchTimeout  time.Duration
	// CacheTTL bounds how long a fetched page is reused for an identical
	// request of the same user.
	CacheTTL time.Duration
}

// Server represents the application server with all its dependencies
type Server struct {
	dataModel *models.DataModel
	client    *hub.Client
	local     persistence.Store
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	prefix    string
	perPage   int
	timeout   time.Duration
	ttl       time.Duration

	handlers map[string]tableHandler

	mu        sync.Mutex
	pageCache map[string]cachedPage
	now       func() time.Time
}

// tableHandler renders one table for a request.
type tableHandler func(ctx context.Context, r *http.Request, user string) (*views.TableViewModel, int)

type cachedPage struct {
	snapshot string
	page     any
	expires  time.Time
}

// NewServer creates a new server over the tables of dataModel.
func NewServer(dataModel *models.DataModel, o Options) *Server {
	s := &Server{
		dataModel: dataModel,
		client:    o.Client,
		local:     o.Local,
		metrics:   o.Metrics,
		logger:    zerolog.Nop(),
		prefix:    o.PersistPrefix,
		perPage:   o.ItemsPerPage,
		timeout:   o.FetchTimeout,
		ttl:       o.CacheTTL,
		handlers:  make(map[string]tableHandler),
		pageCache: make(map[string]cachedPage),
		now:       time.Now,
	}
	if o.Logger != nil {
		s.logger = *o.Logger
	}
	if s.local == nil {
		s.local = persistence.NewMemoryStore()
	}
	if s.metrics == nil {
		s.metrics = metrics.New("dashboard", nil)
	}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}

	mountHub(s, models.Advisories)
	mountHub(s, models.Vulnerabilities)
	mountHub(s, models.Packages)
	mountHub(s, models.SBOMs)
	mountClient(s, models.ColumnsTable, func() []models.ColumnRow {
		return models.BuildColumnsTable(s.dataModel)
	})
	return s
}

// Handler returns the dashboard routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(s.logger))
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/", s.handleIndex)
	r.Get("/tables/{table}", s.handleTable)
	r.Put("/tables/{table}/columns/{column}", s.handleColumn)
	return r
}

// TableInfo describes one table on the index.
type TableInfo struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Resource string `json:"resource,omitempty"`
	URL      string `json:"url"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var infos []TableInfo
	for _, name := range s.dataModel.TableNames() {
		if _, ok := s.handlers[name]; !ok {
			continue
		}
		def := s.dataModel.GetTable(name)
		infos = append(infos, TableInfo{
			Name:     name,
			Title:    def.Title(),
			Resource: def.Resource(),
			URL:      "/tables/" + url.PathEscape(name),
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")
	handler, ok := s.handlers[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "table " + strconv.Quote(name) + " not found"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	vm, status := handler(ctx, r, r.URL.Query().Get("user"))
	writeJSON(w, status, vm)
}

// handleColumn stores a column visibility preference. The column slice is
// persisted to the local store so it follows the user across links.
func (s *Server) handleColumn(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")
	def := s.dataModel.GetTable(name)
	if def == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "table " + strconv.Quote(name) + " not found"})
		return
	}
	column := chi.URLParam(r, "column")
	if !slices.ContainsFunc(def.Columns(), func(c columns.Column) bool { return c.Key == column }) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "column " + strconv.Quote(column) + " not found"})
		return
	}
	visible, err := strconv.ParseBool(r.URL.Query().Get("visible"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "visible must be a boolean"})
		return
	}

	state, err := tables.NewState(tables.Config[struct{}, string]{
		Name:          name,
		PersistPrefix: s.prefix,
		Columns:       def.Columns(),
		Persist:       models.DefaultPersist,
		Local:         s.userStore(r.URL.Query().Get("user")),
		Logger:        &s.logger,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	state.SetColumnVisible(column, visible)
	w.WriteHeader(http.StatusNoContent)
}

// makeCacheKey creates a cache key combining user and table name
func (s *Server) makeCacheKey(userName, tableName string) string {
	if userName == "" {
		return tableName
	}
	return userName + ":" + tableName
}

// userStore scopes the local store to one user.
func (s *Server) userStore(user string) persistence.Store {
	if user == "" {
		return s.local
	}
	return &prefixedStore{Store: s.local, prefix: user + "/"}
}

func (s *Server) options(r *http.Request, user string) models.Options {
	return models.Options{
		Prefix: s.prefix,
		URL:    persistence.NewURLStore(r.URL),
		Local:  s.userStore(user),
		Logger: &s.logger,
	}
}

func (s *Server) cachedPage(key, snapshot string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.pageCache[key]
	if !ok || entry.snapshot != snapshot || s.now().After(entry.expires) {
		return nil, false
	}
	return entry.page, true
}

func (s *Server) storePage(key, snapshot string, page any) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageCache[key] = cachedPage{snapshot: snapshot, page: page, expires: s.now().Add(s.ttl)}
	s.metrics.CachedTables.Set(float64(len(s.pageCache)))
}

// mountHub serves a table whose rows come from the Hub.
func mountHub[T any](s *Server, def *models.Definition[T]) {
	s.handlers[def.Name()] = func(ctx context.Context, r *http.Request, user string) (*views.TableViewModel, int) {
		cfg := def.Config(s.options(r, user))
		if cfg.InitialItemsPerPage == 0 {
			cfg.InitialItemsPerPage = s.perPage
		}
		table, err := tables.NewServerTable(cfg)
		if err != nil {
			return errorViewModel(def.Title(), err), http.StatusInternalServerError
		}

		logger := zerolog.Ctx(ctx).With().Str("table", def.Name()).Logger()
		key := s.makeCacheKey(user, def.Name())
		fetch := func() {
			req := table.Begin()
			if cached, ok := s.cachedPage(key, req.Snapshot); ok {
				table.Resolve(req, cached.(tables.Page[T]), nil)
				return
			}
			start := time.Now()
			page, err := hub.List[T](ctx, s.client, def.Resource(), req.Params)
			outcome := metrics.OutcomeApplied
			switch {
			case !table.Resolve(req, page, err):
				outcome = metrics.OutcomeStale
			case err != nil:
				outcome = metrics.OutcomeError
				logger.Warn().Err(err).Msg("hub fetch failed")
			default:
				s.storePage(key, req.Snapshot, page)
			}
			s.metrics.ObserveFetch(def.Resource(), outcome, time.Since(start))
		}
		fetch()
		// the page was clamped to the Hub's total
		if table.NeedsFetch() && table.FetchError() == nil {
			logger.Debug().Int("page", table.PageParams().PageNumber).Msg("refetching clamped page")
			fetch()
		}

		vm := views.BuildTableViewModel(def.Title(), table, table.Derive(), def.Cell).
			WithStatus(table.IsLoading(), table.FetchError())
		if table.FetchError() != nil {
			return vm, http.StatusBadGateway
		}
		return vm, http.StatusOK
	}
}

// mountClient serves a table derived in process from rows.
func mountClient[T any](s *Server, def *models.Definition[T], rows func() []T) {
	s.handlers[def.Name()] = func(ctx context.Context, r *http.Request, user string) (*views.TableViewModel, int) {
		cfg := def.Config(s.options(r, user))
		if cfg.InitialItemsPerPage == 0 {
			cfg.InitialItemsPerPage = s.perPage
		}
		table, err := tables.NewClientTable(cfg)
		if err != nil {
			return errorViewModel(def.Title(), err), http.StatusInternalServerError
		}
		table.SetItems(rows())
		return views.BuildTableViewModel(def.Title(), table, table.Derive(), def.Cell), http.StatusOK
	}
}

func errorViewModel(title string, err error) *views.TableViewModel {
	return (&views.TableViewModel{Title: title}).WithStatus(false, err)
}

// prefixedStore namespaces keys of a shared store.
type prefixedStore struct {
	persistence.Store
	prefix string
}

func (p *prefixedStore) Get(key string) (string, bool) { return p.Store.Get(p.prefix + key) }
func (p *prefixedStore) Set(key, value string) error  { return p.Store.Set(p.prefix+key, value) }
func (p *prefixedStore) Delete(key string) error      { return p.Store.Delete(p.prefix + key) }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
