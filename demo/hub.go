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
// Package demo serves the Hub list API over fixture data so that the
// dashboard can run without a real Hub.
package demo

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/google/hubtables/core/filtering"
	"github.com/google/hubtables/core/hub"
	"github.com/google/hubtables/core/metrics"
	"github.com/google/hubtables/core/models"
	"github.com/google/hubtables/core/paging"
	"github.com/google/hubtables/core/query"
	"github.com/google/hubtables/core/server"
	"github.com/google/hubtables/datasources"
)

// Hub answers list requests from fixtures, interpreting the query the same
// way the dashboard tables build it.
type Hub struct {
	manager *datasources.Manager
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewHub(manager *datasources.Manager, m *metrics.Metrics, logger *zerolog.Logger) *Hub {
	h := &Hub{manager: manager, metrics: m, logger: zerolog.Nop()}
	if logger != nil {
		h.logger = *logger
	}
	if h.metrics == nil {
		h.metrics = metrics.New("hub", nil)
	}
	return h
}

// Handler returns the Hub routes.
func (h *Hub) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(server.RequestLogger(h.logger))
	r.Use(h.metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", h.metrics.Handler())

	r.Route(strings.TrimSuffix(hub.APIPrefix, "/"), func(r chi.Router) {
		r.Get("/"+models.ResourceAdvisory, serveList(h, models.Advisories))
		r.Get("/"+models.ResourceVulnerability, serveList(h, models.Vulnerabilities))
		r.Get("/"+models.ResourcePackage, serveList(h, models.Packages))
		r.Get("/"+models.ResourceSBOM, serveList(h, models.SBOMs))
	})
	return r
}

var errUnknownField = errors.New("unknown field")

// List runs params against the fixtures of def.
func List[T any](h *Hub, def *models.Definition[T], params query.Params) (hub.Response[T], error) {
	cfg := def.Config(models.Options{})

	values, unknown := filtering.FromHub(cfg.Categories, params.Filters)
	if len(unknown) > 0 {
		return hub.Response[T]{}, errors.Wrapf(errUnknownField, "cannot filter %s by %q with %q", def.Resource(), unknown[0].Field, unknown[0].Operator)
	}

	source, ok := h.manager.SourceForResource(def.Resource())
	if !ok {
		return hub.Response[T]{}, errors.Wrapf(datasources.ErrSourceNotFound, "resource %q", def.Resource())
	}
	items, err := datasources.Load[T](h.manager, source)
	if err != nil {
		return hub.Response[T]{}, err
	}

	matched := filtering.FilterSlice(items, cfg.Categories, values)
	if params.Sort != nil {
		active := cfg.Sorter.FromHub(params.Sort)
		if !active.IsActive() {
			return hub.Response[T]{}, errors.Wrapf(errUnknownField, "cannot sort %s by %q", def.Resource(), params.Sort.Field)
		}
		matched = cfg.Sorter.Sort(matched, active)
	}

	total := len(matched)
	if params.Page != nil {
		matched = paging.Slice(matched, paging.Params{
			PageNumber:   params.Page.PageNumber,
			ItemsPerPage: params.Page.ItemsPerPage,
		})
	}
	return hub.Response[T]{Items: matched, Total: total}, nil
}

func serveList[T any](h *Hub, def *models.Definition[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		params, err := query.Decode(r.URL.Query())
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		resp, err := List(h, def, params)
		switch {
		case errors.Is(err, errUnknownField):
			writeError(w, http.StatusBadRequest, err)
			return
		case err != nil:
			logger.Error().Err(err).Str("resource", def.Resource()).Msg("failed to list fixtures")
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		h.metrics.ItemsServed.WithLabelValues(def.Resource()).Add(float64(len(resp.Items)))
		w.Header().Set(hub.TotalHeader, strconv.Itoa(resp.Total))
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
