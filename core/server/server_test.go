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
package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/hubtables/core/hub"
	"github.com/google/hubtables/core/models"
	"github.com/google/hubtables/core/persistence"
)

type response struct {
	Title   string `json:"title"`
	Headers []struct {
		Key string `json:"key"`
	} `json:"headers"`
	Rows []struct {
		ID string `json:"id"`
	} `json:"rows"`
	Pagination *struct {
		PageNumber     int `json:"pageNumber"`
		TotalItemCount int `json:"totalItemCount"`
		PageCount      int `json:"pageCount"`
	} `json:"pagination"`
	Error string `json:"error"`
}

func (r response) headerKeys() []string {
	var keys []string
	for _, h := range r.Headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (r response) rowIDs() []string {
	var ids []string
	for _, row := range r.Rows {
		ids = append(ids, row.ID)
	}
	return ids
}

// fakeHub serves a fixed advisory page and counts requests.
func fakeHub(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(hub.Response[models.Advisory]{
			Items: []models.Advisory{
				{Identifier: "RHSA-2024:0002", Severity: models.SeverityCritical, Published: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)},
				{Identifier: "GHSA-jfh8-c2jp-5v3q", Severity: models.SeverityCritical, Published: time.Date(2021, 12, 10, 0, 0, 0, 0, time.UTC)},
			},
			Total: 12,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// pagingHub serves n advisories honoring offset and limit.
func pagingHub(t *testing.T, n int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		items := []models.Advisory{}
		for i := offset; i < n && i < offset+limit; i++ {
			items = append(items, models.Advisory{Identifier: "RHSA-2024:" + strconv.Itoa(1000+i)})
		}
		_ = json.NewEncoder(w).Encode(hub.Response[models.Advisory]{Items: items, Total: n})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newServer(t *testing.T, hubURL string, local persistence.Store) http.Handler {
	t.Helper()
	dm := models.Default()
	models.AddSystemTables(dm)
	s := NewServer(dm, Options{
		Client:       hub.NewClient(hubURL, nil, nil),
		Local:        local,
		ItemsPerPage: 10,
		CacheTTL:     time.Minute,
	})
	return s.Handler()
}

func get(t *testing.T, h http.Handler, target string) (int, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var body response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func TestTableFromHub(t *testing.T) {
	var calls atomic.Int32
	h := newServer(t, fakeHub(t, &calls).URL, nil)

	q := url.Values{}
	q.Set("advisories:filters", `{"severity":["critical"]}`)
	code, body := get(t, h, "/tables/advisories?"+q.Encode())

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Advisories", body.Title)
	assert.Equal(t, []string{"RHSA-2024:0002", "GHSA-jfh8-c2jp-5v3q"}, body.rowIDs())
	require.NotNil(t, body.Pagination)
	assert.Equal(t, 12, body.Pagination.TotalItemCount)
	assert.Equal(t, 2, body.Pagination.PageCount)
	assert.Empty(t, body.Error)
	assert.Equal(t, int32(1), calls.Load())

	get(t, h, "/tables/advisories?"+q.Encode())
	assert.Equal(t, int32(1), calls.Load(), "identical requests reuse the page")

	get(t, h, "/tables/advisories?user=alice&"+q.Encode())
	assert.Equal(t, int32(2), calls.Load(), "the cache is per user")

	q.Set("advisories:pagination", `{"pageNumber":2,"itemsPerPage":10}`)
	get(t, h, "/tables/advisories?"+q.Encode())
	assert.Equal(t, int32(3), calls.Load(), "another page is fetched")
}

func TestOutOfRangePageIsRefetched(t *testing.T) {
	var calls atomic.Int32
	h := newServer(t, pagingHub(t, 12, &calls).URL, nil)

	q := url.Values{}
	q.Set("advisories:pagination", `{"pageNumber":50,"itemsPerPage":2}`)
	code, body := get(t, h, "/tables/advisories?"+q.Encode())

	require.Equal(t, http.StatusOK, code, body.Error)
	require.NotNil(t, body.Pagination)
	assert.Equal(t, 6, body.Pagination.PageNumber)
	assert.Equal(t, []string{"RHSA-2024:1010", "RHSA-2024:1011"}, body.rowIDs())
	assert.Equal(t, int32(2), calls.Load())

	q.Set("advisories:pagination", `{"pageNumber":4611686018427387905,"itemsPerPage":3}`)
	code, body = get(t, h, "/tables/advisories?"+q.Encode())
	require.Equal(t, http.StatusOK, code, body.Error)
	assert.Equal(t, 1, body.Pagination.PageNumber)
	assert.Len(t, body.Rows, 3)
}

func TestHubErrorsPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "hub is down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	h := newServer(t, srv.URL, nil)

	code, body := get(t, h, "/tables/sboms")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Contains(t, body.Error, "hub is down")
	assert.Empty(t, body.Rows)
}

func TestColumnPreferencesPerUser(t *testing.T) {
	var calls atomic.Int32
	local, err := persistence.OpenSQLiteStore(filepath.Join(t.TempDir(), "state.db"), nil)
	require.NoError(t, err)
	defer local.Close()
	h := newServer(t, fakeHub(t, &calls).URL, local)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/tables/advisories/columns/labels?visible=true&user=alice", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, alice := get(t, h, "/tables/advisories?user=alice")
	assert.Contains(t, alice.headerKeys(), "labels")

	_, bob := get(t, h, "/tables/advisories?user=bob")
	assert.NotContains(t, bob.headerKeys(), "labels")

	keys, err := local.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice/advisories"}, keys)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/tables/advisories/columns/nope?visible=true", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/tables/advisories/columns/labels?visible=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestColumnsSystemTable(t *testing.T) {
	var calls atomic.Int32
	h := newServer(t, fakeHub(t, &calls).URL, nil)

	q := url.Values{}
	q.Set("_columns:filters", `{"table":["sboms"]}`)
	code, body := get(t, h, "/tables/_columns?"+q.Encode())
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 6, body.Pagination.TotalItemCount)
	assert.Equal(t, int32(0), calls.Load(), "system tables never reach the hub")
}

func TestIndexAndUnknownTable(t *testing.T) {
	var calls atomic.Int32
	h := newServer(t, fakeHub(t, &calls).URL, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	var infos []TableInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	require.Len(t, infos, 5)
	assert.Equal(t, TableInfo{Name: "advisories", Title: "Advisories", Resource: "advisory", URL: "/tables/advisories"}, infos[1])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tables/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPrefixedStore(t *testing.T) {
	shared := persistence.NewMemoryStore()
	a := &prefixedStore{Store: shared, prefix: "a/"}
	require.NoError(t, a.Set("k", "v"))

	_, ok := shared.Get("k")
	assert.False(t, ok)
	v, ok := shared.Get("a/k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, a.Delete("k"))
	_, ok = a.Get("k")
	assert.False(t, ok)
}
