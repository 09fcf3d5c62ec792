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
// Package hub fetches list pages from the Hub REST API.
package hub

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/google/hubtables/core/query"
	"github.com/google/hubtables/core/tables"
)

const (
	// APIPrefix is prepended to resource names.
	APIPrefix = "/api/v2/"
	// TotalHeader carries the total item count when the Hub sets it.
	TotalHeader     = "x-total"
	RequestIDHeader = "X-Request-ID"
)

var ErrStatus = errors.New("unexpected hub status")

// StatusError reports a non-2xx Hub response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return "hub responded " + strconv.Itoa(e.Code) + ": " + e.Body
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Response is the list envelope returned by the Hub.
type Response[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Client talks to one Hub instance.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Options query.Options

	logger zerolog.Logger
}

// NewClient returns a client for baseURL using http.DefaultClient when
// httpClient is nil.
func NewClient(baseURL string, httpClient *http.Client, logger *zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTP:    httpClient,
		Options: query.DefaultOptions,
		logger:  zerolog.Nop(),
	}
	if logger != nil {
		c.logger = *logger
	}
	return c
}

// URL returns the list URL of resource for params.
func (c *Client) URL(resource string, params query.Params) (string, error) {
	u, err := url.Parse(c.BaseURL + APIPrefix + resource)
	if err != nil {
		return "", errors.Wrapf(err, "invalid hub url %q", c.BaseURL)
	}
	u.RawQuery = query.EncodeWith(params, c.Options).Encode()
	return u.String(), nil
}

// List fetches one page of resource.
func List[T any](ctx context.Context, c *Client, resource string, params query.Params) (tables.Page[T], error) {
	target, err := c.URL(resource, params)
	if err != nil {
		return tables.Page[T]{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return tables.Page[T]{}, errors.Wrap(err, "failed to build hub request")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")

	logger := c.logger.With().Str("request_id", requestID).Str("resource", resource).Logger()
	logger.Debug().Str("url", target).Msg("fetching hub page")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return tables.Page[T]{}, errors.Wrapf(err, "failed to fetch %s", resource)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Warn().Int("status", resp.StatusCode).Msg("hub request failed")
		return tables.Page[T]{}, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var body Response[T]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return tables.Page[T]{}, errors.Wrapf(err, "failed to decode %s page", resource)
	}

	total := body.Total
	if h := resp.Header.Get(TotalHeader); h != "" {
		n, err := strconv.Atoi(h)
		if err != nil {
			logger.Warn().Str("header", h).Msg("ignoring malformed total header")
		} else {
			total = n
		}
	}
	if body.Items == nil {
		body.Items = []T{}
	}
	return tables.Page[T]{Items: body.Items, Total: total}, nil
}

// Fetcher binds a resource to c for use with ServerTable.Fetch.
func Fetcher[T any](c *Client, resource string) tables.Fetcher[T] {
	return tables.FetcherFunc[T](func(ctx context.Context, params query.Params) (tables.Page[T], error) {
		return List[T](ctx, c, resource, params)
	})
}
