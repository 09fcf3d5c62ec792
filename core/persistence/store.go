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

// Package persistence mirrors slices of table state into the page URL and a
// keyed local store so they survive reloads and can be shared as links.
package persistence

import (
	"net/url"
	"sync"

	"github.com/google/safehtml"
)

// Store is a flat string key/value store.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStore is a process-wide local store. Instances sharing one
// MemoryStore see each other's writes; the last write to a key wins.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// URLStore keeps state in the query string of a page URL.
type URLStore struct {
	mu     sync.RWMutex
	path   string
	values url.Values
}

// NewURLStore creates a store seeded from u. Parameters that do not belong
// to any table are kept and written back unchanged.
func NewURLStore(u *url.URL) *URLStore {
	s := &URLStore{values: url.Values{}}
	if u != nil {
		s.path = u.Path
		s.values = u.Query()
	}
	return s
}

func (s *URLStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.values[key]; !ok {
		return "", false
	}
	return s.values.Get(key), true
}

func (s *URLStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.Set(key, value)
	return nil
}

func (s *URLStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.Del(key)
	return nil
}

// Clone creates a deep copy of the store, used to build links without
// touching the current page state.
func (s *URLStore) Clone() *URLStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := make(url.Values, len(s.values))
	for k, v := range s.values {
		values[k] = append([]string(nil), v...)
	}
	return &URLStore{path: s.path, values: values}
}

// Values returns a copy of the query parameters.
func (s *URLStore) Values() url.Values {
	return s.Clone().values
}

// String returns the path and encoded query.
func (s *URLStore) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := &url.URL{Path: s.path, RawQuery: s.values.Encode()}
	return u.String()
}

// Link converts the store to a safehtml.URL
func (s *URLStore) Link() safehtml.URL {
	return safehtml.URLSanitized(s.String())
}
