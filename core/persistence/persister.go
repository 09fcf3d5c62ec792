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

package persistence

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// Slice names one persisted part of a table's state.
type Slice string

const (
	SliceFilters    Slice = "filters"
	SliceSort       Slice = "sort"
	SlicePagination Slice = "pagination"
	SliceColumns    Slice = "columns"
	SliceExpanded   Slice = "expanded"
)

// Slices lists every persistable slice.
var Slices = []Slice{SliceColumns, SliceFilters, SliceSort, SlicePagination, SliceExpanded}

// Target is where a slice is persisted.
type Target string

const (
	// TargetState keeps the slice in memory only.
	TargetState Target = "state"
	// TargetURL writes the slice into the page URL.
	TargetURL Target = "url"
	// TargetLocal writes the slice into the local store.
	TargetLocal Target = "local"
)

type Config struct {
	// Prefix distinguishes several tables of the same name on one page.
	Prefix  string
	Table   string
	Targets map[Slice]Target
	URL     Store
	Local   Store
	Logger  *zerolog.Logger
}

// Persister reads and writes the slices of one table.
type Persister struct {
	namespace string
	targets   map[Slice]Target
	url       Store
	local     Store
	logger    zerolog.Logger
}

func New(cfg Config) *Persister {
	p := &Persister{
		namespace: cfg.Prefix + cfg.Table,
		targets:   make(map[Slice]Target, len(cfg.Targets)),
		url:       cfg.URL,
		local:     cfg.Local,
		logger:    zerolog.Nop(),
	}
	for k, v := range cfg.Targets {
		p.targets[k] = v
	}
	if cfg.Logger != nil {
		p.logger = *cfg.Logger
	}
	return p
}

// Namespace is the prefix followed by the table name.
func (p *Persister) Namespace() string {
	return p.namespace
}

// Target returns where slice is persisted. Slices whose store is missing are
// kept in memory.
func (p *Persister) Target(slice Slice) Target {
	switch t := p.targets[slice]; {
	case t == TargetURL && p.url != nil:
		return TargetURL
	case t == TargetLocal && p.local != nil:
		return TargetLocal
	}
	return TargetState
}

// URLKey is the query parameter holding slice.
func (p *Persister) URLKey(slice Slice) string {
	return p.namespace + ":" + string(slice)
}

// Read decodes the persisted slice into dst, which should be a pointer to a
// zero value. Returns false when nothing usable is stored; malformed data is
// logged and treated as absent.
func (p *Persister) Read(slice Slice, dst any) bool {
	var raw []byte
	switch p.Target(slice) {
	case TargetURL:
		s, ok := p.url.Get(p.URLKey(slice))
		if !ok || s == "" {
			return false
		}
		raw = []byte(s)
	case TargetLocal:
		record, ok := p.readRecord()
		if !ok {
			return false
		}
		raw, ok = record[slice]
		if !ok || len(raw) == 0 || string(raw) == "null" {
			return false
		}
	default:
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		p.logger.Debug().Err(err).Str("namespace", p.namespace).Str("slice", string(slice)).Msg("ignoring malformed persisted state")
		return false
	}
	return true
}

// Write stores v as the slice. A nil v removes it.
func (p *Persister) Write(slice Slice, v any) error {
	target := p.Target(slice)
	if target == TargetState {
		return nil
	}

	var raw json.RawMessage
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return errors.Wrapf(err, "failed to encode %s state of %s", slice, p.namespace)
		}
		raw = b
	}

	if target == TargetURL {
		if raw == nil {
			return p.url.Delete(p.URLKey(slice))
		}
		return p.url.Set(p.URLKey(slice), string(raw))
	}

	record, _ := p.readRecord()
	if record == nil {
		record = map[Slice]json.RawMessage{}
	}
	if raw == nil {
		delete(record, slice)
	} else {
		record[slice] = raw
	}
	b, err := json.Marshal(record)
	if err != nil {
		return errors.Wrapf(err, "failed to encode state record of %s", p.namespace)
	}
	return p.local.Set(p.namespace, string(b))
}

// readRecord loads the single local record holding every local slice.
func (p *Persister) readRecord() (map[Slice]json.RawMessage, bool) {
	s, ok := p.local.Get(p.namespace)
	if !ok || s == "" {
		return nil, false
	}
	var record map[Slice]json.RawMessage
	if err := json.Unmarshal([]byte(s), &record); err != nil {
		p.logger.Debug().Err(err).Str("namespace", p.namespace).Msg("ignoring malformed local state record")
		return nil, false
	}
	return record, true
}
