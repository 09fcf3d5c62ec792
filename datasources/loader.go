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
// Package datasources loads the fixture records served by the demo Hub.
// Sources are declared in a YAML config; their data is decoded lazily by a
// loader chosen from the source type.
package datasources

import (
	"encoding/json"
	"io"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader decodes one fixture format.
type Loader interface {
	// SourceType returns the type this loader is registered under.
	SourceType() string
	// Load decodes the whole of r into dst.
	Load(r io.Reader, dst any) error
}

// DataSource declares one named fixture file.
type DataSource struct {
	Name       string `yaml:"name"`
	Resource   string `yaml:"resource"`
	SourceType string `yaml:"source_type,omitempty"`
	Path       string `yaml:"path"`
}

// Type returns the declared source type, falling back to the file extension.
func (s DataSource) Type() string {
	if s.SourceType != "" {
		return s.SourceType
	}
	switch ext := strings.ToLower(path.Ext(s.Path)); ext {
	case ".yml":
		return "yaml"
	default:
		return strings.TrimPrefix(ext, ".")
	}
}

// Config is the root of a sources file.
type Config struct {
	Sources []DataSource `yaml:"sources"`
}

type YAMLLoader struct{}

func (YAMLLoader) SourceType() string { return "yaml" }

func (YAMLLoader) Load(r io.Reader, dst any) error {
	return yaml.NewDecoder(r).Decode(dst)
}

type JSONLoader struct{}

func (JSONLoader) SourceType() string { return "json" }

func (JSONLoader) Load(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
