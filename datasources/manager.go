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
package datasources

import (
	"io/fs"
	"path"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var (
	ErrSourceNotFound = errors.New("source not found")
	ErrNoLoader       = errors.New("no loader registered")
	ErrTypeMismatch   = errors.New("cached source has a different type")
)

// Manager handles loading and caching of data sources.
// Source metadata is registered eagerly; data is loaded lazily on demand.
type Manager struct {
	mu sync.RWMutex

	fsys fs.FS

	// Source metadata indexed by name
	sources map[string]DataSource

	// Decoded records indexed by source name, populated lazily
	data map[string]any

	// Registered loaders indexed by source type
	loaders map[string]Loader

	// Base directory for resolving relative paths
	baseDir string

	logger zerolog.Logger
}

// NewManager creates a manager reading from fsys with the YAML and JSON
// loaders registered.
func NewManager(fsys fs.FS, logger *zerolog.Logger) *Manager {
	m := &Manager{
		fsys:    fsys,
		sources: make(map[string]DataSource),
		data:    make(map[string]any),
		loaders: make(map[string]Loader),
		baseDir: ".",
		logger:  zerolog.Nop(),
	}
	if logger != nil {
		m.logger = *logger
	}
	m.RegisterLoader(YAMLLoader{})
	m.RegisterLoader(JSONLoader{})
	return m
}

// RegisterLoader registers a loader for its source type.
// If a loader is already registered for this type, it will be replaced.
func (m *Manager) RegisterLoader(loader Loader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaders[loader.SourceType()] = loader
}

// LoadConfig reads a sources file. Source paths are resolved relative to it.
func (m *Manager) LoadConfig(configPath string) error {
	f, err := m.fsys.Open(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}
	defer f.Close()

	var config Config
	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		return errors.Wrap(err, "failed to parse config file")
	}

	m.mu.Lock()
	m.baseDir = path.Dir(configPath)
	m.mu.Unlock()

	for _, src := range config.Sources {
		if err := m.AddSource(src); err != nil {
			return err
		}
	}
	return nil
}

// AddSource registers source metadata. The data is loaded on first use.
func (m *Manager) AddSource(src DataSource) error {
	if src.Name == "" || src.Path == "" {
		return errors.Newf("source %q needs a name and a path", src.Name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loaders[src.Type()]; !ok {
		return errors.Wrapf(ErrNoLoader, "source %q has type %q", src.Name, src.Type())
	}
	m.sources[src.Name] = src
	delete(m.data, src.Name)
	return nil
}

// GetSourceNames returns the names of all registered sources.
func (m *Manager) GetSourceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.sources))
	for name := range m.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetSource returns the metadata of a source.
func (m *Manager) GetSource(name string) (DataSource, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src, ok := m.sources[name]
	return src, ok
}

// SourceForResource returns the name of the source serving a Hub resource.
func (m *Manager) SourceForResource(resource string) (string, bool) {
	for _, name := range m.GetSourceNames() {
		if src, _ := m.GetSource(name); src.Resource == resource {
			return name, true
		}
	}
	return "", false
}

// Load returns the records of a source, decoding and caching them on first
// access. Every call for one source must use the same T.
func Load[T any](m *Manager, sourceName string) ([]T, error) {
	m.mu.RLock()
	if cached, ok := m.data[sourceName]; ok {
		m.mu.RUnlock()
		records, ok := cached.([]T)
		if !ok {
			return nil, errors.Wrapf(ErrTypeMismatch, "source %q", sourceName)
		}
		return records, nil
	}
	src, ok := m.sources[sourceName]
	if !ok {
		m.mu.RUnlock()
		return nil, errors.Wrapf(ErrSourceNotFound, "%q", sourceName)
	}
	loader, hasLoader := m.loaders[src.Type()]
	baseDir := m.baseDir
	m.mu.RUnlock()

	if !hasLoader {
		return nil, errors.Wrapf(ErrNoLoader, "source type %q", src.Type())
	}

	f, err := m.fsys.Open(path.Join(baseDir, src.Path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open source %q", sourceName)
	}
	defer f.Close()

	var records []T
	if err := loader.Load(f, &records); err != nil {
		return nil, errors.Wrapf(err, "failed to load source %q", sourceName)
	}
	m.logger.Debug().Str("source", sourceName).Int("records", len(records)).Msg("loaded source")

	// Cache the result
	m.mu.Lock()
	m.data[sourceName] = records
	m.mu.Unlock()

	return records, nil
}

// InvalidateCache removes a source from the cache, forcing reload on next access.
func (m *Manager) InvalidateCache(sourceName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sourceName)
}

// InvalidateAllCaches removes all sources from the cache.
func (m *Manager) InvalidateAllCaches() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]any)
}

// IsLoaded returns whether data for a source is currently cached.
func (m *Manager) IsLoaded(sourceName string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[sourceName]
	return ok
}

// GetLoadedSources returns names of all currently loaded sources.
func (m *Manager) GetLoadedSources() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
