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
	"embed"
	"io/fs"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

//go:embed fixtures
var fixtures embed.FS

// Embedded returns a manager over the bundled fixtures.
func Embedded(logger *zerolog.Logger) (*Manager, error) {
	sub, err := fs.Sub(fixtures, "fixtures")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded fixtures")
	}
	m := NewManager(sub, logger)
	if err := m.LoadConfig("sources.yaml"); err != nil {
		return nil, err
	}
	return m, nil
}
