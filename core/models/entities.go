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

package models

import (
	"time"

	"github.com/Masterminds/semver"

	"github.com/google/hubtables/core/filtering"
)

// Severity is the aggregate severity rating of an advisory or vulnerability.
type Severity string

const (
	SeverityNone      Severity = ""
	SeverityLow       Severity = "low"
	SeverityModerate  Severity = "moderate"
	SeverityImportant Severity = "important"
	SeverityCritical  Severity = "critical"
)

// Rank orders severities from none (0) to critical (4).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityModerate:
		return 2
	case SeverityImportant:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// SeverityOptions are the filter options for severity categories.
var SeverityOptions = []filtering.Option{
	{Label: "Critical", Value: string(SeverityCritical)},
	{Label: "Important", Value: string(SeverityImportant)},
	{Label: "Moderate", Value: string(SeverityModerate)},
	{Label: "Low", Value: string(SeverityLow)},
}

// Advisory is a vendor security advisory.
type Advisory struct {
	Identifier      string    `json:"identifier" yaml:"identifier"`
	Title           string    `json:"title" yaml:"title"`
	Severity        Severity  `json:"severity" yaml:"severity"`
	Published       time.Time `json:"published" yaml:"published"`
	Labels          []string  `json:"labels,omitempty" yaml:"labels,omitempty"`
	Vulnerabilities []string  `json:"vulnerabilities,omitempty" yaml:"vulnerabilities,omitempty"`
}

// Vulnerability is a CVE record.
type Vulnerability struct {
	Identifier string    `json:"identifier" yaml:"identifier"`
	Title      string    `json:"title" yaml:"title"`
	Severity   Severity  `json:"severity" yaml:"severity"`
	BaseScore  float64   `json:"base_score" yaml:"base_score"`
	Published  time.Time `json:"published" yaml:"published"`
	Advisories []string  `json:"advisories,omitempty" yaml:"advisories,omitempty"`
}

// Package is a software package identified by its package URL.
type Package struct {
	PURL       string `json:"purl" yaml:"purl"`
	Name       string `json:"name" yaml:"name"`
	Namespace  string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Type       string `json:"type" yaml:"type"`
	Version    string `json:"version" yaml:"version"`
	License    string `json:"license,omitempty" yaml:"license,omitempty"`
	Advisories int    `json:"advisories" yaml:"advisories"`
}

// SemVer parses Version, returning nil for non-semantic versions.
func (p Package) SemVer() *semver.Version {
	v, err := semver.NewVersion(p.Version)
	if err != nil {
		return nil
	}
	return v
}

// SBOM is an uploaded software bill of materials.
type SBOM struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Version   string    `json:"version,omitempty" yaml:"version,omitempty"`
	Supplier  string    `json:"supplier,omitempty" yaml:"supplier,omitempty"`
	Published time.Time `json:"published" yaml:"published"`
	Labels    []string  `json:"labels,omitempty" yaml:"labels,omitempty"`
	Packages  int       `json:"packages" yaml:"packages"`
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
