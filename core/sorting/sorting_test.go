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

package sorting

import (
	"testing"
	"time"

	"github.com/Masterminds/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/hubtables/core/query"
)

type pkg struct {
	id      int
	name    string
	score   float64
	version string
	fixed   bool
}

var packages = []pkg{
	{1, "zlib", 7.5, "1.2.11", false},
	{2, "openssl", 9.8, "3.0.7", true},
	{3, "Bash", 7.5, "5.1.0", true},
	{4, "curl", 5.3, "7.88.1", false},
	{5, "expat", 7.5, "2.5.0", false},
}

var sorter = Sorter[pkg]{
	Sortable: []string{"name", "score", "version", "fixed"},
	GetSortValues: func(p pkg) map[string]any {
		v, _ := semver.NewVersion(p.version)
		return map[string]any{
			"name":    p.name,
			"score":   p.score,
			"version": v,
			"fixed":   p.fixed,
		}
	},
	HubFields: map[string]string{"name": "name", "score": "base_score"},
}

func pkgIDs(items []pkg) []int {
	out := make([]int, len(items))
	for i, p := range items {
		out[i] = p.id
	}
	return out
}

func TestSort(t *testing.T) {
	tests := []struct {
		name     string
		sort     Sort
		expected []int
	}{
		{"unsorted keeps input order", Sort{}, []int{1, 2, 3, 4, 5}},
		{"name collates case insensitively", Sort{"name", Asc}, []int{3, 4, 5, 2, 1}},
		{"score asc is stable", Sort{"score", Asc}, []int{4, 1, 3, 5, 2}},
		{"score desc is stable", Sort{"score", Desc}, []int{2, 1, 3, 5, 4}},
		{"semantic versions", Sort{"version", Asc}, []int{1, 5, 2, 3, 4}},
		{"bools false first", Sort{"fixed", Asc}, []int{1, 4, 5, 2, 3}},
		{"undeclared column ignored", Sort{"id", Asc}, []int{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sorter.Sort(packages, tt.sort)
			assert.Equal(t, tt.expected, pkgIDs(got))

			again := sorter.Sort(got, tt.sort)
			assert.Equal(t, pkgIDs(got), pkgIDs(again), "sorting is idempotent")
		})
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, pkgIDs(packages), "input is not modified")
}

func TestCompare(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 0, Compare(nil, nil, nil))
	assert.Equal(t, -1, Compare(nil, nil, "a"))
	assert.Equal(t, 1, Compare(nil, "a", nil))
	assert.Equal(t, -1, Compare(nil, now, now.Add(time.Second)))
	assert.Equal(t, -1, Compare(nil, 2, 10.5))
	assert.Equal(t, 1, Compare(nil, uint8(3), int64(-1)))
	assert.Equal(t, -1, Compare(nil, "B", "a"), "without a collator strings compare bytewise")
	assert.Equal(t, -1, Compare(nil, 10, "x"), "mixed types compare printed forms")
}

func TestHubSort(t *testing.T) {
	assert.Nil(t, sorter.HubSort(Sort{}))
	assert.Nil(t, sorter.HubSort(Sort{"version", Asc}), "no mapping omits the fragment")
	assert.Equal(t, &query.Sort{Field: "base_score", Direction: query.Desc}, sorter.HubSort(Sort{"score", Desc}))

	assert.Equal(t, Sort{"score", Desc}, sorter.FromHub(&query.Sort{Field: "base_score", Direction: query.Desc}))
	assert.Equal(t, Sort{}, sorter.FromHub(&query.Sort{Field: "version", Direction: query.Asc}))
	assert.Equal(t, Sort{}, sorter.FromHub(nil))
}

func TestState(t *testing.T) {
	s := NewState([]string{"name", "score"}, Sort{Column: "name", Direction: Desc})
	require.Equal(t, Sort{"name", Desc}, s.Active())

	assert.True(t, s.SetActiveSort("name"))
	assert.Equal(t, Sort{"name", Asc}, s.Active(), "same column flips")

	assert.True(t, s.SetActiveSort("name"))
	assert.Equal(t, Sort{"name", Desc}, s.Active())

	assert.True(t, s.SetActiveSort("score"))
	assert.Equal(t, Sort{"score", Asc}, s.Active(), "new column resets to ascending")

	rev := s.Revision()
	assert.False(t, s.SetActiveSort("unknown"))
	assert.Equal(t, rev, s.Revision())

	assert.False(t, s.SetSort("score", Asc))
	assert.True(t, s.SetSort("score", Desc))
	assert.False(t, s.SetSort("score", "sideways"))

	assert.True(t, s.Clear())
	assert.False(t, s.Clear())

	s.Restore(Sort{Column: "unknown", Direction: Asc})
	assert.False(t, s.Active().IsActive())
	s.Restore(Sort{Column: "score", Direction: "bogus"})
	assert.Equal(t, Sort{"score", Asc}, s.Active())
}

func TestNewStateDropsUndeclaredInitial(t *testing.T) {
	s := NewState([]string{"name"}, Sort{Column: "severity", Direction: Asc})
	assert.Equal(t, Sort{}, s.Active())
}
