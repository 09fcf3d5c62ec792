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

package filtering

import (
	"testing"

	"github.com/google/hubtables/core/query"
	"github.com/stretchr/testify/assert"
)

type advisory struct {
	id        int
	title     string
	severity  string
	labels    []string
	published string
}

var advisories = []advisory{
	{1, "Log4Shell remote code execution", "critical", []string{"java", "rce"}, "2021-12-10T00:00:00Z"},
	{2, "OpenSSL buffer overflow", "high", []string{"c"}, "2022-11-01T00:00:00Z"},
	{3, "Spring4Shell", "critical", []string{"java"}, "2022-03-31T00:00:00Z"},
	{4, "Minor XSS in docs site", "low", []string{"js", "xss"}, "2023-05-05T00:00:00Z"},
}

var categories = []Category[advisory]{
	{
		Key:          "search",
		Title:        "Search",
		Kind:         KindSearch,
		GetItemValue: func(a advisory) string { return a.title },
	},
	{
		Key:      "severity",
		Title:    "Severity",
		Kind:     KindMultiselect,
		HubField: "severity",
		Options: []Option{
			{Label: "Low", Value: "low"},
			{Label: "High", Value: "high"},
			{Label: "Critical", Value: "critical"},
		},
		GetItemValue: func(a advisory) string { return a.severity },
	},
	{
		Key:           "labels",
		Title:         "Labels",
		Kind:          KindMultiselect,
		Logic:         LogicAnd,
		HubField:      "label",
		GetItemValues: func(a advisory) []string { return a.labels },
	},
	{
		Key:          "published",
		Title:        "Published",
		Kind:         KindDateRange,
		HubField:     "published",
		GetItemValue: func(a advisory) string { return a.published },
	},
	{
		Key:      "exact",
		Title:    "Exact severity",
		Kind:     KindSelect,
		HubField: "severity",
		GetItemValue: func(a advisory) string {
			return a.severity
		},
	},
}

func ids(items []advisory) []int {
	out := make([]int, len(items))
	for i, a := range items {
		out[i] = a.id
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		values   map[string]Value
		expected []int
	}{
		{"no filters", nil, []int{1, 2, 3, 4}},
		{"search is case insensitive", map[string]Value{"search": {"SHELL"}}, []int{1, 3}},
		{"multiselect or", map[string]Value{"severity": {"low", "high"}}, []int{2, 4}},
		{"multiselect and", map[string]Value{"labels": {"java", "rce"}}, []int{1}},
		{"and across categories", map[string]Value{"search": {"shell"}, "labels": {"rce"}}, []int{1}},
		{"date range inclusive", map[string]Value{"published": {"2022-03-31", "2022-11-01"}}, []int{2, 3}},
		{"open ended date range", map[string]Value{"published": {"2023-01-01", ""}}, []int{4}},
		{"select", map[string]Value{"exact": {"high"}}, []int{2}},
		{"empty value is inactive", map[string]Value{"search": {""}}, []int{1, 2, 3, 4}},
		{"unknown key ignored", map[string]Value{"nope": {"x"}}, []int{1, 2, 3, 4}},
		{"nothing matches", map[string]Value{"search": {"zzz"}}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterSlice(advisories, categories, tt.values)
			assert.Equal(t, tt.expected, ids(got))
		})
	}
}

func TestFilterIsLazy(t *testing.T) {
	seen := 0
	cats := []Category[advisory]{{
		Key:  "search",
		Kind: KindSearch,
		GetItemValue: func(a advisory) string {
			seen++
			return a.title
		},
	}}
	for a := range Filter(advisories, cats, map[string]Value{"search": {"shell"}}) {
		assert.Equal(t, 1, a.id)
		break
	}
	assert.Equal(t, 1, seen)
}

func TestCategoryWithoutExtractorMatches(t *testing.T) {
	c := Category[advisory]{Key: "x", Kind: KindSelect}
	assert.True(t, c.Matches(advisories[0], Value{"anything"}))
}

func TestHubFilters(t *testing.T) {
	values := map[string]Value{
		"search":    {" log4j "},
		"severity":  {"high", "critical"},
		"labels":    {"java"},
		"published": {"2022-01-01", ""},
		"exact":     {"low"},
	}
	got := HubFilters(categories, values)
	expected := []query.Filter{
		{Field: "", Operator: query.OpLike, Value: query.Text("log4j")},
		{Field: "severity", Operator: query.OpEqual, Value: query.List(query.Or, "high", "critical")},
		{Field: "label", Operator: query.OpEqual, Value: query.Text("java")},
		{Field: "published", Operator: query.OpGreaterOrEqual, Value: query.Text("2022-01-01")},
		{Field: "severity", Operator: query.OpEqual, Value: query.Text("low")},
	}
	assert.Equal(t, expected, got)

	encoded := query.Encode(query.Params{Filters: got}).Get("q")
	assert.Equal(t, "log4j&severity:high|critical&label:java&published>=2022-01-01&severity:low", encoded)
}

func TestState(t *testing.T) {
	s := NewState([]string{"search", "severity"})

	assert.False(t, s.SetValue("undeclared", Value{"x"}), "undeclared keys are a no-op")
	assert.False(t, s.HasActive())

	assert.True(t, s.SetValue("severity", Value{"high"}))
	assert.False(t, s.SetValue("severity", Value{"high"}), "same value is not a change")
	rev := s.Revision()

	v := s.Value("severity")
	v[0] = "mutated"
	assert.Equal(t, Value{"high"}, s.Value("severity"), "returned values are copies")

	assert.True(t, s.SetValue("severity", nil))
	assert.Greater(t, s.Revision(), rev)
	assert.False(t, s.HasActive())

	s.Restore(map[string]Value{"search": {"x"}, "undeclared": {"y"}, "severity": {""}})
	assert.Equal(t, map[string]Value{"search": {"x"}}, s.Values())

	assert.True(t, s.Reset())
	assert.False(t, s.Reset())
	assert.Equal(t, []string{"search", "severity"}, s.Keys())
}

func TestOptionLabel(t *testing.T) {
	assert.Equal(t, "Critical", categories[1].OptionLabel("critical"))
	assert.Equal(t, "unknown", categories[1].OptionLabel("unknown"))
}

func TestFromHub(t *testing.T) {
	filters := []query.Filter{
		{Field: "", Operator: query.OpLike, Value: query.Text("log4j")},
		{Field: "severity", Operator: query.OpEqual, Value: query.List(query.Or, "high", "critical")},
		{Field: "published", Operator: query.OpLessOrEqual, Value: query.Text("2023-01-01")},
		{Field: "vendor", Operator: query.OpEqual, Value: query.Text("acme")},
	}
	values, unknown := FromHub(categories, filters)

	assert.Equal(t, map[string]Value{
		"search":    {"log4j"},
		"severity":  {"high", "critical"},
		"published": {"", "2023-01-01"},
	}, values)
	assert.Equal(t, filters[3:], unknown)

	again, _ := FromHub(categories, HubFilters(categories, values))
	assert.Equal(t, values, again)
}

func TestFromHubRejectsUnsupportedOperators(t *testing.T) {
	filters := []query.Filter{
		{Field: "severity", Operator: query.OpNotEqual, Value: query.Text("low")},
		{Field: "severity", Operator: query.OpEqual, Value: query.List(query.And, "high", "critical")},
		{Field: "label", Operator: query.OpEqual, Value: query.List(query.Or, "rhel", "java")},
		{Field: "published", Operator: query.OpLike, Value: query.Text("2023")},
		{Field: "", Operator: query.OpEqual, Value: query.Text("log4j")},
	}
	values, unknown := FromHub(categories, filters)
	assert.Empty(t, values)
	assert.Equal(t, filters, unknown)

	values, unknown = FromHub(categories, []query.Filter{
		{Field: "label", Operator: query.OpEqual, Value: query.List(query.And, "rhel", "java")},
		{Field: "published", Operator: query.OpGreater, Value: query.Text("2023-01-01")},
	})
	assert.Empty(t, unknown)
	assert.Equal(t, map[string]Value{"labels": {"rhel", "java"}, "published": {"2023-01-01", ""}}, values)
}
