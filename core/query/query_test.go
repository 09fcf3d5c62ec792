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

package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFoldSort checks the literal folding cases the Hub depends on
func TestFoldSort(t *testing.T) {
	t.Run("with existing q", func(t *testing.T) {
		values := url.Values{}
		values.Set("q", "name:foo")
		values.Set("sort", "(id,asc)")
		FoldSort(values)

		assert.Equal(t, "name:foo (id,asc)", values.Get("q"))
		assert.False(t, values.Has("sort"))
	})

	t.Run("without q", func(t *testing.T) {
		values := url.Values{}
		values.Set("sort", "(id,asc)")
		FoldSort(values)

		assert.Equal(t, "(id,asc)", values.Get("q"))
		assert.False(t, values.Has("sort"))
	})

	t.Run("bare clause is wrapped", func(t *testing.T) {
		values := url.Values{}
		values.Set("sort", "id,desc")
		FoldSort(values)

		assert.Equal(t, "(id,desc)", values.Get("q"))
	})

	t.Run("no sort leaves q untouched", func(t *testing.T) {
		values := url.Values{}
		values.Set("q", "name:foo")
		FoldSort(values)

		assert.Equal(t, "name:foo", values.Get("q"))
	})
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		params   Params
		expected map[string]string
	}{
		{
			name:     "empty",
			params:   Params{},
			expected: map[string]string{},
		},
		{
			name: "single filter and sort",
			params: Params{
				Filters: []Filter{{Field: "name", Operator: OpEqual, Value: Text("foo")}},
				Sort:    &Sort{Field: "id", Direction: Asc},
			},
			expected: map[string]string{"q": "name:foo (id,asc)"},
		},
		{
			name:     "sort only",
			params:   Params{Sort: &Sort{Field: "published", Direction: Desc}},
			expected: map[string]string{"q": "(published,desc)"},
		},
		{
			name: "categories joined with and, or list inside",
			params: Params{
				Filters: []Filter{
					{Operator: OpLike, Value: Text("log4j")},
					{Field: "severity", Operator: OpEqual, Value: List(Or, "high", "critical")},
				},
			},
			expected: map[string]string{"q": "log4j&severity:high|critical"},
		},
		{
			name: "and list",
			params: Params{
				Filters: []Filter{{Field: "label", Operator: OpEqual, Value: List(And, "a", "b")}},
			},
			expected: map[string]string{"q": "label:a,b"},
		},
		{
			name: "operators and escaping",
			params: Params{
				Filters: []Filter{
					{Field: "published", Operator: OpGreaterOrEqual, Value: Text("2024-01-01")},
					{Field: "title", Operator: OpLike, Value: Text("a&b (c)")},
					{Field: "score", Operator: OpNotEqual, Value: Number(7.5)},
				},
			},
			expected: map[string]string{"q": `published>=2024-01-01&title~a\&b \(c\)&score!=7.5`},
		},
		{
			name:     "pagination",
			params:   Params{Page: &Page{PageNumber: 3, ItemsPerPage: 20}},
			expected: map[string]string{"offset": "40", "limit": "20"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := Encode(tt.params)
			got := map[string]string{}
			for k := range values {
				got[k] = values.Get(k)
			}
			assert.Equal(t, tt.expected, got)
			assert.False(t, values.Has("sort"))
		})
	}
}

func TestEncodeZeroBasedPage(t *testing.T) {
	opts := DefaultOptions
	opts.PageStyle = PageZeroBased
	opts.LimitKey = "pageSize"

	values := EncodeWith(Params{Page: &Page{PageNumber: 1, ItemsPerPage: 10}}, opts)
	assert.Equal(t, "0", values.Get("page"))
	assert.Equal(t, "10", values.Get("pageSize"))
	assert.False(t, values.Has("offset"))

	p, err := DecodeWith(values, opts)
	require.NoError(t, err)
	assert.Equal(t, &Page{PageNumber: 1, ItemsPerPage: 10}, p.Page)
}

func TestRoundTrip(t *testing.T) {
	cases := []Params{
		{},
		{Sort: &Sort{Field: "id", Direction: Asc}},
		{Page: &Page{PageNumber: 1, ItemsPerPage: 10}},
		{
			Filters: []Filter{{Field: "name", Operator: OpEqual, Value: Text("foo")}},
			Sort:    &Sort{Field: "id", Direction: Desc},
			Page:    &Page{PageNumber: 4, ItemsPerPage: 25},
		},
		{
			Filters: []Filter{
				{Operator: OpLike, Value: Text("spring boot")},
				{Field: "severity", Operator: OpEqual, Value: List(Or, "low", "medium")},
				{Field: "label", Operator: OpEqual, Value: List(And, "x,y", "z|w")},
				{Field: "published", Operator: OpLessOrEqual, Value: Text("2024-12-31")},
				{Field: "title", Operator: OpLike, Value: Text("ends with (paren)")},
				{Field: "score", Operator: OpGreater, Value: Text("=5")},
			},
			Sort: &Sort{Field: "modified", Direction: Asc},
		},
	}

	for _, p := range cases {
		t.Run(p.Query(), func(t *testing.T) {
			decoded, err := Decode(Encode(p))
			require.NoError(t, err)
			assert.Equal(t, p, decoded)
		})
	}
}

func TestDecode(t *testing.T) {
	t.Run("unfolded sort parameter", func(t *testing.T) {
		values := url.Values{"q": {"name:foo"}, "sort": {"id,desc"}}
		p, err := Decode(values)
		require.NoError(t, err)
		assert.Equal(t, &Sort{Field: "id", Direction: Desc}, p.Sort)
		require.Len(t, p.Filters, 1)
		assert.Equal(t, "name", p.Filters[0].Field)
	})

	t.Run("free text with colon", func(t *testing.T) {
		p, err := Decode(Encode(Params{Filters: []Filter{{Operator: OpLike, Value: Text("foo:bar")}}}))
		require.NoError(t, err)
		require.Len(t, p.Filters, 1)
		assert.Equal(t, "", p.Filters[0].Field)
		assert.Equal(t, "foo:bar", p.Filters[0].Value.Text)
	})

	malformed := []url.Values{
		{"q": {"(id,sideways)"}},
		{"q": {"(id)"}},
		{"q": {"name:a|b,c"}},
		{"q": {"name:"}},
		{"limit": {"zero"}},
		{"limit": {"10"}, "offset": {"-1"}},
	}
	for _, values := range malformed {
		t.Run("malformed "+values.Encode(), func(t *testing.T) {
			_, err := Decode(values)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestParamsBuilders(t *testing.T) {
	base := Params{Filters: []Filter{{Field: "a", Operator: OpEqual, Value: List(Or, "1", "2")}}}

	next := base.WithFilter(Filter{Field: "b", Operator: OpEqual, Value: Text("x")}).
		WithSort("a", Desc).
		WithPage(2, 50)

	assert.Len(t, base.Filters, 1, "builders must not mutate the receiver")
	assert.Nil(t, base.Sort)
	assert.Len(t, next.Filters, 2)
	assert.Equal(t, 50, next.Page.Offset())

	clone := base.Clone()
	clone.Filters[0].Value.List[0] = "changed"
	assert.Equal(t, "1", base.Filters[0].Value.List[0])
}

func TestListCollapse(t *testing.T) {
	assert.Equal(t, Text("only"), List(Or, "only"))
	assert.Equal(t, Or, List("", "a", "b").ListOperator)
}
