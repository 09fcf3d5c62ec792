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

package paging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/google/hubtables/core/query"
)

func numbers(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestSlice(t *testing.T) {
	items := numbers(25)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, Slice(items, Params{1, 10}))
	assert.Equal(t, []int{20, 21, 22, 23, 24}, Slice(items, Params{3, 10}))
	assert.Empty(t, Slice(items, Params{4, 10}))
	assert.Equal(t, items[:10], Slice(items, Params{0, 0}), "invalid params are normalized")
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 1, PageCount(0, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 2, PageCount(11, 10))
	assert.Equal(t, 3, PageCount(21, 0))
}

// TestSetItemsPerPageKeepsFirstVisibleItem checks that the item at the top of
// the page before a size change is still visible after it.
func TestSetItemsPerPageKeepsFirstVisibleItem(t *testing.T) {
	items := numbers(100)
	tests := []struct {
		page, size, newSize int
		expectedPage        int
	}{
		{1, 10, 20, 1},
		{3, 10, 20, 2},
		{4, 10, 20, 2},
		{2, 20, 10, 3},
		{5, 10, 7, 6},
		{10, 10, 50, 2},
	}

	for _, tt := range tests {
		s := NewState(tt.size)
		s.SetPage(tt.page)
		first := Slice(items, s.Params())[0]

		assert.True(t, s.SetItemsPerPage(tt.newSize))
		assert.Equal(t, tt.expectedPage, s.Params().PageNumber)
		assert.Contains(t, Slice(items, s.Params()), first)
	}
}

func TestState(t *testing.T) {
	s := NewState(0)
	assert.Equal(t, Params{1, DefaultItemsPerPage}, s.Params())

	assert.False(t, s.SetPage(1))
	assert.True(t, s.SetPage(3))
	assert.True(t, s.SetPage(-2))
	assert.Equal(t, 1, s.Params().PageNumber)

	assert.False(t, s.SetItemsPerPage(0))
	assert.False(t, s.SetItemsPerPage(DefaultItemsPerPage))

	s.Restore(Params{PageNumber: -1, ItemsPerPage: 5})
	assert.Equal(t, Params{1, 5}, s.Params())
}

func TestClamp(t *testing.T) {
	s := NewState(10)
	s.SetPage(5)

	assert.False(t, s.Clamp(45))
	assert.True(t, s.Clamp(21))
	assert.Equal(t, 3, s.Params().PageNumber)

	assert.True(t, s.Clamp(0))
	assert.Equal(t, 1, s.Params().PageNumber)
	assert.False(t, s.Clamp(0))
}

func TestHubPage(t *testing.T) {
	assert.Equal(t, &query.Page{PageNumber: 2, ItemsPerPage: 25}, Params{2, 25}.HubPage())
	assert.Equal(t, 25, Params{2, 25}.Offset())
}

func TestUnaddressablePageFallsBackToFirst(t *testing.T) {
	huge := Params{PageNumber: math.MaxInt/3 + 1, ItemsPerPage: 3}
	assert.Equal(t, 0, huge.Offset())
	assert.Equal(t, 1, huge.HubPage().PageNumber)

	s := NewState(3)
	s.Restore(huge)
	assert.Equal(t, Params{1, 3}, s.Params())

	assert.True(t, s.SetPage(4))
	assert.True(t, s.SetPage(math.MaxInt))
	assert.Equal(t, 1, s.Params().PageNumber)

	assert.Equal(t, 0, query.Page{PageNumber: math.MaxInt, ItemsPerPage: 2}.Offset())
}
