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

package expansion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSingleVariantKeepsOneEntry(t *testing.T) {
	s := NewState[string](Single)

	s.Toggle("CVE-2021-44228")
	assert.True(t, s.IsExpanded("CVE-2021-44228"))

	s.Toggle("CVE-2022-22965", "affected")
	assert.False(t, s.IsExpanded("CVE-2021-44228"))
	assert.True(t, s.IsExpanded("CVE-2022-22965", "affected"))
	assert.False(t, s.IsExpanded("CVE-2022-22965"), "row and cell are distinct")
	assert.Equal(t, []Key[string]{{Item: "CVE-2022-22965", Column: "affected"}}, s.Expanded())

	s.Toggle("CVE-2022-22965", "affected")
	assert.Empty(t, s.Expanded())
}

func TestSingleVariantNeverHoldsTwo(t *testing.T) {
	s := NewState[int](Single)
	for i := range 50 {
		s.SetExpanded(i%7, "", true)
		assert.Len(t, s.Expanded(), 1)
	}
	assert.False(t, s.SetExpanded(49%7, "", true), "re-expanding the current entry is a no-op")
}

func TestCompoundVariant(t *testing.T) {
	s := NewState[int](Compound)

	assert.True(t, s.SetExpanded(1, "details", true))
	assert.True(t, s.SetExpanded(1, "sboms", true))
	assert.True(t, s.SetExpanded(2, "", true))
	assert.False(t, s.SetExpanded(2, "", true))
	assert.Len(t, s.Expanded(), 3)

	s.Toggle(1, "details")
	assert.Equal(t, []Key[int]{{1, "sboms"}, {2, ""}}, s.Expanded())

	assert.True(t, s.CollapseAll())
	assert.False(t, s.CollapseAll())
	assert.Empty(t, s.Expanded())
}

func TestUnknownVariantIsCompound(t *testing.T) {
	assert.Equal(t, Compound, NewState[int]("").Variant())
}

func TestRestore(t *testing.T) {
	single := NewState[int](Single)
	single.Restore([]Key[int]{{1, ""}, {2, ""}})
	assert.Equal(t, []Key[int]{{2, ""}}, single.Expanded())

	compound := NewState[int](Compound)
	compound.Restore([]Key[int]{{1, ""}, {1, ""}, {3, "x"}})
	assert.Equal(t, []Key[int]{{1, ""}, {3, "x"}}, compound.Expanded())
}
