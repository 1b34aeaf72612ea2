// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := Make[int](10)
	assert.Len(t, s, 0)
	s.Insert(3, 7)
	assert.Len(t, s, 2)
	assert.True(t, s.Has(3))
	assert.True(t, s.Has(7))
	assert.False(t, s.Has(5))

	s2 := MakeWith(5, 7, 7)
	assert.Len(t, s2, 2)
	assert.True(t, s2.Has(5))
}

func TestOrdered(t *testing.T) {
	s := MakeOrdered(5, 1, 5, 3)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []int{5, 1, 3}, s.Keys())
	assert.True(t, s.Insert(0))
	assert.False(t, s.Insert(1))
	assert.True(t, s.Has(0))
	assert.False(t, s.Has(2))

	// Elements inserted while iterating are visited too.
	var visited []int
	for v := range s.All() {
		visited = append(visited, v)
		if v == 0 {
			s.Insert(9)
		}
	}
	assert.Equal(t, []int{5, 1, 3, 0, 9}, visited)
}
