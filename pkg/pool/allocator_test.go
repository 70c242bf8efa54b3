/*
 * Copyright (C) 2020-2022, IrineSistiana
 *
 * This file is part of strqueue.
 *
 * strqueue is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * strqueue is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package pool

import (
	"math"
	"math/bits"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocator_Get(t *testing.T) {
	alloc := NewAllocator()
	tests := []struct {
		size      int
		wantCap   int
		wantPanic bool
	}{
		{-1, 0, true},
		{0, 1, false},
		{1, 1, false},
		{2, 2, false},
		{12, 16, false},
		{1024, 1024, false},
		{1025, 2048, false},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.size), func(t *testing.T) {
			if tt.wantPanic {
				assert.Panics(t, func() { alloc.Get(tt.size) })
				return
			}
			for i := 0; i < 3; i++ {
				b := alloc.Get(tt.size)
				assert.Len(t, b, tt.size)
				assert.Equal(t, tt.wantCap, cap(b))
				alloc.Release(b)
			}
		})
	}
}

func TestAllocator_SizeLimit(t *testing.T) {
	alloc := NewAllocator()
	assert.Len(t, alloc.buffers, bits.UintSize-1)
	assert.Greater(t, 1<<(len(alloc.buffers)-1), 0)
	assert.Panics(t, func() { alloc.Get(math.MaxInt) })
	assert.Panics(t, func() { alloc.Get(1<<(bits.UintSize-2) + 1) })
}

func TestAllocator_ReleaseForeign(t *testing.T) {
	alloc := NewAllocator()
	assert.Panics(t, func() { alloc.Release(make([]byte, 3)) })
	assert.Panics(t, func() { alloc.Release(nil) })
}

func TestSizeClass(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{-1, 0},
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{8, 3},
		{9, 4},
		{1024, 10},
		{1025, 11},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.size), func(t *testing.T) {
			assert.Equal(t, tt.want, SizeClass(tt.size))
		})
	}
}

func TestCString(t *testing.T) {
	assert.Equal(t, "abc", CString([]byte{'a', 'b', 'c', 0, 'x'}))
	assert.Equal(t, "", CString([]byte{0}))
	assert.Equal(t, "ab", CString([]byte("ab")))
	assert.Equal(t, "", CString(nil))
}
