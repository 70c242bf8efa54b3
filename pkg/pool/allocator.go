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

// Package pool provides pooled byte buffers in power-of-two size classes.
package pool

import (
	"bytes"
	"fmt"
	"math/bits"
	"sync"
)

// defaultBufPool serves GetBuf and ReleaseBuf.
var defaultBufPool = NewAllocator()

// GetBuf returns a []byte of len size from the pool.
// It panics if size < 0.
func GetBuf(size int) []byte {
	return defaultBufPool.Get(size)
}

// ReleaseBuf puts the buf back to the pool.
func ReleaseBuf(b []byte) {
	defaultBufPool.Release(b)
}

// Allocator is a []byte pool sharded by size class. Buffers returned by Get
// have a capacity of 1 << SizeClass(size), so at most half of a buffer is
// wasted.
type Allocator struct {
	buffers []sync.Pool
}

// NewAllocator initiates an Allocator.
func NewAllocator() *Allocator {
	// The largest class is 1 << (bits.UintSize-2), which still fits in an int.
	alloc := &Allocator{
		buffers: make([]sync.Pool, bits.UintSize-1),
	}
	for i := range alloc.buffers {
		bufSize := 1 << i
		alloc.buffers[i].New = func() any {
			b := make([]byte, bufSize)
			return &b
		}
	}
	return alloc
}

// Get returns a []byte with len size. The content is not zeroed.
func (alloc *Allocator) Get(size int) []byte {
	i := SizeClass(size)
	if size < 0 || i >= len(alloc.buffers) {
		panic(fmt.Sprintf("invalid buffer size %d", size))
	}
	buf := alloc.buffers[i].Get().(*[]byte)
	return (*buf)[:size]
}

// Release puts buf back. buf must come from Get.
func (alloc *Allocator) Release(buf []byte) {
	c := cap(buf)
	i := SizeClass(c)
	if c == 0 || i >= len(alloc.buffers) || c != 1<<i {
		panic("unexpected cap size")
	}
	buf = buf[:c]
	alloc.buffers[i].Put(&buf)
}

// SizeClass returns the index of the smallest power of two that is not
// less than size. Sizes <= 1 are class 0.
func SizeClass(size int) int {
	if size <= 1 {
		return 0
	}
	return bits.Len64(uint64(size - 1))
}

// CString returns the bytes of b up to the first NUL byte as a string.
// If b has no NUL, all of b is returned.
func CString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
