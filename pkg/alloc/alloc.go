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

// Package alloc provides storage accounting for queues. Tracker counts
// every block handed out, detects leaks and double releases, and can
// refuse requests to exercise failure paths.
package alloc

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/IrineSistiana/strqueue/pkg/pool"
)

// ErrOutOfMemory is returned by Tracker.Alloc when a request is refused.
var ErrOutOfMemory = errors.New("out of memory")

type unlimited struct{}

func (unlimited) Alloc(int) error { return nil }
func (unlimited) Release(int)     {}

// Unlimited never refuses a request and tracks nothing.
var Unlimited unlimited

// Stats is a snapshot of a Tracker.
type Stats struct {
	Blocks      int // outstanding blocks
	Bytes       int // outstanding bytes
	PeakBytes   int
	Allocs      int // successful allocations
	Failures    int // refused allocations
	BadReleases int // releases without a matching allocation

	// Classes counts outstanding blocks by pool.SizeClass.
	Classes map[int]int
}

// Tracker is an accounting allocator. The zero value is not usable, use
// NewTracker.
type Tracker struct {
	rnd         *rand.Rand
	failPercent int
	limit       int

	stats Stats
}

// NewTracker returns a Tracker that uses seed for its fault injection.
func NewTracker(seed int64) *Tracker {
	return &Tracker{
		rnd:   rand.New(rand.NewSource(seed)),
		stats: Stats{Classes: make(map[int]int)},
	}
}

// Seed resets the fault injection source, so that the same sequence of
// requests fails the same way as a Tracker created with seed.
func (t *Tracker) Seed(seed int64) {
	t.rnd.Seed(seed)
}

// SetFailPercent makes p percent of the following requests fail.
// p is clamped to [0, 100].
func (t *Tracker) SetFailPercent(p int) {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	t.failPercent = p
}

// FailPercent returns the current fault injection rate.
func (t *Tracker) FailPercent() int {
	return t.failPercent
}

// SetLimit refuses requests that would bring outstanding bytes above n.
// 0 disables the limit.
func (t *Tracker) SetLimit(n int) {
	if n < 0 {
		n = 0
	}
	t.limit = n
}

// Alloc accounts a block of size bytes.
func (t *Tracker) Alloc(size int) error {
	if size < 0 {
		return fmt.Errorf("invalid block size %d", size)
	}
	if t.failPercent > 0 && t.rnd.Intn(100) < t.failPercent {
		t.stats.Failures++
		return fmt.Errorf("%w: injected failure for %d bytes", ErrOutOfMemory, size)
	}
	if t.limit > 0 && t.stats.Bytes+size > t.limit {
		t.stats.Failures++
		return fmt.Errorf("%w: %d bytes would exceed limit %d", ErrOutOfMemory, size, t.limit)
	}

	t.stats.Allocs++
	t.stats.Blocks++
	t.stats.Bytes += size
	if t.stats.Bytes > t.stats.PeakBytes {
		t.stats.PeakBytes = t.stats.Bytes
	}
	t.stats.Classes[pool.SizeClass(size)]++
	return nil
}

// Release returns a block of size bytes.
func (t *Tracker) Release(size int) {
	c := pool.SizeClass(size)
	if t.stats.Classes[c] == 0 || t.stats.Bytes < size {
		t.stats.BadReleases++
		return
	}
	t.stats.Classes[c]--
	if t.stats.Classes[c] == 0 {
		delete(t.stats.Classes, c)
	}
	t.stats.Blocks--
	t.stats.Bytes -= size
}

// Leaked returns the outstanding blocks and bytes.
func (t *Tracker) Leaked() (blocks, bytes int) {
	return t.stats.Blocks, t.stats.Bytes
}

// Stats returns a copy of the current counters.
func (t *Tracker) Stats() Stats {
	s := t.stats
	s.Classes = make(map[int]int, len(t.stats.Classes))
	for k, v := range t.stats.Classes {
		s.Classes[k] = v
	}
	return s
}

// Check returns an error if any block is outstanding or was released
// without being allocated.
func (t *Tracker) Check() error {
	switch {
	case t.stats.BadReleases > 0:
		return fmt.Errorf("%d blocks released without allocation", t.stats.BadReleases)
	case t.stats.Blocks > 0:
		return fmt.Errorf("%d blocks (%d bytes) still allocated", t.stats.Blocks, t.stats.Bytes)
	}
	return nil
}
