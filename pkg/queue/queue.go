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

// Package queue implements a singly-linked queue of owned strings that
// supports insertion at both ends, bounded-copy removal from the front,
// in-place reversal and in-place merge sort.
//
// A Queue has a single owner. It is not safe for concurrent use.
// Methods accept a nil *Queue and treat it as an absent queue.
package queue

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/IrineSistiana/strqueue/pkg/alloc"
)

var (
	// ErrNilQueue is returned when an operation is called on a nil or freed queue.
	ErrNilQueue = errors.New("queue is nil")
	// ErrEmpty is returned by RemoveFront when there is nothing to remove.
	ErrEmpty = errors.New("queue is empty")
	// ErrAlloc is returned when the allocator refuses to provide storage.
	ErrAlloc = errors.New("cannot allocate storage")
)

// Allocator provides the storage a Queue accounts its header, elements
// and payloads against. Alloc returns a non-nil error if size bytes cannot
// be obtained. Every successful Alloc is matched by exactly one Release with
// the same size.
type Allocator interface {
	Alloc(size int) error
	Release(size int)
}

var (
	headerSize = int(unsafe.Sizeof(Queue{}))
	elemSize   = int(unsafe.Sizeof(elem{}))
)

// valueSize is the storage accounted for a payload, including room for
// the terminator written by RemoveFront.
func valueSize(s string) int {
	return len(s) + 1
}

type elem struct {
	value string
	next  *elem
}

// Queue is a singly-linked list of strings with head and tail references.
// Use New to create one.
type Queue struct {
	head, tail *elem
	size       int

	alloc Allocator
	freed bool
}

// Option configures a Queue in New.
type Option func(q *Queue)

// WithAllocator sets the storage source of the queue.
func WithAllocator(a Allocator) Option {
	return func(q *Queue) {
		q.alloc = a
	}
}

// New creates an empty queue. It returns an error wrapping ErrAlloc if
// the allocator cannot provide storage for the queue itself.
func New(opts ...Option) (*Queue, error) {
	q := &Queue{alloc: alloc.Unlimited}
	for _, opt := range opts {
		opt(q)
	}
	if q.alloc == nil {
		q.alloc = alloc.Unlimited
	}
	if err := q.alloc.Alloc(headerSize); err != nil {
		return nil, fmt.Errorf("%w: queue header: %v", ErrAlloc, err)
	}
	return q, nil
}

// Free removes every element and releases the storage of the queue.
// The queue is unusable afterwards. Calling Free on a nil or an
// already freed queue does nothing.
func (q *Queue) Free() {
	if q.absent() {
		return
	}
	for q.removeFront() {
	}
	q.freed = true
	q.alloc.Release(headerSize)
}

// InsertFront copies s into a new element at the front of the queue.
// On failure the queue is left unchanged.
func (q *Queue) InsertFront(s string) error {
	e, err := q.newElem(s)
	if err != nil {
		return err
	}

	e.next = q.head
	q.head = e
	if q.tail == nil {
		q.tail = e
	}
	q.size++
	return nil
}

// InsertBack copies s into a new element at the back of the queue.
// On failure the queue is left unchanged.
func (q *Queue) InsertBack(s string) error {
	e, err := q.newElem(s)
	if err != nil {
		return err
	}

	if q.tail == nil {
		q.head = e
	} else {
		q.tail.next = e
	}
	q.tail = e
	q.size++
	return nil
}

// RemoveFront removes the element at the front of the queue.
//
// If buf is not empty, up to len(buf)-1 bytes of the removed value are
// copied into buf, followed by a NUL byte. Longer values are truncated
// silently. n is the number of value bytes copied.
// RemoveFront returns ErrEmpty if q is nil or has no elements.
func (q *Queue) RemoveFront(buf []byte) (n int, err error) {
	if q.absent() || q.head == nil {
		return 0, ErrEmpty
	}
	if len(buf) > 0 {
		n = copy(buf[:len(buf)-1], q.head.value)
		buf[n] = 0
	}
	q.removeFront()
	return n, nil
}

// Size returns the number of elements in q. It returns 0 if q is nil.
func (q *Queue) Size() int {
	if q.absent() {
		return 0
	}
	return q.size
}

// Front returns the value at the front of the queue.
func (q *Queue) Front() (string, bool) {
	if q.absent() || q.head == nil {
		return "", false
	}
	return q.head.value, true
}

// Back returns the value at the back of the queue.
func (q *Queue) Back() (string, bool) {
	if q.absent() || q.tail == nil {
		return "", false
	}
	return q.tail.value, true
}

// Range calls f for each value from front to back until f returns false.
func (q *Queue) Range(f func(s string) bool) {
	if q.absent() {
		return
	}
	for e := q.head; e != nil; e = e.next {
		if !f(e.value) {
			return
		}
	}
}

// Values returns a snapshot of the values from front to back.
func (q *Queue) Values() []string {
	s := make([]string, 0, q.Size())
	q.Range(func(v string) bool {
		s = append(s, v)
		return true
	})
	return s
}

// Reverse reverses the order of the elements in place. No element is
// allocated or freed.
func (q *Queue) Reverse() {
	if q.absent() || q.size < 2 {
		return
	}

	var prev *elem
	cur := q.head
	q.tail = q.head
	for cur != nil {
		next := cur.next
		cur.next = prev
		prev = cur
		cur = next
	}
	q.head = prev
}

func (q *Queue) absent() bool {
	return q == nil || q.freed
}

// newElem allocates an element holding a copy of s. Storage for the
// element and for its payload are requested separately, the element is
// released if the payload cannot be allocated.
func (q *Queue) newElem(s string) (*elem, error) {
	if q.absent() {
		return nil, ErrNilQueue
	}
	if err := q.alloc.Alloc(elemSize); err != nil {
		return nil, fmt.Errorf("%w: element: %v", ErrAlloc, err)
	}
	if err := q.alloc.Alloc(valueSize(s)); err != nil {
		q.alloc.Release(elemSize)
		return nil, fmt.Errorf("%w: value of %d bytes: %v", ErrAlloc, len(s), err)
	}
	return &elem{value: strings.Clone(s)}, nil
}

// removeFront detaches the front element and releases its storage.
// It reports whether an element was removed.
func (q *Queue) removeFront() bool {
	e := q.head
	if e == nil {
		return false
	}
	q.head = e.next
	if q.head == nil {
		q.tail = nil
	}
	q.size--

	q.alloc.Release(valueSize(e.value))
	q.alloc.Release(elemSize)
	e.next = nil
	e.value = ""
	return true
}
