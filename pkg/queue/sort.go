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

package queue

// LessFunc reports whether a must sort strictly before b.
type LessFunc func(a, b string) bool

// Sort sorts the queue in ascending order of less using a merge sort.
// The sort is stable. Elements are relinked in place, none is allocated
// or freed. Sort does nothing if q is nil, has fewer than two elements
// or less is nil.
func (q *Queue) Sort(less LessFunc) {
	if q.absent() || q.size < 2 || less == nil {
		return
	}
	c := chain{head: q.head, tail: q.tail, n: q.size}
	q.head, q.tail, q.size = nil, nil, 0

	c = c.sort(less)
	q.head, q.tail, q.size = c.head, c.tail, c.n
}

// chain is a detached run of elements. It is the header of a half queue
// during sorting.
type chain struct {
	head, tail *elem
	n          int
}

// split cuts c after its first ceil(n/2) elements.
func (c chain) split() (left, right chain) {
	leftLen := (c.n + 1) / 2
	cut := c.head
	for i := 1; i < leftLen; i++ {
		cut = cut.next
	}
	left = chain{head: c.head, tail: cut, n: leftLen}
	right = chain{head: cut.next, tail: c.tail, n: c.n - leftLen}
	cut.next = nil
	return left, right
}

func (c chain) sort(less LessFunc) chain {
	if c.n < 2 {
		return c
	}
	left, right := c.split()
	return merge(left.sort(less), right.sort(less), less)
}

// merge merges two sorted chains. The right front is taken only if it is
// strictly less than the left front, so equal elements keep their order.
// Both inputs are consumed.
func merge(l, r chain, less LessFunc) chain {
	var (
		out  chain
		last *elem
	)
	take := func(c *chain) {
		e := c.head
		c.head = e.next
		c.n--
		e.next = nil
		if last == nil {
			out.head = e
		} else {
			last.next = e
		}
		last = e
		out.n++
	}

	for l.n > 0 && r.n > 0 {
		if less(r.head.value, l.head.value) {
			take(&r)
		} else {
			take(&l)
		}
	}

	// Append whatever is left in one step.
	rest := l
	if rest.n == 0 {
		rest = r
	}
	if rest.n > 0 {
		last.next = rest.head
		last = rest.tail
		out.n += rest.n
	}
	out.tail = last
	return out
}
