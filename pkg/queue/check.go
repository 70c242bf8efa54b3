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

import "fmt"

// InvariantError reports a broken structural invariant of a Queue.
type InvariantError struct {
	Invariant string
	Detail    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("queue invariant %q broken: %s", e.Invariant, e.Detail)
}

// Check walks the queue and verifies its structure: the element count
// matches the chain, head and tail are both set or both nil, tail is the
// last reachable element and terminates the chain, and the chain has no
// cycle. A nil queue passes.
func (q *Queue) Check() error {
	if q.absent() {
		return nil
	}

	if (q.head == nil) != (q.tail == nil) || (q.head == nil) != (q.size == 0) {
		return &InvariantError{
			Invariant: "empty",
			Detail:    fmt.Sprintf("head set %t, tail set %t, size %d", q.head != nil, q.tail != nil, q.size),
		}
	}
	if q.size == 1 && q.head != q.tail {
		return &InvariantError{Invariant: "single", Detail: "head and tail differ in a queue of one element"}
	}
	if q.tail != nil && q.tail.next != nil {
		return &InvariantError{Invariant: "tail", Detail: "tail has a successor"}
	}

	// Walking more than size elements means a cycle or a wrong count.
	n := 0
	var last *elem
	for e := q.head; e != nil; e = e.next {
		n++
		if n > q.size {
			return &InvariantError{
				Invariant: "count",
				Detail:    fmt.Sprintf("chain is longer than size %d or has a cycle", q.size),
			}
		}
		last = e
	}
	if n != q.size {
		return &InvariantError{Invariant: "count", Detail: fmt.Sprintf("size is %d, chain has %d elements", q.size, n)}
	}
	if last != q.tail {
		return &InvariantError{Invariant: "tail", Detail: "tail is not the last element of the chain"}
	}
	return nil
}
