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

import (
	"errors"
	"math/rand"
	"strconv"
	"testing"

	"github.com/IrineSistiana/strqueue/pkg/alloc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
)

func newTestQueue(t *testing.T, tr *alloc.Tracker, values ...string) *Queue {
	t.Helper()
	var opts []Option
	if tr != nil {
		opts = append(opts, WithAllocator(tr))
	}
	q, err := New(opts...)
	require.NoError(t, err)
	for _, v := range values {
		require.NoError(t, q.InsertBack(v))
	}
	return q
}

func elems(q *Queue) []*elem {
	var s []*elem
	for e := q.head; e != nil; e = e.next {
		s = append(s, e)
	}
	return s
}

func assertQueue(t *testing.T, q *Queue, want ...string) {
	t.Helper()
	require.NoError(t, q.Check())
	if len(want) == 0 {
		assert.Empty(t, q.Values())
	} else {
		assert.Equal(t, want, q.Values())
	}
	assert.Equal(t, len(want), q.Size())

	front, ok := q.Front()
	back, _ := q.Back()
	if assert.Equal(t, len(want) > 0, ok) && ok {
		assert.Equal(t, want[0], front)
		assert.Equal(t, want[len(want)-1], back)
	}
}

func TestQueue_Insert(t *testing.T) {
	q := newTestQueue(t, nil)
	require.NoError(t, q.InsertBack("a"))
	require.NoError(t, q.InsertBack("b"))
	require.NoError(t, q.InsertFront("c"))
	assertQueue(t, q, "c", "a", "b")

	q = newTestQueue(t, nil)
	for i := 0; i < 5; i++ {
		require.NoError(t, q.InsertFront(strconv.Itoa(i)))
	}
	assertQueue(t, q, "4", "3", "2", "1", "0")

	q = newTestQueue(t, nil)
	require.NoError(t, q.InsertFront("only"))
	assert.Same(t, q.head, q.tail)
	assertQueue(t, q, "only")
}

func TestQueue_InsertCopiesValue(t *testing.T) {
	b := []byte("mutable")
	s := string(b)
	q := newTestQueue(t, nil, s)
	b[0] = 'M'
	assertQueue(t, q, "mutable")
}

func TestQueue_EmptyString(t *testing.T) {
	q := newTestQueue(t, nil, "", "x", "")
	assertQueue(t, q, "", "x", "")

	buf := []byte{'z', 'z'}
	n, err := q.RemoveFront(buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, byte(0), buf[0])
}

func TestQueue_RemoveFront(t *testing.T) {
	q := newTestQueue(t, nil)
	require.NoError(t, q.InsertFront("hello"))

	buf := make([]byte, 16)
	n, err := q.RemoveFront(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
	assert.Equal(t, byte(0), buf[n])
	assertQueue(t, q)

	_, err = q.RemoveFront(buf)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Zero(t, q.Size())
}

func TestQueue_RemoveFrontTruncates(t *testing.T) {
	tests := []struct {
		name  string
		value string
		cap   int
		want  string
	}{
		{"fits", "abc", 4, "abc"},
		{"exact", "abcd", 5, "abcd"},
		{"truncated", "abcdefgh", 4, "abc"},
		{"one byte buffer", "abc", 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newTestQueue(t, nil, tt.value, "next")
			buf := make([]byte, tt.cap+2)
			for i := range buf {
				buf[i] = '#'
			}

			n, err := q.RemoveFront(buf[:tt.cap])
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), n)
			assert.Equal(t, tt.want, string(buf[:n]))
			assert.Equal(t, byte(0), buf[n])
			// Nothing past the buffer is touched.
			assert.Equal(t, "##", string(buf[tt.cap:]))
			assertQueue(t, q, "next")
		})
	}
}

func TestQueue_RemoveFrontWithoutBuffer(t *testing.T) {
	q := newTestQueue(t, nil, "a", "b")
	n, err := q.RemoveFront(nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = q.RemoveFront([]byte{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assertQueue(t, q)
}

func TestQueue_Nil(t *testing.T) {
	var q *Queue
	assert.ErrorIs(t, q.InsertFront("a"), ErrNilQueue)
	assert.ErrorIs(t, q.InsertBack("a"), ErrNilQueue)
	_, err := q.RemoveFront(make([]byte, 4))
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Zero(t, q.Size())
	assert.NoError(t, q.Check())
	assert.Empty(t, q.Values())
	_, ok := q.Front()
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		q.Reverse()
		q.Sort(Lexical)
		q.Free()
	})
}

func TestQueue_Free(t *testing.T) {
	tr := alloc.NewTracker(1)
	q := newTestQueue(t, tr, "a", "bb", "ccc")
	blocks, _ := tr.Leaked()
	assert.Equal(t, 7, blocks)

	q.Free()
	assert.NoError(t, tr.Check())

	// A freed queue behaves as an absent one.
	q.Free()
	assert.NoError(t, tr.Check())
	assert.ErrorIs(t, q.InsertBack("x"), ErrNilQueue)
	assert.Zero(t, q.Size())

	q = newTestQueue(t, tr)
	q.Free()
	assert.NoError(t, tr.Check())
}

func TestQueue_NewAllocFailure(t *testing.T) {
	tr := alloc.NewTracker(1)
	tr.SetFailPercent(100)
	q, err := New(WithAllocator(tr))
	assert.Nil(t, q)
	assert.ErrorIs(t, err, ErrAlloc)
	assert.NoError(t, tr.Check())
}

// failAfter refuses every request after the first n.
type failAfter struct {
	*alloc.Tracker
	n int
}

func (f *failAfter) Alloc(size int) error {
	if f.n <= 0 {
		return errors.New("refused")
	}
	f.n--
	return f.Tracker.Alloc(size)
}

func TestQueue_InsertAllocFailure(t *testing.T) {
	for _, front := range []bool{true, false} {
		insert := (*Queue).InsertBack
		if front {
			insert = (*Queue).InsertFront
		}
		t.Run("front="+strconv.FormatBool(front), func(t *testing.T) {
			tr := alloc.NewTracker(1)
			fa := &failAfter{Tracker: tr, n: 1 + 2*2}
			q, err := New(WithAllocator(fa))
			require.NoError(t, err)
			require.NoError(t, insert(q, "a"))
			require.NoError(t, insert(q, "b"))
			before := q.Values()

			// Element storage refused.
			assert.ErrorIs(t, insert(q, "c"), ErrAlloc)
			assertQueue(t, q, before...)

			// Value storage refused, element storage rolled back.
			fa.n = 1
			assert.ErrorIs(t, insert(q, "c"), ErrAlloc)
			assertQueue(t, q, before...)

			q.Free()
			assert.NoError(t, tr.Check())
		})
	}
}

func TestQueue_Reverse(t *testing.T) {
	q := newTestQueue(t, nil, "a", "b", "c", "d")
	orig := elems(q)

	q.Reverse()
	assertQueue(t, q, "d", "c", "b", "a")
	rev := elems(q)
	for i := range orig {
		assert.Same(t, orig[i], rev[len(rev)-1-i])
	}

	q.Reverse()
	assertQueue(t, q, "a", "b", "c", "d")
	assert.Equal(t, orig, elems(q))

	q = newTestQueue(t, nil)
	q.Reverse()
	assertQueue(t, q)

	q = newTestQueue(t, nil, "x")
	q.Reverse()
	assertQueue(t, q, "x")
}

func TestQueue_ReverseNoAlloc(t *testing.T) {
	tr := alloc.NewTracker(1)
	q := newTestQueue(t, tr, "a", "b", "c")
	before := tr.Stats()
	tr.SetFailPercent(100)
	q.Reverse()
	q.Sort(Lexical)
	assert.Equal(t, before.Allocs, tr.Stats().Allocs)
	assert.Zero(t, tr.Stats().Failures)
	assertQueue(t, q, "a", "b", "c")
}

func TestQueue_Example(t *testing.T) {
	q := newTestQueue(t, nil)
	require.NoError(t, q.InsertBack("a"))
	require.NoError(t, q.InsertBack("b"))
	require.NoError(t, q.InsertFront("c"))
	assertQueue(t, q, "c", "a", "b")

	q.Reverse()
	assertQueue(t, q, "b", "a", "c")

	q.Sort(Lexical)
	assertQueue(t, q, "a", "b", "c")
}

func TestQueue_SizeTracksOperations(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	q := newTestQueue(t, nil)
	want := 0
	for i := 0; i < 1000; i++ {
		switch r.Intn(3) {
		case 0:
			require.NoError(t, q.InsertFront("f"))
			want++
		case 1:
			require.NoError(t, q.InsertBack("b"))
			want++
		default:
			if _, err := q.RemoveFront(nil); err == nil {
				want--
			} else {
				assert.Zero(t, want)
			}
		}
		require.Equal(t, want, q.Size())
	}
	require.NoError(t, q.Check())
}

func TestQueue_CheckDetectsCorruption(t *testing.T) {
	q := newTestQueue(t, nil, "a", "b", "c")
	q.size = 2
	var ie *InvariantError
	assert.ErrorAs(t, q.Check(), &ie)

	q = newTestQueue(t, nil, "a", "b", "c")
	q.tail.next = q.head
	assert.ErrorAs(t, q.Check(), &ie)
	assert.Equal(t, "tail", ie.Invariant)

	q = newTestQueue(t, nil, "a", "b")
	q.tail = q.head
	assert.Error(t, q.Check())

	q = newTestQueue(t, nil)
	q.tail = &elem{}
	assert.ErrorAs(t, q.Check(), &ie)
	assert.Equal(t, "empty", ie.Invariant)
}

func TestQueue_Range(t *testing.T) {
	q := newTestQueue(t, nil, "a", "b", "c")
	var got []string
	q.Range(func(s string) bool {
		got = append(got, s)
		return s != "b"
	})
	assert.True(t, slices.Equal([]string{"a", "b"}, got))
}
