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
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Lexical orders strings byte-wise.
func Lexical(a, b string) bool {
	return a < b
}

// Length orders shorter strings first. Strings of equal length are ordered
// by Lexical.
func Length(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// Fold orders strings case-insensitively. Strings that are equal under
// case folding are ordered by Lexical.
func Fold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// Numeric orders strings by their float value. Strings that do not parse
// as a number (or parse as NaN) sort after every number, lexically.
func Numeric(a, b string) bool {
	fa, okA := parseNumber(a)
	fb, okB := parseNumber(b)
	switch {
	case okA && okB:
		if fa != fb {
			return fa < fb
		}
		return a < b
	case okA:
		return true
	case okB:
		return false
	default:
		return a < b
	}
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Reversed returns an ordering that sorts in the opposite direction of less.
func Reversed(less LessFunc) LessFunc {
	return func(a, b string) bool {
		return less(b, a)
	}
}

var orders = map[string]LessFunc{
	"lexical": Lexical,
	"length":  Length,
	"fold":    Fold,
	"numeric": Numeric,
}

// OrderByName returns the ordering registered under name. A "-" prefix
// reverses it, e.g. "-lexical".
func OrderByName(name string) (LessFunc, error) {
	n := strings.TrimPrefix(name, "-")
	less, ok := orders[n]
	if !ok {
		return nil, fmt.Errorf("unknown order %q", name)
	}
	if n != name {
		return Reversed(less), nil
	}
	return less, nil
}

// OrderNames returns the names accepted by OrderByName, without the
// reversing prefix.
func OrderNames() []string {
	return []string{"lexical", "length", "fold", "numeric"}
}
