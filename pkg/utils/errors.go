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

package utils

import (
	"strconv"
	"strings"
)

// Errors collects the failures of independent steps, such as the scripts
// of a run or the teardown checks of a console. Nil errors are ignored.
type Errors []error

func (es *Errors) Error() string {
	return es.String()
}

func (es *Errors) Append(err error) {
	if err == nil {
		return
	}
	*es = append(*es, err)
}

// Build returns nil, the only error, or es itself.
func (es *Errors) Build() error {
	switch len(*es) {
	case 0:
		return nil
	case 1:
		return (*es)[0]
	default:
		return es
	}
}

// String renders the errors as "n errors: e1; e2".
func (es *Errors) String() string {
	sb := new(strings.Builder)
	sb.WriteString(strconv.Itoa(len(*es)))
	sb.WriteString(" errors: ")
	for i, err := range *es {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap lets errors.Is and errors.As look into every collected error.
func (es *Errors) Unwrap() []error {
	return *es
}
