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

package console

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/IrineSistiana/strqueue/pkg/pool"
	"github.com/IrineSistiana/strqueue/pkg/queue"
	"github.com/IrineSistiana/strqueue/pkg/utils"
	"go.uber.org/zap"
)

// randValue as an insert argument inserts random strings.
const randValue = "RAND"

type command struct {
	usage string
	help  string

	// needQueue commands fail if there is no queue.
	needQueue bool
	// mutates commands are followed by a structure check of the queue.
	mutates bool
	run     func(c *Console, args []string) (quit bool, err error)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"new":     {usage: "new", help: "Create new queue", run: cmdNew},
		"free":    {usage: "free", help: "Delete queue and check for leaked storage", run: cmdFree},
		"ih":      {usage: "ih str [n]", help: "Insert string str at head of queue n times. str may be RAND", needQueue: true, mutates: true, run: cmdInsertHead},
		"it":      {usage: "it str [n]", help: "Insert string str at tail of queue n times. str may be RAND", needQueue: true, mutates: true, run: cmdInsertTail},
		"rh":      {usage: "rh [str]", help: "Remove from head of queue, optionally compare to expected value str", needQueue: true, mutates: true, run: cmdRemoveHead},
		"rhq":     {usage: "rhq", help: "Remove from head of queue without reporting value", needQueue: true, mutates: true, run: cmdRemoveHeadQuiet},
		"size":    {usage: "size [n]", help: "Compute queue size, optionally compare to n", needQueue: true, run: cmdSize},
		"reverse": {usage: "reverse", help: "Reverse queue", needQueue: true, mutates: true, run: cmdReverse},
		"sort":    {usage: "sort", help: "Sort queue in ascending order of the configured order", needQueue: true, mutates: true, run: cmdSort},
		"show":    {usage: "show", help: "Show queue contents", needQueue: true, run: cmdShow},
		"option":  {usage: "option [name val]", help: "Display or set options", run: cmdOption},
		"help":    {usage: "help", help: "Show documentation", run: cmdHelp},
		"quit":    {usage: "quit", help: "Exit program", run: cmdQuit},
	}
}

var errUsage = errors.New("invalid arguments")

func usageErr(name string) error {
	return fmt.Errorf("%w, usage: %s", errUsage, commands[name].usage)
}

func cmdNew(c *Console, args []string) (bool, error) {
	if len(args) != 0 {
		return false, usageErr("new")
	}
	if c.q != nil {
		c.freeQueue()
	}
	q, err := queue.New(queue.WithAllocator(c.tracker))
	if err != nil {
		c.show()
		if c.injected(err) {
			c.printf("WARNING: %v\n", err)
			return false, nil
		}
		return false, err
	}
	c.q = q
	c.show()
	return false, nil
}

func cmdFree(c *Console, args []string) (bool, error) {
	if len(args) != 0 {
		return false, usageErr("free")
	}
	if c.q == nil {
		c.printf("WARNING: calling free on null queue\n")
	}
	c.freeQueue()
	c.show()
	if blocks, bytes := c.tracker.Leaked(); blocks > 0 {
		return false, fmt.Errorf("freed queue, but %d blocks (%d bytes) are still allocated", blocks, bytes)
	}
	return false, nil
}

func cmdInsertHead(c *Console, args []string) (bool, error) {
	return c.insert("ih", args, (*queue.Queue).InsertFront, (*queue.Queue).Front)
}

func cmdInsertTail(c *Console, args []string) (bool, error) {
	return c.insert("it", args, (*queue.Queue).InsertBack, (*queue.Queue).Back)
}

func (c *Console) insert(
	name string,
	args []string,
	insert func(q *queue.Queue, s string) error,
	peek func(q *queue.Queue) (string, bool),
) (bool, error) {
	if len(args) < 1 || len(args) > 2 {
		return false, usageErr(name)
	}
	n := 1
	if len(args) == 2 {
		var err error
		n, err = strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return false, fmt.Errorf("invalid number of insertions %q", args[1])
		}
	}

	for i := 0; i < n; i++ {
		v := args[0]
		if v == randValue {
			v = c.randString()
		}
		if err := insert(c.q, v); err != nil {
			c.show()
			if c.injected(err) {
				c.printf("WARNING: insertion #%d of %q failed, %v\n", i+1, v, err)
				return false, nil
			}
			return false, fmt.Errorf("insertion #%d of %q failed, %w", i+1, v, err)
		}
		if got, _ := peek(c.q); got != v {
			c.show()
			return false, fmt.Errorf("inserted %q but found %q", v, got)
		}
	}
	c.show()
	return false, nil
}

func cmdRemoveHead(c *Console, args []string) (bool, error) {
	if len(args) > 1 {
		return false, usageErr("rh")
	}

	buf := pool.GetBuf(c.cfg.StringLength)
	defer pool.ReleaseBuf(buf)
	if _, err := c.q.RemoveFront(buf); err != nil {
		return false, err
	}
	got := pool.CString(buf)
	c.printf("Removed %s from queue\n", got)
	c.show()

	if len(args) == 1 && args[0] != got {
		return false, fmt.Errorf("removed value %q, expected %q", got, args[0])
	}
	return false, nil
}

func cmdRemoveHeadQuiet(c *Console, args []string) (bool, error) {
	if len(args) != 0 {
		return false, usageErr("rhq")
	}
	if _, err := c.q.RemoveFront(nil); err != nil {
		return false, err
	}
	c.show()
	return false, nil
}

func cmdSize(c *Console, args []string) (bool, error) {
	if len(args) > 1 {
		return false, usageErr("size")
	}
	size := c.q.Size()
	c.printf("Queue size = %d\n", size)
	if len(args) == 1 {
		want, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("invalid size %q", args[0])
		}
		if want != size {
			return false, fmt.Errorf("queue size is %d, expected %d", size, want)
		}
	}
	return false, nil
}

func cmdReverse(c *Console, args []string) (bool, error) {
	if len(args) != 0 {
		return false, usageErr("reverse")
	}
	c.q.Reverse()
	c.show()
	return false, nil
}

func cmdSort(c *Console, args []string) (bool, error) {
	if len(args) != 0 {
		return false, usageErr("sort")
	}
	size := c.q.Size()
	c.q.Sort(c.less)
	c.show()

	if c.q.Size() != size {
		return false, fmt.Errorf("sort changed queue size from %d to %d", size, c.q.Size())
	}
	var (
		prev  string
		i     int
		order error
	)
	c.q.Range(func(s string) bool {
		if i > 0 && c.less(s, prev) {
			order = fmt.Errorf("not sorted in %s order at #%d: %q before %q", c.cfg.Order, i, prev, s)
			return false
		}
		prev = s
		i++
		return true
	})
	return false, order
}

func cmdShow(c *Console, args []string) (bool, error) {
	if len(args) != 0 {
		return false, usageErr("show")
	}
	c.show()
	return false, nil
}

func cmdOption(c *Console, args []string) (bool, error) {
	switch len(args) {
	case 0:
		c.printOptions()
		return false, nil
	case 2:
	default:
		return false, usageErr("option")
	}

	cfg := c.cfg
	if err := utils.WeakDecode(map[string]any{args[0]: args[1]}, &cfg); err != nil {
		return false, fmt.Errorf("invalid option, %w", err)
	}
	if err := cfg.init(); err != nil {
		return false, err
	}

	c.cfg = cfg
	c.tracker.SetFailPercent(cfg.Fail)
	c.tracker.SetLimit(cfg.Limit)
	c.less, _ = queue.OrderByName(cfg.Order)
	if args[0] == "seed" {
		c.rnd.Seed(cfg.Seed)
		c.tracker.Seed(cfg.Seed)
	}
	c.logger.Info("option changed", zap.String("name", args[0]), zap.String("value", args[1]))
	return false, nil
}

func cmdHelp(c *Console, _ []string) (bool, error) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	c.printf("Commands:\n")
	for _, name := range names {
		cmd := commands[name]
		c.printf("\t%-18s | %s\n", cmd.usage, cmd.help)
	}
	c.printOptions()
	return false, nil
}

func cmdQuit(c *Console, _ []string) (bool, error) {
	return true, nil
}

func (c *Console) printOptions() {
	c.printf("Options:\n")
	c.printf("\t%-12s %d\n", "echo", boolToInt(c.cfg.Echo))
	c.printf("\t%-12s %d\n", "error_limit", c.cfg.ErrorLimit)
	c.printf("\t%-12s %d\n", "fail", c.cfg.Fail)
	c.printf("\t%-12s %d\n", "limit", c.cfg.Limit)
	c.printf("\t%-12s %s\n", "order", c.cfg.Order)
	c.printf("\t%-12s %d\n", "seed", c.cfg.Seed)
	c.printf("\t%-12s %d\n", "show_limit", c.cfg.ShowLimit)
	c.printf("\t%-12s %d\n", "string_length", c.cfg.StringLength)
}

func (c *Console) show() {
	if c.q == nil {
		c.printf("q = NULL\n")
		return
	}
	sb := new(strings.Builder)
	sb.WriteString("q = [")
	n := 0
	c.q.Range(func(s string) bool {
		if n == c.cfg.ShowLimit {
			sb.WriteString(" ...")
			return false
		}
		if n > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(utils.Abbreviate(s, c.cfg.StringLength-1))
		n++
		return true
	})
	sb.WriteString("]\n")
	c.printf("%s", sb.String())
}

func (c *Console) randString() string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, 5+c.rnd.Intn(6))
	for i := range b {
		b[i] = letters[c.rnd.Intn(len(letters))]
	}
	return string(b)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
