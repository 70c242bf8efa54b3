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

// Package console implements a line-oriented command interpreter that
// drives a queue.Queue against an accounting allocator. It is used to
// exercise the queue with scripted traces, inject allocation failures and
// detect leaked storage.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/IrineSistiana/strqueue/mlog"
	"github.com/IrineSistiana/strqueue/pkg/alloc"
	"github.com/IrineSistiana/strqueue/pkg/queue"
	"github.com/IrineSistiana/strqueue/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	defaultStringLength = 1024
	defaultErrorLimit   = 5
	defaultShowLimit    = 50
	defaultOrder        = "lexical"
)

var (
	// ErrTooManyErrors is returned by Run when the error limit is reached.
	ErrTooManyErrors = errors.New("error limit reached")
	// ErrNoQueue is reported for commands that need a queue when there is none.
	ErrNoQueue = errors.New("queue is NULL")
)

// Config is the tunable part of a Console. All fields can also be changed
// by the "option" command.
type Config struct {
	// Fail is the percentage of allocations to fail, 0 to 100.
	Fail int `yaml:"fail"`
	// Limit refuses allocations beyond this many outstanding bytes.
	// 0 means no limit.
	Limit int `yaml:"limit"`
	// Seed seeds fault injection and RAND values.
	Seed int64 `yaml:"seed"`
	// StringLength is the size of the buffer "rh" removes into,
	// including the terminator. Default is 1024.
	StringLength int `yaml:"string_length"`
	// ErrorLimit stops Run after this many errors. Default is 5.
	ErrorLimit int `yaml:"error_limit"`
	// Echo writes every command before its output.
	Echo bool `yaml:"echo"`
	// ShowLimit is the maximum number of values "show" prints. Default is 50.
	ShowLimit int `yaml:"show_limit"`
	// Order names the ordering used by "sort", see queue.OrderByName.
	// Default is "lexical".
	Order string `yaml:"order"`
}

func (cfg *Config) init() error {
	utils.SetDefaultNum(&cfg.StringLength, defaultStringLength)
	utils.SetDefaultNum(&cfg.ErrorLimit, defaultErrorLimit)
	utils.SetDefaultNum(&cfg.ShowLimit, defaultShowLimit)
	if len(cfg.Order) == 0 {
		cfg.Order = defaultOrder
	}

	if !utils.CheckNumRange(cfg.Fail, 0, 100) {
		return fmt.Errorf("fail must be within [0, 100], got %d", cfg.Fail)
	}
	if cfg.Limit < 0 {
		return fmt.Errorf("invalid limit %d", cfg.Limit)
	}
	if cfg.StringLength < 1 {
		return fmt.Errorf("invalid string_length %d", cfg.StringLength)
	}
	if cfg.ErrorLimit < 1 {
		return fmt.Errorf("invalid error_limit %d", cfg.ErrorLimit)
	}
	if cfg.ShowLimit < 1 {
		return fmt.Errorf("invalid show_limit %d", cfg.ShowLimit)
	}
	if _, err := queue.OrderByName(cfg.Order); err != nil {
		return err
	}
	return nil
}

// Opts are the collaborators of a Console.
type Opts struct {
	// Logger, default is mlog.Nop().
	Logger *zap.Logger
	// Out receives command output, default is io.Discard.
	Out io.Writer
	// MetricsReg receives the console metrics with a "strqueue_" prefix.
	// A private registry is used if nil.
	MetricsReg prometheus.Registerer
}

// Console interprets queue commands. It is not safe for concurrent use.
type Console struct {
	cfg    Config
	logger *zap.Logger
	out    io.Writer

	tracker *alloc.Tracker
	rnd     *rand.Rand
	less    queue.LessFunc
	q       *queue.Queue

	errCount int
	m        *metrics
}

// New creates a Console. It has no queue until the "new" command runs.
func New(cfg Config, opts Opts) (*Console, error) {
	if err := cfg.init(); err != nil {
		return nil, fmt.Errorf("invalid console config, %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = mlog.Nop()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.MetricsReg == nil {
		opts.MetricsReg = prometheus.NewRegistry()
	}

	c := &Console{
		cfg:     cfg,
		logger:  opts.Logger,
		out:     opts.Out,
		tracker: alloc.NewTracker(cfg.Seed),
		rnd:     rand.New(rand.NewSource(cfg.Seed)),
	}
	c.tracker.SetFailPercent(cfg.Fail)
	c.tracker.SetLimit(cfg.Limit)
	c.less, _ = queue.OrderByName(cfg.Order)

	m, err := newMetrics(c, prometheus.WrapRegistererWithPrefix("strqueue_", opts.MetricsReg))
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics, %w", err)
	}
	c.m = m
	return c, nil
}

// Run interprets commands from r line by line until r is exhausted, a
// "quit" command, or the error limit is reached. It returns the errors
// of the failed commands, if any.
func (c *Console) Run(r io.Reader) error {
	var errs utils.Errors
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(utils.RemoveComment(scanner.Text(), "#"))
		if len(line) == 0 {
			continue
		}

		quit, err := c.Exec(line)
		if err != nil {
			errs.Append(fmt.Errorf("line %d: %s: %w", lineNum, line, err))
			if c.errCount >= c.cfg.ErrorLimit {
				errs.Append(ErrTooManyErrors)
				c.logger.Warn("error limit reached", zap.Int("limit", c.cfg.ErrorLimit))
				break
			}
		}
		if quit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		errs.Append(fmt.Errorf("failed to read commands, %w", err))
	}
	return errs.Build()
}

// Exec runs a single command line. quit reports whether the command asks
// the interpreter to stop.
func (c *Console) Exec(line string) (quit bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	name := args[0]
	if c.cfg.Echo {
		c.printf("cmd> %s\n", line)
	}

	cmd, ok := commands[name]
	if !ok {
		name = "unknown"
		err = fmt.Errorf("unknown command %q", args[0])
	} else if cmd.needQueue && c.q == nil {
		err = ErrNoQueue
	} else {
		c.logger.Debug("exec", zap.String("cmd", name), zap.Strings("args", args[1:]))
		quit, err = cmd.run(c, args[1:])
		if err == nil && cmd.mutates {
			if cerr := c.q.Check(); cerr != nil {
				err = cerr
			}
		}
	}

	c.m.commands.WithLabelValues(name).Inc()
	c.m.queueSize.Set(float64(c.q.Size()))
	if err != nil {
		c.errCount++
		c.m.errors.WithLabelValues(name).Inc()
		c.logger.Warn("command failed", zap.String("cmd", name), zap.Error(err))
		c.printf("ERROR: %v\n", err)
	}
	return quit, err
}

// Errors returns the number of failed commands so far.
func (c *Console) Errors() int {
	return c.errCount
}

// Tracker returns the allocator the queues of c are accounted against.
func (c *Console) Tracker() *alloc.Tracker {
	return c.tracker
}

// Close frees the current queue and reports leaked or doubly released
// storage.
func (c *Console) Close() error {
	c.freeQueue()
	if err := c.tracker.Check(); err != nil {
		c.logger.Error("storage leak detected", zap.Error(err))
		return err
	}
	return nil
}

func (c *Console) freeQueue() {
	c.q.Free()
	c.q = nil
	c.m.queueSize.Set(0)
}

// injected reports whether err is an allocation failure caused by fault
// injection or the storage limit. Such failures are expected and reported
// as warnings.
func (c *Console) injected(err error) bool {
	return errors.Is(err, queue.ErrAlloc) && (c.cfg.Fail > 0 || c.cfg.Limit > 0)
}

func (c *Console) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(c.out, format, a...)
}
