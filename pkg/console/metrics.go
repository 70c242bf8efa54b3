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
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	commands  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	queueSize prometheus.Gauge
}

func newMetrics(c *Console, reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "commands_total",
			Help: "The total number of executed commands",
		}, []string{"cmd"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "command_errors_total",
			Help: "The total number of failed commands",
		}, []string{"cmd"}),
		queueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queue_size",
			Help: "The number of elements in the current queue",
		}),
	}

	allocFailures := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "alloc_failures_total",
		Help: "The total number of refused allocations",
	}, func() float64 {
		return float64(c.tracker.Stats().Failures)
	})
	outstandingBlocks := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "outstanding_blocks",
		Help: "The number of allocated blocks not yet released",
	}, func() float64 {
		blocks, _ := c.tracker.Leaked()
		return float64(blocks)
	})
	outstandingBytes := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "outstanding_bytes",
		Help: "The number of allocated bytes not yet released",
	}, func() float64 {
		_, bytes := c.tracker.Leaked()
		return float64(bytes)
	})

	for _, collector := range [...]prometheus.Collector{
		m.commands, m.errors, m.queueSize, allocFailures, outstandingBlocks, outstandingBytes,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}
