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

package coremain

import (
	"github.com/IrineSistiana/strqueue/mlog"
	"github.com/IrineSistiana/strqueue/pkg/console"
)

type Config struct {
	Log     mlog.LogConfig `yaml:"log"`
	Console console.Config `yaml:"console"`
	Metrics MetricsConfig  `yaml:"metrics"`
}

type MetricsConfig struct {
	// File receives the metrics in prometheus text format after a run.
	// Empty disables it.
	File string `yaml:"file"`
}

// DefaultConfig returns the config used when no config file is found.
func DefaultConfig() *Config {
	return &Config{
		Log: mlog.LogConfig{Level: "info"},
		Console: console.Config{
			Seed:         1,
			StringLength: 1024,
			ErrorLimit:   5,
			ShowLimit:    50,
			Order:        "lexical",
		},
	}
}
