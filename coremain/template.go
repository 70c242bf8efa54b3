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
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	AddSubCmd(&cobra.Command{
		Use:   "config-template",
		Short: "Print a config file with default values.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return WriteConfigTemplate(cmd.OutOrStdout())
		},
	})
}

// WriteConfigTemplate writes DefaultConfig in yaml to w.
func WriteConfigTemplate(w io.Writer) error {
	b, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to encode config, %w", err)
	}
	_, err = w.Write(b)
	return err
}
