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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/IrineSistiana/strqueue/mlog"
	"github.com/IrineSistiana/strqueue/pkg/console"
	"github.com/IrineSistiana/strqueue/pkg/utils"
	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:          "strqueue",
	Short:        "Drive a string queue with command scripts.",
	SilenceUsage: true,
}

func init() {
	runCmd := &cobra.Command{
		Use:   "run [script...]",
		Short: "Run command scripts, or commands from stdin if no script is given.",
		Run:   StartRun,
	}
	rootCmd.AddCommand(runCmd)
	fs := runCmd.PersistentFlags()
	fs.StringVarP(&rf.c, "config", "c", "", "config file")
	fs.StringVarP(&rf.dir, "dir", "d", "", "working dir")
	fs.BoolVarP(&rf.echo, "verbose", "v", false, "echo every command")
}

func AddSubCmd(c *cobra.Command) {
	rootCmd.AddCommand(c)
}

func Run() error {
	return rootCmd.Execute()
}

type runFlags struct {
	c    string
	dir  string
	echo bool
}

var rf = runFlags{}

func StartRun(cmd *cobra.Command, args []string) {
	if len(rf.dir) > 0 {
		err := os.Chdir(rf.dir)
		if err != nil {
			mlog.L().Fatal("failed to change the current working directory", zap.Error(err))
		}
		mlog.L().Info("working directory changed", zap.String("path", rf.dir))
	}

	cfg, err := LoadConfig(rf.c)
	if err != nil {
		mlog.L().Fatal("failed to load config", zap.Error(err))
	}
	if err := mlog.SetLevelFromConfig(cfg.Log); err != nil {
		mlog.L().Fatal("failed to set log level", zap.Error(err))
	}
	if rf.echo {
		cfg.Console.Echo = true
	}

	if err := RunScripts(cfg, args, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		mlog.L().Fatal("strqueue exited", zap.Error(err))
	}
}

// LoadConfig reads the config file at path. If path is empty, "config"
// in the working directory is tried, and DefaultConfig is used if it does
// not exist.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	if len(path) > 0 {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	cfg := DefaultConfig()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if len(path) == 0 && errors.As(err, &notFound) {
			mlog.L().Info("no config file found, using defaults")
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file, %w", err)
	}
	if err := v.Unmarshal(cfg, decoderOpt); err != nil {
		return nil, fmt.Errorf("failed to parse config file, %w", err)
	}
	mlog.L().Info("config loaded", zap.String("file", v.ConfigFileUsed()))
	return cfg, nil
}

func decoderOpt(cfg *mapstructure.DecoderConfig) {
	cfg.ErrorUnused = true
	cfg.TagName = "yaml"
	cfg.WeaklyTypedInput = true
}

// RunScripts runs the scripts in order on one console, or reads commands
// from stdin if scripts is empty. The queue is freed and checked for leaks
// at the end.
func RunScripts(cfg *Config, scripts []string, stdin io.Reader, stdout io.Writer) error {
	lg, err := mlog.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer lg.Sync()

	reg := prometheus.NewRegistry()
	c, err := console.New(cfg.Console, console.Opts{
		Logger:     lg,
		Out:        stdout,
		MetricsReg: reg,
	})
	if err != nil {
		return err
	}

	var errs utils.Errors
	if len(scripts) == 0 {
		lg.Info("reading commands from stdin")
		if err := c.Run(stdin); err != nil {
			errs.Append(err)
		}
	}
	for _, script := range scripts {
		if err := runScript(c, lg, script); err != nil {
			errs.Append(fmt.Errorf("script %s: %w", script, err))
			if errors.Is(err, console.ErrTooManyErrors) {
				break
			}
		}
	}

	if err := c.Close(); err != nil {
		errs.Append(err)
	}
	if f := cfg.Metrics.File; len(f) > 0 {
		if err := prometheus.WriteToTextfile(f, reg); err != nil {
			errs.Append(fmt.Errorf("failed to write metrics, %w", err))
		} else {
			lg.Info("metrics written", zap.String("file", f))
		}
	}

	lg.Info("run finished", zap.Int("errors", c.Errors()))
	return errs.Build()
}

func runScript(c *console.Console, lg *zap.Logger, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	lg.Info("running script", zap.String("file", path))
	return c.Run(f)
}
