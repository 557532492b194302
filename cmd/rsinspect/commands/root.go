// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package commands implements the rsinspect command tree.
package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gogpu/rsc"
	_ "github.com/gogpu/rsc/driver/halgpu" // registers hal and hal-noop
)

// Config is the resolved rsinspect configuration. Flags override RSC_*
// environment variables, which override the config file.
type Config struct {
	Driver    string `mapstructure:"driver"`
	ForceCPU  bool   `mapstructure:"force_cpu"`
	TargetAPI int    `mapstructure:"target_api"`
	CacheDir  string `mapstructure:"cache_dir"`
	Verbose   bool   `mapstructure:"verbose"`
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand returns a fresh command tree with its own viper
// instance.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "rsinspect",
		Short: "Inspect rsc element, type and sampler layouts",
		Long: `rsinspect opens an rsc context on the selected driver and prints the
layouts it computes: element sizes and alignments, type storage and
mipmap chains, and the sampler presets.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v, cfgFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./rsinspect.yaml)")
	flags.String("driver", "", "registered driver name (default: best available)")
	flags.Bool("force-cpu", false, "use the software driver")
	flags.Int("target-api", rsc.DefaultTargetAPI, "API level passed to the driver")
	flags.String("cache-dir", "", "script cache directory")
	flags.BoolP("verbose", "v", false, "log driver activity to stderr")

	for key, flag := range map[string]string{
		"driver":     "driver",
		"force_cpu":  "force-cpu",
		"target_api": "target-api",
		"cache_dir":  "cache-dir",
		"verbose":    "verbose",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newElementsCommand(v),
		newTypeCommand(v),
		newSamplersCommand(v),
		newDriversCommand(),
	)
	return root
}

func loadConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("rsinspect")
	}
	v.SetEnvPrefix("RSC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// resolve returns the configuration currently held by v.
func resolve(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.TargetAPI <= 0 {
		return cfg, fmt.Errorf("target_api must be positive, got %d", cfg.TargetAPI)
	}
	return cfg, nil
}

// openContext opens a context configured from v. Logs go to the
// command's stderr when verbose is set.
func openContext(cmd *cobra.Command, v *viper.Viper) (*rsc.Context, error) {
	cfg, err := resolve(v)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		rsc.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	opts := []rsc.Option{rsc.WithTargetAPI(cfg.TargetAPI), rsc.WithSynchronous()}
	if cfg.Driver != "" {
		opts = append(opts, rsc.WithDriverName(cfg.Driver))
	}
	if cfg.ForceCPU {
		opts = append(opts, rsc.WithForceCPU())
	}
	if cfg.CacheDir != "" {
		opts = append(opts, rsc.WithCacheDir(cfg.CacheDir))
	}
	return rsc.NewContext(opts...)
}
