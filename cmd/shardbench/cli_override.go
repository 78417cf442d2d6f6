package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pg-sharding/shardbench/pkg/config"
)

type overrideRule struct {
	name     string
	changed  func() bool
	validate func() error
	apply    func()
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func buildOverrideRules(cmd *cobra.Command, cfg *config.Bench) []overrideRule {
	return []overrideRule{
		{
			name:    "log-level",
			changed: func() bool { return cmd.Flags().Changed("log-level") },
			apply:   func() { setIfNotEmpty(&cfg.LogLevel, logLevel) },
		},
		{
			name:    "pretty-log",
			changed: func() bool { return cmd.Flags().Changed("pretty-log") },
			apply:   func() { cfg.PrettyLogging = prettyLogging },
		},
		{
			name:    "store-url",
			changed: func() bool { return cmd.Flags().Changed("store-url") },
			validate: func() error {
				if storeURL == "" {
					return fmt.Errorf("store url must not be empty")
				}
				return nil
			},
			apply: func() { cfg.StoreURL = storeURL },
		},
		{
			name:    "operations",
			changed: func() bool { return cmd.Flags().Changed("operations") },
			validate: func() error {
				if operationCount < 1 {
					return fmt.Errorf("must be positive, got %d", operationCount)
				}
				return nil
			},
			apply: func() { cfg.OperationCount = operationCount },
		},
		{
			name:    "shard-size",
			changed: func() bool { return cmd.Flags().Changed("shard-size") },
			validate: func() error {
				if shardSize < 1 {
					return fmt.Errorf("must be positive, got %d", shardSize)
				}
				return nil
			},
			apply: func() { cfg.ShardSize = shardSize },
		},
		{
			name:    "result-file",
			changed: func() bool { return cmd.Flags().Changed("result-file") },
			apply:   func() { setIfNotEmpty(&cfg.ResultFile, resultFile) },
		},
		{
			name:    "launcher",
			changed: func() bool { return cmd.Flags().Changed("launcher") },
			validate: func() error {
				switch config.LauncherKind(launcherKind) {
				case config.LauncherExec, config.LauncherDocker, config.LauncherNone:
					return nil
				}
				return fmt.Errorf("unknown launcher kind %q", launcherKind)
			},
			apply: func() {
				cfg.Launcher.Kind = config.LauncherKind(launcherKind)
				if cfg.Launcher.Kind == config.LauncherExec && len(cfg.Launcher.Command) == 0 {
					cfg.Launcher.Command = config.DefaultBench().Launcher.Command
				}
			},
		},
		{
			name:    "with-jaeger",
			changed: func() bool { return cmd.Flags().Changed("with-jaeger") },
			apply:   func() { cfg.WithJaeger = withJaeger },
		},
		{
			name:    "jaeger-url",
			changed: func() bool { return cmd.Flags().Changed("jaeger-url") },
			apply:   func() { setIfNotEmpty(&cfg.JaegerConfig.JaegerUrl, jaegerURL) },
		},
	}
}

func applyOverrides(cmd *cobra.Command, cfg *config.Bench) error {
	rules := buildOverrideRules(cmd, cfg)
	for _, r := range rules {
		if r.changed() && r.validate != nil {
			if err := r.validate(); err != nil {
				return fmt.Errorf("%s: %w", r.name, err)
			}
		}
	}
	for _, r := range rules {
		if r.changed() {
			r.apply()
		}
	}
	return nil
}
