package main

import (
	"github.com/spf13/cobra"

	"github.com/pg-sharding/shardbench/pkg/benchlog"
	"github.com/pg-sharding/shardbench/pkg/config"
)

var (
	cfgPath       string
	logLevel      string
	prettyLogging bool
)

var rootCmd = &cobra.Command{
	Use:   "shardbench run --config `path-to-config`",
	Short: "shardbench",
	Long:  "shardbench benchmarks a sharded store over a list of shard/server/replica topologies",
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func loadConfig(cmd *cobra.Command) error {
	if cfgPath != "" {
		if err := config.LoadBenchCfg(cfgPath); err != nil {
			return err
		}
	} else {
		config.SetBenchCfg(config.DefaultBench())
	}

	cfg := config.BenchConfig()
	if err := applyOverrides(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return benchlog.ReloadLogger(cfg.LogFile, cfg.LogLevel, cfg.PrettyLogging)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		benchlog.Zero.Fatal().Err(err).Msg("")
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warning, error, fatal")
	rootCmd.PersistentFlags().BoolVar(&prettyLogging, "pretty-log", true, "write logs in human readable form")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	Execute()
}
