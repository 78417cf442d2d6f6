package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pg-sharding/shardbench/pkg/bench"
	"github.com/pg-sharding/shardbench/pkg/benchlog"
	"github.com/pg-sharding/shardbench/pkg/config"
	"github.com/pg-sharding/shardbench/pkg/models/bencherror"
	"github.com/pg-sharding/shardbench/pkg/models/topology"
	"github.com/pg-sharding/shardbench/pkg/record"
	"github.com/pg-sharding/shardbench/pkg/tracing"
)

var (
	topologies     []string
	storeURL       string
	operationCount int
	shardSize      int
	resultFile     string
	launcherKind   string
	withJaeger     bool
	jaegerURL      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "benchmark every configured topology and append the results to the record file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.BenchConfig()

		configs, err := selectTopologies(cfg, topologies)
		if err != nil {
			return err
		}

		closer, err := tracing.InitTracer(cfg.WithJaeger, cfg.JaegerConfig)
		if err != nil {
			return errors.Wrap(err, "failed to init tracer")
		}
		defer closer.Close()

		ctx, cancelCtx := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancelCtx()

		h, err := bench.FromConfig(cfg, record.New())
		if err != nil {
			return errors.Wrap(err, "failed to set up benchmark")
		}
		defer func() {
			if err := h.Close(); err != nil {
				benchlog.Zero.Error().Err(err).Msg("failed to close launcher")
			}
		}()

		summary, err := h.Run(ctx, configs)
		if err != nil {
			return errors.Wrap(err, "benchmark aborted")
		}
		if failed := summary.Failed(); len(failed) > 0 {
			return errors.Errorf("%d of %d configurations failed", len(failed), len(summary.Outcomes))
		}
		benchlog.Zero.Info().
			Int("configurations", len(summary.Outcomes)).
			Str("result_file", cfg.ResultFile).
			Msg("benchmark finished")
		return nil
	},
}

// selectTopologies prefers topologies given on the command line over the
// config file.
func selectTopologies(cfg *config.Bench, triples []string) ([]topology.Configuration, error) {
	if len(triples) == 0 {
		if len(cfg.Topologies) == 0 {
			return nil, bencherror.New(bencherror.BENCH_CONFIG, "no topologies to benchmark: set topologies in config or pass --topology")
		}
		return cfg.Topologies, nil
	}

	res := make([]topology.Configuration, 0, len(triples))
	for _, t := range triples {
		c, err := topology.ParseTriple(t)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, nil
}

func init() {
	runCmd.Flags().StringArrayVarP(&topologies, "topology", "t", nil, "topology as shards,servers,replicas; may be repeated")
	runCmd.Flags().StringVar(&storeURL, "store-url", "", "base url of the store load balancer")
	runCmd.Flags().IntVarP(&operationCount, "operations", "m", 0, "writes and reads per topology")
	runCmd.Flags().IntVar(&shardSize, "shard-size", 0, "ids per shard")
	runCmd.Flags().StringVarP(&resultFile, "result-file", "o", "", "performance record file")
	runCmd.Flags().StringVar(&launcherKind, "launcher", "", "cluster launcher: exec, docker or none")
	runCmd.Flags().BoolVar(&withJaeger, "with-jaeger", false, "report spans to jaeger")
	runCmd.Flags().StringVar(&jaegerURL, "jaeger-url", "", "jaeger collector url")
}
