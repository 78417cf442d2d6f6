package bench

import (
	"context"
	"fmt"

	"github.com/opentracing/opentracing-go"

	"github.com/pg-sharding/shardbench/pkg/benchlog"
	"github.com/pg-sharding/shardbench/pkg/config"
	"github.com/pg-sharding/shardbench/pkg/launcher"
	"github.com/pg-sharding/shardbench/pkg/models/bencherror"
	"github.com/pg-sharding/shardbench/pkg/models/topology"
	"github.com/pg-sharding/shardbench/pkg/readiness"
	"github.com/pg-sharding/shardbench/pkg/record"
	"github.com/pg-sharding/shardbench/pkg/storeclient"
	"github.com/pg-sharding/shardbench/pkg/workload"
)

type Stage string

const (
	StageLaunch  = Stage("launch")
	StageReady   = Stage("readiness")
	StageRun     = Stage("run")
	StageDone    = Stage("done")
	StagePersist = Stage("persist")
)

// Outcome describes what happened to one configuration. Stage is the last
// stage reached; Err is set when that stage failed.
type Outcome struct {
	Config topology.Configuration
	Stage  Stage
	Result *workload.Result
	Err    error
}

type Summary struct {
	Outcomes []Outcome
}

func (s *Summary) Failed() []Outcome {
	var res []Outcome
	for _, o := range s.Outcomes {
		if o.Err != nil {
			res = append(res, o)
		}
	}
	return res
}

type Harness struct {
	launcher   launcher.Launcher
	prober     readiness.Prober
	readiness  config.Readiness
	runner     *workload.Runner
	record     *record.PerformanceRecord
	resultFile string
	quantiles  []float64
}

func NewHarness(
	l launcher.Launcher,
	prober readiness.Prober,
	readinessCfg config.Readiness,
	runner *workload.Runner,
	rec *record.PerformanceRecord,
	resultFile string,
	quantiles []float64,
) *Harness {
	return &Harness{
		launcher:   l,
		prober:     prober,
		readiness:  readinessCfg,
		runner:     runner,
		record:     rec,
		resultFile: resultFile,
		quantiles:  quantiles,
	}
}

// FromConfig wires the harness the way the CLI runs it: an HTTP client for
// the configured store and the configured launcher.
func FromConfig(cfg *config.Bench, rec *record.PerformanceRecord) (*Harness, error) {
	l, err := launcher.New(cfg.Launcher)
	if err != nil {
		return nil, err
	}
	client := storeclient.NewHTTPClient(cfg.StoreURL, cfg.HTTPTimeout)
	runner := workload.NewRunner(client,
		workload.WithOperationCount(cfg.OperationCount),
		workload.WithShardSize(cfg.ShardSize),
		workload.WithSchema(cfg.Schema),
		workload.WithProgressEvery(cfg.ProgressEvery),
	)
	return NewHarness(l, client, cfg.Readiness, runner, rec, cfg.ResultFile, cfg.Quantiles), nil
}

func (h *Harness) Close() error {
	return h.launcher.Close()
}

// Run benchmarks every configuration in order. Configurations that fail to
// launch, become ready or initialize are skipped. Invalid configurations,
// persist failures and cancellation stop the whole run.
func (h *Harness) Run(ctx context.Context, configs []topology.Configuration) (*Summary, error) {
	for _, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	summary := &Summary{}
	for i, cfg := range configs {
		benchlog.Zero.Info().
			Str("config", cfg.Key()).
			Int("index", i+1).
			Int("total", len(configs)).
			Int("operations", h.runner.OperationCount()).
			Msg("benchmarking configuration")

		out := h.runOne(ctx, cfg)
		summary.Outcomes = append(summary.Outcomes, out)

		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if out.Stage == StagePersist {
			return summary, out.Err
		}
		if out.Err != nil {
			benchlog.Zero.Error().
				Str("config", cfg.Key()).
				Str("stage", string(out.Stage)).
				Err(out.Err).
				Msg("configuration skipped")
		}
	}
	return summary, nil
}

func (h *Harness) runOne(ctx context.Context, cfg topology.Configuration) Outcome {
	span, ctx := opentracing.StartSpanFromContext(ctx, "benchmark")
	defer span.Finish()
	span.SetTag("config", cfg.Key())

	if err := h.launcher.Start(ctx, cfg); err != nil {
		return Outcome{Config: cfg, Stage: StageLaunch, Err: err}
	}
	if err := readiness.Wait(ctx, h.prober, h.readiness); err != nil {
		return Outcome{Config: cfg, Stage: StageReady, Err: err}
	}

	res, err := h.runner.Run(ctx, cfg)
	if err != nil {
		return Outcome{Config: cfg, Stage: StageRun, Err: err}
	}

	h.record.Record(cfg, res.WriteMean(), res.ReadMean())
	if err := h.record.Persist(h.resultFile); err != nil {
		return Outcome{
			Config: cfg,
			Stage:  StagePersist,
			Result: res,
			Err:    &bencherror.BenchError{Err: fmt.Errorf("persist %s: %w", h.resultFile, err), ErrorCode: bencherror.BENCH_RECORD},
		}
	}

	h.logResult(res)
	return Outcome{Config: cfg, Stage: StageDone, Result: res}
}

func (h *Harness) logResult(res *workload.Result) {
	ev := benchlog.Zero.Info().
		Str("run_id", res.RunID).
		Str("config", res.Config.Key()).
		Float64("write_time", res.WriteMean()).
		Float64("read_time", res.ReadMean())
	writes := res.Write.Quantiles(h.quantiles)
	reads := res.Read.Quantiles(h.quantiles)
	for _, q := range h.quantiles {
		ev = ev.
			Dur(fmt.Sprintf("write_q%g", q), writes[q]).
			Dur(fmt.Sprintf("read_q%g", q), reads[q])
	}
	ev.Msg("configuration recorded")
}
