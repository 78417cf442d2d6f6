package workload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/rs/zerolog"

	"github.com/pg-sharding/shardbench/pkg/benchlog"
	"github.com/pg-sharding/shardbench/pkg/models/bencherror"
	"github.com/pg-sharding/shardbench/pkg/models/topology"
	"github.com/pg-sharding/shardbench/pkg/placement"
	"github.com/pg-sharding/shardbench/pkg/statistics"
	"github.com/pg-sharding/shardbench/pkg/storeclient"
)

const DefaultOperationCount = 10000

type Result struct {
	RunID  string
	Config topology.Configuration
	// Operations is the number of writes and of reads issued.
	Operations int

	Write *statistics.PhaseStats
	Read  *statistics.PhaseStats
}

// WriteMean is the mean write latency in seconds.
func (r *Result) WriteMean() float64 {
	return r.Write.Mean(r.Operations)
}

// ReadMean is the mean read latency in seconds.
func (r *Result) ReadMean() float64 {
	return r.Read.Mean(r.Operations)
}

type Option func(*Runner)

func WithOperationCount(m int) Option {
	return func(r *Runner) {
		r.ops = m
	}
}

func WithShardSize(size int) Option {
	return func(r *Runner) {
		r.shardSize = size
	}
}

func WithSchema(schema topology.Schema) Option {
	return func(r *Runner) {
		r.schema = schema
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

func WithProgressEvery(n int) Option {
	return func(r *Runner) {
		r.progressEvery = n
	}
}

// Runner drives the sequential write-then-read workload for one
// configuration at a time.
type Runner struct {
	client        storeclient.Client
	ops           int
	shardSize     int
	schema        topology.Schema
	now           func() time.Time
	progressEvery int
}

func NewRunner(client storeclient.Client, opts ...Option) *Runner {
	r := &Runner{
		client:        client,
		ops:           DefaultOperationCount,
		shardSize:     placement.DefaultShardSize,
		schema:        topology.DefaultSchema(),
		now:           time.Now,
		progressEvery: 1000,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) OperationCount() int {
	return r.ops
}

// Run initializes the store with the placement of cfg and times ops writes
// followed by ops reads. A failed initialization aborts the run before any
// write is issued.
func (r *Runner) Run(ctx context.Context, cfg topology.Configuration) (*Result, error) {
	p, err := placement.Plan(cfg, r.shardSize)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:      uuid.NewString(),
		Config:     cfg,
		Operations: r.ops,
		Write:      statistics.NewPhaseStats(statistics.Write),
		Read:       statistics.NewPhaseStats(statistics.Read),
	}

	span, ctx := opentracing.StartSpanFromContext(ctx, "configuration")
	defer span.Finish()
	span.SetTag("run_id", res.RunID)
	span.SetTag("config", cfg.Key())

	logger := benchlog.Zero.With().
		Str("run_id", res.RunID).
		Str("config", cfg.Key()).
		Logger()

	if err := r.client.Init(ctx, p.InitRequest(r.schema)); err != nil {
		span.SetTag("error", true)
		logger.Error().Err(err).Msg("failed to initialize store")
		return nil, &bencherror.BenchError{
			Err:       fmt.Errorf("init %s: %w", cfg.Key(), err),
			ErrorCode: bencherror.BENCH_INIT,
		}
	}
	logger.Info().
		Int("shards", len(p.Shards)).
		Int("slots", p.TotalSlots()).
		Msg("store initialized")

	if err := r.phase(ctx, &logger, res.Write, func(ctx context.Context, i int) error {
		return r.client.Write(ctx, &storeclient.WriteRequest{
			StudID:    i,
			StudName:  fmt.Sprintf("Student%d", i),
			StudMarks: fmt.Sprintf("%d", i%100),
		})
	}); err != nil {
		return nil, err
	}

	if err := r.phase(ctx, &logger, res.Read, func(ctx context.Context, i int) error {
		return r.client.Read(ctx, &storeclient.ReadRequest{
			StudID: storeclient.IDRange{Low: i, High: i + 1},
		})
	}); err != nil {
		return nil, err
	}

	logger.Info().
		Float64("write_mean", res.WriteMean()).
		Float64("read_mean", res.ReadMean()).
		Int("write_failures", res.Write.Failures()).
		Int("read_failures", res.Read.Failures()).
		Msg("configuration finished")
	return res, nil
}

func (r *Runner) phase(ctx context.Context, logger *zerolog.Logger, stats *statistics.PhaseStats, op func(context.Context, int) error) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, string(stats.Phase))
	defer span.Finish()

	for i := 0; i < r.ops; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := r.now()
		err := op(ctx, i)
		stats.Add(r.now().Sub(start))

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
			}
			stats.Fail()
			logger.Warn().
				Str("phase", string(stats.Phase)).
				Int("op", i).
				Err(&bencherror.BenchError{Err: err, ErrorCode: bencherror.BENCH_OPERATION}).
				Msg("operation failed")
		}

		if r.progressEvery > 0 && (i+1)%r.progressEvery == 0 {
			logger.Debug().
				Str("phase", string(stats.Phase)).
				Int("done", i+1).
				Int("total", r.ops).
				Msg("workload progress")
		}
	}
	span.SetTag("failures", stats.Failures())
	return nil
}
