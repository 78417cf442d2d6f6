package readiness

import (
	"context"
	"time"

	retry "github.com/sethvargo/go-retry"

	"github.com/pg-sharding/shardbench/pkg/benchlog"
	"github.com/pg-sharding/shardbench/pkg/config"
	"github.com/pg-sharding/shardbench/pkg/models/bencherror"
)

const defaultInitialBackoff = 500 * time.Millisecond

type Prober interface {
	Probe(ctx context.Context, path string) error
}

// Wait polls the store's status endpoint with fibonacci backoff until it
// answers 200, the retry budget runs out or ctx is done.
func Wait(ctx context.Context, p Prober, cfg config.Readiness) error {
	t := time.Now()
	attempt := 0

	base := cfg.InitialBackoff
	if base <= 0 {
		base = defaultInitialBackoff
	}
	backoff := retry.NewFibonacci(base)
	if cfg.MaxDuration > 0 {
		backoff = retry.WithMaxDuration(cfg.MaxDuration, backoff)
	}
	backoff = retry.WithMaxRetries(cfg.MaxRetries, backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := p.Probe(ctx, cfg.Path); err != nil {
			if ctx.Err() != nil {
				return err
			}
			benchlog.Zero.Debug().
				Int("attempt", attempt).
				Err(err).
				Msg("store is not ready yet")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err == nil {
		benchlog.Zero.Info().
			Int("attempts", attempt).
			Dur("waited", time.Since(t)).
			Msg("store is ready")
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return bencherror.Newf(bencherror.BENCH_NOT_READY,
		"no answer on %s after %d attempts in %s: %w", cfg.Path, attempt, time.Since(t).Round(time.Millisecond), err)
}
