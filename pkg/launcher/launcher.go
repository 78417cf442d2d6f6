package launcher

import (
	"context"

	"github.com/pg-sharding/shardbench/pkg/config"
	"github.com/pg-sharding/shardbench/pkg/models/bencherror"
	"github.com/pg-sharding/shardbench/pkg/models/topology"
)

// Launcher (re)starts the cluster under test before a configuration runs.
type Launcher interface {
	Start(ctx context.Context, cfg topology.Configuration) error
	Close() error
}

func New(cfg config.Launcher) (Launcher, error) {
	switch cfg.Kind {
	case config.LauncherExec, "":
		return NewExecLauncher(cfg.Command, cfg.WorkDir)
	case config.LauncherDocker:
		return NewDockerLauncher(cfg.Containers, cfg.StopTimeout)
	case config.LauncherNone:
		return NoopLauncher{}, nil
	default:
		return nil, bencherror.Newf(bencherror.BENCH_CONFIG, "unknown launcher kind %q", cfg.Kind)
	}
}

// NoopLauncher is used when the cluster is managed outside the benchmark.
type NoopLauncher struct{}

var _ Launcher = NoopLauncher{}

func (NoopLauncher) Start(context.Context, topology.Configuration) error {
	return nil
}

func (NoopLauncher) Close() error {
	return nil
}
