package launcher

import (
	"context"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/pg-sharding/shardbench/pkg/benchlog"
	"github.com/pg-sharding/shardbench/pkg/models/bencherror"
	"github.com/pg-sharding/shardbench/pkg/models/topology"
)

type containerAPI interface {
	ContainerRestart(ctx context.Context, containerID string, options container.StopOptions) error
	Close() error
}

// DockerLauncher restarts already created containers of the cluster,
// e.g. the load balancer and its database servers.
type DockerLauncher struct {
	api         containerAPI
	containers  []string
	stopTimeout time.Duration
}

var _ Launcher = &DockerLauncher{}

func NewDockerLauncher(containers []string, stopTimeout time.Duration) (*DockerLauncher, error) {
	if len(containers) == 0 {
		return nil, bencherror.New(bencherror.BENCH_CONFIG, "docker launcher needs at least one container")
	}
	api, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, bencherror.Newf(bencherror.BENCH_LAUNCH, "failed to connect to docker: %s", err)
	}
	return newDockerLauncher(api, containers, stopTimeout), nil
}

func newDockerLauncher(api containerAPI, containers []string, stopTimeout time.Duration) *DockerLauncher {
	return &DockerLauncher{
		api:         api,
		containers:  containers,
		stopTimeout: stopTimeout,
	}
}

func (l *DockerLauncher) Start(ctx context.Context, cfg topology.Configuration) error {
	stopTimeout := int(l.stopTimeout.Seconds())
	for _, name := range l.containers {
		benchlog.Zero.Info().
			Str("container", name).
			Str("config", cfg.Key()).
			Msg("restarting container")

		err := l.api.ContainerRestart(ctx, name, container.StopOptions{
			Timeout: &stopTimeout,
		})
		if cerrdefs.IsNotFound(err) {
			return bencherror.Newf(bencherror.BENCH_LAUNCH, "no such container: %s", name)
		}
		if err != nil {
			return bencherror.Newf(bencherror.BENCH_LAUNCH, "failed to restart container %s: %s", name, err)
		}
	}
	return nil
}

func (l *DockerLauncher) Close() error {
	return l.api.Close()
}
