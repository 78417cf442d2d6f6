package launcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pg-sharding/shardbench/pkg/benchlog"
	"github.com/pg-sharding/shardbench/pkg/models/bencherror"
	"github.com/pg-sharding/shardbench/pkg/models/topology"
)

// ExecLauncher runs a build/start command, `make` in the stock setup.
// The topology is exported to the command as SHARDBENCH_* variables.
type ExecLauncher struct {
	command []string
	workDir string
}

var _ Launcher = &ExecLauncher{}

func NewExecLauncher(command []string, workDir string) (*ExecLauncher, error) {
	if len(command) == 0 {
		return nil, bencherror.New(bencherror.BENCH_CONFIG, "exec launcher needs a command")
	}
	return &ExecLauncher{
		command: command,
		workDir: workDir,
	}, nil
}

func (l *ExecLauncher) Start(ctx context.Context, cfg topology.Configuration) error {
	cmd := exec.CommandContext(ctx, l.command[0], l.command[1:]...)
	cmd.Dir = l.workDir
	cmd.Env = append(os.Environ(), topologyEnv(cfg)...)

	benchlog.Zero.Info().
		Str("command", strings.Join(l.command, " ")).
		Str("config", cfg.Key()).
		Msg("starting cluster")

	out, err := cmd.CombinedOutput()
	if err != nil {
		return bencherror.Newf(bencherror.BENCH_LAUNCH, "failed to run '%s': %s\n%s", strings.Join(l.command, " "), err, out)
	}
	benchlog.Zero.Debug().Bytes("output", out).Msg("launch command finished")
	return nil
}

func (l *ExecLauncher) Close() error {
	return nil
}

func topologyEnv(cfg topology.Configuration) []string {
	return []string{
		fmt.Sprintf("SHARDBENCH_SHARDS=%d", cfg.Shards),
		fmt.Sprintf("SHARDBENCH_SERVERS=%d", cfg.Servers),
		fmt.Sprintf("SHARDBENCH_REPLICAS=%d", cfg.Replicas),
	}
}
