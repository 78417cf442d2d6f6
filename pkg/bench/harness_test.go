package bench_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pg-sharding/shardbench/pkg/bench"
	"github.com/pg-sharding/shardbench/pkg/benchlog"
	"github.com/pg-sharding/shardbench/pkg/config"
	"github.com/pg-sharding/shardbench/pkg/models/bencherror"
	"github.com/pg-sharding/shardbench/pkg/models/topology"
	"github.com/pg-sharding/shardbench/pkg/record"
	"github.com/pg-sharding/shardbench/pkg/storeclient"
	"github.com/pg-sharding/shardbench/pkg/storeclient/fakestore"
	"github.com/pg-sharding/shardbench/pkg/workload"
)

// scriptedLauncher logs every start and fails for the listed configurations.
type scriptedLauncher struct {
	fs      *fakestore.FakeStore
	started []string
	fail    map[string]bool
	// notReady makes the store answer 503 after the listed launches.
	notReady map[string]bool
}

func (l *scriptedLauncher) Start(_ context.Context, cfg topology.Configuration) error {
	l.started = append(l.started, cfg.Key())
	if l.fail[cfg.Key()] {
		return bencherror.New(bencherror.BENCH_LAUNCH, "make: *** [all] Error 2")
	}
	if l.notReady[cfg.Key()] {
		l.fs.NotReadyFor.Store(1000)
	} else {
		l.fs.NotReadyFor.Store(0)
	}
	return nil
}

func (l *scriptedLauncher) Close() error {
	return nil
}

var (
	cfgA = topology.Configuration{Shards: 4, Servers: 6, Replicas: 3}
	cfgB = topology.Configuration{Shards: 4, Servers: 6, Replicas: 6}
	cfgC = topology.Configuration{Shards: 2, Servers: 2, Replicas: 1}
)

func newHarness(t *testing.T, fs *fakestore.FakeStore, l *scriptedLauncher, rec *record.PerformanceRecord, ops int) (*bench.Harness, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "performance_data.txt")
	client := storeclient.NewHTTPClient(fs.URL(), time.Second)
	runner := workload.NewRunner(client, workload.WithOperationCount(ops))
	readinessCfg := config.Readiness{
		Path:           "/status",
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxDuration:    time.Second,
	}
	return bench.NewHarness(l, client, readinessCfg, runner, rec, path, []float64{0.5, 0.99}), path
}

func TestHarnessRunsInOrder(t *testing.T) {
	assert := assert.New(t)

	fs := fakestore.New()
	defer fs.Close()
	l := &scriptedLauncher{fs: fs}
	rec := record.New()
	h, path := newHarness(t, fs, l, rec, 20)

	summary, err := h.Run(context.Background(), []topology.Configuration{cfgA, cfgB})
	require.NoError(t, err)

	assert.Equal([]string{cfgA.Key(), cfgB.Key()}, l.started)
	assert.Empty(summary.Failed())
	require.Len(t, summary.Outcomes, 2)
	assert.Equal(bench.StageDone, summary.Outcomes[0].Stage)
	assert.Equal(int64(2), fs.InitCalls.Load())
	assert.Equal(int64(40), fs.WriteCalls.Load())
	assert.Equal(int64(40), fs.ReadCalls.Load())
	assert.Equal([]string{cfgA.Key(), cfgB.Key()}, rec.Keys())

	reloaded, err := record.Reload(path)
	require.NoError(t, err)
	assert.Equal(rec.Keys(), reloaded.Keys())
	for _, key := range rec.Keys() {
		want, _ := rec.Get(key)
		got, _ := reloaded.Get(key)
		assert.Equal(want, got)
	}
}

func TestHarnessLogsOperationsAndQuantiles(t *testing.T) {
	assert := assert.New(t)

	prev := benchlog.Zero
	defer func() { benchlog.Zero = prev }()
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	benchlog.Zero = &logger

	fs := fakestore.New()
	defer fs.Close()
	h, _ := newHarness(t, fs, &scriptedLauncher{fs: fs}, record.New(), 20)

	_, err := h.Run(context.Background(), []topology.Configuration{cfgC})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(out, `"operations":20`)
	assert.Contains(out, `"write_q0.5":`)
	assert.Contains(out, `"read_q0.99":`)
	assert.Contains(out, `"message":"configuration recorded"`)
}

func TestHarnessSkipsFailedConfigurations(t *testing.T) {
	assert := assert.New(t)

	fs := fakestore.New()
	defer fs.Close()
	l := &scriptedLauncher{
		fs:       fs,
		fail:     map[string]bool{cfgA.Key(): true},
		notReady: map[string]bool{cfgB.Key(): true},
	}
	rec := record.New()
	h, path := newHarness(t, fs, l, rec, 10)

	summary, err := h.Run(context.Background(), []topology.Configuration{cfgA, cfgB, cfgC})
	require.NoError(t, err)

	failed := summary.Failed()
	require.Len(t, failed, 2)
	assert.Equal(bench.StageLaunch, failed[0].Stage)
	assert.True(bencherror.Is(failed[0].Err, bencherror.BENCH_LAUNCH))
	assert.Equal(bench.StageReady, failed[1].Stage)
	assert.True(bencherror.Is(failed[1].Err, bencherror.BENCH_NOT_READY))

	assert.Equal(int64(1), fs.InitCalls.Load())
	assert.Equal([]string{cfgC.Key()}, rec.Keys())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(string(data), cfgC.Key()+" - Write Time: ")
}

func TestHarnessInitFailureRecordsNothing(t *testing.T) {
	assert := assert.New(t)

	fs := fakestore.New()
	defer fs.Close()
	fs.InitStatus.Store(500)
	l := &scriptedLauncher{fs: fs}
	rec := record.New()
	h, path := newHarness(t, fs, l, rec, 10)

	summary, err := h.Run(context.Background(), []topology.Configuration{cfgA})
	require.NoError(t, err)

	require.Len(t, summary.Failed(), 1)
	assert.Equal(bench.StageRun, summary.Outcomes[0].Stage)
	assert.True(bencherror.Is(summary.Outcomes[0].Err, bencherror.BENCH_INIT))
	assert.Equal(int64(0), fs.WriteCalls.Load())
	assert.Equal(int64(0), fs.ReadCalls.Load())
	assert.Equal(0, rec.Len())

	_, err = os.Stat(path)
	assert.ErrorIs(err, os.ErrNotExist)
}

func TestHarnessInvalidConfiguration(t *testing.T) {
	fs := fakestore.New()
	defer fs.Close()
	l := &scriptedLauncher{fs: fs}
	h, _ := newHarness(t, fs, l, record.New(), 10)

	_, err := h.Run(context.Background(), []topology.Configuration{cfgA, {Shards: 1, Servers: 0, Replicas: 1}})
	assert.True(t, bencherror.Is(err, bencherror.BENCH_CONFIG))
	assert.Empty(t, l.started)
	assert.Equal(t, int64(0), fs.StatusCalls.Load())
}

func TestHarnessCanceled(t *testing.T) {
	fs := fakestore.New()
	defer fs.Close()
	l := &scriptedLauncher{fs: fs}
	h, _ := newHarness(t, fs, l, record.New(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := h.Run(ctx, []topology.Configuration{cfgA, cfgB})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, summary.Outcomes, 1)
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultBench()
	cfg.Launcher.Kind = config.LauncherNone

	h, err := bench.FromConfig(&cfg, record.New())
	require.NoError(t, err)
	assert.NoError(t, h.Close())

	cfg.Launcher.Kind = "ansible"
	_, err = bench.FromConfig(&cfg, record.New())
	assert.True(t, bencherror.Is(err, bencherror.BENCH_CONFIG))
}
