package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pg-sharding/shardbench/pkg/benchlog"
	"github.com/pg-sharding/shardbench/pkg/models/bencherror"
	"github.com/pg-sharding/shardbench/pkg/models/topology"
)

const (
	DefaultStoreURL       = "http://localhost:3001"
	DefaultOperationCount = 10000
	DefaultShardSize      = 4096
	DefaultResultFile     = "performance_data.txt"
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultProgressEvery  = 1000
)

type LauncherKind string

const (
	LauncherExec   = LauncherKind("exec")
	LauncherDocker = LauncherKind("docker")
	LauncherNone   = LauncherKind("none")
)

type Launcher struct {
	Kind        LauncherKind  `json:"kind" toml:"kind" yaml:"kind"`
	Command     []string      `json:"command" toml:"command" yaml:"command"`
	WorkDir     string        `json:"work_dir" toml:"work_dir" yaml:"work_dir"`
	Containers  []string      `json:"containers" toml:"containers" yaml:"containers"`
	StopTimeout time.Duration `json:"stop_timeout" toml:"stop_timeout" yaml:"stop_timeout"`
}

type Readiness struct {
	Path           string        `json:"path" toml:"path" yaml:"path"`
	MaxRetries     uint64        `json:"max_retries" toml:"max_retries" yaml:"max_retries"`
	InitialBackoff time.Duration `json:"initial_backoff" toml:"initial_backoff" yaml:"initial_backoff"`
	MaxDuration    time.Duration `json:"max_duration" toml:"max_duration" yaml:"max_duration"`
}

type JaegerCfg struct {
	JaegerUrl string `json:"jaeger_url" toml:"jaeger_url" yaml:"jaeger_url"`
}

type Bench struct {
	LogLevel      string `json:"log_level" toml:"log_level" yaml:"log_level"`
	PrettyLogging bool   `json:"pretty_logging" toml:"pretty_logging" yaml:"pretty_logging"`
	LogFile       string `json:"log_file" toml:"log_file" yaml:"log_file"`

	StoreURL    string        `json:"store_url" toml:"store_url" yaml:"store_url"`
	HTTPTimeout time.Duration `json:"http_timeout" toml:"http_timeout" yaml:"http_timeout"`

	OperationCount int    `json:"operation_count" toml:"operation_count" yaml:"operation_count"`
	ProgressEvery  int    `json:"progress_every" toml:"progress_every" yaml:"progress_every"`
	ShardSize      int    `json:"shard_size" toml:"shard_size" yaml:"shard_size"`
	ResultFile     string `json:"result_file" toml:"result_file" yaml:"result_file"`

	Schema     topology.Schema          `json:"schema" toml:"schema" yaml:"schema"`
	Topologies []topology.Configuration `json:"topologies" toml:"topologies" yaml:"topologies"`
	Quantiles  []float64                `json:"quantiles" toml:"quantiles" yaml:"quantiles"`

	Launcher  Launcher  `json:"launcher" toml:"launcher" yaml:"launcher"`
	Readiness Readiness `json:"readiness" toml:"readiness" yaml:"readiness"`

	WithJaeger   bool      `json:"with_jaeger" toml:"with_jaeger" yaml:"with_jaeger"`
	JaegerConfig JaegerCfg `json:"jaeger" toml:"jaeger" yaml:"jaeger"`
}

var cfgBench = DefaultBench()

// DefaultTopologies are benchmarked when neither the config nor the command
// line names any.
func DefaultTopologies() []topology.Configuration {
	return []topology.Configuration{
		{Shards: 4, Servers: 6, Replicas: 3},
		{Shards: 4, Servers: 6, Replicas: 6},
		{Shards: 6, Servers: 10, Replicas: 8},
	}
}

// DefaultBench reproduces the stock harness: make, wait for the load
// balancer on :3001, 10000 writes and reads per topology.
func DefaultBench() Bench {
	return Bench{
		LogLevel:       "info",
		PrettyLogging:  true,
		StoreURL:       DefaultStoreURL,
		HTTPTimeout:    DefaultHTTPTimeout,
		OperationCount: DefaultOperationCount,
		ProgressEvery:  DefaultProgressEvery,
		ShardSize:      DefaultShardSize,
		ResultFile:     DefaultResultFile,
		Schema:         topology.DefaultSchema(),
		Topologies:     DefaultTopologies(),
		Quantiles:      []float64{0.5, 0.9, 0.99},
		Launcher: Launcher{
			Kind:        LauncherExec,
			Command:     []string{"make"},
			StopTimeout: 10 * time.Second,
		},
		Readiness: Readiness{
			Path:           "/status",
			MaxRetries:     10,
			InitialBackoff: 500 * time.Millisecond,
			MaxDuration:    time.Minute,
		},
	}
}

func LoadBenchCfg(cfgPath string) error {
	cfg, err := ReadBenchCfg(cfgPath)
	if err != nil {
		return err
	}
	cfgBench = *cfg

	configBytes, err := json.MarshalIndent(cfgBench, "", "  ")
	if err != nil {
		return err
	}

	benchlog.Zero.Debug().RawJSON("config", configBytes).Msg("running config")
	return nil
}

// ReadBenchCfg decodes the file at cfgPath on top of DefaultBench.
func ReadBenchCfg(cfgPath string) (*Bench, error) {
	file, err := os.Open(cfgPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := DefaultBench()
	// Lists replace defaults instead of merging into them.
	cfg.Topologies = nil
	cfg.Quantiles = nil
	cfg.Launcher.Command = nil
	if err := initConfig(file, &cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (b *Bench) fillDefaults() {
	def := DefaultBench()
	if b.StoreURL == "" {
		b.StoreURL = def.StoreURL
	}
	if b.HTTPTimeout == 0 {
		b.HTTPTimeout = def.HTTPTimeout
	}
	if b.OperationCount == 0 {
		b.OperationCount = def.OperationCount
	}
	if b.ProgressEvery == 0 {
		b.ProgressEvery = def.ProgressEvery
	}
	if b.ShardSize == 0 {
		b.ShardSize = def.ShardSize
	}
	if b.ResultFile == "" {
		b.ResultFile = def.ResultFile
	}
	if len(b.Schema.Columns) == 0 {
		b.Schema = def.Schema
	}
	if len(b.Topologies) == 0 {
		b.Topologies = def.Topologies
	}
	if len(b.Quantiles) == 0 {
		b.Quantiles = def.Quantiles
	}
	if b.Launcher.Kind == "" {
		b.Launcher.Kind = def.Launcher.Kind
	}
	if b.Launcher.Kind == LauncherExec && len(b.Launcher.Command) == 0 {
		b.Launcher.Command = def.Launcher.Command
	}
	if b.Launcher.StopTimeout == 0 {
		b.Launcher.StopTimeout = def.Launcher.StopTimeout
	}
	if b.Readiness.Path == "" {
		b.Readiness.Path = def.Readiness.Path
	}
	if b.Readiness.MaxRetries == 0 {
		b.Readiness.MaxRetries = def.Readiness.MaxRetries
	}
	if b.Readiness.InitialBackoff == 0 {
		b.Readiness.InitialBackoff = def.Readiness.InitialBackoff
	}
	if b.Readiness.MaxDuration == 0 {
		b.Readiness.MaxDuration = def.Readiness.MaxDuration
	}
}

func (b *Bench) Validate() error {
	if b.OperationCount < 1 {
		return bencherror.Newf(bencherror.BENCH_CONFIG, "operation_count must be positive, got %d", b.OperationCount)
	}
	if b.ShardSize < 1 {
		return bencherror.Newf(bencherror.BENCH_CONFIG, "shard_size must be positive, got %d", b.ShardSize)
	}
	if len(b.Schema.Columns) != len(b.Schema.Dtypes) {
		return bencherror.Newf(bencherror.BENCH_CONFIG, "schema has %d columns but %d dtypes", len(b.Schema.Columns), len(b.Schema.Dtypes))
	}
	for _, q := range b.Quantiles {
		if q <= 0 || q >= 1 {
			return bencherror.Newf(bencherror.BENCH_CONFIG, "quantile %v is outside (0, 1)", q)
		}
	}
	switch b.Launcher.Kind {
	case LauncherExec:
		if len(b.Launcher.Command) == 0 {
			return bencherror.New(bencherror.BENCH_CONFIG, "exec launcher needs a command")
		}
	case LauncherDocker:
		if len(b.Launcher.Containers) == 0 {
			return bencherror.New(bencherror.BENCH_CONFIG, "docker launcher needs at least one container")
		}
	case LauncherNone:
	default:
		return bencherror.Newf(bencherror.BENCH_CONFIG, "unknown launcher kind %q", b.Launcher.Kind)
	}
	for _, t := range b.Topologies {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func BenchConfig() *Bench {
	return &cfgBench
}

// SetBenchCfg replaces the running config, e.g. with DefaultBench when no
// config file is given.
func SetBenchCfg(b Bench) {
	cfgBench = b
}
