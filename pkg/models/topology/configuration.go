package topology

import (
	"fmt"

	"github.com/pg-sharding/shardbench/pkg/models/bencherror"
)

// Configuration identifies one benchmark scenario and keys its results.
type Configuration struct {
	Shards   int `json:"shards" toml:"shards" yaml:"shards"`
	Servers  int `json:"servers" toml:"servers" yaml:"servers"`
	Replicas int `json:"replicas" toml:"replicas" yaml:"replicas"`
}

const keyFormat = "%d Shards, %d Servers, %d Replicas"

// Key is the stable human-readable label results are stored under.
func (c Configuration) Key() string {
	return fmt.Sprintf(keyFormat, c.Shards, c.Servers, c.Replicas)
}

func (c Configuration) String() string {
	return c.Key()
}

func ParseKey(key string) (Configuration, error) {
	var c Configuration
	n, err := fmt.Sscanf(key, keyFormat, &c.Shards, &c.Servers, &c.Replicas)
	if err != nil || n != 3 {
		return Configuration{}, bencherror.Newf(bencherror.BENCH_CONFIG, "malformed configuration key %q", key)
	}
	if c.Key() != key {
		return Configuration{}, bencherror.Newf(bencherror.BENCH_CONFIG, "malformed configuration key %q", key)
	}
	return c, nil
}

// ParseTriple parses the "S,N,R" form used on the command line.
func ParseTriple(s string) (Configuration, error) {
	var c Configuration
	n, err := fmt.Sscanf(s, "%d,%d,%d", &c.Shards, &c.Servers, &c.Replicas)
	if err != nil || n != 3 {
		return Configuration{}, bencherror.Newf(bencherror.BENCH_CONFIG, "topology %q is not in shards,servers,replicas form", s)
	}
	return c, nil
}

// Validate rejects topologies the placement planner cannot serve.
// Replicas > Servers is allowed.
func (c Configuration) Validate() error {
	if c.Servers < 1 {
		return bencherror.Newf(bencherror.BENCH_CONFIG, "server count must be at least 1, got %d", c.Servers)
	}
	if c.Shards < 0 {
		return bencherror.Newf(bencherror.BENCH_CONFIG, "shard count must not be negative, got %d", c.Shards)
	}
	if c.Replicas < 1 {
		return bencherror.Newf(bencherror.BENCH_CONFIG, "replica count must be at least 1, got %d", c.Replicas)
	}
	return nil
}
