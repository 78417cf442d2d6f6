package record

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pg-sharding/shardbench/pkg/benchlog"
	"github.com/pg-sharding/shardbench/pkg/models/bencherror"
	"github.com/pg-sharding/shardbench/pkg/models/topology"
)

type Kind string

const (
	WriteKind = Kind("write")
	ReadKind  = Kind("read")
)

type Point struct {
	Label string
	Value float64
}

// PerformanceRecord maps configuration keys to mean latencies. Keys keep
// the order of their first appearance.
type PerformanceRecord struct {
	entries map[string]Entry
	order   []string
	pending []string
	dirty   map[string]bool
}

func New() *PerformanceRecord {
	return &PerformanceRecord{
		entries: map[string]Entry{},
		dirty:   map[string]bool{},
	}
}

// Record stores or overwrites the latencies of cfg.
func (r *PerformanceRecord) Record(cfg topology.Configuration, write, read float64) {
	r.set(cfg.Key(), Entry{Write: write, Read: read})
}

func (r *PerformanceRecord) set(key string, e Entry) {
	if _, ok := r.entries[key]; !ok {
		r.order = append(r.order, key)
	}
	r.entries[key] = e
	if !r.dirty[key] {
		r.dirty[key] = true
		r.pending = append(r.pending, key)
	}
}

func (r *PerformanceRecord) Get(key string) (Entry, bool) {
	e, ok := r.entries[key]
	return e, ok
}

func (r *PerformanceRecord) Keys() []string {
	return append([]string(nil), r.order...)
}

func (r *PerformanceRecord) Len() int {
	return len(r.order)
}

// Pending returns the keys recorded since the last successful Persist.
func (r *PerformanceRecord) Pending() []string {
	return append([]string(nil), r.pending...)
}

func (r *PerformanceRecord) Series(kind Kind) []Point {
	res := make([]Point, 0, len(r.order))
	for _, key := range r.order {
		e := r.entries[key]
		v := e.Write
		if kind == ReadKind {
			v = e.Read
		}
		res = append(res, Point{Label: key, Value: v})
	}
	return res
}

// Persist appends a line for every configuration recorded since the
// previous successful Persist. The file is created if absent.
func (r *PerformanceRecord) Persist(path string) error {
	if len(r.pending) == 0 {
		return nil
	}

	var sb strings.Builder
	for _, key := range r.pending {
		line, err := EncodeLine(key, r.entries[key])
		if err != nil {
			return err
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	if err := flush(path, sb.String()); err != nil {
		return err
	}

	benchlog.Zero.Debug().
		Str("path", path).
		Int("lines", len(r.pending)).
		Msg("performance record persisted")

	r.pending = nil
	r.dirty = map[string]bool{}
	return nil
}

func flush(path string, data string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(data); err != nil {
		return err
	}
	return f.Sync()
}

// Reload rebuilds a record from the file at path. The file must exist.
// Blank lines are skipped, a malformed line fails the whole reload and
// later lines win over earlier ones for the same configuration.
func Reload(path string) (*PerformanceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := New()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, e, err := DecodeLine(line)
		if err != nil {
			return nil, &bencherror.BenchError{
				Err:       fmt.Errorf("%s:%d: %w", path, lineNo, errors.Unwrap(err)),
				ErrorCode: bencherror.BENCH_RECORD,
			}
		}
		r.set(key, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	r.pending = nil
	r.dirty = map[string]bool{}
	return r, nil
}
