package record

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pg-sharding/shardbench/pkg/models/bencherror"
)

const (
	separator     = " - Write Time: "
	readSeparator = ", Read Time: "

	// lineFormat is {config} - Write Time: {write}, Read Time: {read}
	lineFormat = "%s" + separator + "%s" + readSeparator + "%s"
)

// Entry holds mean latencies in seconds.
type Entry struct {
	Write float64
	Read  float64
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// EncodeLine renders one record line without the trailing newline.
func EncodeLine(key string, e Entry) (string, error) {
	if key == "" {
		return "", bencherror.New(bencherror.BENCH_RECORD, "empty configuration key")
	}
	if strings.Contains(key, separator) || strings.ContainsAny(key, "\r\n") {
		return "", bencherror.Newf(bencherror.BENCH_RECORD, "configuration key %q contains a record separator", key)
	}
	if err := checkLatency(e.Write); err != nil {
		return "", err
	}
	if err := checkLatency(e.Read); err != nil {
		return "", err
	}
	return fmt.Sprintf(lineFormat, key, formatFloat(e.Write), formatFloat(e.Read)), nil
}

// DecodeLine is the inverse of EncodeLine.
func DecodeLine(line string) (string, Entry, error) {
	idx := strings.LastIndex(line, separator)
	if idx <= 0 {
		return "", Entry{}, bencherror.Newf(bencherror.BENCH_RECORD, "missing %q", strings.TrimSpace(separator))
	}
	key, rest := line[:idx], line[idx+len(separator):]

	parts := strings.Split(rest, readSeparator)
	if len(parts) != 2 {
		return "", Entry{}, bencherror.Newf(bencherror.BENCH_RECORD, "expected exactly one %q", strings.TrimSpace(readSeparator))
	}

	var e Entry
	var err error
	if e.Write, err = parseLatency(parts[0]); err != nil {
		return "", Entry{}, err
	}
	if e.Read, err = parseLatency(parts[1]); err != nil {
		return "", Entry{}, err
	}
	return key, e, nil
}

func parseLatency(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, bencherror.Newf(bencherror.BENCH_RECORD, "bad latency %q", s)
	}
	if err := checkLatency(v); err != nil {
		return 0, err
	}
	return v, nil
}

func checkLatency(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return bencherror.Newf(bencherror.BENCH_RECORD, "latency %v is not a non-negative number", v)
	}
	return nil
}
