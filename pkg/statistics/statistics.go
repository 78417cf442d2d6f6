package statistics

import (
	"time"

	"github.com/caio/go-tdigest"
)

type Phase string

const (
	Write = Phase("write")
	Read  = Phase("read")
)

// PhaseStats accumulates per-operation latencies of one workload phase.
// Failed operations are added like successful ones and counted separately.
type PhaseStats struct {
	Phase Phase

	digest   *tdigest.TDigest
	total    time.Duration
	count    int
	failures int
}

func NewPhaseStats(phase Phase) *PhaseStats {
	digest, _ := tdigest.New()
	return &PhaseStats{
		Phase:  phase,
		digest: digest,
	}
}

func (s *PhaseStats) Add(d time.Duration) {
	s.total += d
	s.count++
	_ = s.digest.Add(float64(d.Microseconds()) / 1000)
}

func (s *PhaseStats) Fail() {
	s.failures++
}

func (s *PhaseStats) Total() time.Duration {
	return s.total
}

func (s *PhaseStats) Count() int {
	return s.count
}

func (s *PhaseStats) Failures() int {
	return s.failures
}

// Mean returns total time in seconds divided by m, the number of operations
// issued, regardless of how many of them succeeded.
func (s *PhaseStats) Mean(m int) float64 {
	if m <= 0 {
		return 0
	}
	return s.total.Seconds() / float64(m)
}

// Quantile returns the q-th latency quantile, 0 when nothing was recorded.
func (s *PhaseStats) Quantile(q float64) time.Duration {
	if s.count == 0 {
		return 0
	}
	return time.Duration(s.digest.Quantile(q) * float64(time.Millisecond))
}

func (s *PhaseStats) Quantiles(qs []float64) map[float64]time.Duration {
	res := make(map[float64]time.Duration, len(qs))
	for _, q := range qs {
		res[q] = s.Quantile(q)
	}
	return res
}
