package bencherror_test

import (
	"fmt"
	"io"
	"testing"

	"github.com/pg-sharding/shardbench/pkg/models/bencherror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessageIncludesCodeDescription(t *testing.T) {
	assert := assert.New(t)

	err := bencherror.Newf(bencherror.BENCH_CONFIG, "server count must be positive, got %d", 0)
	assert.Equal("Configuration error: server count must be positive, got 0", err.Error())

	err = bencherror.New("BOGUS", "boom")
	assert.Equal("Unexpected error: boom", err.Error())
}

func TestIsFollowsWrapChain(t *testing.T) {
	assert := assert.New(t)

	base := bencherror.New(bencherror.BENCH_INIT, "status 500")
	wrapped := errors.Wrap(base, "run 4 Shards, 6 Servers, 3 Replicas")
	wrappedTwice := fmt.Errorf("harness: %w", wrapped)

	assert.True(bencherror.Is(wrappedTwice, bencherror.BENCH_INIT))
	assert.False(bencherror.Is(wrappedTwice, bencherror.BENCH_CONFIG))
	assert.False(bencherror.Is(io.EOF, bencherror.BENCH_INIT))
	assert.False(bencherror.Is(nil, bencherror.BENCH_INIT))
}

func TestUnwrap(t *testing.T) {
	inner := io.ErrUnexpectedEOF
	err := &bencherror.BenchError{Err: inner, ErrorCode: bencherror.BENCH_RECORD}
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
