package record

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pg-sharding/shardbench/pkg/models/bencherror"
	"github.com/pg-sharding/shardbench/pkg/models/topology"
)

func TestEncodeLine(t *testing.T) {
	assert := assert.New(t)

	line, err := EncodeLine("4 Shards, 6 Servers, 3 Replicas", Entry{Write: 0.01, Read: 0.02})
	assert.NoError(err)
	assert.Equal("4 Shards, 6 Servers, 3 Replicas - Write Time: 0.01, Read Time: 0.02", line)

	line, err = EncodeLine("1 Shards, 1 Servers, 1 Replicas", Entry{Write: 0.0012345678901234567, Read: 0})
	assert.NoError(err)
	key, e, err := DecodeLine(line)
	assert.NoError(err)
	assert.Equal("1 Shards, 1 Servers, 1 Replicas", key)
	assert.Equal(0.0012345678901234567, e.Write)
	assert.Equal(0.0, e.Read)
}

func TestEncodeLineRejects(t *testing.T) {
	for _, tt := range []struct {
		name  string
		key   string
		entry Entry
	}{
		{name: "empty key", key: ""},
		{name: "separator in key", key: "a - Write Time: b"},
		{name: "newline in key", key: "a\nb"},
		{name: "negative latency", key: "k", entry: Entry{Write: -1}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeLine(tt.key, tt.entry)
			assert.True(t, bencherror.Is(err, bencherror.BENCH_RECORD))
		})
	}
}

func TestDecodeLineRejects(t *testing.T) {
	for _, line := range []string{
		"garbage",
		" - Write Time: 1, Read Time: 2",
		"k - Write Time: 1",
		"k - Write Time: 1, Read Time: 2, Read Time: 3",
		"k - Write Time: x, Read Time: 2",
		"k - Write Time: 1, Read Time: -2",
		"k - Write Time: NaN, Read Time: 2",
	} {
		_, _, err := DecodeLine(line)
		assert.True(t, bencherror.Is(err, bencherror.BENCH_RECORD), line)
	}
}

func TestPersistReloadRoundTrip(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "performance_data.txt")

	rec := New()
	rec.Record(topology.Configuration{Shards: 4, Servers: 6, Replicas: 3}, 0.01, 0.02)
	rec.Record(topology.Configuration{Shards: 2, Servers: 3, Replicas: 1}, 0.1, 0.2)
	rec.Record(topology.Configuration{Shards: 8, Servers: 4, Replicas: 2}, 1.0/3.0, 2.0/3.0)
	require.NoError(t, rec.Persist(path))

	got, err := Reload(path)
	require.NoError(t, err)
	assert.Equal(rec.Keys(), got.Keys())
	for _, key := range rec.Keys() {
		want, _ := rec.Get(key)
		e, ok := got.Get(key)
		assert.True(ok)
		assert.Equal(want, e)
	}
	assert.Empty(got.Pending())
}

func TestPersistInSequence(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "performance_data.txt")

	rec := New()
	rec.Record(topology.Configuration{Shards: 4, Servers: 6, Replicas: 3}, 0.011, 0.012)
	require.NoError(t, rec.Persist(path))
	rec.Record(topology.Configuration{Shards: 4, Servers: 6, Replicas: 6}, 0.021, 0.022)
	require.NoError(t, rec.Persist(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal("4 Shards, 6 Servers, 3 Replicas - Write Time: 0.011, Read Time: 0.012\n"+
		"4 Shards, 6 Servers, 6 Replicas - Write Time: 0.021, Read Time: 0.022\n", string(data))

	got, err := Reload(path)
	require.NoError(t, err)
	assert.Equal(2, got.Len())

	e, ok := got.Get("4 Shards, 6 Servers, 3 Replicas")
	assert.True(ok)
	assert.Equal(Entry{Write: 0.011, Read: 0.012}, e)
	e, ok = got.Get("4 Shards, 6 Servers, 6 Replicas")
	assert.True(ok)
	assert.Equal(Entry{Write: 0.021, Read: 0.022}, e)
}

func TestPersistAppendsOnlyNew(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "performance_data.txt")

	rec := New()
	rec.Record(topology.Configuration{Shards: 1, Servers: 1, Replicas: 1}, 1, 1)
	require.NoError(t, rec.Persist(path))
	assert.Empty(rec.Pending())

	// nothing new
	require.NoError(t, rec.Persist(path))

	rec.Record(topology.Configuration{Shards: 1, Servers: 1, Replicas: 1}, 2, 2)
	assert.Equal([]string{"1 Shards, 1 Servers, 1 Replicas"}, rec.Pending())
	require.NoError(t, rec.Persist(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal("1 Shards, 1 Servers, 1 Replicas - Write Time: 1, Read Time: 1\n"+
		"1 Shards, 1 Servers, 1 Replicas - Write Time: 2, Read Time: 2\n", string(data))

	got, err := Reload(path)
	require.NoError(t, err)
	assert.Equal(1, got.Len())
	e, _ := got.Get("1 Shards, 1 Servers, 1 Replicas")
	assert.Equal(Entry{Write: 2, Read: 2}, e)
}

func TestReloadMissingFile(t *testing.T) {
	_, err := Reload(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReloadNamesLine(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "performance_data.txt")

	require.NoError(t, os.WriteFile(path, []byte(
		"4 Shards, 6 Servers, 3 Replicas - Write Time: 0.01, Read Time: 0.02\n"+
			"\n"+
			"4 Shards, 6 Servers, 6 Replicas - Write Time: oops\n"), 0644))

	_, err := Reload(path)
	assert.True(bencherror.Is(err, bencherror.BENCH_RECORD))
	assert.Contains(err.Error(), path+":3:")
}

func TestReloadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "performance_data.txt")
	require.NoError(t, os.WriteFile(path, []byte(
		"\n4 Shards, 6 Servers, 3 Replicas - Write Time: 0.01, Read Time: 0.02\r\n\n"), 0644))

	got, err := Reload(path)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}

func TestPersistErrorOnUnexistingDir(t *testing.T) {
	rec := New()
	rec.Record(topology.Configuration{Shards: 1, Servers: 1, Replicas: 1}, 1, 1)
	assert.Error(t, rec.Persist("IAmShureThereIsNoSuchDir/performance_data.txt"))
	assert.Len(t, rec.Pending(), 1)
}

func TestSeries(t *testing.T) {
	assert := assert.New(t)

	rec := New()
	rec.Record(topology.Configuration{Shards: 2, Servers: 2, Replicas: 1}, 0.5, 0.25)
	rec.Record(topology.Configuration{Shards: 1, Servers: 1, Replicas: 1}, 0.1, 0.2)

	assert.Equal([]Point{
		{Label: "2 Shards, 2 Servers, 1 Replicas", Value: 0.5},
		{Label: "1 Shards, 1 Servers, 1 Replicas", Value: 0.1},
	}, rec.Series(WriteKind))
	assert.Equal(0.2, rec.Series(ReadKind)[1].Value)
}
