package benchlog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZeroLogger_JSONWhenNotPretty(t *testing.T) {
	var buf bytes.Buffer

	logger := NewZeroLogger("info", false)
	l := logger.Output(&buf)
	l.Info().Msg("test message")

	out := buf.String()

	if !strings.Contains(out, `"level":"info"`) {
		t.Fatalf("expected JSON output with level field, got: %s", out)
	}
	if !strings.Contains(out, `"message":"test message"`) {
		t.Fatalf("expected JSON output with message field, got: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(zerolog.ErrorLevel, parseLevel("error"))
	assert.Equal(zerolog.Disabled, parseLevel("disabled"))
	assert.Equal(zerolog.InfoLevel, parseLevel("nonsense"))
}

func TestReloadLoggerWritesToFile(t *testing.T) {
	prev := Zero
	defer func() { Zero = prev }()

	path := filepath.Join(t.TempDir(), "bench.log")
	require.NoError(t, ReloadLogger(path, "info", false))
	Zero.Info().Str("config", "4 Shards, 6 Servers, 3 Replicas").Msg("run finished")
	require.NoError(t, ReloadLogger("", "info", false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"config":"4 Shards, 6 Servers, 3 Replicas"`)
}
