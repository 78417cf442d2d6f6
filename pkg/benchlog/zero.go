package benchlog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var Zero = NewZeroLogger("info", true)

var logFile *os.File

// NewZeroLogger builds a stdout logger. With pretty set the output is a
// human readable console stream, otherwise one JSON object per line.
func NewZeroLogger(level string, pretty bool) *zerolog.Logger {
	return newLogger(os.Stdout, pretty, false, level)
}

// ReloadLogger reopens the logger on filepath. An empty path keeps stdout.
// The previously opened log file, if any, is closed.
func ReloadLogger(filepath string, level string, pretty bool) error {
	old := logFile
	f, writer, err := newWriter(filepath)
	if err != nil {
		return err
	}
	Zero = newLogger(writer, pretty, f != nil, level)
	logFile = f
	if old != nil {
		return old.Close()
	}
	return nil
}

func newLogger(writer io.Writer, pretty bool, toFile bool, level string) *zerolog.Logger {
	output := writer
	if pretty {
		output = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339, NoColor: toFile}
	}
	logger := zerolog.New(output).With().Timestamp().Logger().Level(parseLevel(level))
	return &logger
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warning", "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func newWriter(filepath string) (*os.File, io.Writer, error) {
	if filepath == "" {
		return nil, os.Stdout, nil
	}
	f, err := os.OpenFile(filepath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}
