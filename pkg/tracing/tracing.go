package tracing

import (
	"fmt"
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/rs/zerolog"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"

	"github.com/pg-sharding/shardbench/pkg/benchlog"
	"github.com/pg-sharding/shardbench/pkg/config"
)

const ServiceName = "shardbench"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// InitTracer installs a global jaeger tracer when enabled. Otherwise the
// opentracing no-op tracer stays in place.
func InitTracer(enabled bool, cfg config.JaegerCfg) (io.Closer, error) {
	if !enabled {
		return nopCloser{}, nil
	}

	jcfg := jaegercfg.Configuration{
		ServiceName: ServiceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:              "const",
			Param:             1,
			SamplingServerURL: cfg.JaegerUrl,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans:          false,
			CollectorEndpoint: cfg.JaegerUrl,
		},
		Gen128Bit: true,
		Tags: []opentracing.Tag{
			{Key: "span.kind", Value: "client"},
		},
	}

	return jcfg.InitGlobalTracer(
		ServiceName,
		jaegercfg.Logger(ZeroLogger{Logger: benchlog.Zero}),
		jaegercfg.Metrics(metrics.NullFactory),
	)
}

// ZeroLogger routes jaeger client messages into zerolog.
type ZeroLogger struct {
	Logger *zerolog.Logger
}

func (l ZeroLogger) Error(msg string) {
	l.Logger.Error().Str("component", "jaeger").Msg(msg)
}

func (l ZeroLogger) Infof(msg string, args ...any) {
	l.Logger.Debug().Str("component", "jaeger").Msg(fmt.Sprintf(msg, args...))
}

func (l ZeroLogger) Debugf(msg string, args ...any) {
	l.Logger.Debug().Str("component", "jaeger").Msg(fmt.Sprintf(msg, args...))
}
