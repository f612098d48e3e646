package captioning

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const scopeName = "github.com/koscakluka/ema-captions/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

type controllerMetrics struct {
	finalized metric.Int64Counter
	restarts  metric.Int64Counter
	failures  metric.Int64Counter
}

func newControllerMetrics() controllerMetrics {
	return controllerMetrics{
		finalized: int64Counter("captioning.captions.finalized", "Finalized captions appended to the caption log"),
		restarts:  int64Counter("captioning.source.restarts", "Automatic restarts of the recognition source"),
		failures:  int64Counter("captioning.source.failures", "Fatal recognition errors and failed restarts"),
	}
}

func int64Counter(name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		logger.Warn("failed to create counter", "name", name, "error", err)
		return noop.Int64Counter{}
	}
	return counter
}
