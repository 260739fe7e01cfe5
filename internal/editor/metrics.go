package editor

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/NeRF-or-Nothing/EnvironmentCreator/internal/editor"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	commits  metric.Int64Counter
	failures metric.Int64Counter
	skipped  metric.Int64Counter
}

// newMetrics uses the global OTel meter (no-op if not configured).
func newMetrics() (*metrics, error) {
	m := meter()
	var (
		mt  metrics
		err error
	)

	mt.commits, err = m.Int64Counter(
		"editor.objects.committed",
		metric.WithDescription("Create and update calls confirmed by the server"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating commit counter: %w", err)
	}

	mt.failures, err = m.Int64Counter(
		"editor.objects.commit_failures",
		metric.WithDescription("Create and update calls that failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failure counter: %w", err)
	}

	mt.skipped, err = m.Int64Counter(
		"editor.load.skipped",
		metric.WithDescription("Loaded records skipped for a sentinel or duplicate identity"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating skipped counter: %w", err)
	}

	return &mt, nil
}

func (m *metrics) commit(ctx context.Context, op string, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("op", op))
	if err != nil {
		m.failures.Add(ctx, 1, attrs)
		return
	}
	m.commits.Add(ctx, 1, attrs)
}

func (m *metrics) skip(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
