package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
)

const instrumentationName = "github.com/NeRF-or-Nothing/EnvironmentCreator/internal/services"

type serviceMetrics struct {
	published metric.Int64Counter
	dropped   metric.Int64Counter
}

// newServiceMetrics uses the global OTel meter. Instruments that cannot be created fall back to no-ops.
func newServiceMetrics(logger *log.Logger) serviceMetrics {
	m := otel.Meter(instrumentationName)
	sm := serviceMetrics{published: noop.Int64Counter{}, dropped: noop.Int64Counter{}}

	if c, err := m.Int64Counter("services.events.published", metric.WithDescription("Change events delivered to the broker")); err == nil {
		sm.published = c
	} else {
		logger.Warnf("Creating published counter: %v", err)
	}
	if c, err := m.Int64Counter("services.events.dropped", metric.WithDescription("Change events that could not be delivered")); err == nil {
		sm.dropped = c
	} else {
		logger.Warnf("Creating dropped counter: %v", err)
	}
	return sm
}

func (m serviceMetrics) event(ctx context.Context, eventType string, err error) {
	attrs := metric.WithAttributes(attribute.String("type", eventType))
	if err != nil {
		m.dropped.Add(ctx, 1, attrs)
		return
	}
	m.published.Add(ctx, 1, attrs)
}
