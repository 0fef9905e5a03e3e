package priceset

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/xenking/mall-pricing/internal/domain/priceset"

// Metrics records price set outcomes.
type Metrics struct {
	created metric.Int64Counter
	failed  metric.Int64Counter
}

// NewMetrics registers the price set counters on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)

	created, err := meter.Int64Counter("pricing.sets.created",
		metric.WithDescription("Price sets derived and persisted"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "created counter")
	}
	failed, err := meter.Int64Counter("pricing.sets.failed",
		metric.WithDescription("Price set calculations that failed, by kind"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed counter")
	}

	return &Metrics{created: created, failed: failed}, nil
}

func (m *Metrics) recordCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.created.Add(ctx, 1)
}

func (m *Metrics) recordFailed(ctx context.Context, kind ErrorKind) {
	if m == nil {
		return
	}
	m.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
}
