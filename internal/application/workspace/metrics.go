package workspace

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("vaultgraph/workspace")

type metrics struct {
	merged   metric.Int64Counter
	added    metric.Int64Counter
	refresh  metric.Int64Counter
	layout   metric.Float64Histogram
	disabled bool
}

var (
	sharedMetrics *metrics
	metricsOnce   sync.Once
)

// newMetrics returns the process-wide instruments. Instrument creation
// failures disable recording instead of failing the workspace.
func newMetrics() *metrics {
	metricsOnce.Do(func() {
		m := &metrics{}
		var err error
		if m.merged, err = meter.Int64Counter("vaultgraph_elements_merged_total",
			metric.WithDescription("Elements present after merges")); err != nil {
			sharedMetrics = &metrics{disabled: true}
			return
		}
		if m.added, err = meter.Int64Counter("vaultgraph_elements_added_total",
			metric.WithDescription("Elements inserted by merges")); err != nil {
			sharedMetrics = &metrics{disabled: true}
			return
		}
		if m.refresh, err = meter.Int64Counter("vaultgraph_refresh_total",
			metric.WithDescription("Document changes applied to workspaces")); err != nil {
			sharedMetrics = &metrics{disabled: true}
			return
		}
		if m.layout, err = meter.Float64Histogram("vaultgraph_layout_duration_seconds",
			metric.WithDescription("Duration of completed layouts"),
			metric.WithUnit("s")); err != nil {
			sharedMetrics = &metrics{disabled: true}
			return
		}
		sharedMetrics = m
	})
	return sharedMetrics
}

func (m *metrics) recordMerge(ctx context.Context, merged, added int) {
	if m.disabled {
		return
	}
	m.merged.Add(ctx, int64(merged))
	m.added.Add(ctx, int64(added))
}

func (m *metrics) recordRefresh(ctx context.Context, kind string, ok bool) {
	if m.disabled {
		return
	}
	m.refresh.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("success", ok),
	))
}

func (m *metrics) recordLayout(ctx context.Context, name string, d time.Duration) {
	if m.disabled {
		return
	}
	m.layout.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("layout", name)))
}
