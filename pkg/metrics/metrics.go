// Package metrics defines the OpenTelemetry instruments of the density map
// service and the Prometheus-backed meter provider exporting them.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// ResultBuckets bounds the number of towns returned by one aggregation.
var ResultBuckets = []float64{0, 10, 50, 100, 250, 500, 1000, 2000} //nolint: gochecknoglobals

const meterName = "densitymap"

// NewMeterProvider returns a meter provider whose instruments are exported
// through reg, to be scraped with promhttp.
func NewMeterProvider(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

// Instruments groups the service instruments. A nil *Instruments is valid
// and records nothing.
type Instruments struct {
	cacheLoads        metric.Int64Counter
	cacheLoadDuration metric.Float64Histogram
	shardFailures     metric.Int64Counter
	featureRejects    metric.Int64Counter
	aggregations      metric.Float64Histogram
	aggregateResults  metric.Int64Histogram
	geometryGaps      metric.Int64Counter
}

// NewInstruments creates the instruments on mp.
func NewInstruments(mp metric.MeterProvider) (*Instruments, error) {
	m := mp.Meter(meterName)
	var (
		in  Instruments
		err error
	)

	if in.cacheLoads, err = m.Int64Counter("densitymap_cache_loads",
		metric.WithDescription("Cache load attempts by cache and outcome.")); err != nil {
		return nil, fmt.Errorf("cache loads counter: %w", err)
	}
	if in.cacheLoadDuration, err = m.Float64Histogram("densitymap_cache_load_duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of cache loads."),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...)); err != nil {
		return nil, fmt.Errorf("cache load histogram: %w", err)
	}
	if in.shardFailures, err = m.Int64Counter("densitymap_boundary_shard_failures",
		metric.WithDescription("Boundary shards that could not be read or decoded.")); err != nil {
		return nil, fmt.Errorf("shard failures counter: %w", err)
	}
	if in.featureRejects, err = m.Int64Counter("densitymap_boundary_feature_rejects",
		metric.WithDescription("Source features rejected while building boundary shards.")); err != nil {
		return nil, fmt.Errorf("feature rejects counter: %w", err)
	}
	if in.aggregations, err = m.Float64Histogram("densitymap_aggregate_duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of density aggregations."),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...)); err != nil {
		return nil, fmt.Errorf("aggregate histogram: %w", err)
	}
	if in.aggregateResults, err = m.Int64Histogram("densitymap_aggregate_results",
		metric.WithDescription("Towns returned by an aggregation."),
		metric.WithExplicitBucketBoundaries(ResultBuckets...)); err != nil {
		return nil, fmt.Errorf("aggregate results histogram: %w", err)
	}
	if in.geometryGaps, err = m.Int64Counter("densitymap_aggregate_geometry_gaps",
		metric.WithDescription("Density entries dropped because their commune has no boundary.")); err != nil {
		return nil, fmt.Errorf("geometry gaps counter: %w", err)
	}

	return &in, nil
}

// CacheLoaded records one cache load attempt. Its signature matches
// cache.Options.OnLoad.
func (in *Instruments) CacheLoaded(ctx context.Context, name string, took time.Duration, err error) {
	if in == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(attribute.String("cache", name), attribute.String("outcome", outcome))
	in.cacheLoads.Add(ctx, 1, attrs)
	in.cacheLoadDuration.Record(ctx, took.Seconds(), attrs)
}

// ShardFailed records a boundary shard skipped during a load.
func (in *Instruments) ShardFailed(ctx context.Context, shard string) {
	if in == nil {
		return
	}
	in.shardFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("shard", shard)))
}

// FeatureRejected records a source feature rejected at build time.
func (in *Instruments) FeatureRejected(ctx context.Context, reason string) {
	if in == nil {
		return
	}
	in.featureRejects.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// Aggregated records one aggregation run.
func (in *Instruments) Aggregated(ctx context.Context, profession string, took time.Duration, results, gaps int) {
	if in == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("profession", profession))
	in.aggregations.Record(ctx, took.Seconds(), attrs)
	in.aggregateResults.Record(ctx, int64(results), attrs)
	if gaps > 0 {
		in.geometryGaps.Add(ctx, int64(gaps), attrs)
	}
}
