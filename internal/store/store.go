// Package store persists observations, forecasts, evaluation metrics, and
// fitted model artifacts. The postgres backend is the production store; the
// memory backend serves tests and local development.
package store

import (
	"context"
	"errors"

	"github.com/gridcast/gridcast/internal/evaluate"
	"github.com/gridcast/gridcast/internal/forecast"
	"github.com/gridcast/gridcast/internal/model"
	"github.com/gridcast/gridcast/internal/timeseries"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence interface for the forecasting engine. All writes
// are idempotent upserts keyed on the natural keys of each record type:
// (region, period) for observations, (region, target_period, model_kind)
// for forecasts, and (region, model_kind, window, as_of_period) for metrics.
type Store interface {
	// ReadSeries returns all stored observations for a region in
	// ascending period order.
	ReadSeries(ctx context.Context, region string) ([]timeseries.Observation, error)

	// LatestPeriod returns the most recent stored period for a region.
	// The second return is false when the region has no observations.
	LatestPeriod(ctx context.Context, region string) (timeseries.Period, bool, error)

	// UpsertObservations inserts or updates observations for a region
	// and returns the number of rows written.
	UpsertObservations(ctx context.Context, region string, obs []timeseries.Observation) (int, error)

	// UpsertForecasts inserts or updates forecast records and returns
	// the number of rows written. Rewriting a record clears its stale flag.
	UpsertForecasts(ctx context.Context, records []forecast.Record) (int, error)

	// ReadForecasts returns all forecast records for a region ordered by
	// target period, then model kind.
	ReadForecasts(ctx context.Context, region string) ([]forecast.Record, error)

	// MarkForecastsStale flags every forecast for a region whose fit
	// window ends at or after the given period, and returns the number
	// of rows flagged. Used when ingest revises historical observations.
	MarkForecastsStale(ctx context.Context, region string, from timeseries.Period) (int, error)

	// UpsertMetrics inserts or updates evaluation metrics and returns
	// the number of rows written. Rewriting a metric clears its stale flag.
	UpsertMetrics(ctx context.Context, metrics []evaluate.Metric) (int, error)

	// MarkMetricsStale flags every metric for a region whose as-of
	// period is at or after the given period, and returns the number of
	// rows flagged. A trailing window ending there may pair a revised
	// actual, or a forecast fit on one.
	MarkMetricsStale(ctx context.Context, region string, from timeseries.Period) (int, error)

	// ReadMetrics returns metric history for a region with as-of periods
	// inside the inclusive range, ordered by as-of period, model kind,
	// then window length. Nil bounds are unbounded.
	ReadMetrics(ctx context.Context, region string, start, end *timeseries.Period) ([]evaluate.Metric, error)

	// LatestMetrics returns the metrics for a region at its most recent
	// as-of period, ordered by model kind, then window length.
	LatestMetrics(ctx context.Context, region string) ([]evaluate.Metric, error)

	// SaveModelArtifact stores the encoded fitted model for a region and
	// kind, replacing any previous artifact.
	SaveModelArtifact(ctx context.Context, region string, kind model.Kind, artifact []byte) error

	// LoadModelArtifact returns the stored artifact for a region and
	// kind, or ErrNotFound.
	LoadModelArtifact(ctx context.Context, region string, kind model.Kind) ([]byte, error)

	// Ping verifies connectivity to the backend.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close()
}
