// Package pipeline orchestrates the two operations of the engine: ingest
// (source to store) and forecast (fit, predict, evaluate, persist). Every
// external I/O step runs under a timeout and a bounded retry policy.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/gridcast/gridcast/internal/config"
	"github.com/gridcast/gridcast/internal/evaluate"
	"github.com/gridcast/gridcast/internal/events"
	"github.com/gridcast/gridcast/internal/forecast"
	"github.com/gridcast/gridcast/internal/logging"
	"github.com/gridcast/gridcast/internal/model"
	"github.com/gridcast/gridcast/internal/source"
	"github.com/gridcast/gridcast/internal/store"
	"github.com/gridcast/gridcast/internal/timeseries"
	"github.com/gridcast/gridcast/internal/utils"
)

// defaultHistoryStart is the first period fetched when a region has no
// stored observations. The EIA monthly retail-sales series begins in 2001.
var defaultHistoryStart = timeseries.NewPeriod(2001, time.January)

// revisionLookbackMonths is how many already-stored trailing months each
// ingest refetches. The provider revises recent months after first
// publication, and interpolated fills are replaced once real values appear.
const revisionLookbackMonths = 3

// Orchestrator runs ingest and forecast operations for one or more regions.
type Orchestrator struct {
	store  store.Store
	source source.Source
	events events.Publisher
	logger *logging.Logger
	cfg    config.PipelineConfig

	// now is swappable for tests.
	now func() time.Time
}

// New creates an Orchestrator.
func New(st store.Store, src source.Source, pub events.Publisher, logger *logging.Logger, cfg config.PipelineConfig) *Orchestrator {
	if logger == nil {
		logger = logging.Global()
	}
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = utils.DefaultStepTimeout
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = utils.DefaultRetryBackoff
	}
	if len(cfg.Windows) == 0 {
		cfg.Windows = evaluate.DefaultWindows
	}

	return &Orchestrator{
		store:  st,
		source: src,
		events: pub,
		logger: logger,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RunIngest fetches observations from the source, aligns them with stored
// history, and upserts the result. When a previously stored value changed
// (a provider revision or an interpolated fill replaced by a real value),
// forecasts fit on that history are marked stale. Identical re-ingest
// leaves store state unchanged.
func (o *Orchestrator) RunIngest(ctx context.Context, region string, start, end *timeseries.Period) (Result, error) {
	res := Result{
		RunID:     uuid.New().String(),
		Op:        OpIngest,
		Region:    region,
		StartedAt: o.now(),
	}
	log := o.logger.With("run_id", res.RunID, "op", OpIngest, "region", region)
	log.Info("Ingest run started")

	var stored []timeseries.Observation
	err := o.withRetry(ctx, func(c context.Context) error {
		var e error
		stored, e = o.store.ReadSeries(c, region)
		return e
	})
	if err != nil {
		return o.finish(ctx, log, res, fmt.Errorf("read stored series: %w", err))
	}

	fetchStart, fetchEnd := o.fetchRange(stored, start, end)

	var fetched []timeseries.Observation
	if !fetchEnd.Before(fetchStart) {
		err = o.withRetry(ctx, func(c context.Context) error {
			var e error
			fetched, e = o.source.FetchRange(c, region, fetchStart, fetchEnd)
			return retryable(e)
		})
		if err != nil {
			return o.finish(ctx, log, res, fmt.Errorf("fetch %s..%s: %w", fetchStart, fetchEnd, err))
		}
	}

	if len(stored) == 0 && len(fetched) == 0 {
		res.Status = StatusNoData
		res.Message = fmt.Sprintf("source has no observations for %s", region)
		return o.finish(ctx, log, res, nil)
	}

	combined, revisedFrom := merge(stored, fetched)

	aligned, err := timeseries.Align(combined, timeseries.AlignOptions{GapTolerance: o.cfg.GapTolerance})
	if err != nil {
		// Alignment failures abort the run with no writes.
		return o.finish(ctx, log, res, fmt.Errorf("align series: %w", err))
	}

	var written int
	err = o.withRetry(ctx, func(c context.Context) error {
		var e error
		written, e = o.store.UpsertObservations(c, region, aligned)
		return e
	})
	if err != nil {
		return o.finish(ctx, log, res, fmt.Errorf("upsert observations: %w", err))
	}
	res.Observations = written

	if revisedFrom != nil {
		var staleForecasts int
		err = o.withRetry(ctx, func(c context.Context) error {
			var e error
			staleForecasts, e = o.store.MarkForecastsStale(c, region, *revisedFrom)
			return e
		})
		if err != nil {
			return o.finish(ctx, log, res, fmt.Errorf("mark forecasts stale: %w", err))
		}

		var staleMetrics int
		err = o.withRetry(ctx, func(c context.Context) error {
			var e error
			staleMetrics, e = o.store.MarkMetricsStale(c, region, *revisedFrom)
			return e
		})
		if err != nil {
			return o.finish(ctx, log, res, fmt.Errorf("mark metrics stale: %w", err))
		}

		log.Warn("Historical values revised",
			"revised_from", revisedFrom.String(),
			"forecasts_marked_stale", staleForecasts,
			"metrics_marked_stale", staleMetrics,
		)
	}

	res.Status = StatusOK
	return o.finish(ctx, log, res, nil)
}

// RunForecast fits both models on the stored series, writes one forecast
// record per model for the month after the fit window, evaluates accuracy
// over the trailing windows, and persists the fitted model artifacts.
// Insufficient history is a soft outcome: nothing is written.
func (o *Orchestrator) RunForecast(ctx context.Context, region string, asOf *timeseries.Period) (Result, error) {
	res := Result{
		RunID:     uuid.New().String(),
		Op:        OpForecast,
		Region:    region,
		StartedAt: o.now(),
	}
	log := o.logger.With("run_id", res.RunID, "op", OpForecast, "region", region)
	log.Info("Forecast run started")

	var stored []timeseries.Observation
	err := o.withRetry(ctx, func(c context.Context) error {
		var e error
		stored, e = o.store.ReadSeries(c, region)
		return e
	})
	if err != nil {
		return o.finish(ctx, log, res, fmt.Errorf("read stored series: %w", err))
	}
	if len(stored) == 0 {
		res.Status = StatusNoData
		res.Message = fmt.Sprintf("no stored observations for %s", region)
		return o.finish(ctx, log, res, nil)
	}

	series, err := timeseries.Align(stored, timeseries.AlignOptions{GapTolerance: o.cfg.GapTolerance})
	if err != nil {
		return o.finish(ctx, log, res, fmt.Errorf("align stored series: %w", err))
	}

	at := series.End()
	if asOf != nil {
		if asOf.Before(series.Start()) || asOf.After(series.End()) {
			return o.finish(ctx, log, res,
				fmt.Errorf("as_of %s outside stored range %s..%s", asOf, series.Start(), series.End()))
		}
		at = *asOf
	}

	models, err := model.Fit(series, at)
	if err != nil {
		var insufficient *model.InsufficientHistoryError
		if errors.As(err, &insufficient) {
			res.Status = StatusInsufficientHistory
			res.Message = insufficient.Error()
			return o.finish(ctx, log, res, nil)
		}
		return o.finish(ctx, log, res, fmt.Errorf("fit models: %w", err))
	}

	records, err := forecast.OneStep(region, models, o.now())
	if err != nil {
		return o.finish(ctx, log, res, fmt.Errorf("forecast: %w", err))
	}

	var written int
	err = o.withRetry(ctx, func(c context.Context) error {
		var e error
		written, e = o.store.UpsertForecasts(c, records)
		return e
	})
	if err != nil {
		return o.finish(ctx, log, res, fmt.Errorf("upsert forecasts: %w", err))
	}
	res.Forecasts = written

	// Evaluate against the full forecast history so past one-step
	// predictions score as their actuals arrive.
	var history []forecast.Record
	err = o.withRetry(ctx, func(c context.Context) error {
		var e error
		history, e = o.store.ReadForecasts(c, region)
		return e
	})
	if err != nil {
		return o.finish(ctx, log, res, fmt.Errorf("read forecast history: %w", err))
	}

	metrics := evaluate.Evaluate(region, history, series, at, o.cfg.Windows)
	err = o.withRetry(ctx, func(c context.Context) error {
		var e error
		written, e = o.store.UpsertMetrics(c, metrics)
		return e
	})
	if err != nil {
		return o.finish(ctx, log, res, fmt.Errorf("upsert metrics: %w", err))
	}
	res.Metrics = written

	for kind, fitted := range models {
		artifact, err := model.EncodeArtifact(fitted)
		if err != nil {
			return o.finish(ctx, log, res, fmt.Errorf("encode %s artifact: %w", kind, err))
		}
		err = o.withRetry(ctx, func(c context.Context) error {
			return o.store.SaveModelArtifact(c, region, kind, artifact)
		})
		if err != nil {
			return o.finish(ctx, log, res, fmt.Errorf("save %s artifact: %w", kind, err))
		}
	}

	res.Status = StatusOK
	return o.finish(ctx, log, res, nil)
}

// fetchRange resolves the inclusive fetch range for an ingest run. Explicit
// bounds win; otherwise the run catches up from the stored history, looking
// back over recent months to pick up provider revisions.
func (o *Orchestrator) fetchRange(stored []timeseries.Observation, start, end *timeseries.Period) (timeseries.Period, timeseries.Period) {
	fetchEnd := timeseries.PeriodFromTime(o.now())
	if end != nil {
		fetchEnd = *end
	}

	var fetchStart timeseries.Period
	switch {
	case start != nil:
		fetchStart = *start
	case len(stored) > 0:
		fetchStart = stored[len(stored)-1].Period.AddMonths(-(revisionLookbackMonths - 1))
	default:
		fetchStart = defaultHistoryStart
	}

	return fetchStart, fetchEnd
}

// merge overlays fetched observations on stored ones and reports the
// earliest stored period whose value changed, if any.
func merge(stored, fetched []timeseries.Observation) ([]timeseries.Observation, *timeseries.Period) {
	byPeriod := make(map[timeseries.Period]timeseries.Observation, len(stored)+len(fetched))
	for _, obs := range stored {
		byPeriod[obs.Period] = obs
	}

	var revisedFrom *timeseries.Period
	for _, obs := range fetched {
		if prev, ok := byPeriod[obs.Period]; ok && prev.Value != obs.Value {
			if revisedFrom == nil || obs.Period.Before(*revisedFrom) {
				p := obs.Period
				revisedFrom = &p
			}
		}
		byPeriod[obs.Period] = obs
	}

	combined := make([]timeseries.Observation, 0, len(byPeriod))
	for _, obs := range byPeriod {
		combined = append(combined, obs)
	}

	return combined, revisedFrom
}

// withRetry runs fn under the step timeout, retrying transient failures
// with exponential backoff up to the configured attempt limit.
func (o *Orchestrator) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = o.cfg.RetryBackoff
	policy.MaxInterval = utils.MaxRetryBackoff

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(o.cfg.MaxRetries)), ctx)

	return backoff.Retry(func() error {
		stepCtx, cancel := context.WithTimeout(ctx, o.cfg.StepTimeout)
		defer cancel()
		return fn(stepCtx)
	}, b)
}

// retryable converts upstream errors that are not worth retrying (client
// errors like a bad API key) into permanent backoff failures.
func retryable(err error) error {
	if err == nil {
		return nil
	}
	var upstream *source.UpstreamError
	if errors.As(err, &upstream) && !upstream.Temporary() {
		return backoff.Permanent(err)
	}
	return err
}

// finish stamps the result, logs the outcome, and publishes it to the
// events broker. Publish failures are logged, never fatal.
func (o *Orchestrator) finish(ctx context.Context, log *logging.Logger, res Result, err error) (Result, error) {
	res.DurationMs = time.Since(res.StartedAt).Milliseconds()
	if err != nil {
		res.Status = StatusFailed
		res.Message = err.Error()
	}

	switch res.Status {
	case StatusOK:
		log.Info("Run completed",
			"status", res.Status,
			"observations", res.Observations,
			"forecasts", res.Forecasts,
			"metrics", res.Metrics,
			"duration_ms", res.DurationMs,
		)
	case StatusFailed:
		log.Error("Run failed", "error", err, "duration_ms", res.DurationMs)
	default:
		log.Warn("Run ended without writes", "status", res.Status, "message", res.Message)
	}

	if payload, marshalErr := json.Marshal(res); marshalErr == nil {
		if pubErr := o.events.Publish(ctx, events.RunSubject(string(res.Op)), payload); pubErr != nil {
			log.Warn("Failed to publish run event", "error", pubErr)
		}
	}

	return res, err
}
