package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gridcast/gridcast/internal/evaluate"
	"github.com/gridcast/gridcast/internal/forecast"
	"github.com/gridcast/gridcast/internal/model"
	"github.com/gridcast/gridcast/internal/timeseries"
)

// PostgresStore implements Store on PostgreSQL. Periods are stored as DATE
// columns holding the first day of the month.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to connect: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// ensureSchema creates the engine's tables when they do not exist.
func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS observations (
			region       TEXT NOT NULL,
			period       DATE NOT NULL,
			value        DOUBLE PRECISION NOT NULL,
			interpolated BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (region, period)
		)`,
		`CREATE TABLE IF NOT EXISTS forecasts (
			region         TEXT NOT NULL,
			target_period  DATE NOT NULL,
			model_kind     TEXT NOT NULL,
			point          DOUBLE PRECISION NOT NULL,
			lower_bound    DOUBLE PRECISION,
			upper_bound    DOUBLE PRECISION,
			generated_at   TIMESTAMPTZ NOT NULL,
			fit_period_end DATE NOT NULL,
			stale          BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (region, target_period, model_kind)
		)`,
		`CREATE TABLE IF NOT EXISTS metrics (
			region        TEXT NOT NULL,
			model_kind    TEXT NOT NULL,
			window_months INT NOT NULL,
			as_of_period  DATE NOT NULL,
			mae           DOUBLE PRECISION NOT NULL,
			rmse          DOUBLE PRECISION NOT NULL,
			mape          DOUBLE PRECISION,
			n_used        INT NOT NULL,
			stale         BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (region, model_kind, window_months, as_of_period)
		)`,
		`CREATE TABLE IF NOT EXISTS model_artifacts (
			region     TEXT NOT NULL,
			model_kind TEXT NOT NULL,
			artifact   BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (region, model_kind)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: failed to ensure schema: %w", err)
		}
	}

	return nil
}

// ReadSeries returns all stored observations for a region in ascending
// period order.
func (s *PostgresStore) ReadSeries(ctx context.Context, region string) ([]timeseries.Observation, error) {
	query := `
		SELECT period, value, interpolated
		FROM observations
		WHERE region = $1
		ORDER BY period
	`

	rows, err := s.pool.Query(ctx, query, region)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query observations: %w", err)
	}
	defer rows.Close()

	var obs []timeseries.Observation
	for rows.Next() {
		var o timeseries.Observation
		var period time.Time
		if err := rows.Scan(&period, &o.Value, &o.Interpolated); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan observation: %w", err)
		}
		o.Period = timeseries.PeriodFromTime(period)
		obs = append(obs, o)
	}

	return obs, rows.Err()
}

// LatestPeriod returns the most recent stored period for a region.
func (s *PostgresStore) LatestPeriod(ctx context.Context, region string) (timeseries.Period, bool, error) {
	query := `SELECT max(period) FROM observations WHERE region = $1`

	var latest *time.Time
	if err := s.pool.QueryRow(ctx, query, region).Scan(&latest); err != nil {
		return timeseries.Period{}, false, fmt.Errorf("postgres: failed to query latest period: %w", err)
	}
	if latest == nil {
		return timeseries.Period{}, false, nil
	}

	return timeseries.PeriodFromTime(*latest), true, nil
}

// UpsertObservations inserts or updates observations for a region.
func (s *PostgresStore) UpsertObservations(ctx context.Context, region string, obs []timeseries.Observation) (int, error) {
	if len(obs) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO observations (region, period, value, interpolated, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (region, period) DO UPDATE
		SET value = EXCLUDED.value,
		    interpolated = EXCLUDED.interpolated,
		    updated_at = now()
	`

	batch := &pgx.Batch{}
	for _, o := range obs {
		batch.Queue(query, region, o.Period.Time(), o.Value, o.Interpolated)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for range obs {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("postgres: failed to upsert observation: %w", err)
		}
	}

	return len(obs), nil
}

// UpsertForecasts inserts or updates forecast records. Rewriting a record
// clears its stale flag.
func (s *PostgresStore) UpsertForecasts(ctx context.Context, records []forecast.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO forecasts (region, target_period, model_kind, point,
			lower_bound, upper_bound, generated_at, fit_period_end, stale)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
		ON CONFLICT (region, target_period, model_kind) DO UPDATE
		SET point = EXCLUDED.point,
		    lower_bound = EXCLUDED.lower_bound,
		    upper_bound = EXCLUDED.upper_bound,
		    generated_at = EXCLUDED.generated_at,
		    fit_period_end = EXCLUDED.fit_period_end,
		    stale = FALSE
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(query, rec.Region, rec.TargetPeriod.Time(), string(rec.Kind),
			rec.Point, rec.Lower, rec.Upper, rec.GeneratedAt, rec.FitPeriodEnd.Time())
	}

	results := s.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for range records {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("postgres: failed to upsert forecast: %w", err)
		}
	}

	return len(records), nil
}

// ReadForecasts returns all forecast records for a region.
func (s *PostgresStore) ReadForecasts(ctx context.Context, region string) ([]forecast.Record, error) {
	query := `
		SELECT target_period, model_kind, point, lower_bound, upper_bound,
		       generated_at, fit_period_end, stale
		FROM forecasts
		WHERE region = $1
		ORDER BY target_period, model_kind
	`

	rows, err := s.pool.Query(ctx, query, region)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query forecasts: %w", err)
	}
	defer rows.Close()

	var records []forecast.Record
	for rows.Next() {
		var rec forecast.Record
		var target, fitEnd time.Time
		var kind string
		if err := rows.Scan(&target, &kind, &rec.Point, &rec.Lower, &rec.Upper,
			&rec.GeneratedAt, &fitEnd, &rec.Stale); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan forecast: %w", err)
		}
		rec.Region = region
		rec.TargetPeriod = timeseries.PeriodFromTime(target)
		rec.Kind = model.Kind(kind)
		rec.FitPeriodEnd = timeseries.PeriodFromTime(fitEnd)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// MarkForecastsStale flags forecasts whose fit window ends at or after from.
func (s *PostgresStore) MarkForecastsStale(ctx context.Context, region string, from timeseries.Period) (int, error) {
	query := `
		UPDATE forecasts
		SET stale = TRUE
		WHERE region = $1 AND fit_period_end >= $2 AND NOT stale
	`

	tag, err := s.pool.Exec(ctx, query, region, from.Time())
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to mark forecasts stale: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// UpsertMetrics inserts or updates evaluation metrics. Rewriting a metric
// clears its stale flag.
func (s *PostgresStore) UpsertMetrics(ctx context.Context, metrics []evaluate.Metric) (int, error) {
	if len(metrics) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO metrics (region, model_kind, window_months, as_of_period,
			mae, rmse, mape, n_used, stale)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
		ON CONFLICT (region, model_kind, window_months, as_of_period) DO UPDATE
		SET mae = EXCLUDED.mae,
		    rmse = EXCLUDED.rmse,
		    mape = EXCLUDED.mape,
		    n_used = EXCLUDED.n_used,
		    stale = FALSE
	`

	batch := &pgx.Batch{}
	for _, m := range metrics {
		batch.Queue(query, m.Region, string(m.Kind), m.Window, m.AsOfPeriod.Time(),
			m.MAE, m.RMSE, m.MAPE, m.N)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for range metrics {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("postgres: failed to upsert metric: %w", err)
		}
	}

	return len(metrics), nil
}

// MarkMetricsStale flags metrics whose as-of period is at or after from.
func (s *PostgresStore) MarkMetricsStale(ctx context.Context, region string, from timeseries.Period) (int, error) {
	query := `
		UPDATE metrics
		SET stale = TRUE
		WHERE region = $1 AND as_of_period >= $2 AND NOT stale
	`

	tag, err := s.pool.Exec(ctx, query, region, from.Time())
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to mark metrics stale: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// ReadMetrics returns metric history for a region with as-of periods inside
// the inclusive range.
func (s *PostgresStore) ReadMetrics(ctx context.Context, region string, start, end *timeseries.Period) ([]evaluate.Metric, error) {
	query := `
		SELECT model_kind, window_months, as_of_period, mae, rmse, mape, n_used, stale
		FROM metrics
		WHERE region = $1
		  AND ($2::date IS NULL OR as_of_period >= $2)
		  AND ($3::date IS NULL OR as_of_period <= $3)
		ORDER BY as_of_period, model_kind, window_months
	`

	var startDate, endDate *time.Time
	if start != nil {
		t := start.Time()
		startDate = &t
	}
	if end != nil {
		t := end.Time()
		endDate = &t
	}

	rows, err := s.pool.Query(ctx, query, region, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query metrics: %w", err)
	}
	defer rows.Close()

	var metrics []evaluate.Metric
	for rows.Next() {
		var m evaluate.Metric
		var kind string
		var asOf time.Time
		if err := rows.Scan(&kind, &m.Window, &asOf, &m.MAE, &m.RMSE, &m.MAPE, &m.N, &m.Stale); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan metric: %w", err)
		}
		m.Region = region
		m.Kind = model.Kind(kind)
		m.AsOfPeriod = timeseries.PeriodFromTime(asOf)
		metrics = append(metrics, m)
	}

	return metrics, rows.Err()
}

// LatestMetrics returns the metrics for a region at its most recent
// as-of period.
func (s *PostgresStore) LatestMetrics(ctx context.Context, region string) ([]evaluate.Metric, error) {
	query := `
		SELECT model_kind, window_months, as_of_period, mae, rmse, mape, n_used, stale
		FROM metrics
		WHERE region = $1
		  AND as_of_period = (SELECT max(as_of_period) FROM metrics WHERE region = $1)
		ORDER BY model_kind, window_months
	`

	rows, err := s.pool.Query(ctx, query, region)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query metrics: %w", err)
	}
	defer rows.Close()

	var metrics []evaluate.Metric
	for rows.Next() {
		var m evaluate.Metric
		var kind string
		var asOf time.Time
		if err := rows.Scan(&kind, &m.Window, &asOf, &m.MAE, &m.RMSE, &m.MAPE, &m.N, &m.Stale); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan metric: %w", err)
		}
		m.Region = region
		m.Kind = model.Kind(kind)
		m.AsOfPeriod = timeseries.PeriodFromTime(asOf)
		metrics = append(metrics, m)
	}

	return metrics, rows.Err()
}

// SaveModelArtifact stores the encoded fitted model for a region and kind.
func (s *PostgresStore) SaveModelArtifact(ctx context.Context, region string, kind model.Kind, artifact []byte) error {
	query := `
		INSERT INTO model_artifacts (region, model_kind, artifact, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (region, model_kind) DO UPDATE
		SET artifact = EXCLUDED.artifact,
		    updated_at = now()
	`

	if _, err := s.pool.Exec(ctx, query, region, string(kind), artifact); err != nil {
		return fmt.Errorf("postgres: failed to save model artifact: %w", err)
	}

	return nil
}

// LoadModelArtifact returns the stored artifact for a region and kind.
func (s *PostgresStore) LoadModelArtifact(ctx context.Context, region string, kind model.Kind) ([]byte, error) {
	query := `SELECT artifact FROM model_artifacts WHERE region = $1 AND model_kind = $2`

	var artifact []byte
	err := s.pool.QueryRow(ctx, query, region, string(kind)).Scan(&artifact)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to load model artifact: %w", err)
	}

	return artifact, nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
