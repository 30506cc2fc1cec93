package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gridcast/gridcast/internal/evaluate"
	"github.com/gridcast/gridcast/internal/forecast"
	"github.com/gridcast/gridcast/internal/model"
	"github.com/gridcast/gridcast/internal/timeseries"
)

func TestMemoryStore_ObservationsRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	obs := []timeseries.Observation{
		{Period: timeseries.NewPeriod(2024, time.March), Value: 550},
		{Period: timeseries.NewPeriod(2024, time.January), Value: 600},
		{Period: timeseries.NewPeriod(2024, time.February), Value: 580, Interpolated: true},
	}

	n, err := s.UpsertObservations(ctx, "NJ", obs)
	if err != nil {
		t.Fatalf("UpsertObservations failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 rows written, got %d", n)
	}

	got, err := s.ReadSeries(ctx, "NJ")
	if err != nil {
		t.Fatalf("ReadSeries failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 observations, got %d", len(got))
	}

	// Ascending period order regardless of insert order
	for i := 1; i < len(got); i++ {
		if !got[i-1].Period.Before(got[i].Period) {
			t.Errorf("Observations out of order: %s before %s", got[i-1].Period, got[i].Period)
		}
	}
	if !got[1].Interpolated {
		t.Error("Expected February observation to keep its interpolated flag")
	}

	latest, ok, err := s.LatestPeriod(ctx, "NJ")
	if err != nil {
		t.Fatalf("LatestPeriod failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected latest period to exist")
	}
	if latest != timeseries.NewPeriod(2024, time.March) {
		t.Errorf("Expected latest period 2024-03, got %s", latest)
	}
}

func TestMemoryStore_UpsertObservationsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	obs := []timeseries.Observation{
		{Period: timeseries.NewPeriod(2024, time.January), Value: 600},
	}

	if _, err := s.UpsertObservations(ctx, "NJ", obs); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if _, err := s.UpsertObservations(ctx, "NJ", obs); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	got, err := s.ReadSeries(ctx, "NJ")
	if err != nil {
		t.Fatalf("ReadSeries failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected 1 observation after repeated upsert, got %d", len(got))
	}

	// Revised value replaces the stored one
	obs[0].Value = 610
	if _, err := s.UpsertObservations(ctx, "NJ", obs); err != nil {
		t.Fatalf("Revision upsert failed: %v", err)
	}
	got, _ = s.ReadSeries(ctx, "NJ")
	if got[0].Value != 610 {
		t.Errorf("Expected revised value 610, got %v", got[0].Value)
	}
}

func TestMemoryStore_LatestPeriodEmpty(t *testing.T) {
	s := NewMemoryStore()

	_, ok, err := s.LatestPeriod(context.Background(), "NJ")
	if err != nil {
		t.Fatalf("LatestPeriod failed: %v", err)
	}
	if ok {
		t.Error("Expected no latest period for empty region")
	}
}

func TestMemoryStore_ForecastsUpsertClearsStale(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := forecast.Record{
		Region:       "NJ",
		TargetPeriod: timeseries.NewPeriod(2024, time.April),
		Kind:         model.KindSARIMA,
		Point:        540,
		GeneratedAt:  time.Now().UTC(),
		FitPeriodEnd: timeseries.NewPeriod(2024, time.March),
	}

	if _, err := s.UpsertForecasts(ctx, []forecast.Record{rec}); err != nil {
		t.Fatalf("UpsertForecasts failed: %v", err)
	}

	marked, err := s.MarkForecastsStale(ctx, "NJ", timeseries.NewPeriod(2024, time.February))
	if err != nil {
		t.Fatalf("MarkForecastsStale failed: %v", err)
	}
	if marked != 1 {
		t.Errorf("Expected 1 forecast marked stale, got %d", marked)
	}

	got, _ := s.ReadForecasts(ctx, "NJ")
	if len(got) != 1 || !got[0].Stale {
		t.Fatal("Expected stored forecast to be stale")
	}

	// Rewriting the record clears the flag
	if _, err := s.UpsertForecasts(ctx, []forecast.Record{rec}); err != nil {
		t.Fatalf("Rewrite upsert failed: %v", err)
	}
	got, _ = s.ReadForecasts(ctx, "NJ")
	if got[0].Stale {
		t.Error("Expected rewrite to clear the stale flag")
	}
}

func TestMemoryStore_MarkForecastsStaleThreshold(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	records := []forecast.Record{
		{
			Region:       "NJ",
			TargetPeriod: timeseries.NewPeriod(2024, time.February),
			Kind:         model.KindSeasonalNaive,
			Point:        600,
			FitPeriodEnd: timeseries.NewPeriod(2024, time.January),
		},
		{
			Region:       "NJ",
			TargetPeriod: timeseries.NewPeriod(2024, time.May),
			Kind:         model.KindSeasonalNaive,
			Point:        520,
			FitPeriodEnd: timeseries.NewPeriod(2024, time.April),
		},
	}
	if _, err := s.UpsertForecasts(ctx, records); err != nil {
		t.Fatalf("UpsertForecasts failed: %v", err)
	}

	// Revision at 2024-03 invalidates only the forecast fit through April
	marked, err := s.MarkForecastsStale(ctx, "NJ", timeseries.NewPeriod(2024, time.March))
	if err != nil {
		t.Fatalf("MarkForecastsStale failed: %v", err)
	}
	if marked != 1 {
		t.Errorf("Expected 1 forecast marked stale, got %d", marked)
	}

	got, _ := s.ReadForecasts(ctx, "NJ")
	for _, rec := range got {
		wantStale := !rec.FitPeriodEnd.Before(timeseries.NewPeriod(2024, time.March))
		if rec.Stale != wantStale {
			t.Errorf("Forecast fit through %s: stale = %v, want %v",
				rec.FitPeriodEnd, rec.Stale, wantStale)
		}
	}
}

func TestMemoryStore_LatestMetrics(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	older := timeseries.NewPeriod(2024, time.February)
	newer := timeseries.NewPeriod(2024, time.March)

	metrics := []evaluate.Metric{
		{Region: "NJ", Kind: model.KindSARIMA, Window: 1, AsOfPeriod: older, MAE: 10, RMSE: 10, N: 1},
		{Region: "NJ", Kind: model.KindSARIMA, Window: 1, AsOfPeriod: newer, MAE: 5, RMSE: 5, N: 1},
		{Region: "NJ", Kind: model.KindSARIMA, Window: 3, AsOfPeriod: newer, MAE: 7, RMSE: 8, N: 2},
		{Region: "NJ", Kind: model.KindSeasonalNaive, Window: 1, AsOfPeriod: newer, MAE: 12, RMSE: 12, N: 1},
	}
	if _, err := s.UpsertMetrics(ctx, metrics); err != nil {
		t.Fatalf("UpsertMetrics failed: %v", err)
	}

	got, err := s.LatestMetrics(ctx, "NJ")
	if err != nil {
		t.Fatalf("LatestMetrics failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 metrics at latest as-of, got %d", len(got))
	}
	for _, m := range got {
		if m.AsOfPeriod != newer {
			t.Errorf("Expected as-of %s, got %s", newer, m.AsOfPeriod)
		}
	}

	// Ordered by kind, then window
	if got[0].Kind != model.KindSARIMA || got[0].Window != 1 {
		t.Errorf("Unexpected first metric: %s window %d", got[0].Kind, got[0].Window)
	}
	if got[2].Kind != model.KindSeasonalNaive {
		t.Errorf("Unexpected last metric kind: %s", got[2].Kind)
	}
}

func TestMemoryStore_MarkMetricsStaleThreshold(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	jan := timeseries.NewPeriod(2024, time.January)
	feb := timeseries.NewPeriod(2024, time.February)
	mar := timeseries.NewPeriod(2024, time.March)

	metrics := []evaluate.Metric{
		{Region: "NJ", Kind: model.KindSARIMA, Window: 1, AsOfPeriod: jan, MAE: 1, RMSE: 1, N: 1},
		{Region: "NJ", Kind: model.KindSARIMA, Window: 1, AsOfPeriod: feb, MAE: 2, RMSE: 2, N: 1},
		{Region: "NJ", Kind: model.KindSARIMA, Window: 1, AsOfPeriod: mar, MAE: 3, RMSE: 3, N: 1},
	}
	if _, err := s.UpsertMetrics(ctx, metrics); err != nil {
		t.Fatalf("UpsertMetrics failed: %v", err)
	}

	// Revision at 2024-02 invalidates the February and March rows only
	marked, err := s.MarkMetricsStale(ctx, "NJ", feb)
	if err != nil {
		t.Fatalf("MarkMetricsStale failed: %v", err)
	}
	if marked != 2 {
		t.Errorf("Expected 2 metrics marked stale, got %d", marked)
	}

	got, _ := s.ReadMetrics(ctx, "NJ", nil, nil)
	for _, m := range got {
		wantStale := !m.AsOfPeriod.Before(feb)
		if m.Stale != wantStale {
			t.Errorf("Metric as of %s: stale = %v, want %v", m.AsOfPeriod, m.Stale, wantStale)
		}
	}

	// Rewriting a row clears the flag
	if _, err := s.UpsertMetrics(ctx, metrics[2:]); err != nil {
		t.Fatalf("Rewrite upsert failed: %v", err)
	}
	got, _ = s.ReadMetrics(ctx, "NJ", &mar, &mar)
	if len(got) != 1 || got[0].Stale {
		t.Error("Expected rewrite to clear the stale flag")
	}
}

func TestMemoryStore_ReadMetricsRange(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	jan := timeseries.NewPeriod(2024, time.January)
	feb := timeseries.NewPeriod(2024, time.February)
	mar := timeseries.NewPeriod(2024, time.March)

	metrics := []evaluate.Metric{
		{Region: "NJ", Kind: model.KindSARIMA, Window: 1, AsOfPeriod: jan, MAE: 1, RMSE: 1, N: 1},
		{Region: "NJ", Kind: model.KindSARIMA, Window: 1, AsOfPeriod: feb, MAE: 2, RMSE: 2, N: 1},
		{Region: "NJ", Kind: model.KindSARIMA, Window: 1, AsOfPeriod: mar, MAE: 3, RMSE: 3, N: 1},
	}
	if _, err := s.UpsertMetrics(ctx, metrics); err != nil {
		t.Fatalf("UpsertMetrics failed: %v", err)
	}

	got, err := s.ReadMetrics(ctx, "NJ", nil, nil)
	if err != nil {
		t.Fatalf("ReadMetrics failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected full history of 3 metrics, got %d", len(got))
	}
	if got[0].AsOfPeriod != jan || got[2].AsOfPeriod != mar {
		t.Errorf("Expected ascending as-of order, got %s..%s", got[0].AsOfPeriod, got[2].AsOfPeriod)
	}

	got, err = s.ReadMetrics(ctx, "NJ", &feb, &feb)
	if err != nil {
		t.Fatalf("ReadMetrics failed: %v", err)
	}
	if len(got) != 1 || got[0].AsOfPeriod != feb {
		t.Fatalf("Expected only the February metric, got %d", len(got))
	}

	got, err = s.ReadMetrics(ctx, "NJ", &feb, nil)
	if err != nil {
		t.Fatalf("ReadMetrics failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 metrics from February on, got %d", len(got))
	}
}

func TestMemoryStore_ModelArtifacts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.LoadModelArtifact(ctx, "NJ", model.KindSARIMA); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing artifact, got %v", err)
	}

	artifact := []byte("encoded model")
	if err := s.SaveModelArtifact(ctx, "NJ", model.KindSARIMA, artifact); err != nil {
		t.Fatalf("SaveModelArtifact failed: %v", err)
	}

	got, err := s.LoadModelArtifact(ctx, "NJ", model.KindSARIMA)
	if err != nil {
		t.Fatalf("LoadModelArtifact failed: %v", err)
	}
	if string(got) != "encoded model" {
		t.Errorf("Artifact mismatch: %q", got)
	}

	// Replacement overwrites
	if err := s.SaveModelArtifact(ctx, "NJ", model.KindSARIMA, []byte("newer")); err != nil {
		t.Fatalf("SaveModelArtifact failed: %v", err)
	}
	got, _ = s.LoadModelArtifact(ctx, "NJ", model.KindSARIMA)
	if string(got) != "newer" {
		t.Errorf("Expected replaced artifact, got %q", got)
	}
}
