package store

import (
	"context"
	"sort"
	"sync"

	"github.com/gridcast/gridcast/internal/evaluate"
	"github.com/gridcast/gridcast/internal/forecast"
	"github.com/gridcast/gridcast/internal/model"
	"github.com/gridcast/gridcast/internal/timeseries"
)

// MemoryStore implements Store with in-process maps. Safe for concurrent
// use. All data is lost on process exit.
type MemoryStore struct {
	mu           sync.RWMutex
	observations map[string]map[timeseries.Period]timeseries.Observation
	forecasts    map[string]map[forecastKey]forecast.Record
	metrics      map[string]map[metricKey]evaluate.Metric
	artifacts    map[artifactKey][]byte
}

type forecastKey struct {
	target timeseries.Period
	kind   model.Kind
}

type metricKey struct {
	kind   model.Kind
	window int
	asOf   timeseries.Period
}

type artifactKey struct {
	region string
	kind   model.Kind
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		observations: make(map[string]map[timeseries.Period]timeseries.Observation),
		forecasts:    make(map[string]map[forecastKey]forecast.Record),
		metrics:      make(map[string]map[metricKey]evaluate.Metric),
		artifacts:    make(map[artifactKey][]byte),
	}
}

// ReadSeries returns all stored observations for a region in ascending
// period order.
func (s *MemoryStore) ReadSeries(_ context.Context, region string) ([]timeseries.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byPeriod := s.observations[region]
	if len(byPeriod) == 0 {
		return nil, nil
	}

	obs := make([]timeseries.Observation, 0, len(byPeriod))
	for _, o := range byPeriod {
		obs = append(obs, o)
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].Period.Before(obs[j].Period) })

	return obs, nil
}

// LatestPeriod returns the most recent stored period for a region.
func (s *MemoryStore) LatestPeriod(_ context.Context, region string) (timeseries.Period, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest timeseries.Period
	found := false
	for p := range s.observations[region] {
		if !found || p.After(latest) {
			latest = p
			found = true
		}
	}

	return latest, found, nil
}

// UpsertObservations inserts or updates observations for a region.
func (s *MemoryStore) UpsertObservations(_ context.Context, region string, obs []timeseries.Observation) (int, error) {
	if len(obs) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byPeriod := s.observations[region]
	if byPeriod == nil {
		byPeriod = make(map[timeseries.Period]timeseries.Observation)
		s.observations[region] = byPeriod
	}
	for _, o := range obs {
		byPeriod[o.Period] = o
	}

	return len(obs), nil
}

// UpsertForecasts inserts or updates forecast records. Rewriting a record
// clears its stale flag.
func (s *MemoryStore) UpsertForecasts(_ context.Context, records []forecast.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		byKey := s.forecasts[rec.Region]
		if byKey == nil {
			byKey = make(map[forecastKey]forecast.Record)
			s.forecasts[rec.Region] = byKey
		}
		rec.Stale = false
		byKey[forecastKey{target: rec.TargetPeriod, kind: rec.Kind}] = rec
	}

	return len(records), nil
}

// ReadForecasts returns all forecast records for a region.
func (s *MemoryStore) ReadForecasts(_ context.Context, region string) ([]forecast.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKey := s.forecasts[region]
	if len(byKey) == 0 {
		return nil, nil
	}

	records := make([]forecast.Record, 0, len(byKey))
	for _, rec := range byKey {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].TargetPeriod != records[j].TargetPeriod {
			return records[i].TargetPeriod.Before(records[j].TargetPeriod)
		}
		return records[i].Kind < records[j].Kind
	})

	return records, nil
}

// MarkForecastsStale flags forecasts whose fit window ends at or after from.
func (s *MemoryStore) MarkForecastsStale(_ context.Context, region string, from timeseries.Period) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := 0
	for key, rec := range s.forecasts[region] {
		if rec.Stale || rec.FitPeriodEnd.Before(from) {
			continue
		}
		rec.Stale = true
		s.forecasts[region][key] = rec
		marked++
	}

	return marked, nil
}

// UpsertMetrics inserts or updates evaluation metrics. Rewriting a metric
// clears its stale flag.
func (s *MemoryStore) UpsertMetrics(_ context.Context, metrics []evaluate.Metric) (int, error) {
	if len(metrics) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range metrics {
		byKey := s.metrics[m.Region]
		if byKey == nil {
			byKey = make(map[metricKey]evaluate.Metric)
			s.metrics[m.Region] = byKey
		}
		m.Stale = false
		byKey[metricKey{kind: m.Kind, window: m.Window, asOf: m.AsOfPeriod}] = m
	}

	return len(metrics), nil
}

// MarkMetricsStale flags metrics whose as-of period is at or after from.
func (s *MemoryStore) MarkMetricsStale(_ context.Context, region string, from timeseries.Period) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := 0
	for key, m := range s.metrics[region] {
		if m.Stale || key.asOf.Before(from) {
			continue
		}
		m.Stale = true
		s.metrics[region][key] = m
		marked++
	}

	return marked, nil
}

// ReadMetrics returns metric history for a region with as-of periods inside
// the inclusive range.
func (s *MemoryStore) ReadMetrics(_ context.Context, region string, start, end *timeseries.Period) ([]evaluate.Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var metrics []evaluate.Metric
	for key, m := range s.metrics[region] {
		if start != nil && key.asOf.Before(*start) {
			continue
		}
		if end != nil && key.asOf.After(*end) {
			continue
		}
		metrics = append(metrics, m)
	}
	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].AsOfPeriod != metrics[j].AsOfPeriod {
			return metrics[i].AsOfPeriod.Before(metrics[j].AsOfPeriod)
		}
		if metrics[i].Kind != metrics[j].Kind {
			return metrics[i].Kind < metrics[j].Kind
		}
		return metrics[i].Window < metrics[j].Window
	})

	return metrics, nil
}

// LatestMetrics returns the metrics for a region at its most recent
// as-of period.
func (s *MemoryStore) LatestMetrics(_ context.Context, region string) ([]evaluate.Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKey := s.metrics[region]
	if len(byKey) == 0 {
		return nil, nil
	}

	var latest timeseries.Period
	found := false
	for key := range byKey {
		if !found || key.asOf.After(latest) {
			latest = key.asOf
			found = true
		}
	}

	var metrics []evaluate.Metric
	for key, m := range byKey {
		if key.asOf == latest {
			metrics = append(metrics, m)
		}
	}
	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].Kind != metrics[j].Kind {
			return metrics[i].Kind < metrics[j].Kind
		}
		return metrics[i].Window < metrics[j].Window
	})

	return metrics, nil
}

// SaveModelArtifact stores the encoded fitted model for a region and kind.
func (s *MemoryStore) SaveModelArtifact(_ context.Context, region string, kind model.Kind, artifact []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(artifact))
	copy(stored, artifact)
	s.artifacts[artifactKey{region: region, kind: kind}] = stored

	return nil
}

// LoadModelArtifact returns the stored artifact for a region and kind.
func (s *MemoryStore) LoadModelArtifact(_ context.Context, region string, kind model.Kind) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifact, ok := s.artifacts[artifactKey{region: region, kind: kind}]
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]byte, len(artifact))
	copy(out, artifact)

	return out, nil
}

// Ping always succeeds for the memory store.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() {}
