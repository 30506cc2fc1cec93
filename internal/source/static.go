package source

import (
	"context"

	"github.com/gridcast/gridcast/internal/timeseries"
)

// StaticSource serves a fixed set of observations per region. Used in tests
// and for offline backfills from exported files.
type StaticSource struct {
	data map[string][]timeseries.Observation

	// Err, when set, is returned by every fetch. Lets tests exercise
	// retry paths.
	Err error
}

// NewStaticSource creates a static source over per-region observations.
func NewStaticSource(data map[string][]timeseries.Observation) *StaticSource {
	return &StaticSource{data: data}
}

// FetchRange returns the stored observations for the region that fall
// inside the inclusive range, in ascending period order.
func (s *StaticSource) FetchRange(_ context.Context, region string, start, end timeseries.Period) ([]timeseries.Observation, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	var obs []timeseries.Observation
	for _, o := range s.data[region] {
		if o.Period.Before(start) || o.Period.After(end) {
			continue
		}
		obs = append(obs, o)
	}

	return obs, nil
}
