// Package evaluate computes forecast accuracy metrics over trailing windows
// as actual observations arrive.
package evaluate

import (
	"math"
	"sort"

	"github.com/gridcast/gridcast/internal/forecast"
	"github.com/gridcast/gridcast/internal/model"
	"github.com/gridcast/gridcast/internal/timeseries"
)

// DefaultWindows are the trailing window lengths, in months, evaluated on
// every forecast run.
var DefaultWindows = []int{1, 3, 6, 12}

// Metric is a stored accuracy record for one model kind over one trailing
// window ending at AsOfPeriod. Unique per (region, kind, window, as_of).
// MAPE is nil when the window contains an actual of exactly zero, or when
// the window is empty. An empty window is not an error: N is 0 and the
// error fields are 0 -- partial history is expected while bootstrapping.
type Metric struct {
	Region     string            `json:"region"`
	Kind       model.Kind        `json:"model_kind"`
	Window     int               `json:"window"`
	AsOfPeriod timeseries.Period `json:"as_of_period"`
	MAE        float64           `json:"mae"`
	RMSE       float64           `json:"rmse"`
	MAPE       *float64          `json:"mape"`
	N          int               `json:"n_observations_used"`
	Stale      bool              `json:"stale"`
}

// Evaluate pairs forecasts with actuals by target period and computes
// MAE/RMSE/MAPE per model kind over each trailing window ending at asOf.
// Only periods with both a forecast and an actual contribute; missing
// actuals are never imputed. One Metric is returned for every
// (kind, window) combination, including empty ones.
func Evaluate(region string, forecasts []forecast.Record, actuals timeseries.Series, asOf timeseries.Period, windows []int) []Metric {
	if len(windows) == 0 {
		windows = DefaultWindows
	}

	type pair struct {
		target   timeseries.Period
		forecast float64
		actual   float64
	}

	// Pair each forecast with its actual, grouped by kind.
	pairsByKind := make(map[model.Kind][]pair)
	kinds := make([]model.Kind, 0, 2)
	for _, rec := range forecasts {
		obs, ok := actuals.At(rec.TargetPeriod)
		if !ok {
			continue
		}
		if _, seen := pairsByKind[rec.Kind]; !seen {
			kinds = append(kinds, rec.Kind)
		}
		pairsByKind[rec.Kind] = append(pairsByKind[rec.Kind], pair{
			target:   rec.TargetPeriod,
			forecast: rec.Point,
			actual:   obs.Value,
		})
	}
	if len(kinds) == 0 {
		for _, k := range model.Kinds() {
			kinds = append(kinds, k)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	metrics := make([]Metric, 0, len(kinds)*len(windows))
	for _, kind := range kinds {
		for _, w := range windows {
			windowStart := asOf.AddMonths(-(w - 1))

			m := Metric{
				Region:     region,
				Kind:       kind,
				Window:     w,
				AsOfPeriod: asOf,
			}

			var absSum, sqSum, pctSum float64
			zeroActual := false
			for _, p := range pairsByKind[kind] {
				if p.target.Before(windowStart) || p.target.After(asOf) {
					continue
				}
				err := p.forecast - p.actual
				absSum += math.Abs(err)
				sqSum += err * err
				if p.actual == 0 {
					zeroActual = true
				} else {
					pctSum += math.Abs(err/p.actual) * 100
				}
				m.N++
			}

			if m.N > 0 {
				m.MAE = absSum / float64(m.N)
				m.RMSE = math.Sqrt(sqSum / float64(m.N))
				if !zeroActual {
					mape := pctSum / float64(m.N)
					m.MAPE = &mape
				}
			}

			metrics = append(metrics, m)
		}
	}

	return metrics
}
