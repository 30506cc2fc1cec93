package model

import "github.com/gridcast/gridcast/internal/timeseries"

// SeasonalNaiveParams is the sole state of the benchmark model: the actual
// observation from one seasonal period before the forecast target.
type SeasonalNaiveParams struct {
	RefPeriod timeseries.Period `json:"ref_period"`
	Value     float64           `json:"value"`
}

// fitSeasonalNaive stores the observation 12 months before the forecast
// target (which is the period after the window end). Requires one full
// seasonal cycle of history.
func fitSeasonalNaive(window timeseries.Series) (*SeasonalNaiveParams, error) {
	if len(window) < SeasonalPeriod {
		return nil, &InsufficientHistoryError{Kind: KindSeasonalNaive, Needed: SeasonalPeriod, Have: len(window)}
	}

	ref := window.End().Next().AddMonths(-SeasonalPeriod)
	obs, ok := window.At(ref)
	if !ok {
		// Gap-free window of >= 12 months always contains ref; guard anyway.
		return nil, &InsufficientHistoryError{Kind: KindSeasonalNaive, Needed: SeasonalPeriod, Have: len(window)}
	}

	return &SeasonalNaiveParams{RefPeriod: ref, Value: obs.Value}, nil
}
