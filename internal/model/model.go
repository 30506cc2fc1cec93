// Package model fits the two forecasting models used by the engine: a
// seasonal ARIMA process and a seasonal-naive benchmark. Fitting is
// stateless; every call refits from scratch over the provided history so
// that identical inputs always produce identical parameters.
package model

import (
	"fmt"

	"github.com/gridcast/gridcast/internal/timeseries"
)

// Kind identifies a model family.
type Kind string

const (
	// KindSARIMA is the seasonal statistical model.
	KindSARIMA Kind = "sarima"

	// KindSeasonalNaive is the benchmark: the value from one seasonal
	// period earlier.
	KindSeasonalNaive Kind = "seasonal_naive"
)

// SeasonalPeriod is the number of observations per seasonal cycle.
// Monthly data with yearly seasonality.
const SeasonalPeriod = 12

// Kinds returns all model kinds fitted per run.
func Kinds() []Kind {
	return []Kind{KindSARIMA, KindSeasonalNaive}
}

// Fitted is a tagged variant over the model kinds. Exactly one of the
// parameter fields is non-nil, matching Kind.
type Fitted struct {
	Kind         Kind                 `json:"kind"`
	FitPeriodEnd timeseries.Period    `json:"fit_period_end"`
	Seasonal     int                  `json:"seasonal_period"`
	SARIMA       *SARIMAParams        `json:"sarima,omitempty"`
	Naive        *SeasonalNaiveParams `json:"seasonal_naive,omitempty"`
}

// InsufficientHistoryError reports that a model cannot be fitted from the
// available history.
type InsufficientHistoryError struct {
	Kind   Kind
	Needed int
	Have   int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("%s: need at least %d months of history, have %d", e.Kind, e.Needed, e.Have)
}

// Fit fits every model kind against observations with period <= asOf.
// It fails with *InsufficientHistoryError when any model lacks history;
// in that case nothing is returned, so callers never persist a partial
// model set.
func Fit(series timeseries.Series, asOf timeseries.Period) (map[Kind]Fitted, error) {
	window := series.Through(asOf)

	sarima, err := fitSARIMA(window)
	if err != nil {
		return nil, err
	}
	naive, err := fitSeasonalNaive(window)
	if err != nil {
		return nil, err
	}

	end := window.End()
	return map[Kind]Fitted{
		KindSARIMA: {
			Kind:         KindSARIMA,
			FitPeriodEnd: end,
			Seasonal:     SeasonalPeriod,
			SARIMA:       sarima,
		},
		KindSeasonalNaive: {
			Kind:         KindSeasonalNaive,
			FitPeriodEnd: end,
			Seasonal:     SeasonalPeriod,
			Naive:        naive,
		},
	}, nil
}
