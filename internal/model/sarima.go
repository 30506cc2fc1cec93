package model

import "github.com/gridcast/gridcast/internal/timeseries"

// Fixed SARIMA orders: (1,1,2)x(1,1,1,12). These are the orders the system
// was tuned to offline; there is no information-criterion search, so a given
// history always yields the same parameters.
const (
	sarimaP = 1
	sarimaD = 1
	sarimaQ = 2

	sarimaSeasonalP = 1
	sarimaSeasonalD = 1
	sarimaSeasonalQ = 1
)

// sarimaMinMonths is two full seasonal cycles, the minimum history for a
// meaningful seasonal fit.
const sarimaMinMonths = 2 * SeasonalPeriod

// SARIMAParams is the serialized state of a fitted SARIMA(1,1,2)(1,1,1,12)
// model: estimated coefficients plus the tail of the differenced series and
// residuals needed to produce the one-step-ahead forecast.
type SARIMAParams struct {
	Order         [3]int `json:"order"`          // p, d, q
	SeasonalOrder [4]int `json:"seasonal_order"` // P, D, Q, s

	AR         []float64 `json:"ar"`
	MA         []float64 `json:"ma"`
	SeasonalAR []float64 `json:"seasonal_ar"`
	SeasonalMA []float64 `json:"seasonal_ma"`

	Mean        float64 `json:"mean"`         // mean of the differenced series
	ResidualStd float64 `json:"residual_std"` // one-step forecast error scale

	// CenteredTail holds the last centered differenced values, newest last.
	CenteredTail []float64 `json:"centered_tail"`
	// ResidualTail holds the last fit residuals, newest last.
	ResidualTail []float64 `json:"residual_tail"`
	// OriginalTail holds the last s+1 original values, newest last; used to
	// invert the regular and seasonal differencing.
	OriginalTail []float64 `json:"original_tail"`
}

// fitSARIMA estimates SARIMA parameters over the full window.
//
// Estimation follows the classical moment-based procedure: difference the
// series to stationarity, solve Yule-Walker for the AR term via
// Levinson-Durbin, estimate the seasonal AR term from the lag-s
// autocorrelation, then derive MA terms from the residual autocorrelations
// with damping for stability. This is a deliberate approximation of full
// maximum-likelihood SARIMA that stays dependency-free and deterministic.
func fitSARIMA(window timeseries.Series) (*SARIMAParams, error) {
	if len(window) < sarimaMinMonths {
		return nil, &InsufficientHistoryError{Kind: KindSARIMA, Needed: sarimaMinMonths, Have: len(window)}
	}

	values := window.Values()

	stationary := difference(values, sarimaD)
	stationary = seasonalDifference(stationary, sarimaSeasonalD, SeasonalPeriod)

	mu := mean(stationary)
	centered := make([]float64, len(stationary))
	for i, v := range stationary {
		centered[i] = v - mu
	}

	// Non-seasonal AR via Yule-Walker.
	acf := make([]float64, sarimaP)
	for k := 1; k <= sarimaP; k++ {
		acf[k-1] = autocorr(centered, k)
	}
	arCoeffs := levinsonDurbin(acf, sarimaP)
	for i := range arCoeffs {
		arCoeffs[i] = clampCoeff(arCoeffs[i])
	}

	// Seasonal AR from the lag-s autocorrelation.
	seasonalAR := make([]float64, sarimaSeasonalP)
	for i := 0; i < sarimaSeasonalP; i++ {
		seasonalAR[i] = clampCoeff(autocorr(centered, (i+1)*SeasonalPeriod))
	}

	residuals := sarimaResiduals(centered, arCoeffs, seasonalAR)

	// MA terms from residual autocorrelations. The 0.5 damping keeps the
	// implied MA polynomial invertible for moderately correlated residuals.
	maCoeffs := make([]float64, sarimaQ)
	for i := 0; i < sarimaQ; i++ {
		maCoeffs[i] = clampCoeff(autocorr(residuals, i+1) * 0.5)
	}
	seasonalMA := make([]float64, sarimaSeasonalQ)
	for i := 0; i < sarimaSeasonalQ; i++ {
		seasonalMA[i] = clampCoeff(autocorr(residuals, (i+1)*SeasonalPeriod) * 0.5)
	}

	return &SARIMAParams{
		Order:         [3]int{sarimaP, sarimaD, sarimaQ},
		SeasonalOrder: [4]int{sarimaSeasonalP, sarimaSeasonalD, sarimaSeasonalQ, SeasonalPeriod},
		AR:            arCoeffs,
		MA:            maCoeffs,
		SeasonalAR:    seasonalAR,
		SeasonalMA:    seasonalMA,
		Mean:          mu,
		ResidualStd:   stddev(residuals),
		CenteredTail:  tail(centered, SeasonalPeriod),
		ResidualTail:  tail(residuals, SeasonalPeriod),
		OriginalTail:  tail(values, SeasonalPeriod+1),
	}, nil
}

// sarimaResiduals computes in-sample one-step errors of the AR portion of
// the model over the centered differenced series.
func sarimaResiduals(centered []float64, arCoeffs, seasonalAR []float64) []float64 {
	start := sarimaP
	if s := sarimaSeasonalP * SeasonalPeriod; s > start {
		start = s
	}
	if len(centered) <= start {
		return []float64{}
	}

	residuals := make([]float64, len(centered)-start)
	for t := start; t < len(centered); t++ {
		pred := 0.0
		for i := 0; i < len(arCoeffs); i++ {
			pred += arCoeffs[i] * centered[t-1-i]
		}
		for i := 0; i < len(seasonalAR); i++ {
			idx := t - (i+1)*SeasonalPeriod
			if idx >= 0 {
				pred += seasonalAR[i] * centered[idx]
			}
		}
		residuals[t-start] = centered[t] - pred
	}
	return residuals
}

// OneStep returns the one-step-ahead conditional mean and the forecast
// standard error in the original scale.
//
// The prediction is made in the doubly-differenced space and inverted
// through both differencing operations:
//
//	x[T+1] = w[T+1] + x[T] + x[T-s+1] - x[T-s]
func (p *SARIMAParams) OneStep() (point, stderr float64) {
	c := p.CenteredTail
	r := p.ResidualTail

	pred := 0.0
	for i := 0; i < len(p.AR) && i < len(c); i++ {
		pred += p.AR[i] * c[len(c)-1-i]
	}
	for i := 0; i < len(p.SeasonalAR); i++ {
		idx := len(c) - (i+1)*p.SeasonalOrder[3]
		if idx >= 0 && idx < len(c) {
			pred += p.SeasonalAR[i] * c[idx]
		}
	}
	for i := 0; i < len(p.MA) && i < len(r); i++ {
		pred += p.MA[i] * r[len(r)-1-i]
	}
	for i := 0; i < len(p.SeasonalMA); i++ {
		idx := len(r) - (i+1)*p.SeasonalOrder[3]
		if idx >= 0 && idx < len(r) {
			pred += p.SeasonalMA[i] * r[idx]
		}
	}

	w := pred + p.Mean

	o := p.OriginalTail
	point = w
	if n := len(o); n >= p.SeasonalOrder[3]+1 {
		s := p.SeasonalOrder[3]
		point = w + o[n-1] + o[n-s] - o[n-s-1]
	} else if n > 0 {
		point = w + o[n-1]
	}

	return point, p.ResidualStd
}
