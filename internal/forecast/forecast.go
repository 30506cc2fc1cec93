// Package forecast turns fitted models into one-step-ahead forecast records.
// It is pure: persistence of the records is the pipeline's job.
package forecast

import (
	"fmt"
	"sort"
	"time"

	"github.com/gridcast/gridcast/internal/model"
	"github.com/gridcast/gridcast/internal/timeseries"
)

// Record is a stored point forecast for a single period and model kind.
// Unique per (region, target_period, kind). TargetPeriod is always exactly
// one month after FitPeriodEnd. Records are frozen once written; a record is
// only ever marked stale when the observation history under it changes.
type Record struct {
	Region       string            `json:"region"`
	TargetPeriod timeseries.Period `json:"target_period"`
	Kind         model.Kind        `json:"model_kind"`
	Point        float64           `json:"point"`
	Lower        *float64          `json:"lower,omitempty"`
	Upper        *float64          `json:"upper,omitempty"`
	GeneratedAt  time.Time         `json:"generated_at"`
	FitPeriodEnd timeseries.Period `json:"fit_period_end"`
	Stale        bool              `json:"stale,omitempty"`
}

// confidenceZ is the normal quantile for the 95% prediction interval.
const confidenceZ = 1.96

// OneStep produces exactly one record per fitted model, targeting the month
// after the fit window. The SARIMA record carries a 95% interval when the
// fit produced a usable residual scale; the seasonal-naive record is a bare
// point equal to the observation one seasonal period before the target.
func OneStep(region string, models map[model.Kind]model.Fitted, generatedAt time.Time) ([]Record, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("no fitted models")
	}

	kinds := make([]model.Kind, 0, len(models))
	for k := range models {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	fitEnd := models[kinds[0]].FitPeriodEnd
	records := make([]Record, 0, len(models))

	for _, kind := range kinds {
		fitted := models[kind]
		if fitted.FitPeriodEnd != fitEnd {
			return nil, fmt.Errorf("inconsistent fit windows: %s ends %s, %s ends %s",
				kinds[0], fitEnd, kind, fitted.FitPeriodEnd)
		}

		rec := Record{
			Region:       region,
			TargetPeriod: fitEnd.Next(),
			Kind:         kind,
			GeneratedAt:  generatedAt,
			FitPeriodEnd: fitEnd,
		}

		switch {
		case fitted.SARIMA != nil:
			point, stderr := fitted.SARIMA.OneStep()
			rec.Point = point
			if stderr > 0 {
				lower := point - confidenceZ*stderr
				upper := point + confidenceZ*stderr
				rec.Lower = &lower
				rec.Upper = &upper
			}
		case fitted.Naive != nil:
			rec.Point = fitted.Naive.Value
		default:
			return nil, fmt.Errorf("fitted model %s carries no parameters", kind)
		}

		records = append(records, rec)
	}

	return records, nil
}
