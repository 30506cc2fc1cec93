package timeseries

import "sort"

// Observation is a single monthly data point. Interpolated marks values that
// were filled in by Align rather than reported by the source.
type Observation struct {
	Period       Period  `json:"period"`
	Value        float64 `json:"value"`
	Interpolated bool    `json:"interpolated,omitempty"`
}

// Series is a chronologically ordered, duplicate-free, gap-free sequence of
// observations. Produced by Align; treat as immutable.
type Series []Observation

// Start returns the first period of the series.
func (s Series) Start() Period {
	return s[0].Period
}

// End returns the last period of the series.
func (s Series) End() Period {
	return s[len(s)-1].Period
}

// At returns the observation for the given period, if present.
func (s Series) At(p Period) (Observation, bool) {
	// Gap-free series: direct index from the offset.
	if len(s) == 0 {
		return Observation{}, false
	}
	i := p.MonthsSince(s[0].Period)
	if i < 0 || i >= len(s) {
		return Observation{}, false
	}
	return s[i], true
}

// Through returns the prefix of the series ending at period p inclusive.
func (s Series) Through(p Period) Series {
	if len(s) == 0 || p.Before(s[0].Period) {
		return nil
	}
	i := p.MonthsSince(s[0].Period)
	if i >= len(s) {
		return s
	}
	return s[:i+1]
}

// Values returns the raw value sequence.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, obs := range s {
		out[i] = obs.Value
	}
	return out
}

// AlignOptions controls preprocessing behavior.
type AlignOptions struct {
	// GapTolerance is the maximum run of consecutive missing months that
	// Align will fill by interpolation. Longer gaps are an error.
	GapTolerance int

	// AllowNonPositive disables the value > 0 check. Only for tests.
	AllowNonPositive bool
}

// DefaultAlignOptions returns the standard preprocessing policy:
// at most one missing month is interpolated, values must be positive.
func DefaultAlignOptions() AlignOptions {
	return AlignOptions{GapTolerance: 1}
}

// Align turns raw source observations into a clean Series: sorted by period,
// exact duplicates collapsed, single-month gaps linearly interpolated and
// flagged. It fails with *DuplicatePeriodError on conflicting duplicate
// values, *NonPositiveValueError on values <= 0, and *DataGapError when a
// gap exceeds opts.GapTolerance.
func Align(raw []Observation, opts AlignOptions) (Series, error) {
	if len(raw) == 0 {
		return Series{}, nil
	}
	if opts.GapTolerance < 0 {
		opts.GapTolerance = 0
	}

	sorted := make([]Observation, len(raw))
	copy(sorted, raw)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Period.Before(sorted[j].Period)
	})

	// Collapse duplicates, rejecting conflicting values.
	deduped := sorted[:0]
	for _, obs := range sorted {
		if len(deduped) > 0 && deduped[len(deduped)-1].Period == obs.Period {
			prev := deduped[len(deduped)-1]
			if prev.Value != obs.Value {
				return nil, &DuplicatePeriodError{Period: obs.Period, First: prev.Value, Second: obs.Value}
			}
			continue
		}
		deduped = append(deduped, obs)
	}

	if !opts.AllowNonPositive {
		for _, obs := range deduped {
			if obs.Value <= 0 {
				return nil, &NonPositiveValueError{Period: obs.Period, Value: obs.Value}
			}
		}
	}

	out := make(Series, 0, len(deduped))
	out = append(out, deduped[0])
	for i := 1; i < len(deduped); i++ {
		prev := deduped[i-1]
		cur := deduped[i]
		missing := cur.Period.MonthsSince(prev.Period) - 1
		if missing > opts.GapTolerance {
			return nil, &DataGapError{
				From:   prev.Period.Next(),
				To:     cur.Period.AddMonths(-1),
				Months: missing,
			}
		}
		// Fill tolerated gaps by linear interpolation between neighbors.
		for g := 1; g <= missing; g++ {
			frac := float64(g) / float64(missing+1)
			out = append(out, Observation{
				Period:       prev.Period.AddMonths(g),
				Value:        prev.Value + frac*(cur.Value-prev.Value),
				Interpolated: true,
			})
		}
		out = append(out, cur)
	}

	return out, nil
}
