package timeseries

import "fmt"

// DataGapError reports a run of missing months longer than the configured
// tolerance. The gap spans From..To inclusive.
type DataGapError struct {
	From   Period
	To     Period
	Months int
}

func (e *DataGapError) Error() string {
	return fmt.Sprintf("data gap of %d consecutive months from %s to %s exceeds tolerance", e.Months, e.From, e.To)
}

// DuplicatePeriodError reports two conflicting values for the same period.
type DuplicatePeriodError struct {
	Period Period
	First  float64
	Second float64
}

func (e *DuplicatePeriodError) Error() string {
	return fmt.Sprintf("conflicting values for period %s: %v and %v", e.Period, e.First, e.Second)
}

// NonPositiveValueError reports an observation with value <= 0.
// Sales volumes are strictly positive.
type NonPositiveValueError struct {
	Period Period
	Value  float64
}

func (e *NonPositiveValueError) Error() string {
	return fmt.Sprintf("non-positive value %v for period %s", e.Value, e.Period)
}
