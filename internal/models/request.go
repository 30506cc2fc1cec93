package models

import (
	"fmt"

	"github.com/gridcast/gridcast/internal/timeseries"
)

// IngestRequest represents an ingest trigger request. Both bounds are
// optional "YYYY-MM" periods; when omitted the engine catches up from
// the latest stored observation to the newest period the source has.
type IngestRequest struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Validate checks the period bounds.
func (r *IngestRequest) Validate() error {
	start, err := optionalPeriod(r.Start)
	if err != nil {
		return err
	}
	end, err := optionalPeriod(r.End)
	if err != nil {
		return err
	}
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("end period %s is before start period %s", end, start)
	}
	return nil
}

// Range returns the parsed period bounds; nil means unbounded.
// Call Validate first.
func (r *IngestRequest) Range() (start, end *timeseries.Period) {
	start, _ = optionalPeriod(r.Start)
	end, _ = optionalPeriod(r.End)
	return start, end
}

// ForecastRequest represents a forecast trigger request. AsOf is an
// optional "YYYY-MM" period naming the last observed month to fit
// through; when omitted the latest stored period is used.
type ForecastRequest struct {
	AsOf string `json:"as_of,omitempty"`
}

// Validate checks the as-of period.
func (r *ForecastRequest) Validate() error {
	_, err := optionalPeriod(r.AsOf)
	return err
}

// AsOfPeriod returns the parsed as-of period; nil means latest.
// Call Validate first.
func (r *ForecastRequest) AsOfPeriod() *timeseries.Period {
	p, _ := optionalPeriod(r.AsOf)
	return p
}

// optionalPeriod parses a "YYYY-MM" string, treating empty as absent.
func optionalPeriod(s string) (*timeseries.Period, error) {
	if s == "" {
		return nil, nil
	}
	p, err := timeseries.ParsePeriod(s)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
