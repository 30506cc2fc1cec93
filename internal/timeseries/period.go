// Package timeseries defines the monthly series primitives shared by the
// forecasting engine: calendar periods, observations, and the alignment
// (preprocessing) step that turns raw source data into a clean series.
package timeseries

import (
	"encoding/json"
	"fmt"
	"time"
)

// Period identifies a calendar month. The zero value is invalid; construct
// with NewPeriod or ParsePeriod.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod creates a Period, normalizing out-of-range months
// (e.g. month 13 becomes January of the next year).
func NewPeriod(year int, month time.Month) Period {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses "YYYY-MM" into a Period.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: expected YYYY-MM", s)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// PeriodFromTime returns the period containing t.
func PeriodFromTime(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// IsZero reports whether p is the invalid zero value.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// String formats the period as "YYYY-MM".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Time returns the first day of the month in UTC.
func (p Period) Time() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the period n months after p (n may be negative).
func (p Period) AddMonths(n int) Period {
	return NewPeriod(p.Year, p.Month+time.Month(n))
}

// Next returns the period immediately after p.
func (p Period) Next() Period {
	return p.AddMonths(1)
}

// index is the absolute month count, used for ordering and distance.
func (p Period) index() int {
	return p.Year*12 + int(p.Month) - 1
}

// Before reports whether p is strictly earlier than o.
func (p Period) Before(o Period) bool {
	return p.index() < o.index()
}

// After reports whether p is strictly later than o.
func (p Period) After(o Period) bool {
	return p.index() > o.index()
}

// MonthsSince returns the number of months from o to p
// (positive when p is later).
func (p Period) MonthsSince(o Period) int {
	return p.index() - o.index()
}

// MarshalJSON encodes the period as "YYYY-MM".
func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a "YYYY-MM" string.
func (p *Period) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
