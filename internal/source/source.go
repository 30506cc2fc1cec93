// Package source fetches raw monthly observations from upstream data
// providers. The EIA retail-sales API is the production source; a static
// source serves tests and offline backfills.
package source

import (
	"context"
	"fmt"

	"github.com/gridcast/gridcast/internal/timeseries"
)

// Source fetches raw observations for a region over an inclusive period
// range. Implementations return observations in ascending period order and
// never fabricate missing months; gap handling belongs to alignment.
type Source interface {
	FetchRange(ctx context.Context, region string, start, end timeseries.Period) ([]timeseries.Observation, error)
}

// UpstreamError reports a non-OK response from the upstream provider.
// Retryable for server-side status codes.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the failure is worth retrying.
func (e *UpstreamError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
