package pipeline

import "time"

// Operation names for run results.
const (
	OpIngest   = "ingest"
	OpForecast = "forecast"
)

// Run statuses. Soft outcomes (no data, insufficient history) are reported
// here rather than as errors; hard I/O failures are returned as errors.
const (
	StatusOK                  = "ok"
	StatusNoData              = "no_data"
	StatusInsufficientHistory = "insufficient_history"
	StatusFailed              = "failed"
)

// Result summarizes one pipeline run. Published to the events broker and
// returned to HTTP callers.
type Result struct {
	RunID        string    `json:"run_id"`
	Op           string    `json:"operation"`
	Region       string    `json:"region"`
	Status       string    `json:"status"`
	Message      string    `json:"message,omitempty"`
	Observations int       `json:"observations"`
	Forecasts    int       `json:"forecasts"`
	Metrics      int       `json:"metrics"`
	StartedAt    time.Time `json:"started_at"`
	DurationMs   int64     `json:"duration_ms"`
}
