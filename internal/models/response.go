package models

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// RunResponse represents the outcome of a pipeline run (ingest or
// forecast) triggered over HTTP.
type RunResponse struct {
	RunID        string `json:"run_id"`
	Operation    string `json:"operation"`
	Region       string `json:"region"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	Observations int    `json:"observations"`
	Forecasts    int    `json:"forecasts"`
	Metrics      int    `json:"metrics"`
	StartedAt    string `json:"started_at"`
	DurationMs   int64  `json:"duration_ms"`
}

// ObservationView represents a single stored observation in responses
type ObservationView struct {
	Period       string  `json:"period"` // Format: YYYY-MM
	Value        float64 `json:"value"`
	Interpolated bool    `json:"interpolated,omitempty"`
}

// SeriesResponse represents a stored series read
type SeriesResponse struct {
	Region       string            `json:"region"`
	Observations []ObservationView `json:"observations"`
	Count        int               `json:"count"`
}

// ForecastView represents a single forecast record in responses
type ForecastView struct {
	TargetPeriod string   `json:"target_period"` // Format: YYYY-MM
	Model        string   `json:"model"`
	Point        float64  `json:"point"`
	Lower        *float64 `json:"lower,omitempty"`
	Upper        *float64 `json:"upper,omitempty"`
	GeneratedAt  string   `json:"generated_at"`
	FitPeriodEnd string   `json:"fit_period_end"`
	Stale        bool     `json:"stale,omitempty"`
}

// ForecastsResponse represents a forecast history read
type ForecastsResponse struct {
	Region    string         `json:"region"`
	Forecasts []ForecastView `json:"forecasts"`
	Count     int            `json:"count"`
}

// MetricView represents a single evaluation metric in responses.
// MAPE is null when any actual in the window is zero or the window
// holds no evaluable pairs.
type MetricView struct {
	Model        string   `json:"model"`
	WindowMonths int      `json:"window_months"`
	AsOfPeriod   string   `json:"as_of_period"` // Format: YYYY-MM
	MAE          float64  `json:"mae"`
	RMSE         float64  `json:"rmse"`
	MAPE         *float64 `json:"mape"`
	N            int      `json:"n"`
	Stale        bool     `json:"stale"`
}

// MetricsResponse represents an evaluation metrics read
type MetricsResponse struct {
	Region  string       `json:"region"`
	Metrics []MetricView `json:"metrics"`
	Count   int          `json:"count"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
