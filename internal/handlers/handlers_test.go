package handlers_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gridcast/gridcast/internal/config"
	"github.com/gridcast/gridcast/internal/logging"
	"github.com/gridcast/gridcast/internal/models"
	"github.com/gridcast/gridcast/internal/pipeline"
	"github.com/gridcast/gridcast/internal/router"
	"github.com/gridcast/gridcast/internal/source"
	"github.com/gridcast/gridcast/internal/store"
	"github.com/gridcast/gridcast/internal/timeseries"
)

// seasonalObs builds months of positive synthetic observations.
func seasonalObs(start timeseries.Period, months int) []timeseries.Observation {
	profile := []float64{
		1.10, 1.00, 0.85, 0.75, 0.70, 0.90,
		1.20, 1.25, 1.00, 0.75, 0.80, 1.05,
	}
	obs := make([]timeseries.Observation, months)
	for i := 0; i < months; i++ {
		p := start.AddMonths(i)
		obs[i] = timeseries.Observation{Period: p, Value: 500 * profile[int(p.Month)-1]}
	}
	return obs
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	st := store.NewMemoryStore()
	src := source.NewStaticSource(map[string][]timeseries.Observation{
		"NJ": seasonalObs(timeseries.NewPeriod(2021, time.January), 36),
	})
	logger := logging.NewDevelopment()

	cfg := config.DefaultConfig()
	orc := pipeline.New(st, src, nil, logger, cfg.Pipeline)

	return router.New(logger, st, orc, *cfg)
}

func decode[T any](t *testing.T, body io.Reader) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	health := decode[models.HealthResponse](t, resp.Body)
	if health.Status != "healthy" {
		t.Errorf("Expected healthy, got %s", health.Status)
	}
}

func TestTriggerIngestAndReads(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("POST", "/v1/regions/NJ/ingest", nil), -1)
	if err != nil {
		t.Fatalf("Ingest request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}

	run := decode[models.RunResponse](t, resp.Body)
	if run.Operation != "ingest" || run.Status != "ok" {
		t.Fatalf("Unexpected run result: %+v", run)
	}
	if run.Observations != 36 {
		t.Errorf("Expected 36 observations, got %d", run.Observations)
	}
	if run.RunID == "" {
		t.Error("Expected a run ID")
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/v1/regions/NJ/series", nil))
	if err != nil {
		t.Fatalf("Series request failed: %v", err)
	}
	series := decode[models.SeriesResponse](t, resp.Body)
	if series.Count != 36 {
		t.Errorf("Expected 36 observations in series, got %d", series.Count)
	}
	if series.Observations[0].Period != "2021-01" {
		t.Errorf("Expected first period 2021-01, got %s", series.Observations[0].Period)
	}
}

func TestTriggerForecastAndReads(t *testing.T) {
	app := newTestApp(t)

	if _, err := app.Test(httptest.NewRequest("POST", "/v1/regions/NJ/ingest", nil), -1); err != nil {
		t.Fatalf("Ingest request failed: %v", err)
	}

	resp, err := app.Test(httptest.NewRequest("POST", "/v1/regions/NJ/forecast", nil), -1)
	if err != nil {
		t.Fatalf("Forecast request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}

	run := decode[models.RunResponse](t, resp.Body)
	if run.Forecasts != 2 {
		t.Errorf("Expected 2 forecasts, got %d", run.Forecasts)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/v1/regions/NJ/forecasts", nil))
	if err != nil {
		t.Fatalf("Forecasts request failed: %v", err)
	}
	forecasts := decode[models.ForecastsResponse](t, resp.Body)
	if forecasts.Count != 2 {
		t.Fatalf("Expected 2 forecast records, got %d", forecasts.Count)
	}
	for _, f := range forecasts.Forecasts {
		if f.TargetPeriod != "2024-01" {
			t.Errorf("Forecast %s targets %s, want 2024-01", f.Model, f.TargetPeriod)
		}
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/v1/regions/NJ/metrics", nil))
	if err != nil {
		t.Fatalf("Metrics request failed: %v", err)
	}
	metrics := decode[models.MetricsResponse](t, resp.Body)
	// 2 model kinds x 4 windows
	if metrics.Count != 8 {
		t.Errorf("Expected 8 metrics, got %d", metrics.Count)
	}

	// Range query reads metric history instead of the latest snapshot
	resp, err = app.Test(httptest.NewRequest("GET", "/v1/regions/NJ/metrics?start=2024-01", nil))
	if err != nil {
		t.Fatalf("Metrics range request failed: %v", err)
	}
	metrics = decode[models.MetricsResponse](t, resp.Body)
	if metrics.Count != 0 {
		t.Errorf("Expected 0 metrics with as-of in 2024, got %d", metrics.Count)
	}
}

func TestForecastRangeFilter(t *testing.T) {
	app := newTestApp(t)

	if _, err := app.Test(httptest.NewRequest("POST", "/v1/regions/NJ/ingest", nil), -1); err != nil {
		t.Fatalf("Ingest request failed: %v", err)
	}
	if _, err := app.Test(httptest.NewRequest("POST", "/v1/regions/NJ/forecast", nil), -1); err != nil {
		t.Fatalf("Forecast request failed: %v", err)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/regions/NJ/forecasts?start=2024-02", nil))
	if err != nil {
		t.Fatalf("Forecasts request failed: %v", err)
	}
	forecasts := decode[models.ForecastsResponse](t, resp.Body)
	if forecasts.Count != 0 {
		t.Errorf("Expected 0 forecasts after 2024-02, got %d", forecasts.Count)
	}
}

func TestForecastInsufficientHistory(t *testing.T) {
	st := store.NewMemoryStore()
	src := source.NewStaticSource(map[string][]timeseries.Observation{
		"NJ": seasonalObs(timeseries.NewPeriod(2023, time.July), 6),
	})
	logger := logging.NewDevelopment()
	cfg := config.DefaultConfig()
	app := router.New(logger, st, pipeline.New(st, src, nil, logger, cfg.Pipeline), *cfg)

	if _, err := app.Test(httptest.NewRequest("POST", "/v1/regions/NJ/ingest", nil), -1); err != nil {
		t.Fatalf("Ingest request failed: %v", err)
	}

	resp, err := app.Test(httptest.NewRequest("POST", "/v1/regions/NJ/forecast", nil), -1)
	if err != nil {
		t.Fatalf("Forecast request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", resp.StatusCode)
	}

	run := decode[models.RunResponse](t, resp.Body)
	if run.Status != "insufficient_history" {
		t.Errorf("Expected insufficient_history, got %s", run.Status)
	}
}

func TestInvalidRegion(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{
		"/v1/regions/nj/series",
		"/v1/regions/NEWJERSEY/series",
		"/v1/regions/N1/ingest",
	} {
		method := "GET"
		if path == "/v1/regions/N1/ingest" {
			method = "POST"
		}
		resp, err := app.Test(httptest.NewRequest(method, path, nil))
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, resp.StatusCode)
		}
	}
}

func TestInvalidPeriodQuery(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/regions/NJ/forecasts?start=202401", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected 400 for malformed period, got %d", resp.StatusCode)
	}
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/unknown", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}
