package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gridcast/gridcast/internal/evaluate"
	"github.com/gridcast/gridcast/internal/forecast"
	"github.com/gridcast/gridcast/internal/models"
)

// GetSeries returns the stored observation series for a region.
func (h *Handler) GetSeries(c *fiber.Ctx) error {
	region := c.Params("region")
	if !regionPattern.MatchString(region) {
		return invalidRegion(c)
	}

	obs, err := h.store.ReadSeries(c.UserContext(), region)
	if err != nil {
		h.logger.Error("Failed to read series", "region", region, "error", err)
		return fiber.ErrInternalServerError
	}

	resp := models.SeriesResponse{
		Region:       region,
		Observations: make([]models.ObservationView, 0, len(obs)),
		Count:        len(obs),
	}
	for _, o := range obs {
		resp.Observations = append(resp.Observations, models.ObservationView{
			Period:       o.Period.String(),
			Value:        o.Value,
			Interpolated: o.Interpolated,
		})
	}

	return c.JSON(resp)
}

// GetForecasts returns the forecast history for a region, optionally
// bounded by start/end target periods.
func (h *Handler) GetForecasts(c *fiber.Ctx) error {
	region := c.Params("region")
	if !regionPattern.MatchString(region) {
		return invalidRegion(c)
	}

	start, err := parseOptionalPeriod(c.Query("start"))
	if err != nil {
		return badRequest(c, "INVALID_PERIOD", err.Error())
	}
	end, err := parseOptionalPeriod(c.Query("end"))
	if err != nil {
		return badRequest(c, "INVALID_PERIOD", err.Error())
	}

	records, err := h.store.ReadForecasts(c.UserContext(), region)
	if err != nil {
		h.logger.Error("Failed to read forecasts", "region", region, "error", err)
		return fiber.ErrInternalServerError
	}

	resp := models.ForecastsResponse{
		Region:    region,
		Forecasts: make([]models.ForecastView, 0, len(records)),
	}
	for _, rec := range records {
		if start != nil && rec.TargetPeriod.Before(*start) {
			continue
		}
		if end != nil && rec.TargetPeriod.After(*end) {
			continue
		}
		resp.Forecasts = append(resp.Forecasts, forecastView(rec))
	}
	resp.Count = len(resp.Forecasts)

	return c.JSON(resp)
}

// GetMetrics returns evaluation metrics for a region. Without query bounds
// it returns the latest as-of snapshot; with start/end it returns the metric
// history whose as-of periods fall inside the range.
func (h *Handler) GetMetrics(c *fiber.Ctx) error {
	region := c.Params("region")
	if !regionPattern.MatchString(region) {
		return invalidRegion(c)
	}

	start, err := parseOptionalPeriod(c.Query("start"))
	if err != nil {
		return badRequest(c, "INVALID_PERIOD", err.Error())
	}
	end, err := parseOptionalPeriod(c.Query("end"))
	if err != nil {
		return badRequest(c, "INVALID_PERIOD", err.Error())
	}

	var metrics []evaluate.Metric
	if start == nil && end == nil {
		metrics, err = h.store.LatestMetrics(c.UserContext(), region)
	} else {
		metrics, err = h.store.ReadMetrics(c.UserContext(), region, start, end)
	}
	if err != nil {
		h.logger.Error("Failed to read metrics", "region", region, "error", err)
		return fiber.ErrInternalServerError
	}

	resp := models.MetricsResponse{
		Region:  region,
		Metrics: make([]models.MetricView, 0, len(metrics)),
		Count:   len(metrics),
	}
	for _, m := range metrics {
		resp.Metrics = append(resp.Metrics, models.MetricView{
			Model:        string(m.Kind),
			WindowMonths: m.Window,
			AsOfPeriod:   m.AsOfPeriod.String(),
			MAE:          m.MAE,
			RMSE:         m.RMSE,
			MAPE:         m.MAPE,
			N:            m.N,
			Stale:        m.Stale,
		})
	}

	return c.JSON(resp)
}

// forecastView converts a forecast record to its response shape.
func forecastView(rec forecast.Record) models.ForecastView {
	return models.ForecastView{
		TargetPeriod: rec.TargetPeriod.String(),
		Model:        string(rec.Kind),
		Point:        rec.Point,
		Lower:        rec.Lower,
		Upper:        rec.Upper,
		GeneratedAt:  rec.GeneratedAt.Format(time.RFC3339),
		FitPeriodEnd: rec.FitPeriodEnd.String(),
		Stale:        rec.Stale,
	}
}
