package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gridcast/gridcast/internal/models"
	"github.com/gridcast/gridcast/internal/pipeline"
	"github.com/gridcast/gridcast/internal/timeseries"
)

// TriggerIngest runs the ingest operation for a region. The optional body
// pins the fetch range; without it the run catches up from stored history.
func (h *Handler) TriggerIngest(c *fiber.Ctx) error {
	region := c.Params("region")
	if !regionPattern.MatchString(region) {
		return invalidRegion(c)
	}

	var req models.IngestRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "INVALID_BODY", "Request body must be valid JSON.")
		}
	}

	if err := req.Validate(); err != nil {
		return badRequest(c, "INVALID_PERIOD", err.Error())
	}
	start, end := req.Range()

	res, err := h.orchestrator.RunIngest(c.UserContext(), region, start, end)
	if err != nil {
		h.logger.Error("Ingest run failed", "region", region, "run_id", res.RunID, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INGEST_FAILED",
				Message: res.Message,
				Details: map[string]interface{}{"run_id": res.RunID},
			},
		})
	}

	return c.JSON(runResponse(res))
}

// TriggerForecast runs the forecast operation for a region. The optional
// body pins the fit window end; without it the latest stored period is used.
func (h *Handler) TriggerForecast(c *fiber.Ctx) error {
	region := c.Params("region")
	if !regionPattern.MatchString(region) {
		return invalidRegion(c)
	}

	var req models.ForecastRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "INVALID_BODY", "Request body must be valid JSON.")
		}
	}

	if err := req.Validate(); err != nil {
		return badRequest(c, "INVALID_PERIOD", err.Error())
	}

	res, err := h.orchestrator.RunForecast(c.UserContext(), region, req.AsOfPeriod())
	if err != nil {
		h.logger.Error("Forecast run failed", "region", region, "run_id", res.RunID, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "FORECAST_FAILED",
				Message: res.Message,
				Details: map[string]interface{}{"run_id": res.RunID},
			},
		})
	}

	// Soft outcomes surface as 422: the request was fine, the data is not
	// ready for it.
	if res.Status == pipeline.StatusInsufficientHistory || res.Status == pipeline.StatusNoData {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(runResponse(res))
	}

	return c.JSON(runResponse(res))
}

// parseOptionalPeriod parses a "YYYY-MM" string, treating empty as absent.
func parseOptionalPeriod(s string) (*timeseries.Period, error) {
	if s == "" {
		return nil, nil
	}
	p, err := timeseries.ParsePeriod(s)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// runResponse converts a pipeline result to its response shape.
func runResponse(res pipeline.Result) models.RunResponse {
	return models.RunResponse{
		RunID:        res.RunID,
		Operation:    res.Op,
		Region:       res.Region,
		Status:       res.Status,
		Message:      res.Message,
		Observations: res.Observations,
		Forecasts:    res.Forecasts,
		Metrics:      res.Metrics,
		StartedAt:    res.StartedAt.Format(time.RFC3339),
		DurationMs:   res.DurationMs,
	}
}

// badRequest writes a 400 response with the given code and message.
func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Path:    c.Path(),
		},
	})
}
