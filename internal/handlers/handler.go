// Package handlers implements the HTTP surface of the engine: run triggers
// for the pipeline and read-only views over the store.
package handlers

import (
	"regexp"

	"github.com/gofiber/fiber/v2"

	"github.com/gridcast/gridcast/internal/logging"
	"github.com/gridcast/gridcast/internal/models"
	"github.com/gridcast/gridcast/internal/pipeline"
	"github.com/gridcast/gridcast/internal/store"
)

// regionPattern matches the two-letter state codes the source understands.
var regionPattern = regexp.MustCompile(`^[A-Z]{2}$`)

// Handler contains all HTTP handlers
type Handler struct {
	logger       *logging.Logger
	store        store.Store
	orchestrator *pipeline.Orchestrator
}

// New creates a new handler instance
func New(logger *logging.Logger, st store.Store, orc *pipeline.Orchestrator) *Handler {
	return &Handler{
		logger:       logger,
		store:        st,
		orchestrator: orc,
	}
}

// invalidRegion writes the 400 response for a malformed region parameter.
func invalidRegion(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INVALID_REGION",
			Message: "Region must be a two-letter state code (e.g. NJ).",
			Path:    c.Path(),
		},
	})
}
