package sync

import (
	"errors"

	"asset-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync runs.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Get("/targets", h.HandleTargets)
	group.Post("/:target", h.HandleSync)
}

// HandleTargets lists the configured sync targets.
func (h *Handler) HandleTargets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"targets": h.service.Targets()})
}

// HandleSync runs one target.
//
// Query parameters: test_run and wipe (booleans), container (overrides the
// configured container) and verbosity (above 1 returns per-file lines and
// decisions).
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	req := Request{
		Target:    c.Params("target"),
		TestRun:   c.QueryBool("test_run"),
		Wipe:      c.QueryBool("wipe"),
		Container: c.Query("container"),
		Verbosity: c.QueryInt("verbosity", 1),
	}
	l.Info("Sync requested",
		zap.String("target", req.Target),
		zap.Bool("test_run", req.TestRun),
		zap.Bool("wipe", req.Wipe))

	report, err := h.service.Run(c.Context(), req)
	if errors.Is(err, ErrUnknownTarget) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Sync failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  err.Error(),
			"report": report,
		})
	}

	return c.JSON(report)
}
