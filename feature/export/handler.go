package export

import (
	"errors"

	"rank-api/core/logger"
	rankmodels "rank-api/feature/rank/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for exports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the export routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/projects/:projectId/exports", h.HandleCreateExport)
	app.Get("/projects/:projectId/exports", h.HandleListExports)
}

// HandleCreateExport writes a snapshot of the project's ranks to storage.
// @Summary Export Project
// @Description Writes the live ranks of a project as a JSON object in the export bucket.
// @Tags exports
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 201 {object} export.Result "Written export"
// @Failure 400 {object} map[string]string "Invalid project"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /projects/{projectId}/exports [post]
func (h *Handler) HandleCreateExport(c *fiber.Ctx) error {
	res, err := h.service.Export(c.UserContext(), c.Params("projectId"))
	if err != nil {
		return h.writeError(c, "Export failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// HandleListExports lists the exports written for a project.
// @Summary List Exports
// @Description Lists export objects of a project, oldest first.
// @Tags exports
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {array} export.Object "Exports"
// @Failure 400 {object} map[string]string "Invalid project"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /projects/{projectId}/exports [get]
func (h *Handler) HandleListExports(c *fiber.Ctx) error {
	objects, err := h.service.List(c.UserContext(), c.Params("projectId"))
	if err != nil {
		return h.writeError(c, "List exports failed", err)
	}
	return c.JSON(objects)
}

func (h *Handler) writeError(c *fiber.Ctx, msg string, err error) error {
	if errors.Is(err, rankmodels.ErrInvalidRequest) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.service.logger, c).Error(msg,
		zap.String("project_id", c.Params("projectId")),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
