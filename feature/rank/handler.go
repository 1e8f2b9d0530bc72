package rank

import (
	"errors"

	"rank-api/core/logger"
	"rank-api/feature/rank/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for ranks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the rank routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/projects/:projectId/items")
	group.Post("/", h.HandleCreateItem)
	group.Get("/", h.HandleListItems)
	group.Get("/:itemId", h.HandleGetItem)
	group.Delete("/:itemId", h.HandleDeleteItem)
	group.Post("/:itemId/rank", h.HandleRankItem)
}

// HandleCreateItem registers an item for ranking.
// @Summary Create Item
// @Description Registers an item in a project with its score range. The rank starts with no scores.
// @Tags items
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param request body models.CreateItemRequest true "Item"
// @Success 201 {object} models.Rank "Created rank"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 409 {object} map[string]string "Item already exists"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /projects/{projectId}/items [post]
func (h *Handler) HandleCreateItem(c *fiber.Ctx) error {
	var req models.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item data: " + err.Error()})
	}

	rank, err := h.service.CreateItem(c.UserContext(), c.Params("projectId"), req)
	if err != nil {
		return h.writeError(c, "Create item failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(rank)
}

// HandleListItems lists the items of a project.
// @Summary List Items
// @Description Returns the live ranks of a project ordered by creation time.
// @Tags items
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {array} models.Rank "Ranks"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /projects/{projectId}/items [get]
func (h *Handler) HandleListItems(c *fiber.Ctx) error {
	ranks, err := h.service.ListItems(c.UserContext(), c.Params("projectId"))
	if err != nil {
		return h.writeError(c, "List items failed", err)
	}
	return c.JSON(ranks)
}

// HandleGetItem returns the rank of an item.
// @Summary Get Item
// @Description Returns the current average and score count of an item.
// @Tags items
// @Produce json
// @Param projectId path string true "Project ID"
// @Param itemId path string true "Item ID"
// @Success 200 {object} models.Rank "Rank"
// @Failure 404 {object} map[string]string "Item not found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /projects/{projectId}/items/{itemId} [get]
func (h *Handler) HandleGetItem(c *fiber.Ctx) error {
	rank, err := h.service.GetItem(c.UserContext(), c.Params("projectId"), c.Params("itemId"))
	if err != nil {
		return h.writeError(c, "Get item failed", err)
	}
	return c.JSON(rank)
}

// HandleRankItem submits a score for an item.
// @Summary Rank Item
// @Description Folds one score into the item's running average.
// @Tags items
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param itemId path string true "Item ID"
// @Param request body models.RankItemRequest true "Score"
// @Success 200 {object} models.Rank "Updated rank"
// @Failure 400 {object} map[string]string "Invalid or out of range score"
// @Failure 404 {object} map[string]string "Item not found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /projects/{projectId}/items/{itemId}/rank [post]
func (h *Handler) HandleRankItem(c *fiber.Ctx) error {
	var req models.RankItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid score data: " + err.Error()})
	}

	rank, err := h.service.RankItem(c.UserContext(), c.Params("projectId"), c.Params("itemId"), req)
	if err != nil {
		return h.writeError(c, "Rank item failed", err)
	}
	return c.JSON(rank)
}

// HandleDeleteItem soft-deletes an item.
// @Summary Delete Item
// @Description Marks an item as deleted. It no longer appears in reads and cannot be ranked.
// @Tags items
// @Param projectId path string true "Project ID"
// @Param itemId path string true "Item ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Item not found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Security ApiKeyAuth
// @Router /projects/{projectId}/items/{itemId} [delete]
func (h *Handler) HandleDeleteItem(c *fiber.Ctx) error {
	if err := h.service.DeleteItem(c.UserContext(), c.Params("projectId"), c.Params("itemId")); err != nil {
		return h.writeError(c, "Delete item failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrInvalidRequest), errors.Is(err, models.ErrScoreOutOfRange):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) writeError(c *fiber.Ctx, msg string, err error) error {
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		logger.WithRayID(h.service.logger, c).Error(msg,
			zap.String("project_id", c.Params("projectId")),
			zap.String("item_id", c.Params("itemId")),
			zap.Error(err))
		// Storage failures are not echoed to clients.
		return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
