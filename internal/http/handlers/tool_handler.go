package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tooldeck/backend/internal/http/dto"
	"github.com/tooldeck/backend/internal/repositories"
	"github.com/tooldeck/backend/internal/services"
)

type ToolHandler struct {
	tools    *services.ToolService
	userRepo *repositories.UserRepo
	log      *zap.Logger
}

func NewToolHandler(tools *services.ToolService, userRepo *repositories.UserRepo, log *zap.Logger) *ToolHandler {
	return &ToolHandler{tools: tools, userRepo: userRepo, log: log}
}

func (h *ToolHandler) CreateTool(c *fiber.Ctx) error {
	var req dto.CreateToolRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Name == "" || req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "name and url are required"})
	}

	actor, err := actorSnapshot(c, h.userRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unknown actor"})
	}

	tool, err := h.tools.Create(c.Context(), actor, req.Name, req.URL, req.Description, req.Category, req.Reason, requestMetadata(c))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: tool})
}

func (h *ToolHandler) UpdateTool(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid tool id"})
	}

	var req dto.UpdateToolRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	actor, err := actorSnapshot(c, h.userRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unknown actor"})
	}

	tool, err := h.tools.Update(c.Context(), actor, id, req.Name, req.URL, req.Description, req.Category, req.Reason, requestMetadata(c))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: tool})
}

func (h *ToolHandler) SetPublished(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid tool id"})
	}

	var req dto.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	actor, err := actorSnapshot(c, h.userRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unknown actor"})
	}

	if err := h.tools.SetPublished(c.Context(), actor, id, req.Published, req.Reason, requestMetadata(c)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *ToolHandler) DeleteTool(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid tool id"})
	}

	var req dto.DeleteRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	actor, err := actorSnapshot(c, h.userRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unknown actor"})
	}

	if err := h.tools.Delete(c.Context(), actor, id, req.Reason, requestMetadata(c)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
