package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tooldeck/backend/internal/http/dto"
	"github.com/tooldeck/backend/internal/repositories"
	"github.com/tooldeck/backend/internal/services"
)

type BlogHandler struct {
	blog     *services.BlogService
	userRepo *repositories.UserRepo
	log      *zap.Logger
}

func NewBlogHandler(blog *services.BlogService, userRepo *repositories.UserRepo, log *zap.Logger) *BlogHandler {
	return &BlogHandler{blog: blog, userRepo: userRepo, log: log}
}

func (h *BlogHandler) SetStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid post id"})
	}

	var req dto.PostStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	actor, err := actorSnapshot(c, h.userRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unknown actor"})
	}

	if err := h.blog.SetStatus(c.Context(), actor, id, req.Status, req.Reason, requestMetadata(c)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *BlogHandler) DeletePost(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid post id"})
	}

	var req dto.DeleteRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	actor, err := actorSnapshot(c, h.userRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unknown actor"})
	}

	if err := h.blog.Delete(c.Context(), actor, id, req.Reason, requestMetadata(c)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
