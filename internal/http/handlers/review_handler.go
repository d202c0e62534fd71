package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tooldeck/backend/internal/http/dto"
	"github.com/tooldeck/backend/internal/repositories"
	"github.com/tooldeck/backend/internal/services"
)

type ReviewHandler struct {
	reviews  *services.ReviewService
	userRepo *repositories.UserRepo
	log      *zap.Logger
}

func NewReviewHandler(reviews *services.ReviewService, userRepo *repositories.UserRepo, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, userRepo: userRepo, log: log}
}

func (h *ReviewHandler) SetVisibility(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid review id"})
	}

	var req dto.VisibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	actor, err := actorSnapshot(c, h.userRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unknown actor"})
	}

	if err := h.reviews.SetVisible(c.Context(), actor, id, req.Visible, req.Reason, requestMetadata(c)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *ReviewHandler) DeleteReview(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid review id"})
	}

	var req dto.DeleteRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	actor, err := actorSnapshot(c, h.userRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unknown actor"})
	}

	if err := h.reviews.Delete(c.Context(), actor, id, req.Reason, requestMetadata(c)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
