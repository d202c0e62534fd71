package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tooldeck/backend/internal/http/dto"
	"github.com/tooldeck/backend/internal/repositories"
	"github.com/tooldeck/backend/internal/services"
)

// AdminUserHandler exposes privileged user management. Every operation goes
// through UserAdminService, which is where the audit write happens.
type AdminUserHandler struct {
	admin    *services.UserAdminService
	userRepo *repositories.UserRepo
	log      *zap.Logger
}

func NewAdminUserHandler(admin *services.UserAdminService, userRepo *repositories.UserRepo, log *zap.Logger) *AdminUserHandler {
	return &AdminUserHandler{admin: admin, userRepo: userRepo, log: log}
}

func (h *AdminUserHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Email == "" || req.Name == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "email, name and password are required"})
	}

	actor, err := actorSnapshot(c, h.userRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unknown actor"})
	}

	user, err := h.admin.Create(c.Context(), actor, req.Email, req.Name, req.Role, req.Password, req.Reason, requestMetadata(c))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: user})
}

func (h *AdminUserHandler) ChangeRole(c *fiber.Ctx) error {
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid user id"})
	}

	var req dto.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	actor, err := actorSnapshot(c, h.userRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unknown actor"})
	}

	user, err := h.admin.ChangeRole(c.Context(), actor, targetID, req.Role, req.Reason, requestMetadata(c))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}

func (h *AdminUserHandler) BlockUser(c *fiber.Ctx) error {
	return h.setBlocked(c, true)
}

func (h *AdminUserHandler) UnblockUser(c *fiber.Ctx) error {
	return h.setBlocked(c, false)
}

func (h *AdminUserHandler) setBlocked(c *fiber.Ctx, blocked bool) error {
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid user id"})
	}

	var req dto.BlockRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	actor, err := actorSnapshot(c, h.userRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unknown actor"})
	}

	meta := requestMetadata(c)
	if blocked {
		err = h.admin.Block(c.Context(), actor, targetID, req.Reason, meta)
	} else {
		err = h.admin.Unblock(c.Context(), actor, targetID, req.Reason, meta)
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *AdminUserHandler) UpdateProfile(c *fiber.Ctx) error {
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid user id"})
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "name is required"})
	}

	actor, err := actorSnapshot(c, h.userRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unknown actor"})
	}

	user, err := h.admin.UpdateProfile(c.Context(), actor, targetID, req.Name, req.Bio, req.Website, req.Reason, requestMetadata(c))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}

func (h *AdminUserHandler) DeleteUser(c *fiber.Ctx) error {
	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid user id"})
	}

	var req dto.DeleteRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	actor, err := actorSnapshot(c, h.userRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "unknown actor"})
	}

	if err := h.admin.Delete(c.Context(), actor, targetID, req.Reason, requestMetadata(c)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
