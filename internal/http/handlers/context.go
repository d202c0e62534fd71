package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tooldeck/backend/internal/middleware"
	"github.com/tooldeck/backend/internal/models"
	"github.com/tooldeck/backend/internal/repositories"
)

// requestMetadata captures the request context stored on every audit entry.
func requestMetadata(c *fiber.Ctx) models.RequestMetadata {
	return models.RequestMetadata{
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
		SessionID: middleware.GetSessionID(c),
	}
}

// actorSnapshot loads the acting user so the audit record carries their
// identity as of the action, not as of some later read.
func actorSnapshot(c *fiber.Ctx, userRepo *repositories.UserRepo) (models.ActorSnapshot, error) {
	user, err := userRepo.GetByID(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return models.ActorSnapshot{}, err
	}
	return models.ActorSnapshot{ID: user.ID, Name: user.Name, Role: user.Role}, nil
}
