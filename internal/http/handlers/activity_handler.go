package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tooldeck/backend/internal/http/dto"
	"github.com/tooldeck/backend/internal/services"
)

// ActivityHandler serves the reconciled audit history and its CSV export.
type ActivityHandler struct {
	activity *services.ActivityService
	log      *zap.Logger
}

func NewActivityHandler(activity *services.ActivityService, log *zap.Logger) *ActivityHandler {
	return &ActivityHandler{activity: activity, log: log}
}

func filterFromQuery(c *fiber.Ctx) services.ActivityFilter {
	return services.ActivityFilter{
		Search:      c.Query("search"),
		Action:      c.Query("action"),
		PerformerID: c.Query("performer_id"),
		Window:      c.Query("days"),
		Category:    c.Query("category"),
		Before:      c.Query("before"),
	}
}

// GetActivity returns {entries, staff, stats}. All filters are optional and
// malformed values degrade to "match everything in the default window".
func (h *ActivityHandler) GetActivity(c *fiber.Ctx) error {
	feed, err := h.activity.Query(c.Context(), filterFromQuery(c))
	if err != nil {
		h.log.Error("activity query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to load activity"})
	}
	return c.JSON(feed)
}

// ExportActivity streams the feed as a CSV download. An empty result
// produces no file.
func (h *ActivityHandler) ExportActivity(c *fiber.Ctx) error {
	filter := filterFromQuery(c)
	feed, err := h.activity.Query(c.Context(), filter)
	if err != nil {
		h.log.Error("activity export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to export activity"})
	}

	data := services.BuildActivityCSV(feed.Entries)
	if data == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	filename := services.ExportFilename("activity_log", time.Now(), filter.Action, filter.Window)
	c.Set("Content-Type", "text/csv; charset=utf-8")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}
