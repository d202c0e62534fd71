package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tooldeck/backend/internal/models"
	"github.com/tooldeck/backend/internal/repositories"
	"github.com/tooldeck/backend/internal/sitemeta"
)

type ToolService struct {
	toolRepo *repositories.ToolRepo
	writer   *AuditWriter
	parser   *sitemeta.Parser
	log      *zap.Logger
}

func NewToolService(toolRepo *repositories.ToolRepo, writer *AuditWriter, parser *sitemeta.Parser, log *zap.Logger) *ToolService {
	return &ToolService{toolRepo: toolRepo, writer: writer, parser: parser, log: log}
}

// Create registers a new catalog tool. Homepage metadata backfills missing
// description; the fetch is best-effort.
func (s *ToolService) Create(ctx context.Context, actor models.ActorSnapshot, name, url string, description, category *string, reason string, meta models.RequestMetadata) (*models.Tool, error) {
	if description == nil && s.parser != nil {
		if fetched, err := s.parser.Fetch(ctx, url); err == nil && fetched.Description != "" {
			description = &fetched.Description
		} else if err != nil {
			s.log.Debug("sitemeta fetch failed", zap.String("url", url), zap.Error(err))
		}
	}

	tool, err := s.toolRepo.Create(ctx, name, url, description, category, actor.ID)
	if err != nil {
		return nil, err
	}

	if _, err := s.writer.RecordContentAction(ctx, models.CategoryToolManagement, models.ActionCreated, actor, tool.ID, models.TargetTool, tool.Name, nil, reason, meta); err != nil {
		s.log.Warn("tool creation not fully audited", zap.String("tool_id", tool.ID.String()))
	}
	return tool, nil
}

func (s *ToolService) Update(ctx context.Context, actor models.ActorSnapshot, id uuid.UUID, name, url string, description, category *string, reason string, meta models.RequestMetadata) (*models.Tool, error) {
	tool, err := s.toolRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := toolChanges(tool, name, url, description, category)
	if len(changes) == 0 {
		return tool, nil
	}

	if err := s.toolRepo.Update(ctx, id, name, url, description, category); err != nil {
		return nil, err
	}

	if _, err := s.writer.RecordContentAction(ctx, models.CategoryToolManagement, models.ActionDataModified, actor, id, models.TargetTool, name, changes, reason, meta); err != nil {
		s.log.Warn("tool update not fully audited", zap.String("tool_id", id.String()))
	}

	return s.toolRepo.GetByID(ctx, id)
}

func (s *ToolService) SetPublished(ctx context.Context, actor models.ActorSnapshot, id uuid.UUID, published bool, reason string, meta models.RequestMetadata) error {
	tool, err := s.toolRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tool.Published == published {
		return nil
	}

	if err := s.toolRepo.SetPublished(ctx, id, published); err != nil {
		return err
	}

	action := models.ActionPublished
	if !published {
		action = models.ActionUnpublished
	}
	changes := []models.Change{{Field: "published", OldValue: tool.Published, NewValue: published}}
	if _, err := s.writer.RecordContentAction(ctx, models.CategoryToolManagement, action, actor, id, models.TargetTool, tool.Name, changes, reason, meta); err != nil {
		s.log.Warn("tool publish change not fully audited", zap.String("tool_id", id.String()))
	}
	return nil
}

// Delete snapshots the tool into the audit record before the row goes away.
func (s *ToolService) Delete(ctx context.Context, actor models.ActorSnapshot, id uuid.UUID, reason string, meta models.RequestMetadata) error {
	tool, err := s.toolRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.writer.RecordToolDeletion(ctx, actor, tool, reason, meta); err != nil {
		s.log.Warn("tool deletion not fully audited", zap.String("tool_id", id.String()))
	}

	return s.toolRepo.Delete(ctx, id)
}

func toolChanges(tool *models.Tool, name, url string, description, category *string) []models.Change {
	var changes []models.Change
	if name != tool.Name {
		changes = append(changes, models.Change{Field: "name", OldValue: tool.Name, NewValue: name})
	}
	if url != tool.URL {
		changes = append(changes, models.Change{Field: "url", OldValue: tool.URL, NewValue: url})
	}
	if !equalOptional(tool.Description, description) {
		changes = append(changes, models.Change{Field: "description", OldValue: optionalValue(tool.Description), NewValue: optionalValue(description)})
	}
	if !equalOptional(tool.Category, category) {
		changes = append(changes, models.Change{Field: "category", OldValue: optionalValue(tool.Category), NewValue: optionalValue(category)})
	}
	return changes
}
