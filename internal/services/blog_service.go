package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tooldeck/backend/internal/models"
	"github.com/tooldeck/backend/internal/repositories"
)

type BlogService struct {
	blogRepo *repositories.BlogRepo
	writer   *AuditWriter
	log      *zap.Logger
}

func NewBlogService(blogRepo *repositories.BlogRepo, writer *AuditWriter, log *zap.Logger) *BlogService {
	return &BlogService{blogRepo: blogRepo, writer: writer, log: log}
}

func (s *BlogService) SetStatus(ctx context.Context, actor models.ActorSnapshot, id uuid.UUID, status, reason string, meta models.RequestMetadata) error {
	switch status {
	case models.PostStatusDraft, models.PostStatusPublished, models.PostStatusRemoved:
	default:
		return fmt.Errorf("invalid post status %q", status)
	}

	post, err := s.blogRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.Status == status {
		return nil
	}

	if err := s.blogRepo.SetStatus(ctx, id, status); err != nil {
		return err
	}

	action := models.ActionUnpublished
	if status == models.PostStatusPublished {
		action = models.ActionPublished
	}
	changes := []models.Change{{Field: "status", OldValue: post.Status, NewValue: status}}
	if _, err := s.writer.RecordContentAction(ctx, models.CategoryBlogModeration, action, actor, id, models.TargetBlogPost, post.Title, changes, reason, meta); err != nil {
		s.log.Warn("post status change not fully audited", zap.String("post_id", id.String()))
	}
	return nil
}

// Delete snapshots the post into the audit record before the row goes away.
func (s *BlogService) Delete(ctx context.Context, actor models.ActorSnapshot, id uuid.UUID, reason string, meta models.RequestMetadata) error {
	post, err := s.blogRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.writer.RecordPostDeletion(ctx, actor, post, reason, meta); err != nil {
		s.log.Warn("post deletion not fully audited", zap.String("post_id", id.String()))
	}

	return s.blogRepo.Delete(ctx, id)
}
