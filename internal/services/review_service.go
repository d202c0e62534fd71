package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tooldeck/backend/internal/models"
	"github.com/tooldeck/backend/internal/repositories"
)

type ReviewService struct {
	reviewRepo *repositories.ReviewRepo
	writer     *AuditWriter
	log        *zap.Logger
}

func NewReviewService(reviewRepo *repositories.ReviewRepo, writer *AuditWriter, log *zap.Logger) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, writer: writer, log: log}
}

func (s *ReviewService) SetVisible(ctx context.Context, actor models.ActorSnapshot, id uuid.UUID, visible bool, reason string, meta models.RequestMetadata) error {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if review.Visible == visible {
		return nil
	}

	if err := s.reviewRepo.SetVisible(ctx, id, visible); err != nil {
		return err
	}

	action := models.ActionUnhidden
	if !visible {
		action = models.ActionHidden
	}
	changes := []models.Change{{Field: "visible", OldValue: review.Visible, NewValue: visible}}
	if _, err := s.writer.RecordContentAction(ctx, models.CategoryReviewManagement, action, actor, id, models.TargetReview, reviewDisplayName(review.Body), changes, reason, meta); err != nil {
		s.log.Warn("review visibility change not fully audited", zap.String("review_id", id.String()))
	}
	return nil
}

// Delete snapshots the review content into the audit record before removal.
func (s *ReviewService) Delete(ctx context.Context, actor models.ActorSnapshot, id uuid.UUID, reason string, meta models.RequestMetadata) error {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.writer.RecordReviewDeletion(ctx, actor, review, reviewDisplayName(review.Body), reason, meta); err != nil {
		s.log.Warn("review deletion not fully audited", zap.String("review_id", id.String()))
	}

	return s.reviewRepo.Delete(ctx, id)
}
