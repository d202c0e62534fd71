package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tooldeck/backend/internal/events"
	"github.com/tooldeck/backend/internal/models"
)

// AuditInserter is the authoritative half of the dual write.
type AuditInserter interface {
	Insert(ctx context.Context, e *models.AuditEntry) error
}

// LegacyAppender mirrors an entry into the target entity's embedded log.
type LegacyAppender interface {
	AppendAuditLog(ctx context.Context, id uuid.UUID, entry models.LegacyLogEntry, cap int) error
}

// RecordParams is the general write contract. The specialized Record*
// methods below narrow it for the common action shapes.
type RecordParams struct {
	Category    string
	Action      string
	PerformedBy models.ActorSnapshot
	TargetID    uuid.UUID
	TargetType  string
	TargetName  string
	Changes     []models.Change
	Reason      string
	Details     models.Details
	Metadata    models.RequestMetadata
}

// AuditWriter is the single write path for all privileged actions. The
// centralized insert is authoritative and its error is returned to the
// caller; the embedded mirror and the feed event are best-effort and their
// failures are logged, never propagated.
type AuditWriter struct {
	store     AuditInserter
	mirrors   map[string]LegacyAppender
	publisher events.Publisher
	logCap    int
	log       *zap.Logger
}

func NewAuditWriter(store AuditInserter, mirrors map[string]LegacyAppender, publisher events.Publisher, logCap int, log *zap.Logger) *AuditWriter {
	return &AuditWriter{
		store:     store,
		mirrors:   mirrors,
		publisher: publisher,
		logCap:    logCap,
		log:       log,
	}
}

// Record writes the centralized entry, then mirrors it. For destructive
// actions the caller must capture the target snapshot into params.Details
// before the delete executes; afterwards the state is unobtainable.
func (w *AuditWriter) Record(ctx context.Context, params RecordParams) (*models.AuditEntry, error) {
	entry := &models.AuditEntry{
		Category:    params.Category,
		Action:      params.Action,
		PerformedBy: params.PerformedBy,
		TargetID:    params.TargetID,
		TargetType:  params.TargetType,
		TargetName:  params.TargetName,
		Changes:     params.Changes,
		Reason:      params.Reason,
		Details:     params.Details,
		Metadata:    params.Metadata,
	}

	if err := w.store.Insert(ctx, entry); err != nil {
		w.log.Error("audit write failed",
			zap.String("action", params.Action),
			zap.String("target_type", params.TargetType),
			zap.String("target_id", params.TargetID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	w.mirrorLegacy(ctx, entry)
	w.publishEvent(ctx, entry)

	return entry, nil
}

// mirrorLegacy is strictly best-effort: the embedded log must never block or
// roll back the operation it mirrors.
func (w *AuditWriter) mirrorLegacy(ctx context.Context, entry *models.AuditEntry) {
	mirror, ok := w.mirrors[entry.TargetType]
	if !ok {
		return
	}

	legacy := models.LegacyLogEntry{
		Action:      entry.Action,
		Category:    entry.Category,
		PerformedBy: entry.PerformedBy,
		Changes:     entry.Changes,
		Reason:      entry.Reason,
		Metadata:    entry.Metadata,
		Timestamp:   entry.CreatedAt,
	}

	if err := mirror.AppendAuditLog(ctx, entry.TargetID, legacy, w.logCap); err != nil {
		w.log.Warn("legacy audit mirror failed",
			zap.String("action", entry.Action),
			zap.String("target_type", entry.TargetType),
			zap.String("target_id", entry.TargetID.String()),
			zap.Error(err),
		)
	}
}

func (w *AuditWriter) publishEvent(ctx context.Context, entry *models.AuditEntry) {
	if w.publisher == nil {
		return
	}
	err := w.publisher.Publish(ctx, events.StreamAudit, events.Event{
		Type: events.EventAuditRecorded,
		Payload: map[string]any{
			"id":          entry.ID.String(),
			"category":    entry.Category,
			"action":      entry.Action,
			"performer":   entry.PerformedBy.Name,
			"target_type": entry.TargetType,
			"target_name": entry.TargetName,
			"timestamp":   entry.CreatedAt,
		},
	})
	if err != nil {
		w.log.Warn("audit event publish failed", zap.Error(err))
	}
}

// RecordRoleChange logs a role transition: exactly one change record on the
// role field.
func (w *AuditWriter) RecordRoleChange(ctx context.Context, actor models.ActorSnapshot, target *models.User, oldRole, newRole, reason string, meta models.RequestMetadata) (*models.AuditEntry, error) {
	return w.Record(ctx, RecordParams{
		Category:    models.CategoryUserManagement,
		Action:      models.ActionRoleChanged,
		PerformedBy: actor,
		TargetID:    target.ID,
		TargetType:  models.TargetUser,
		TargetName:  target.Name,
		Changes:     []models.Change{{Field: "role", OldValue: oldRole, NewValue: newRole}},
		Reason:      reason,
		Metadata:    meta,
	})
}

// RecordBlock and RecordUnblock log the isBlocked boolean transition.
func (w *AuditWriter) RecordBlock(ctx context.Context, actor models.ActorSnapshot, target *models.User, reason string, meta models.RequestMetadata) (*models.AuditEntry, error) {
	return w.Record(ctx, RecordParams{
		Category:    models.CategoryUserManagement,
		Action:      models.ActionBlocked,
		PerformedBy: actor,
		TargetID:    target.ID,
		TargetType:  models.TargetUser,
		TargetName:  target.Name,
		Changes:     []models.Change{{Field: "is_blocked", OldValue: false, NewValue: true}},
		Reason:      reason,
		Metadata:    meta,
	})
}

func (w *AuditWriter) RecordUnblock(ctx context.Context, actor models.ActorSnapshot, target *models.User, reason string, meta models.RequestMetadata) (*models.AuditEntry, error) {
	return w.Record(ctx, RecordParams{
		Category:    models.CategoryUserManagement,
		Action:      models.ActionUnblocked,
		PerformedBy: actor,
		TargetID:    target.ID,
		TargetType:  models.TargetUser,
		TargetName:  target.Name,
		Changes:     []models.Change{{Field: "is_blocked", OldValue: true, NewValue: false}},
		Reason:      reason,
		Metadata:    meta,
	})
}

// RecordProfileUpdate logs an arbitrary change set against a user profile.
func (w *AuditWriter) RecordProfileUpdate(ctx context.Context, actor models.ActorSnapshot, target *models.User, changes []models.Change, reason string, meta models.RequestMetadata) (*models.AuditEntry, error) {
	return w.Record(ctx, RecordParams{
		Category:    models.CategoryUserManagement,
		Action:      models.ActionProfileUpdated,
		PerformedBy: actor,
		TargetID:    target.ID,
		TargetType:  models.TargetUser,
		TargetName:  target.Name,
		Changes:     changes,
		Reason:      reason,
		Metadata:    meta,
	})
}

// RecordUserCreation logs a new account with its initial identity snapshot.
func (w *AuditWriter) RecordUserCreation(ctx context.Context, actor models.ActorSnapshot, created *models.User, reason string, meta models.RequestMetadata) (*models.AuditEntry, error) {
	return w.Record(ctx, RecordParams{
		Category:    models.CategoryUserManagement,
		Action:      models.ActionAccountCreated,
		PerformedBy: actor,
		TargetID:    created.ID,
		TargetType:  models.TargetUser,
		TargetName:  created.Name,
		Details: models.CreatedUserDetails(models.CreatedUserInfo{
			ID:    created.ID,
			Email: created.Email,
			Name:  created.Name,
			Role:  created.Role,
		}),
		Reason:   reason,
		Metadata: meta,
	})
}

// RecordUserDeletion must run before the user row is deleted; the snapshot
// in details is the only place the identity survives.
func (w *AuditWriter) RecordUserDeletion(ctx context.Context, actor models.ActorSnapshot, target *models.User, reason string, meta models.RequestMetadata) (*models.AuditEntry, error) {
	info := models.DeletedUserInfo{
		ID:      target.ID,
		Email:   target.Email,
		Name:    target.Name,
		Role:    target.Role,
		Blocked: target.Blocked,
	}
	if target.Bio != nil {
		info.Bio = *target.Bio
	}
	if target.Website != nil {
		info.Website = *target.Website
	}
	return w.Record(ctx, RecordParams{
		Category:    models.CategoryUserManagement,
		Action:      models.ActionAccountDeleted,
		PerformedBy: actor,
		TargetID:    target.ID,
		TargetType:  models.TargetUser,
		TargetName:  target.Name,
		Details:     models.DeletedUserDetails(info),
		Reason:      reason,
		Metadata:    meta,
	})
}

func (w *AuditWriter) RecordToolDeletion(ctx context.Context, actor models.ActorSnapshot, target *models.Tool, reason string, meta models.RequestMetadata) (*models.AuditEntry, error) {
	info := models.DeletedToolInfo{
		ID:          target.ID,
		Name:        target.Name,
		URL:         target.URL,
		SubmittedBy: target.SubmittedBy,
	}
	if target.Category != nil {
		info.Category = *target.Category
	}
	if target.Description != nil {
		info.Description = *target.Description
	}
	return w.Record(ctx, RecordParams{
		Category:    models.CategoryToolManagement,
		Action:      models.ActionDeleted,
		PerformedBy: actor,
		TargetID:    target.ID,
		TargetType:  models.TargetTool,
		TargetName:  target.Name,
		Details:     models.DeletedToolDetails(info),
		Reason:      reason,
		Metadata:    meta,
	})
}

func (w *AuditWriter) RecordReviewDeletion(ctx context.Context, actor models.ActorSnapshot, target *models.Review, targetName, reason string, meta models.RequestMetadata) (*models.AuditEntry, error) {
	return w.Record(ctx, RecordParams{
		Category:    models.CategoryReviewManagement,
		Action:      models.ActionDeleted,
		PerformedBy: actor,
		TargetID:    target.ID,
		TargetType:  models.TargetReview,
		TargetName:  targetName,
		Details: models.DeletedReviewDetails(models.DeletedReviewInfo{
			ID:       target.ID,
			ToolID:   target.ToolID,
			AuthorID: target.AuthorID,
			Rating:   target.Rating,
			Body:     target.Body,
		}),
		Reason:   reason,
		Metadata: meta,
	})
}

func (w *AuditWriter) RecordPostDeletion(ctx context.Context, actor models.ActorSnapshot, target *models.BlogPost, reason string, meta models.RequestMetadata) (*models.AuditEntry, error) {
	return w.Record(ctx, RecordParams{
		Category:    models.CategoryBlogModeration,
		Action:      models.ActionDeleted,
		PerformedBy: actor,
		TargetID:    target.ID,
		TargetType:  models.TargetBlogPost,
		TargetName:  target.Title,
		Details: models.DeletedPostDetails(models.DeletedPostInfo{
			ID:       target.ID,
			AuthorID: target.AuthorID,
			Title:    target.Title,
			Slug:     target.Slug,
			Status:   target.Status,
		}),
		Reason:   reason,
		Metadata: meta,
	})
}

// RecordContentAction covers the remaining moderation shapes (publish,
// unpublish, hide, data edits) against non-user targets.
func (w *AuditWriter) RecordContentAction(ctx context.Context, category, action string, actor models.ActorSnapshot, targetID uuid.UUID, targetType, targetName string, changes []models.Change, reason string, meta models.RequestMetadata) (*models.AuditEntry, error) {
	return w.Record(ctx, RecordParams{
		Category:    category,
		Action:      action,
		PerformedBy: actor,
		TargetID:    targetID,
		TargetType:  targetType,
		TargetName:  targetName,
		Changes:     changes,
		Reason:      reason,
		Metadata:    meta,
	})
}
