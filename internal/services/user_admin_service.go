package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tooldeck/backend/internal/models"
	"github.com/tooldeck/backend/internal/rbac"
	"github.com/tooldeck/backend/internal/repositories"
)

// UserAdminService owns the privileged user-management operations. Every
// mutation records an audit entry in the same request scope. Audit-write
// failure is a warning, not a reason to abort the mutation.
type UserAdminService struct {
	userRepo *repositories.UserRepo
	writer   *AuditWriter
	log      *zap.Logger
}

func NewUserAdminService(userRepo *repositories.UserRepo, writer *AuditWriter, log *zap.Logger) *UserAdminService {
	return &UserAdminService{userRepo: userRepo, writer: writer, log: log}
}

func (s *UserAdminService) Create(ctx context.Context, actor models.ActorSnapshot, email, name, role, password, reason string, meta models.RequestMetadata) (*models.User, error) {
	if !rbac.ValidRole(role) {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Create(ctx, email, name, role, string(hash))
	if err != nil {
		return nil, err
	}

	if _, err := s.writer.RecordUserCreation(ctx, actor, user, reason, meta); err != nil {
		s.log.Warn("account creation not fully audited", zap.String("user_id", user.ID.String()))
	}
	return user, nil
}

func (s *UserAdminService) ChangeRole(ctx context.Context, actor models.ActorSnapshot, targetID uuid.UUID, newRole, reason string, meta models.RequestMetadata) (*models.User, error) {
	if !rbac.ValidRole(newRole) {
		return nil, fmt.Errorf("invalid role %q", newRole)
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.Role == newRole {
		return user, nil
	}

	oldRole := user.Role
	if err := s.userRepo.UpdateRole(ctx, targetID, newRole); err != nil {
		return nil, err
	}
	user.Role = newRole

	if _, err := s.writer.RecordRoleChange(ctx, actor, user, oldRole, newRole, reason, meta); err != nil {
		s.log.Warn("role change not fully audited", zap.String("user_id", targetID.String()))
	}
	return user, nil
}

func (s *UserAdminService) Block(ctx context.Context, actor models.ActorSnapshot, targetID uuid.UUID, reason string, meta models.RequestMetadata) error {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if user.Blocked {
		return nil
	}

	if err := s.userRepo.SetBlocked(ctx, targetID, true); err != nil {
		return err
	}

	if _, err := s.writer.RecordBlock(ctx, actor, user, reason, meta); err != nil {
		s.log.Warn("block not fully audited", zap.String("user_id", targetID.String()))
	}
	return nil
}

func (s *UserAdminService) Unblock(ctx context.Context, actor models.ActorSnapshot, targetID uuid.UUID, reason string, meta models.RequestMetadata) error {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if !user.Blocked {
		return nil
	}

	if err := s.userRepo.SetBlocked(ctx, targetID, false); err != nil {
		return err
	}

	if _, err := s.writer.RecordUnblock(ctx, actor, user, reason, meta); err != nil {
		s.log.Warn("unblock not fully audited", zap.String("user_id", targetID.String()))
	}
	return nil
}

func (s *UserAdminService) UpdateProfile(ctx context.Context, actor models.ActorSnapshot, targetID uuid.UUID, name string, bio, website *string, reason string, meta models.RequestMetadata) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	changes := profileChanges(user, name, bio, website)
	if len(changes) == 0 {
		return user, nil
	}

	if err := s.userRepo.UpdateProfile(ctx, targetID, name, bio, website); err != nil {
		return nil, err
	}

	if _, err := s.writer.RecordProfileUpdate(ctx, actor, user, changes, reason, meta); err != nil {
		s.log.Warn("profile update not fully audited", zap.String("user_id", targetID.String()))
	}

	return s.userRepo.GetByID(ctx, targetID)
}

// Delete records the deletion snapshot first, then removes the row. The
// order matters: after the DELETE the state cannot be captured, and the
// embedded log disappears with the row.
func (s *UserAdminService) Delete(ctx context.Context, actor models.ActorSnapshot, targetID uuid.UUID, reason string, meta models.RequestMetadata) error {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if _, err := s.writer.RecordUserDeletion(ctx, actor, user, reason, meta); err != nil {
		s.log.Warn("account deletion not fully audited", zap.String("user_id", targetID.String()))
	}

	return s.userRepo.Delete(ctx, targetID)
}

func profileChanges(user *models.User, name string, bio, website *string) []models.Change {
	var changes []models.Change
	if name != user.Name {
		changes = append(changes, models.Change{Field: "name", OldValue: user.Name, NewValue: name})
	}
	if !equalOptional(user.Bio, bio) {
		changes = append(changes, models.Change{Field: "bio", OldValue: optionalValue(user.Bio), NewValue: optionalValue(bio)})
	}
	if !equalOptional(user.Website, website) {
		changes = append(changes, models.Change{Field: "website", OldValue: optionalValue(user.Website), NewValue: optionalValue(website)})
	}
	return changes
}

func equalOptional(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func optionalValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
