package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/tooldeck/backend/internal/models"
	"github.com/tooldeck/backend/internal/repositories"
)

// EntityRef identifies one actor or target referenced by the history.
type EntityRef struct {
	Type string
	ID   uuid.UUID
}

// Identity is the current display state of a referenced entity. Absence from
// the resolver's result map means the entity no longer exists.
type Identity struct {
	Name  string
	Email string
	Role  string
}

// IdentityResolver batch-resolves current identities for a history query.
// Injected into the reconciler so it can be faked in tests.
type IdentityResolver interface {
	ResolveBatch(ctx context.Context, refs []EntityRef) (map[EntityRef]Identity, error)
}

// StoreResolver resolves identities from the live entity stores, one query
// per referenced entity type rather than one per entry.
type StoreResolver struct {
	userRepo   *repositories.UserRepo
	toolRepo   *repositories.ToolRepo
	reviewRepo *repositories.ReviewRepo
	blogRepo   *repositories.BlogRepo
}

func NewStoreResolver(userRepo *repositories.UserRepo, toolRepo *repositories.ToolRepo, reviewRepo *repositories.ReviewRepo, blogRepo *repositories.BlogRepo) *StoreResolver {
	return &StoreResolver{
		userRepo:   userRepo,
		toolRepo:   toolRepo,
		reviewRepo: reviewRepo,
		blogRepo:   blogRepo,
	}
}

func (r *StoreResolver) ResolveBatch(ctx context.Context, refs []EntityRef) (map[EntityRef]Identity, error) {
	byType := make(map[string][]uuid.UUID)
	seen := make(map[EntityRef]bool)
	for _, ref := range refs {
		if seen[ref] {
			continue
		}
		seen[ref] = true
		byType[ref.Type] = append(byType[ref.Type], ref.ID)
	}

	out := make(map[EntityRef]Identity, len(seen))

	if ids := byType[models.TargetUser]; len(ids) > 0 {
		users, err := r.userRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for id, u := range users {
			out[EntityRef{Type: models.TargetUser, ID: id}] = Identity{Name: u.Name, Email: u.Email, Role: u.Role}
		}
	}

	if ids := byType[models.TargetTool]; len(ids) > 0 {
		tools, err := r.toolRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for id, t := range tools {
			out[EntityRef{Type: models.TargetTool, ID: id}] = Identity{Name: t.Name}
		}
	}

	if ids := byType[models.TargetReview]; len(ids) > 0 {
		reviews, err := r.reviewRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for id, rv := range reviews {
			out[EntityRef{Type: models.TargetReview, ID: id}] = Identity{Name: reviewDisplayName(rv.Body)}
		}
	}

	if ids := byType[models.TargetBlogPost]; len(ids) > 0 {
		posts, err := r.blogRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for id, p := range posts {
			out[EntityRef{Type: models.TargetBlogPost, ID: id}] = Identity{Name: p.Title}
		}
	}

	return out, nil
}

func reviewDisplayName(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > 60 {
		return body[:60]
	}
	return body
}
