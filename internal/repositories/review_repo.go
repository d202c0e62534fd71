package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tooldeck/backend/internal/models"
)

type ReviewRepo struct {
	pool *pgxpool.Pool
}

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

const reviewColumns = `id, tool_id, author_id, rating, body, visible, created_at, updated_at`

func scanReview(row interface{ Scan(...any) error }) (*models.Review, error) {
	var rv models.Review
	err := row.Scan(&rv.ID, &rv.ToolID, &rv.AuthorID, &rv.Rating, &rv.Body, &rv.Visible, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepo) Create(ctx context.Context, toolID, authorID uuid.UUID, rating int, body string) (*models.Review, error) {
	return scanReview(r.pool.QueryRow(ctx, `
		INSERT INTO reviews (tool_id, author_id, rating, body)
		VALUES ($1, $2, $3, $4)
		RETURNING `+reviewColumns, toolID, authorID, rating, body))
}

func (r *ReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return scanReview(r.pool.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
}

func (r *ReviewRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Review, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]models.Review{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make(map[uuid.UUID]models.Review, len(ids))
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews[rv.ID] = *rv
	}
	return reviews, rows.Err()
}

func (r *ReviewRepo) SetVisible(ctx context.Context, id uuid.UUID, visible bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE reviews SET visible = $1, updated_at = now() WHERE id = $2`, visible, id)
	return err
}

func (r *ReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	return err
}

func (r *ReviewRepo) AppendAuditLog(ctx context.Context, id uuid.UUID, entry models.LegacyLogEntry, cap int) error {
	return appendEmbeddedLog(ctx, r.pool, "reviews", id, entry, cap)
}

func (r *ReviewRepo) CollectAuditLogs(ctx context.Context, since time.Time) ([]models.LegacyRecord, error) {
	// Reviews have no display name of their own; use a body prefix.
	return collectEmbeddedLogs(ctx, r.pool, "reviews", models.TargetReview, "left(body, 60)", since)
}
