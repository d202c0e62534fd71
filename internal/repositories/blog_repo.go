package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tooldeck/backend/internal/models"
)

type BlogRepo struct {
	pool *pgxpool.Pool
}

func NewBlogRepo(pool *pgxpool.Pool) *BlogRepo {
	return &BlogRepo{pool: pool}
}

const postColumns = `id, author_id, title, slug, body, status, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.BlogPost, error) {
	var p models.BlogPost
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.Body, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BlogRepo) Create(ctx context.Context, authorID uuid.UUID, title, slug, body string) (*models.BlogPost, error) {
	return scanPost(r.pool.QueryRow(ctx, `
		INSERT INTO blog_posts (author_id, title, slug, body)
		VALUES ($1, $2, $3, $4)
		RETURNING `+postColumns, authorID, title, slug, body))
}

func (r *BlogRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	return scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id))
}

func (r *BlogRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.BlogPost, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]models.BlogPost{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make(map[uuid.UUID]models.BlogPost, len(ids))
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts[p.ID] = *p
	}
	return posts, rows.Err()
}

func (r *BlogRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE blog_posts SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

func (r *BlogRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	return err
}

func (r *BlogRepo) AppendAuditLog(ctx context.Context, id uuid.UUID, entry models.LegacyLogEntry, cap int) error {
	return appendEmbeddedLog(ctx, r.pool, "blog_posts", id, entry, cap)
}

func (r *BlogRepo) CollectAuditLogs(ctx context.Context, since time.Time) ([]models.LegacyRecord, error) {
	return collectEmbeddedLogs(ctx, r.pool, "blog_posts", models.TargetBlogPost, "title", since)
}
