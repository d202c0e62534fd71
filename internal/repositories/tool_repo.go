package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tooldeck/backend/internal/models"
)

type ToolRepo struct {
	pool *pgxpool.Pool
}

func NewToolRepo(pool *pgxpool.Pool) *ToolRepo {
	return &ToolRepo{pool: pool}
}

const toolColumns = `id, name, url, description, category, submitted_by, published, created_at, updated_at`

func scanTool(row interface{ Scan(...any) error }) (*models.Tool, error) {
	var t models.Tool
	err := row.Scan(&t.ID, &t.Name, &t.URL, &t.Description, &t.Category, &t.SubmittedBy, &t.Published, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ToolRepo) Create(ctx context.Context, name, url string, description, category *string, submittedBy uuid.UUID) (*models.Tool, error) {
	return scanTool(r.pool.QueryRow(ctx, `
		INSERT INTO tools (name, url, description, category, submitted_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+toolColumns, name, url, description, category, submittedBy))
}

func (r *ToolRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
	return scanTool(r.pool.QueryRow(ctx, `SELECT `+toolColumns+` FROM tools WHERE id = $1`, id))
}

func (r *ToolRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Tool, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]models.Tool{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+toolColumns+` FROM tools WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tools := make(map[uuid.UUID]models.Tool, len(ids))
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		tools[t.ID] = *t
	}
	return tools, rows.Err()
}

func (r *ToolRepo) Update(ctx context.Context, id uuid.UUID, name, url string, description, category *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE tools SET name = $1, url = $2, description = $3, category = $4, updated_at = now()
		WHERE id = $5
	`, name, url, description, category, id)
	return err
}

func (r *ToolRepo) SetPublished(ctx context.Context, id uuid.UUID, published bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE tools SET published = $1, updated_at = now() WHERE id = $2`, published, id)
	return err
}

func (r *ToolRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tools WHERE id = $1`, id)
	return err
}

func (r *ToolRepo) AppendAuditLog(ctx context.Context, id uuid.UUID, entry models.LegacyLogEntry, cap int) error {
	return appendEmbeddedLog(ctx, r.pool, "tools", id, entry, cap)
}

func (r *ToolRepo) CollectAuditLogs(ctx context.Context, since time.Time) ([]models.LegacyRecord, error) {
	return collectEmbeddedLogs(ctx, r.pool, "tools", models.TargetTool, "name", since)
}
