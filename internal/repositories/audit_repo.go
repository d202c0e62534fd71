package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tooldeck/backend/internal/models"
)

// AuditRepo is the centralized append-only audit store. There are no update
// or delete statements here on purpose: entries outlive their targets.
type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Insert(ctx context.Context, e *models.AuditEntry) error {
	changes, err := json.Marshal(e.Changes)
	if err != nil {
		return err
	}
	details, err := json.Marshal(e.Details)
	if err != nil {
		return err
	}
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}

	return r.pool.QueryRow(ctx, `
		INSERT INTO audit_entries (
			category, action,
			performer_id, performer_name, performer_role,
			target_id, target_type, target_name,
			changes, reason, details, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`, e.Category, e.Action,
		e.PerformedBy.ID, e.PerformedBy.Name, e.PerformedBy.Role,
		e.TargetID, e.TargetType, e.TargetName,
		changes, e.Reason, details, metadata,
	).Scan(&e.ID, &e.CreatedAt)
}

// ListSince returns entries at or after since, newest first. Empty category
// matches every category.
func (r *AuditRepo) ListSince(ctx context.Context, category string, since time.Time) ([]models.AuditEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, category, action,
		       performer_id, performer_name, performer_role,
		       target_id, target_type, target_name,
		       changes, reason, details, metadata, created_at
		FROM audit_entries
		WHERE created_at >= $1 AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC
	`, since, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAuditEntries(rows)
}

// ListByTarget returns the full history of one entity, newest first.
func (r *AuditRepo) ListByTarget(ctx context.Context, targetType string, targetID uuid.UUID, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, category, action,
		       performer_id, performer_name, performer_role,
		       target_id, target_type, target_name,
		       changes, reason, details, metadata, created_at
		FROM audit_entries
		WHERE target_type = $1 AND target_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, targetType, targetID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAuditEntries(rows)
}

func scanAuditEntries(rows pgx.Rows) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var changes, details, metadata []byte
		if err := rows.Scan(
			&e.ID, &e.Category, &e.Action,
			&e.PerformedBy.ID, &e.PerformedBy.Name, &e.PerformedBy.Role,
			&e.TargetID, &e.TargetType, &e.TargetName,
			&changes, &e.Reason, &details, &metadata, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(changes, &e.Changes); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(details, &e.Details); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
