package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tooldeck/backend/internal/models"
)

// Embedded per-entity audit logs, kept for backward compatibility. Each
// entity row carries a capped audit_log jsonb array; appending evicts the
// oldest entries, and the whole list is gone once the row is deleted.

// appendEmbeddedLog pushes one entry onto the entity's audit_log, keeping at
// most cap entries. table is one of the fixed entity table names, never user
// input.
func appendEmbeddedLog(ctx context.Context, pool *pgxpool.Pool, table string, id uuid.UUID, entry models.LegacyLogEntry, cap int) error {
	payload, err := json.Marshal([]models.LegacyLogEntry{entry})
	if err != nil {
		return err
	}

	tag, err := pool.Exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET audit_log = (
			SELECT COALESCE(jsonb_agg(elem ORDER BY ord), '[]'::jsonb)
			FROM (
				SELECT elem, ord
				FROM jsonb_array_elements(audit_log || $2::jsonb) WITH ORDINALITY AS t(elem, ord)
				ORDER BY ord DESC
				LIMIT $3
			) tail
		)
		WHERE id = $1
	`, table), id, payload, cap)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s not found", table, id)
	}
	return nil
}

// collectEmbeddedLogs reads every live row's embedded entries at or after
// since. nameExpr is the SQL expression producing the row's display name.
func collectEmbeddedLogs(ctx context.Context, pool *pgxpool.Pool, table, targetType, nameExpr string, since time.Time) ([]models.LegacyRecord, error) {
	rows, err := pool.Query(ctx, fmt.Sprintf(`
		SELECT id, %s, audit_log
		FROM %s
		WHERE audit_log <> '[]'::jsonb
	`, nameExpr, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.LegacyRecord
	for rows.Next() {
		var id uuid.UUID
		var name string
		var raw []byte
		if err := rows.Scan(&id, &name, &raw); err != nil {
			return nil, err
		}

		var entries []models.LegacyLogEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Timestamp.Before(since) {
				continue
			}
			records = append(records, models.LegacyRecord{
				TargetID:   id,
				TargetType: targetType,
				TargetName: name,
				Entry:      e,
			})
		}
	}
	return records, rows.Err()
}
