package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tooldeck/backend/internal/models"
	"github.com/tooldeck/backend/internal/rbac"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, email, name, role, blocked, bio, website, password_hash, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Blocked, &u.Bio, &u.Website, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, email, name, role, passwordHash string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns, email, name, role, passwordHash))
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetByIDs batch-resolves users in one round trip. Missing ids are simply
// absent from the returned map.
func (r *UserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]models.User{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make(map[uuid.UUID]models.User, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users[u.ID] = *u
	}
	return users, rows.Err()
}

// ListStaff returns admins and moderators for the activity feed's performer
// filter.
func (r *UserRepo) ListStaff(ctx context.Context) ([]models.StaffMember, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, role FROM users
		WHERE role = $1 OR role = $2
		ORDER BY name
	`, rbac.RoleAdmin, rbac.RoleModerator)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []models.StaffMember
	for rows.Next() {
		var s models.StaffMember
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Role); err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

func (r *UserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET role = $1, updated_at = now() WHERE id = $2`, role, id)
	return err
}

func (r *UserRepo) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET blocked = $1, updated_at = now() WHERE id = $2`, blocked, id)
	return err
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, name string, bio, website *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET name = $1, bio = $2, website = $3, updated_at = now()
		WHERE id = $4
	`, name, bio, website, id)
	return err
}

// Delete removes the user row for good, embedded audit log included. The
// caller must have recorded the deletion snapshot beforehand.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *UserRepo) AppendAuditLog(ctx context.Context, id uuid.UUID, entry models.LegacyLogEntry, cap int) error {
	return appendEmbeddedLog(ctx, r.pool, "users", id, entry, cap)
}

func (r *UserRepo) CollectAuditLogs(ctx context.Context, since time.Time) ([]models.LegacyRecord, error) {
	return collectEmbeddedLogs(ctx, r.pool, "users", models.TargetUser, "name", since)
}
