package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinsys/onboarding/internal/domain/entity"
	"github.com/clinsys/onboarding/internal/domain/repository"
)

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) Create(ctx context.Context, role *entity.Role) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO user_roles (identity_id, kind, clinic_id, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, role.IdentityID, role.Kind, role.ClinicID, role.Active)

	return mapError(row.Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt))
}

func (r *RoleRepository) GetOwnerByIdentityID(ctx context.Context, identityID string) (*entity.Role, error) {
	role := &entity.Role{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, identity_id, kind, clinic_id, active, created_at, updated_at
		FROM user_roles
		WHERE identity_id = $1 AND kind = $2 AND active
	`, identityID, entity.RoleKindOwner)

	if err := row.Scan(&role.ID, &role.IdentityID, &role.Kind, &role.ClinicID,
		&role.Active, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return nil, mapError(err)
	}

	return role, nil
}

func (r *RoleRepository) ListByIdentityID(ctx context.Context, identityID string) ([]entity.Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, identity_id, kind, clinic_id, active, created_at, updated_at
		FROM user_roles
		WHERE identity_id = $1
		ORDER BY created_at
	`, identityID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var roles []entity.Role
	for rows.Next() {
		var role entity.Role
		if err := rows.Scan(&role.ID, &role.IdentityID, &role.Kind, &role.ClinicID,
			&role.Active, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, mapError(err)
		}
		roles = append(roles, role)
	}

	return roles, rows.Err()
}

func (r *RoleRepository) SetClinicID(ctx context.Context, roleID string, clinicID *string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE user_roles
		SET clinic_id = $1, updated_at = now()
		WHERE id = $2
	`, clinicID, roleID)
	if err != nil {
		return mapError(err)
	}

	if res.RowsAffected() == 0 {
		return entity.ErrNotFound
	}

	return nil
}

func (r *RoleRepository) Delete(ctx context.Context, roleID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_roles WHERE id = $1`, roleID)
	return mapError(err)
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
