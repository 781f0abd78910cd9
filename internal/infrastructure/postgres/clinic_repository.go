package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinsys/onboarding/internal/domain/entity"
	"github.com/clinsys/onboarding/internal/domain/repository"
)

type ClinicRepository struct {
	pool *pgxpool.Pool
}

func NewClinicRepository(pool *pgxpool.Pool) *ClinicRepository {
	return &ClinicRepository{pool: pool}
}

// Create relies on the partial unique index over active clinics per owner:
// a second active clinic for the same owner surfaces as entity.ErrConflict.
func (r *ClinicRepository) Create(ctx context.Context, c *entity.Clinic) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO clinics (name, address, city, state, phone, email, owner_identity_id, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, c.Name, c.Address, c.City, c.State, c.Phone, c.Email, c.OwnerIdentityID, c.Active)

	return mapError(row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt))
}

func (r *ClinicRepository) GetByID(ctx context.Context, id string) (*entity.Clinic, error) {
	c := &entity.Clinic{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, name, address, city, state, phone, email, owner_identity_id, active, created_at, updated_at
		FROM clinics
		WHERE id = $1
	`, id)

	if err := row.Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.State, &c.Phone,
		&c.Email, &c.OwnerIdentityID, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, mapError(err)
	}

	return c, nil
}

func (r *ClinicRepository) GetActiveByOwner(ctx context.Context, ownerIdentityID string) (*entity.Clinic, error) {
	c := &entity.Clinic{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, name, address, city, state, phone, email, owner_identity_id, active, created_at, updated_at
		FROM clinics
		WHERE owner_identity_id = $1 AND active
	`, ownerIdentityID)

	if err := row.Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.State, &c.Phone,
		&c.Email, &c.OwnerIdentityID, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, mapError(err)
	}

	return c, nil
}

func (r *ClinicRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM clinics WHERE id = $1`, id)
	return mapError(err)
}

var _ repository.ClinicRepository = (*ClinicRepository)(nil)
