package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinsys/onboarding/internal/domain/entity"
	"github.com/clinsys/onboarding/internal/domain/repository"
)

type ProfessionalRepository struct {
	pool *pgxpool.Pool
}

func NewProfessionalRepository(pool *pgxpool.Pool) *ProfessionalRepository {
	return &ProfessionalRepository{pool: pool}
}

func (r *ProfessionalRepository) Create(ctx context.Context, p *entity.Professional) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO professionals (identity_id, specialties, active)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, p.IdentityID, p.Specialties, p.Active)

	return mapError(row.Scan(&p.CreatedAt, &p.UpdatedAt))
}

func (r *ProfessionalRepository) GetByIdentityID(ctx context.Context, identityID string) (*entity.Professional, error) {
	p := &entity.Professional{}

	row := r.pool.QueryRow(ctx, `
		SELECT identity_id, specialties, active, created_at, updated_at
		FROM professionals
		WHERE identity_id = $1
	`, identityID)

	if err := row.Scan(&p.IdentityID, &p.Specialties, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapError(err)
	}

	return p, nil
}

func (r *ProfessionalRepository) Delete(ctx context.Context, identityID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM professionals WHERE identity_id = $1`, identityID)
	return mapError(err)
}

var _ repository.ProfessionalRepository = (*ProfessionalRepository)(nil)
