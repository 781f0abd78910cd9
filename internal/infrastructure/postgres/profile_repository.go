package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinsys/onboarding/internal/domain/entity"
	"github.com/clinsys/onboarding/internal/domain/repository"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Upsert(ctx context.Context, p *entity.Profile) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (identity_id, name, email, phone, first_access, onboarding_completed_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (identity_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			first_access = EXCLUDED.first_access,
			active = EXCLUDED.active,
			updated_at = now()
		RETURNING created_at, updated_at
	`, p.IdentityID, p.Name, p.Email, p.Phone, p.FirstAccess, p.OnboardingCompletedAt, p.Active)

	return mapError(row.Scan(&p.CreatedAt, &p.UpdatedAt))
}

func (r *ProfileRepository) GetByIdentityID(ctx context.Context, identityID string) (*entity.Profile, error) {
	p := &entity.Profile{}

	row := r.pool.QueryRow(ctx, `
		SELECT identity_id, name, email, phone, first_access, onboarding_completed_at, active, created_at, updated_at
		FROM profiles
		WHERE identity_id = $1
	`, identityID)

	if err := row.Scan(&p.IdentityID, &p.Name, &p.Email, &p.Phone, &p.FirstAccess,
		&p.OnboardingCompletedAt, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, mapError(err)
	}

	return p, nil
}

func (r *ProfileRepository) SetCompletion(ctx context.Context, identityID string, firstAccess bool, completedAt *time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET first_access = $1, onboarding_completed_at = $2, updated_at = now()
		WHERE identity_id = $3
	`, firstAccess, completedAt, identityID)
	if err != nil {
		return mapError(err)
	}

	if res.RowsAffected() == 0 {
		return entity.ErrNotFound
	}

	return nil
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
