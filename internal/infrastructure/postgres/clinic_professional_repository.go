package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinsys/onboarding/internal/domain/entity"
	"github.com/clinsys/onboarding/internal/domain/repository"
)

type ClinicProfessionalRepository struct {
	pool *pgxpool.Pool
}

func NewClinicProfessionalRepository(pool *pgxpool.Pool) *ClinicProfessionalRepository {
	return &ClinicProfessionalRepository{pool: pool}
}

func (r *ClinicProfessionalRepository) Create(ctx context.Context, l *entity.ClinicProfessional) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO clinic_professionals (clinic_id, identity_id, role_title, can_create_records, can_edit_records, can_view_finance, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, l.ClinicID, l.IdentityID, l.RoleTitle, l.CanCreateRecords, l.CanEditRecords, l.CanViewFinance, l.Active)

	return mapError(row.Scan(&l.CreatedAt, &l.UpdatedAt))
}

func (r *ClinicProfessionalRepository) Get(ctx context.Context, clinicID, identityID string) (*entity.ClinicProfessional, error) {
	l := &entity.ClinicProfessional{}

	row := r.pool.QueryRow(ctx, `
		SELECT clinic_id, identity_id, role_title, can_create_records, can_edit_records, can_view_finance, active, created_at, updated_at
		FROM clinic_professionals
		WHERE clinic_id = $1 AND identity_id = $2
	`, clinicID, identityID)

	if err := row.Scan(&l.ClinicID, &l.IdentityID, &l.RoleTitle, &l.CanCreateRecords,
		&l.CanEditRecords, &l.CanViewFinance, &l.Active, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, mapError(err)
	}

	return l, nil
}

func (r *ClinicProfessionalRepository) Delete(ctx context.Context, clinicID, identityID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM clinic_professionals WHERE clinic_id = $1 AND identity_id = $2
	`, clinicID, identityID)
	return mapError(err)
}

var _ repository.ClinicProfessionalRepository = (*ClinicProfessionalRepository)(nil)
