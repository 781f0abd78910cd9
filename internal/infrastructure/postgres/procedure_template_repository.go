package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinsys/onboarding/internal/domain/entity"
	"github.com/clinsys/onboarding/internal/domain/repository"
)

type ProcedureTemplateRepository struct {
	pool *pgxpool.Pool
}

func NewProcedureTemplateRepository(pool *pgxpool.Pool) *ProcedureTemplateRepository {
	return &ProcedureTemplateRepository{pool: pool}
}

func (r *ProcedureTemplateRepository) Create(ctx context.Context, t *entity.ProcedureTemplate) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO procedure_templates (kind, name, duration_minutes, base_price, creator_identity_id, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, t.Kind, t.Name, t.DurationMinutes, t.BasePrice, t.CreatorIdentityID, t.Active)

	return mapError(row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt))
}

func (r *ProcedureTemplateRepository) ListByCreator(ctx context.Context, creatorIdentityID string) ([]entity.ProcedureTemplate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, kind, name, duration_minutes, base_price, creator_identity_id, active, created_at, updated_at
		FROM procedure_templates
		WHERE creator_identity_id = $1
		ORDER BY created_at
	`, creatorIdentityID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var templates []entity.ProcedureTemplate
	for rows.Next() {
		var t entity.ProcedureTemplate
		if err := rows.Scan(&t.ID, &t.Kind, &t.Name, &t.DurationMinutes, &t.BasePrice,
			&t.CreatorIdentityID, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, mapError(err)
		}
		templates = append(templates, t)
	}

	return templates, rows.Err()
}

func (r *ProcedureTemplateRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM procedure_templates WHERE id = $1`, id)
	return mapError(err)
}

var _ repository.ProcedureTemplateRepository = (*ProcedureTemplateRepository)(nil)
