package repository

import (
	"context"
	"time"

	"github.com/clinsys/onboarding/internal/domain/entity"
)

// Each interface wraps one independently addressable resource. The store
// offers no cross-resource transactions: every method is a standalone write
// or read, and cross-entity consistency is established by the onboarding
// saga and audited by the integrity verifier.
//
// Creation methods return entity.ErrConflict when the store's uniqueness
// constraint rejects the row, and lookups return entity.ErrNotFound when
// nothing matches.

type ProfileRepository interface {
	// Upsert inserts the profile or, when one already exists for the
	// identity id, updates its mutable fields.
	Upsert(ctx context.Context, p *entity.Profile) error
	GetByIdentityID(ctx context.Context, identityID string) (*entity.Profile, error)
	// SetCompletion flips the onboarding markers; completedAt nil clears the
	// timestamp.
	SetCompletion(ctx context.Context, identityID string, firstAccess bool, completedAt *time.Time) error
}

type RoleRepository interface {
	Create(ctx context.Context, r *entity.Role) error
	GetOwnerByIdentityID(ctx context.Context, identityID string) (*entity.Role, error)
	ListByIdentityID(ctx context.Context, identityID string) ([]entity.Role, error)
	// SetClinicID attaches (or with nil detaches) a clinic from the role.
	SetClinicID(ctx context.Context, roleID string, clinicID *string) error
	Delete(ctx context.Context, roleID string) error
}

type ClinicRepository interface {
	// Create generates the clinic id and fills it in on the given entity.
	Create(ctx context.Context, c *entity.Clinic) error
	GetByID(ctx context.Context, id string) (*entity.Clinic, error)
	GetActiveByOwner(ctx context.Context, ownerIdentityID string) (*entity.Clinic, error)
	Delete(ctx context.Context, id string) error
}

type ProfessionalRepository interface {
	Create(ctx context.Context, p *entity.Professional) error
	GetByIdentityID(ctx context.Context, identityID string) (*entity.Professional, error)
	Delete(ctx context.Context, identityID string) error
}

type ClinicProfessionalRepository interface {
	Create(ctx context.Context, l *entity.ClinicProfessional) error
	Get(ctx context.Context, clinicID, identityID string) (*entity.ClinicProfessional, error)
	Delete(ctx context.Context, clinicID, identityID string) error
}

type ProcedureTemplateRepository interface {
	Create(ctx context.Context, t *entity.ProcedureTemplate) error
	ListByCreator(ctx context.Context, creatorIdentityID string) ([]entity.ProcedureTemplate, error)
	Delete(ctx context.Context, id string) error
}
