// Package memory provides an in-memory implementation of the domain
// repositories. It mirrors the store semantics the saga depends on
// (per-resource writes, uniqueness enforced at the store level, no
// cross-resource transactions) and is used by tests and local tooling.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinsys/onboarding/internal/domain/entity"
	"github.com/clinsys/onboarding/internal/domain/repository"
)

type Store struct {
	mu sync.RWMutex

	profiles      map[string]entity.Profile            // identity id
	roles         map[string]entity.Role               // role id
	clinics       map[string]entity.Clinic             // clinic id
	professionals map[string]entity.Professional       // identity id
	links         map[string]entity.ClinicProfessional // clinic id + "/" + identity id
	templates     map[string]entity.ProcedureTemplate  // template id

	// Failure injection for saga/verifier tests. When set, the matching
	// creation method returns the error instead of writing.
	FailProfileUpsert      error
	FailRoleCreate         error
	FailClinicCreate       error
	FailProfessionalCreate error
	FailLinkCreate         error
	FailTemplateCreate     error
	FailSetCompletion      error
}

func NewStore() *Store {
	return &Store{
		profiles:      map[string]entity.Profile{},
		roles:         map[string]entity.Role{},
		clinics:       map[string]entity.Clinic{},
		professionals: map[string]entity.Professional{},
		links:         map[string]entity.ClinicProfessional{},
		templates:     map[string]entity.ProcedureTemplate{},
	}
}

func linkKey(clinicID, identityID string) string { return clinicID + "/" + identityID }

// --- profiles ---

type profileRepo struct{ s *Store }

func (s *Store) Profiles() repository.ProfileRepository { return profileRepo{s} }

func (r profileRepo) Upsert(_ context.Context, p *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailProfileUpsert != nil {
		return r.s.FailProfileUpsert
	}
	now := time.Now()
	if existing, ok := r.s.profiles[p.IdentityID]; ok {
		p.CreatedAt = existing.CreatedAt
		p.OnboardingCompletedAt = existing.OnboardingCompletedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.s.profiles[p.IdentityID] = *p
	return nil
}

func (r profileRepo) GetByIdentityID(_ context.Context, identityID string) (*entity.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[identityID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (r profileRepo) SetCompletion(_ context.Context, identityID string, firstAccess bool, completedAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailSetCompletion != nil {
		return r.s.FailSetCompletion
	}
	p, ok := r.s.profiles[identityID]
	if !ok {
		return entity.ErrNotFound
	}
	p.FirstAccess = firstAccess
	p.OnboardingCompletedAt = completedAt
	p.UpdatedAt = time.Now()
	r.s.profiles[identityID] = p
	return nil
}

// --- roles ---

type roleRepo struct{ s *Store }

func (s *Store) Roles() repository.RoleRepository { return roleRepo{s} }

func (r roleRepo) Create(_ context.Context, role *entity.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailRoleCreate != nil {
		return r.s.FailRoleCreate
	}
	for _, existing := range r.s.roles {
		if existing.IdentityID == role.IdentityID && existing.Kind == role.Kind && existing.Active && role.Active {
			return entity.ErrConflict
		}
	}
	role.ID = uuid.NewString()
	role.CreatedAt = time.Now()
	role.UpdatedAt = role.CreatedAt
	r.s.roles[role.ID] = *role
	return nil
}

func (r roleRepo) GetOwnerByIdentityID(_ context.Context, identityID string) (*entity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, role := range r.s.roles {
		if role.IdentityID == identityID && role.Kind == entity.RoleKindOwner && role.Active {
			cp := role
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r roleRepo) ListByIdentityID(_ context.Context, identityID string) ([]entity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []entity.Role
	for _, role := range r.s.roles {
		if role.IdentityID == identityID {
			out = append(out, role)
		}
	}
	return out, nil
}

func (r roleRepo) SetClinicID(_ context.Context, roleID string, clinicID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[roleID]
	if !ok {
		return entity.ErrNotFound
	}
	if clinicID != nil {
		id := *clinicID
		role.ClinicID = &id
	} else {
		role.ClinicID = nil
	}
	role.UpdatedAt = time.Now()
	r.s.roles[roleID] = role
	return nil
}

func (r roleRepo) Delete(_ context.Context, roleID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.roles, roleID)
	return nil
}

// --- clinics ---

type clinicRepo struct{ s *Store }

func (s *Store) Clinics() repository.ClinicRepository { return clinicRepo{s} }

func (r clinicRepo) Create(_ context.Context, c *entity.Clinic) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailClinicCreate != nil {
		return r.s.FailClinicCreate
	}
	for _, existing := range r.s.clinics {
		if existing.OwnerIdentityID == c.OwnerIdentityID && existing.Active && c.Active {
			return entity.ErrConflict
		}
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.s.clinics[c.ID] = *c
	return nil
}

func (r clinicRepo) GetByID(_ context.Context, id string) (*entity.Clinic, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clinics[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (r clinicRepo) GetActiveByOwner(_ context.Context, ownerIdentityID string) (*entity.Clinic, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.clinics {
		if c.OwnerIdentityID == ownerIdentityID && c.Active {
			cp := c
			return &cp, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r clinicRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.clinics, id)
	return nil
}

// --- professionals ---

type professionalRepo struct{ s *Store }

func (s *Store) Professionals() repository.ProfessionalRepository { return professionalRepo{s} }

func (r professionalRepo) Create(_ context.Context, p *entity.Professional) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailProfessionalCreate != nil {
		return r.s.FailProfessionalCreate
	}
	if _, ok := r.s.professionals[p.IdentityID]; ok {
		return entity.ErrConflict
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.s.professionals[p.IdentityID] = *p
	return nil
}

func (r professionalRepo) GetByIdentityID(_ context.Context, identityID string) (*entity.Professional, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.professionals[identityID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (r professionalRepo) Delete(_ context.Context, identityID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.professionals, identityID)
	return nil
}

// --- clinic professionals ---

type linkRepo struct{ s *Store }

func (s *Store) ClinicProfessionals() repository.ClinicProfessionalRepository { return linkRepo{s} }

func (r linkRepo) Create(_ context.Context, l *entity.ClinicProfessional) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailLinkCreate != nil {
		return r.s.FailLinkCreate
	}
	key := linkKey(l.ClinicID, l.IdentityID)
	if _, ok := r.s.links[key]; ok {
		return entity.ErrConflict
	}
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	r.s.links[key] = *l
	return nil
}

func (r linkRepo) Get(_ context.Context, clinicID, identityID string) (*entity.ClinicProfessional, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.links[linkKey(clinicID, identityID)]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := l
	return &cp, nil
}

func (r linkRepo) Delete(_ context.Context, clinicID, identityID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.links, linkKey(clinicID, identityID))
	return nil
}

// --- procedure templates ---

type templateRepo struct{ s *Store }

func (s *Store) ProcedureTemplates() repository.ProcedureTemplateRepository { return templateRepo{s} }

func (r templateRepo) Create(_ context.Context, t *entity.ProcedureTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailTemplateCreate != nil {
		return r.s.FailTemplateCreate
	}
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.s.templates[t.ID] = *t
	return nil
}

func (r templateRepo) ListByCreator(_ context.Context, creatorIdentityID string) ([]entity.ProcedureTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []entity.ProcedureTemplate
	for _, t := range r.s.templates {
		if t.CreatorIdentityID == creatorIdentityID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r templateRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.templates, id)
	return nil
}
