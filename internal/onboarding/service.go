package onboarding

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clinsys/onboarding/internal/domain/entity"
	"github.com/clinsys/onboarding/internal/domain/repository"
	"github.com/clinsys/onboarding/internal/wizard"
	"github.com/clinsys/onboarding/pkg/notify"
)

// EventPublisher is the notification sink. Publishing is best effort and
// never affects the saga outcome.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Repositories groups the per-resource stores the saga writes to. They are
// independent: there is no transaction spanning them, which is the whole
// reason the saga exists.
type Repositories struct {
	Profiles      repository.ProfileRepository
	Roles         repository.RoleRepository
	Clinics       repository.ClinicRepository
	Professionals repository.ProfessionalRepository
	Links         repository.ClinicProfessionalRepository
	Templates     repository.ProcedureTemplateRepository
}

type Service struct {
	repos  Repositories
	events EventPublisher
	logger *logrus.Logger
}

func NewService(repos Repositories, events EventPublisher, logger *logrus.Logger) *Service {
	return &Service{repos: repos, events: events, logger: logger}
}

type ProfileInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type ClinicInput struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

type ProfessionalInput struct {
	Specialties []string `json:"specialties"`
	RoleTitle   string   `json:"role_title,omitempty"`
}

// Input is the fully assembled wizard data partitioned into per-resource
// payloads.
type Input struct {
	Profile      ProfileInput      `json:"profile"`
	Clinic       ClinicInput       `json:"clinic"`
	Professional ProfessionalInput `json:"professional"`
}

// InputFromWizard partitions the flat wizard data into the saga's
// per-resource payloads.
func InputFromWizard(d wizard.Data) Input {
	return Input{
		Profile: ProfileInput{Name: d.Name, Email: d.Email, Phone: d.Phone},
		Clinic: ClinicInput{
			Name:    d.ClinicName,
			Address: d.ClinicAddress,
			City:    d.City,
			State:   d.State,
			Phone:   d.ClinicPhone,
			Email:   d.ClinicEmail,
		},
		Professional: ProfessionalInput{Specialties: d.Specialties, RoleTitle: d.RoleTitle},
	}
}

// Result is the saga outcome. A failed run reports "not completed" only:
// compensation already attempted cleanup, so no partial data loss is implied.
type Result struct {
	Success  bool   `json:"success"`
	ClinicID string `json:"clinic_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (in Input) validate(identityID string) error {
	switch {
	case strings.TrimSpace(identityID) == "":
		return entity.ErrIdentityRequired
	case strings.TrimSpace(in.Profile.Name) == "":
		return entity.ErrProfileNameRequired
	case strings.TrimSpace(in.Profile.Email) == "":
		return entity.ErrProfileEmailRequired
	case strings.TrimSpace(in.Clinic.Name) == "":
		return entity.ErrClinicNameRequired
	case len(in.Professional.Specialties) == 0:
		return entity.ErrSpecialtiesRequired
	}
	return nil
}

// starterTemplates is the fixed set seeded at onboarding. Missing templates
// never make a data graph inconsistent; the verifier only warns about them.
var starterTemplates = []entity.ProcedureTemplate{
	{Kind: "consultation", Name: "Initial assessment", DurationMinutes: 30, BasePrice: 0},
	{Kind: "facial", Name: "Deep cleansing facial", DurationMinutes: 60, BasePrice: 150},
	{Kind: "facial", Name: "Chemical peel", DurationMinutes: 45, BasePrice: 200},
	{Kind: "body", Name: "Lymphatic drainage", DurationMinutes: 50, BasePrice: 120},
}

// Run performs the onboarding transaction: an ordered sequence of writes
// against independent resources with compensating actions recorded after
// each successful creation. Steps that resolve a uniqueness conflict by
// fetching the existing resource register no compensation, which makes a
// rerun after success safe (no duplicate clinics, roles, or links).
//
// Concurrent runs for the same identity are not mutually excluded here; the
// conflict-fetch behavior is the only safety net. Callers should prevent
// double submission.
func (s *Service) Run(ctx context.Context, identityID string, in Input, onProgress ProgressFunc) (Result, error) {
	if err := in.validate(identityID); err != nil {
		return Result{Error: err.Error()}, err
	}

	// Carried across steps: the role created (or found) in step 2, its
	// clinic reference before this run touched it, and the clinic id
	// produced by step 3.
	var (
		roleID       string
		prevClinicID *string
		clinicID     string
	)

	steps := []Step{
		{
			Name:    "upsert_profile",
			Message: "Saving your profile",
			Execute: func(ctx context.Context) (Compensation, error) {
				p := &entity.Profile{
					IdentityID:  identityID,
					Name:        in.Profile.Name,
					Email:       in.Profile.Email,
					Phone:       in.Profile.Phone,
					FirstAccess: true,
					Active:      true,
				}
				if err := s.repos.Profiles.Upsert(ctx, p); err != nil {
					return Compensation{}, err
				}
				return Compensation{
					Name: "revert_profile_flags",
					Undo: func(ctx context.Context) error {
						return s.repos.Profiles.SetCompletion(ctx, identityID, true, nil)
					},
				}, nil
			},
		},
		{
			Name:    "create_role",
			Message: "Setting up your access",
			Execute: func(ctx context.Context) (Compensation, error) {
				role := &entity.Role{IdentityID: identityID, Kind: entity.RoleKindOwner, Active: true}
				err := s.repos.Roles.Create(ctx, role)
				if errors.Is(err, entity.ErrConflict) {
					existing, ferr := s.repos.Roles.GetOwnerByIdentityID(ctx, identityID)
					if ferr != nil {
						return Compensation{}, ferr
					}
					roleID = existing.ID
					prevClinicID = existing.ClinicID
					return Compensation{}, nil
				}
				if err != nil {
					return Compensation{}, err
				}
				roleID = role.ID
				return Compensation{
					Name: "delete_role",
					Undo: func(ctx context.Context) error {
						return s.repos.Roles.Delete(ctx, role.ID)
					},
				}, nil
			},
		},
		{
			Name:    "create_clinic",
			Message: "Creating your clinic",
			Execute: func(ctx context.Context) (Compensation, error) {
				c := &entity.Clinic{
					Name:            in.Clinic.Name,
					Address:         in.Clinic.Address,
					City:            in.Clinic.City,
					State:           in.Clinic.State,
					Phone:           in.Clinic.Phone,
					Email:           in.Clinic.Email,
					OwnerIdentityID: identityID,
					Active:          true,
				}
				err := s.repos.Clinics.Create(ctx, c)
				if errors.Is(err, entity.ErrConflict) {
					existing, ferr := s.repos.Clinics.GetActiveByOwner(ctx, identityID)
					if ferr != nil {
						return Compensation{}, ferr
					}
					clinicID = existing.ID
					return Compensation{}, nil
				}
				if err != nil {
					return Compensation{}, err
				}
				clinicID = c.ID
				return Compensation{
					Name: "delete_clinic",
					Undo: func(ctx context.Context) error {
						return s.repos.Clinics.Delete(ctx, c.ID)
					},
				}, nil
			},
		},
		{
			Name:    "attach_clinic_to_role",
			Message: "Linking your clinic",
			Execute: func(ctx context.Context) (Compensation, error) {
				prev := prevClinicID
				if err := s.repos.Roles.SetClinicID(ctx, roleID, &clinicID); err != nil {
					return Compensation{}, err
				}
				return Compensation{
					Name: "detach_clinic_from_role",
					Undo: func(ctx context.Context) error {
						return s.repos.Roles.SetClinicID(ctx, roleID, prev)
					},
				}, nil
			},
		},
		{
			Name:    "create_professional",
			Message: "Registering your professional profile",
			Execute: func(ctx context.Context) (Compensation, error) {
				p := &entity.Professional{
					IdentityID:  identityID,
					Specialties: in.Professional.Specialties,
					Active:      true,
				}
				err := s.repos.Professionals.Create(ctx, p)
				if errors.Is(err, entity.ErrConflict) {
					if _, ferr := s.repos.Professionals.GetByIdentityID(ctx, identityID); ferr != nil {
						return Compensation{}, ferr
					}
					return Compensation{}, nil
				}
				if err != nil {
					return Compensation{}, err
				}
				return Compensation{
					Name: "delete_professional",
					Undo: func(ctx context.Context) error {
						return s.repos.Professionals.Delete(ctx, identityID)
					},
				}, nil
			},
		},
		{
			Name:    "create_clinic_link",
			Message: "Connecting you to your clinic",
			Execute: func(ctx context.Context) (Compensation, error) {
				title := in.Professional.RoleTitle
				if title == "" {
					title = "Owner"
				}
				l := &entity.ClinicProfessional{
					ClinicID:         clinicID,
					IdentityID:       identityID,
					RoleTitle:        title,
					CanCreateRecords: true,
					CanEditRecords:   true,
					CanViewFinance:   true,
					Active:           true,
				}
				err := s.repos.Links.Create(ctx, l)
				if errors.Is(err, entity.ErrConflict) {
					if _, ferr := s.repos.Links.Get(ctx, clinicID, identityID); ferr != nil {
						return Compensation{}, ferr
					}
					return Compensation{}, nil
				}
				if err != nil {
					return Compensation{}, err
				}
				return Compensation{
					Name: "delete_clinic_link",
					Undo: func(ctx context.Context) error {
						return s.repos.Links.Delete(ctx, clinicID, identityID)
					},
				}, nil
			},
		},
		{
			Name:    "create_templates",
			Message: "Preparing starter procedure templates",
			Execute: func(ctx context.Context) (Compensation, error) {
				var createdIDs []string
				for _, tpl := range starterTemplates {
					t := tpl
					t.CreatorIdentityID = identityID
					t.Active = true
					if err := s.repos.Templates.Create(ctx, &t); err != nil {
						// Templates are non-critical: the verifier reports
						// missing ones as warnings, not errors.
						s.logger.WithError(err).WithField("template", t.Name).Warn("starter template creation failed, skipping")
						continue
					}
					createdIDs = append(createdIDs, t.ID)
				}
				if len(createdIDs) == 0 {
					return Compensation{}, nil
				}
				return Compensation{
					Name: "delete_templates",
					Undo: func(ctx context.Context) error {
						var firstErr error
						for _, id := range createdIDs {
							if err := s.repos.Templates.Delete(ctx, id); err != nil && firstErr == nil {
								firstErr = err
							}
						}
						return firstErr
					},
				}, nil
			},
		},
		{
			Name:    "complete_onboarding",
			Message: "Finishing up",
			Execute: func(ctx context.Context) (Compensation, error) {
				now := time.Now()
				return Compensation{}, s.repos.Profiles.SetCompletion(ctx, identityID, false, &now)
			},
		},
	}

	if err := (runner{logger: s.logger}).run(ctx, steps, onProgress); err != nil {
		s.publish(ctx, notify.OnboardingFailed(identityID, err.Error()))
		return Result{Error: err.Error()}, err
	}

	s.publish(ctx, notify.OnboardingCompleted(identityID, clinicID))
	s.logger.WithFields(logrus.Fields{"identity_id": identityID, "clinic_id": clinicID}).Info("onboarding completed")
	return Result{Success: true, ClinicID: clinicID}, nil
}

func (s *Service) publish(ctx context.Context, ev notify.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(ctx, ev); err != nil {
		s.logger.WithError(err).WithField("type", ev.Type).Warn("event publish failed")
	}
}
