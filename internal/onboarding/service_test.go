package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsys/onboarding/internal/domain/entity"
	"github.com/clinsys/onboarding/internal/infrastructure/memory"
	"github.com/clinsys/onboarding/internal/integrity"
	"github.com/clinsys/onboarding/internal/wizard"
	"github.com/clinsys/onboarding/pkg/notify"
)

func wizardData() wizard.Data {
	return wizard.Data{
		Name:        "Ana Souza",
		Email:       "ana@example.com",
		ClinicName:  "Clinica Bela Pele",
		City:        "Sao Paulo",
		State:       "SP",
		Specialties: []string{"dermatology"},
	}
}

type capturedEvents struct {
	events []notify.Event
}

func (c *capturedEvents) PublishJSON(_ context.Context, body any) error {
	if ev, ok := body.(notify.Event); ok {
		c.events = append(c.events, ev)
	}
	return nil
}

func (c *capturedEvents) types() []string {
	out := make([]string, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev.Type)
	}
	return out
}

func newTestService(store *memory.Store) (*Service, *capturedEvents) {
	events := &capturedEvents{}
	svc := NewService(Repositories{
		Profiles:      store.Profiles(),
		Roles:         store.Roles(),
		Clinics:       store.Clinics(),
		Professionals: store.Professionals(),
		Links:         store.ClinicProfessionals(),
		Templates:     store.ProcedureTemplates(),
	}, events, testLogger())
	return svc, events
}

func validInput() Input {
	return Input{
		Profile: ProfileInput{Name: "Ana Souza", Email: "ana@example.com", Phone: "+5511999990000"},
		Clinic: ClinicInput{
			Name:    "Clinica Bela Pele",
			Address: "Av. Paulista 1000",
			City:    "Sao Paulo",
			State:   "SP",
			Email:   "contato@belapele.com",
		},
		Professional: ProfessionalInput{Specialties: []string{"dermatology", "aesthetics"}},
	}
}

const testIdentity = "identity-ana"

func TestRunCreatesFullGraph(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc, events := newTestService(store)
	ctx := context.Background()

	res, err := svc.Run(ctx, testIdentity, validInput(), nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotEmpty(t, res.ClinicID)

	profile, err := store.Profiles().GetByIdentityID(ctx, testIdentity)
	require.NoError(t, err)
	assert.False(t, profile.FirstAccess)
	require.NotNil(t, profile.OnboardingCompletedAt)

	role, err := store.Roles().GetOwnerByIdentityID(ctx, testIdentity)
	require.NoError(t, err)
	require.NotNil(t, role.ClinicID)
	assert.Equal(t, res.ClinicID, *role.ClinicID)

	clinic, err := store.Clinics().GetActiveByOwner(ctx, testIdentity)
	require.NoError(t, err)
	assert.Equal(t, res.ClinicID, clinic.ID)

	_, err = store.Professionals().GetByIdentityID(ctx, testIdentity)
	require.NoError(t, err)

	link, err := store.ClinicProfessionals().Get(ctx, res.ClinicID, testIdentity)
	require.NoError(t, err)
	assert.Equal(t, "Owner", link.RoleTitle)
	assert.True(t, link.CanCreateRecords)
	assert.True(t, link.CanEditRecords)
	assert.True(t, link.CanViewFinance)

	templates, err := store.ProcedureTemplates().ListByCreator(ctx, testIdentity)
	require.NoError(t, err)
	assert.Len(t, templates, 4)

	assert.Equal(t, []string{notify.TypeOnboardingCompleted}, events.types())
}

func TestRunProgressReachesEveryStep(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc, _ := newTestService(store)

	var names []string
	var last Progress
	_, err := svc.Run(context.Background(), testIdentity, validInput(), func(p Progress) {
		names = append(names, p.StepName)
		last = p
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"upsert_profile",
		"create_role",
		"create_clinic",
		"attach_clinic_to_role",
		"create_professional",
		"create_clinic_link",
		"create_templates",
		"complete_onboarding",
	}, names)
	assert.Equal(t, "complete_onboarding", last.StepName)
	assert.Less(t, last.Percentage, 100)
}

func TestRunIsIdempotentAcrossReruns(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	first, err := svc.Run(ctx, testIdentity, validInput(), nil)
	require.NoError(t, err)

	second, err := svc.Run(ctx, testIdentity, validInput(), nil)
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, first.ClinicID, second.ClinicID)

	// Conflicts resolved by fetching: still exactly one role and one link.
	roles, err := store.Roles().ListByIdentityID(ctx, testIdentity)
	require.NoError(t, err)
	assert.Len(t, roles, 1)

	_, err = store.ClinicProfessionals().Get(ctx, first.ClinicID, testIdentity)
	require.NoError(t, err)
}

func TestRunValidatesBeforeAnyWrite(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc, events := newTestService(store)
	ctx := context.Background()

	in := validInput()
	in.Professional.Specialties = nil

	res, err := svc.Run(ctx, testIdentity, in, nil)
	require.ErrorIs(t, err, entity.ErrSpecialtiesRequired)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)

	_, err = store.Profiles().GetByIdentityID(ctx, testIdentity)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.Empty(t, events.events)
}

func TestRunRejectsEmptyIdentity(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc, _ := newTestService(store)

	_, err := svc.Run(context.Background(), "  ", validInput(), nil)
	require.ErrorIs(t, err, entity.ErrIdentityRequired)
}

func TestRunRollsBackOnMidSagaFailure(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	boom := errors.New("professionals store down")
	store.FailProfessionalCreate = boom
	svc, events := newTestService(store)
	ctx := context.Background()

	res, err := svc.Run(ctx, testIdentity, validInput(), nil)
	require.ErrorIs(t, err, boom)
	assert.False(t, res.Success)
	assert.Empty(t, res.ClinicID)

	// Everything this run created is gone again.
	_, err = store.Clinics().GetActiveByOwner(ctx, testIdentity)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	_, err = store.Roles().GetOwnerByIdentityID(ctx, testIdentity)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	templates, err := store.ProcedureTemplates().ListByCreator(ctx, testIdentity)
	require.NoError(t, err)
	assert.Empty(t, templates)

	// The profile upsert is compensated by reverting the completion flags,
	// not by deletion.
	profile, err := store.Profiles().GetByIdentityID(ctx, testIdentity)
	require.NoError(t, err)
	assert.True(t, profile.FirstAccess)
	assert.Nil(t, profile.OnboardingCompletedAt)

	assert.Equal(t, []string{notify.TypeOnboardingFailed}, events.types())
}

func TestRunRecoversAfterTransientFailure(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	store.FailLinkCreate = errors.New("links store down")
	svc, _ := newTestService(store)
	ctx := context.Background()

	_, err := svc.Run(ctx, testIdentity, validInput(), nil)
	require.Error(t, err)

	store.FailLinkCreate = nil
	res, err := svc.Run(ctx, testIdentity, validInput(), nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotEmpty(t, res.ClinicID)

	_, err = store.ClinicProfessionals().Get(ctx, res.ClinicID, testIdentity)
	require.NoError(t, err)
}

func TestRunThenVerifyIsConsistent(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	res, err := svc.Run(ctx, testIdentity, validInput(), nil)
	require.NoError(t, err)
	require.True(t, res.Success)

	verifier := integrity.NewVerifier(integrity.Repositories{
		Profiles:      store.Profiles(),
		Roles:         store.Roles(),
		Clinics:       store.Clinics(),
		Professionals: store.Professionals(),
		Links:         store.ClinicProfessionals(),
		Templates:     store.ProcedureTemplates(),
	}, testLogger())

	report, err := verifier.VerifyUser(ctx, testIdentity)
	require.NoError(t, err)
	assert.Equal(t, integrity.StatusValid, report.OverallStatus)
	assert.Zero(t, report.ErrorChecks)
}

func TestRunWithMinimalInputWarnsWithoutErrors(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	// Only the hard-required fields: no phone, no address, no clinic contact.
	in := Input{
		Profile:      ProfileInput{Name: "Ana", Email: "ana@x.com"},
		Clinic:       ClinicInput{Name: "Clínica Ana"},
		Professional: ProfessionalInput{Specialties: []string{"facial"}},
	}

	res, err := svc.Run(ctx, testIdentity, in, nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotEmpty(t, res.ClinicID)

	verifier := integrity.NewVerifier(integrity.Repositories{
		Profiles:      store.Profiles(),
		Roles:         store.Roles(),
		Clinics:       store.Clinics(),
		Professionals: store.Professionals(),
		Links:         store.ClinicProfessionals(),
		Templates:     store.ProcedureTemplates(),
	}, testLogger())

	// The skipped optional fields surface as warnings, never as errors.
	report, err := verifier.VerifyUser(ctx, testIdentity)
	require.NoError(t, err)
	assert.NotEqual(t, integrity.StatusInvalid, report.OverallStatus)
	assert.Zero(t, report.ErrorChecks)
	assert.GreaterOrEqual(t, report.WarningChecks, 1)
	assert.Contains(t, report.Checks[integrity.CheckProfile].Warnings, "phone is not set")
	assert.Contains(t, report.Checks[integrity.CheckClinic].Warnings, "clinic has no contact information")
}

func TestInputFromWizardPartitionsFields(t *testing.T) {
	t.Parallel()

	in := InputFromWizard(wizardData())
	assert.Equal(t, "Ana Souza", in.Profile.Name)
	assert.Equal(t, "Clinica Bela Pele", in.Clinic.Name)
	assert.Equal(t, "Sao Paulo", in.Clinic.City)
	assert.Equal(t, []string{"dermatology"}, in.Professional.Specialties)
}
