package router

import (
	"github.com/clinsys/onboarding/internal/container"
	"github.com/clinsys/onboarding/internal/infrastructure/postgres"
	"github.com/clinsys/onboarding/internal/integrity"
	"github.com/clinsys/onboarding/internal/onboarding"
	"github.com/clinsys/onboarding/internal/wizard"

	handlers "github.com/clinsys/onboarding/internal/interface/http"
	"github.com/clinsys/onboarding/internal/router/modules"
)

func buildOnboardingModule() *modules.OnboardingModule {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	profiles := postgres.NewProfileRepository(pool)
	roles := postgres.NewRoleRepository(pool)
	clinics := postgres.NewClinicRepository(pool)
	professionals := postgres.NewProfessionalRepository(pool)
	links := postgres.NewClinicProfessionalRepository(pool)
	templates := postgres.NewProcedureTemplateRepository(pool)

	// nil publisher disables notifications; the service treats it as a no-op
	var events onboarding.EventPublisher
	if cfg.NotifyEnabled && container.GetRabbitPub() != nil {
		events = container.GetRabbitPub()
	}

	svc := onboarding.NewService(onboarding.Repositories{
		Profiles:      profiles,
		Roles:         roles,
		Clinics:       clinics,
		Professionals: professionals,
		Links:         links,
		Templates:     templates,
	}, events, logger)

	verifier := integrity.NewVerifier(integrity.Repositories{
		Profiles:      profiles,
		Roles:         roles,
		Clinics:       clinics,
		Professionals: professionals,
		Links:         links,
		Templates:     templates,
	}, logger)
	indexer := integrity.NewIndexer(container.GetES(), cfg.ESReportsIndex, logger)

	snapshots := wizard.NewSnapshotStore(container.GetRedis(), cfg.WizardSnapshotTTL)

	return modules.NewOnboardingModule(
		handlers.NewOnboardingHandler(svc, snapshots, profiles, logger),
		handlers.NewWizardHandler(snapshots, logger),
		handlers.NewIntegrityHandler(verifier, indexer, logger),
		container.GetJWT(),
	)
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	r.Add(buildOnboardingModule())
	r.Add(modules.NewDebugModule())
}
