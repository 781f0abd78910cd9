package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinsys/onboarding/internal/container"

	handlers "github.com/clinsys/onboarding/internal/interface/http"
	"github.com/clinsys/onboarding/internal/interface/middleware"
	"github.com/clinsys/onboarding/pkg/helpers"
)

// OnboardingModule wires the onboarding, wizard and integrity handlers into
// routes. Everything is authenticated; the batch endpoint is additionally
// limited per IP since support tooling tends to hammer it.
// Protected: POST /api/onboarding/run, GET /api/onboarding/status,
// GET/PUT/DELETE /api/wizard/snapshot, GET /api/integrity/report,
// POST /api/integrity/fix, POST /api/integrity/batch

type OnboardingModule struct {
	Onboarding *handlers.OnboardingHandler
	Wizard     *handlers.WizardHandler
	Integrity  *handlers.IntegrityHandler
	JWT        *helpers.JWTManager
}

func NewOnboardingModule(o *handlers.OnboardingHandler, w *handlers.WizardHandler, i *handlers.IntegrityHandler, jwt *helpers.JWTManager) *OnboardingModule {
	return &OnboardingModule{Onboarding: o, Wizard: w, Integrity: i, JWT: jwt}
}

func (m *OnboardingModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIdentity(), nil),
	)
	{
		// The saga tolerates reruns but a double submit is still wasted work
		runLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIdentity(), nil)
		auth.POST("/onboarding/run", runLimiter, m.Onboarding.Run)
		auth.GET("/onboarding/status", m.Onboarding.Status)

		auth.GET("/wizard/snapshot", m.Wizard.GetSnapshot)
		auth.PUT("/wizard/snapshot", m.Wizard.SaveSnapshot)
		auth.DELETE("/wizard/snapshot", m.Wizard.DeleteSnapshot)

		auth.GET("/integrity/report", m.Integrity.Report)
		auth.POST("/integrity/fix", m.Integrity.Fix)

		batchLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
		auth.POST("/integrity/batch", batchLimiter, m.Integrity.Batch)
	}
}
