package handlers

import (
	"errors"
	"expvar"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/clinsys/onboarding/internal/domain/entity"
	"github.com/clinsys/onboarding/internal/domain/repository"
	"github.com/clinsys/onboarding/internal/onboarding"
	"github.com/clinsys/onboarding/internal/wizard"
	"github.com/clinsys/onboarding/pkg/response"
	"github.com/clinsys/onboarding/pkg/validation"
)

var (
	onboardingRuns     = expvar.NewInt("onboarding_runs_total")
	onboardingFailures = expvar.NewInt("onboarding_runs_failed")
)

type OnboardingHandler struct {
	Svc       *onboarding.Service
	Snapshots *wizard.SnapshotStore
	Profiles  repository.ProfileRepository
	Logger    *logrus.Logger
}

func NewOnboardingHandler(svc *onboarding.Service, snapshots *wizard.SnapshotStore, profiles repository.ProfileRepository, logger *logrus.Logger) *OnboardingHandler {
	return &OnboardingHandler{Svc: svc, Snapshots: snapshots, Profiles: profiles, Logger: logger}
}

// Run executes the onboarding transaction for the caller. The body is the
// flat wizard payload; when omitted, the persisted wizard snapshot is used
// instead. On success the snapshot is cleared.
func (h *OnboardingHandler) Run(c *gin.Context) {
	uid := c.GetString("identityID")

	var data wizard.Data
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&data); err != nil {
			resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
			c.JSON(resp.Status, resp)
			return
		}
	} else {
		snap, ok, err := h.Snapshots.Load(c.Request.Context(), uid)
		if err != nil {
			h.Logger.WithError(err).WithField("identity_id", uid).Error("snapshot load failed")
			resp := response.Error[any](c, http.StatusInternalServerError, "could not load wizard snapshot", nil)
			c.JSON(resp.Status, resp)
			return
		}
		if !ok {
			resp := response.Error[any](c, http.StatusBadRequest, "no wizard data: send a payload or save a snapshot first", nil)
			c.JSON(resp.Status, resp)
			return
		}
		data = snap.Data
	}

	onboardingRuns.Add(1)
	progress := func(p onboarding.Progress) {
		h.Logger.WithFields(logrus.Fields{
			"identity_id": uid,
			"step":        p.StepName,
			"percentage":  p.Percentage,
		}).Info(p.Message)
	}

	res, err := h.Svc.Run(c.Request.Context(), uid, onboarding.InputFromWizard(data), progress)
	if err != nil {
		onboardingFailures.Add(1)
		resp := response.Error[onboarding.Result](c, http.StatusUnprocessableEntity, "onboarding failed", res.Error)
		resp.Data = res
		c.JSON(resp.Status, resp)
		return
	}

	if err := h.Snapshots.Clear(c.Request.Context(), uid); err != nil {
		h.Logger.WithError(err).WithField("identity_id", uid).Warn("snapshot clear failed")
	}
	resp := response.Success(c, http.StatusOK, res, "onboarding completed", nil)
	c.JSON(resp.Status, resp)
}

// Status reports the caller's completion flags. An identity without a
// profile row simply has not onboarded yet; that is not an error.
func (h *OnboardingHandler) Status(c *gin.Context) {
	uid := c.GetString("identityID")

	p, err := h.Profiles.GetByIdentityID(c.Request.Context(), uid)
	if errors.Is(err, entity.ErrNotFound) {
		resp := response.Success(c, http.StatusOK, gin.H{
			"completed":    false,
			"first_access": true,
		}, "onboarding status", nil)
		c.JSON(resp.Status, resp)
		return
	}
	if err != nil {
		h.Logger.WithError(err).WithField("identity_id", uid).Error("status lookup failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "could not load status", nil)
		c.JSON(resp.Status, resp)
		return
	}

	resp := response.Success(c, http.StatusOK, gin.H{
		"completed":    p.OnboardingCompletedAt != nil,
		"first_access": p.FirstAccess,
		"completed_at": p.OnboardingCompletedAt,
	}, "onboarding status", nil)
	c.JSON(resp.Status, resp)
}
