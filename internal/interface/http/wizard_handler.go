package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/clinsys/onboarding/internal/wizard"
	"github.com/clinsys/onboarding/pkg/response"
	"github.com/clinsys/onboarding/pkg/validation"
)

type WizardHandler struct {
	Store  *wizard.SnapshotStore
	Logger *logrus.Logger
}

func NewWizardHandler(store *wizard.SnapshotStore, logger *logrus.Logger) *WizardHandler {
	return &WizardHandler{Store: store, Logger: logger}
}

// GetSnapshot returns the caller's persisted wizard snapshot together with
// the server-side view of the restored state (step validity, progress).
func (h *WizardHandler) GetSnapshot(c *gin.Context) {
	uid := c.GetString("identityID")

	snap, ok, err := h.Store.Load(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).WithField("identity_id", uid).Error("snapshot load failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "could not load snapshot", nil)
		c.JSON(resp.Status, resp)
		return
	}
	if !ok {
		resp := response.Error[any](c, http.StatusNotFound, "no snapshot", nil)
		c.JSON(resp.Status, resp)
		return
	}

	m := wizard.NewMachine()
	m.Restore(*snap)
	st := m.State()
	resp := response.Success(c, http.StatusOK, snap, "wizard snapshot", gin.H{
		"can_proceed":       st.CanProceed,
		"validation_errors": st.ValidationErrors,
		"progress":          m.Progress(),
	})
	c.JSON(resp.Status, resp)
}

// SaveSnapshot persists the posted wizard state. The step index is clamped
// and the data revalidated through the state machine before saving, so a
// stale or hand-crafted snapshot can never park a client on an invalid step.
func (h *WizardHandler) SaveSnapshot(c *gin.Context) {
	uid := c.GetString("identityID")

	var snap wizard.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	m := wizard.NewMachine()
	m.Restore(snap)
	normalized := m.Snapshot()
	normalized.PersistedAt = time.Now().UTC()

	if err := h.Store.Save(c.Request.Context(), uid, normalized); err != nil {
		h.Logger.WithError(err).WithField("identity_id", uid).Error("snapshot save failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "could not save snapshot", nil)
		c.JSON(resp.Status, resp)
		return
	}

	st := m.State()
	resp := response.Success(c, http.StatusOK, normalized, "snapshot saved", gin.H{
		"can_proceed":       st.CanProceed,
		"validation_errors": st.ValidationErrors,
		"progress":          m.Progress(),
	})
	c.JSON(resp.Status, resp)
}

func (h *WizardHandler) DeleteSnapshot(c *gin.Context) {
	uid := c.GetString("identityID")

	if err := h.Store.Clear(c.Request.Context(), uid); err != nil {
		h.Logger.WithError(err).WithField("identity_id", uid).Error("snapshot delete failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "could not delete snapshot", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "snapshot deleted", nil)
	c.JSON(resp.Status, resp)
}
