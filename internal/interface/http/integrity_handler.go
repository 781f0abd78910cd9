package handlers

import (
	"expvar"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/clinsys/onboarding/internal/integrity"
	"github.com/clinsys/onboarding/pkg/response"
	"github.com/clinsys/onboarding/pkg/validation"
)

var integrityReports = expvar.NewInt("integrity_reports_total")

type IntegrityHandler struct {
	Verifier *integrity.Verifier
	Indexer  *integrity.Indexer
	Logger   *logrus.Logger
}

func NewIntegrityHandler(v *integrity.Verifier, ix *integrity.Indexer, logger *logrus.Logger) *IntegrityHandler {
	return &IntegrityHandler{Verifier: v, Indexer: ix, Logger: logger}
}

// Report generates the caller's integrity report. The report is also shipped
// to the support index; indexing failures never fail the request.
func (h *IntegrityHandler) Report(c *gin.Context) {
	uid := c.GetString("identityID")

	report, err := h.Verifier.VerifyUser(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).WithField("identity_id", uid).Error("report generation failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "could not generate report", nil)
		c.JSON(resp.Status, resp)
		return
	}
	integrityReports.Add(1)
	_ = h.Indexer.IndexReport(c.Request.Context(), report)

	resp := response.Success(c, http.StatusOK, report, "integrity report", nil)
	c.JSON(resp.Status, resp)
}

// Fix applies the narrow auto-repair (completion flags only) and returns the
// post-fix report so the caller sees the result in one round trip.
func (h *IntegrityHandler) Fix(c *gin.Context) {
	uid := c.GetString("identityID")

	fix, err := h.Verifier.AutoFix(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).WithField("identity_id", uid).Error("auto-fix failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "could not run auto-fix", nil)
		c.JSON(resp.Status, resp)
		return
	}

	report, err := h.Verifier.VerifyUser(c.Request.Context(), uid)
	if err != nil {
		resp := response.Success(c, http.StatusOK, fix, "auto-fix finished", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success(c, http.StatusOK, fix, "auto-fix finished", gin.H{"report": report})
	c.JSON(resp.Status, resp)
}

type batchRequest struct {
	IdentityIDs []string `json:"identity_ids" binding:"required,min=1,max=100,dive,required"`
}

// Batch verifies a list of identities for support tooling. Reports are
// returned in input order; ids that fail verification yield synthetic
// all-error reports instead of aborting the batch.
func (h *IntegrityHandler) Batch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	reports := h.Verifier.VerifyBatch(c.Request.Context(), req.IdentityIDs)
	integrityReports.Add(int64(len(reports)))

	invalid := 0
	for i := range reports {
		if reports[i].OverallStatus == integrity.StatusInvalid {
			invalid++
		}
		_ = h.Indexer.IndexReport(c.Request.Context(), reports[i])
	}

	resp := response.Success(c, http.StatusOK, reports, "batch report", gin.H{
		"total":   len(reports),
		"invalid": invalid,
	})
	c.JSON(resp.Status, resp)
}
