// Package integrity re-derives, independently of the onboarding saga,
// whether the data graph a saga was supposed to establish actually exists
// and is well formed. All checks are reads; the only write anywhere in the
// package is the deliberately narrow auto-fix of the completion flags.
package integrity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clinsys/onboarding/internal/domain/entity"
	"github.com/clinsys/onboarding/internal/domain/repository"
)

// Repositories groups the read-side stores the verifier audits.
type Repositories struct {
	Profiles      repository.ProfileRepository
	Roles         repository.RoleRepository
	Clinics       repository.ClinicRepository
	Professionals repository.ProfessionalRepository
	Links         repository.ClinicProfessionalRepository
	Templates     repository.ProcedureTemplateRepository
}

type Verifier struct {
	repos  Repositories
	logger *logrus.Logger
}

func NewVerifier(repos Repositories, logger *logrus.Logger) *Verifier {
	return &Verifier{repos: repos, logger: logger}
}

// clinicLookup is the tagged outcome of resolving the clinic through the
// owner role's nullable clinic reference. Distinguishing "the reference is
// missing" from "the referenced clinic is gone" keeps a null from silently
// turning into a failed equality filter.
type clinicLookup int

const (
	clinicFound clinicLookup = iota
	clinicNotFound
	clinicRefMissing
)

// VerifyUser runs the seven independent checks and aggregates them. The
// returned error reports infrastructure failure only; data-graph findings
// always come back inside the report.
func (v *Verifier) VerifyUser(ctx context.Context, identityID string) (Report, error) {
	checks := map[string]CheckResult{}

	profile := v.checkProfile(ctx, identityID, checks)
	v.checkRole(ctx, identityID, checks)
	lookup, clinic := v.checkClinic(ctx, identityID, checks)
	v.checkProfessional(ctx, identityID, checks)
	v.checkClinicLink(ctx, identityID, lookup, clinic, checks)
	v.checkTemplates(ctx, identityID, checks)
	v.checkCompletion(profile, checks)

	for _, name := range checkOrder {
		if _, ok := checks[name]; !ok {
			return Report{}, fmt.Errorf("verify %s: check %s did not run", identityID, name)
		}
	}

	report := aggregate(identityID, checks)
	v.logger.WithFields(logrus.Fields{
		"identity_id": identityID,
		"status":      report.OverallStatus,
		"errors":      report.ErrorChecks,
		"warnings":    report.WarningChecks,
	}).Debug("integrity report generated")
	return report, nil
}

func (v *Verifier) checkProfile(ctx context.Context, identityID string, checks map[string]CheckResult) *entity.Profile {
	var errs, warns []string
	details := map[string]any{"found": false}

	p, err := v.repos.Profiles.GetByIdentityID(ctx, identityID)
	if errors.Is(err, entity.ErrNotFound) {
		checks[CheckProfile] = checkResult([]string{"profile not found"}, nil, details)
		return nil
	}
	if err != nil {
		checks[CheckProfile] = infraResult("profile", err)
		return nil
	}

	details["found"] = true
	if p.Email == "" {
		errs = append(errs, "email is missing")
	}
	if p.Name == "" {
		errs = append(errs, "name is missing")
	}
	if p.Phone == "" {
		warns = append(warns, "phone is not set")
	}
	if p.FirstAccess || p.OnboardingCompletedAt == nil {
		warns = append(warns, "onboarding completion flags are not finalized")
	}

	checks[CheckProfile] = checkResult(errs, warns, details)
	return p
}

func (v *Verifier) checkRole(ctx context.Context, identityID string, checks map[string]CheckResult) {
	var errs, warns []string

	roles, err := v.repos.Roles.ListByIdentityID(ctx, identityID)
	if err != nil {
		checks[CheckRole] = infraResult("roles", err)
		return
	}
	details := map[string]any{"role_count": len(roles)}

	if len(roles) == 0 {
		checks[CheckRole] = checkResult([]string{"no roles found"}, nil, details)
		return
	}

	var owner *entity.Role
	for i := range roles {
		if roles[i].Kind == entity.RoleKindOwner && roles[i].Active {
			owner = &roles[i]
			break
		}
	}
	if owner == nil {
		warns = append(warns, "no active owner role")
	} else {
		details["owner_role_id"] = owner.ID
		if owner.ClinicID == nil {
			errs = append(errs, "owner role has no clinic reference")
		}
	}

	checks[CheckRole] = checkResult(errs, warns, details)
}

// resolveClinic follows owner role -> clinic id -> clinic row, reporting
// which hop broke instead of collapsing everything into "not found".
func (v *Verifier) resolveClinic(ctx context.Context, identityID string) (clinicLookup, *entity.Clinic, error) {
	role, err := v.repos.Roles.GetOwnerByIdentityID(ctx, identityID)
	if errors.Is(err, entity.ErrNotFound) {
		return clinicRefMissing, nil, nil
	}
	if err != nil {
		return clinicRefMissing, nil, err
	}
	if role.ClinicID == nil {
		return clinicRefMissing, nil, nil
	}

	clinic, err := v.repos.Clinics.GetByID(ctx, *role.ClinicID)
	if errors.Is(err, entity.ErrNotFound) {
		return clinicNotFound, nil, nil
	}
	if err != nil {
		return clinicRefMissing, nil, err
	}
	return clinicFound, clinic, nil
}

func (v *Verifier) checkClinic(ctx context.Context, identityID string, checks map[string]CheckResult) (clinicLookup, *entity.Clinic) {
	lookup, clinic, err := v.resolveClinic(ctx, identityID)
	if err != nil {
		checks[CheckClinic] = infraResult("clinic", err)
		return lookup, nil
	}

	switch lookup {
	case clinicRefMissing:
		checks[CheckClinic] = checkResult([]string{"no clinic reference on owner role"}, nil, nil)
		return lookup, nil
	case clinicNotFound:
		checks[CheckClinic] = checkResult([]string{"referenced clinic does not exist"}, nil, nil)
		return lookup, nil
	}

	var errs, warns []string
	details := map[string]any{"clinic_id": clinic.ID}
	if clinic.Name == "" {
		errs = append(errs, "clinic name is missing")
	}
	if clinic.Phone == "" && clinic.Email == "" {
		warns = append(warns, "clinic has no contact information")
	}
	if clinic.Address == "" {
		warns = append(warns, "clinic address is not set")
	}
	if !clinic.Active {
		warns = append(warns, "clinic is inactive")
	}

	checks[CheckClinic] = checkResult(errs, warns, details)
	return lookup, clinic
}

func (v *Verifier) checkProfessional(ctx context.Context, identityID string, checks map[string]CheckResult) {
	p, err := v.repos.Professionals.GetByIdentityID(ctx, identityID)
	if errors.Is(err, entity.ErrNotFound) {
		checks[CheckProfessional] = checkResult([]string{"professional record not found"}, nil, nil)
		return
	}
	if err != nil {
		checks[CheckProfessional] = infraResult("professional", err)
		return
	}

	var warns []string
	if !p.Active {
		warns = append(warns, "professional record is inactive")
	}
	if len(p.Specialties) == 0 {
		warns = append(warns, "no specialties registered")
	}
	checks[CheckProfessional] = checkResult(nil, warns, map[string]any{"specialties": len(p.Specialties)})
}

func (v *Verifier) checkClinicLink(ctx context.Context, identityID string, lookup clinicLookup, clinic *entity.Clinic, checks map[string]CheckResult) {
	if lookup != clinicFound {
		checks[CheckClinicLink] = checkResult([]string{"clinic-professional link cannot be resolved without a clinic"}, nil, nil)
		return
	}

	l, err := v.repos.Links.Get(ctx, clinic.ID, identityID)
	if errors.Is(err, entity.ErrNotFound) {
		checks[CheckClinicLink] = checkResult([]string{"clinic-professional link not found"}, nil, nil)
		return
	}
	if err != nil {
		checks[CheckClinicLink] = infraResult("clinic link", err)
		return
	}

	var warns []string
	if !l.Active {
		warns = append(warns, "clinic-professional link is inactive")
	}
	var missing []string
	if !l.CanCreateRecords {
		missing = append(missing, "create records")
	}
	if !l.CanEditRecords {
		missing = append(missing, "edit records")
	}
	if !l.CanViewFinance {
		missing = append(missing, "view finance")
	}
	if len(missing) > 0 {
		warns = append(warns, fmt.Sprintf("capabilities not granted: %v", missing))
	}
	checks[CheckClinicLink] = checkResult(nil, warns, map[string]any{"role_title": l.RoleTitle})
}

func (v *Verifier) checkTemplates(ctx context.Context, identityID string, checks map[string]CheckResult) {
	templates, err := v.repos.Templates.ListByCreator(ctx, identityID)
	if err != nil {
		checks[CheckTemplates] = infraResult("templates", err)
		return
	}

	var warns []string
	details := map[string]any{"template_count": len(templates)}
	if len(templates) == 0 {
		checks[CheckTemplates] = checkResult(nil, []string{"no procedure templates created"}, details)
		return
	}

	incomplete := 0
	inactive := 0
	for _, t := range templates {
		// A zero base price is a legitimate free procedure; only negative
		// prices count as malformed.
		if t.Name == "" || t.Kind == "" || t.DurationMinutes <= 0 || t.BasePrice < 0 {
			incomplete++
		}
		if !t.Active {
			inactive++
		}
	}
	if incomplete > 0 {
		warns = append(warns, fmt.Sprintf("%d template(s) missing name, kind, duration or price", incomplete))
	}
	if inactive > 0 {
		warns = append(warns, fmt.Sprintf("%d template(s) inactive", inactive))
	}
	checks[CheckTemplates] = checkResult(nil, warns, details)
}

// checkCompletion distinguishes "structurally broken" from "merely not yet
// finalized": unset completion markers are warnings, never errors.
func (v *Verifier) checkCompletion(profile *entity.Profile, checks map[string]CheckResult) {
	if profile == nil {
		checks[CheckCompletion] = checkResult([]string{"profile not found"}, nil, nil)
		return
	}

	var warns []string
	if profile.FirstAccess {
		warns = append(warns, "first-access flag is still set")
	}
	if profile.OnboardingCompletedAt == nil {
		warns = append(warns, "completion timestamp is not set")
	}
	checks[CheckCompletion] = checkResult(nil, warns, map[string]any{
		"first_access": profile.FirstAccess,
		"completed":    profile.OnboardingCompletedAt != nil,
	})
}

func infraResult(what string, err error) CheckResult {
	return checkResult([]string{fmt.Sprintf("%s check failed: %v", what, err)}, nil, nil)
}

// VerifyBatch runs the single-user report sequentially over a list of ids.
// An id whose report generation itself fails yields a synthetic all-error
// report, so one bad id cannot abort the batch.
func (v *Verifier) VerifyBatch(ctx context.Context, identityIDs []string) []Report {
	reports := make([]Report, 0, len(identityIDs))
	for _, id := range identityIDs {
		report, err := v.VerifyUser(ctx, id)
		if err != nil {
			v.logger.WithError(err).WithField("identity_id", id).Error("report generation failed")
			report = syntheticErrorReport(id, err)
		}
		reports = append(reports, report)
	}
	return reports
}

func syntheticErrorReport(identityID string, cause error) Report {
	checks := make(map[string]CheckResult, len(checkOrder))
	for _, name := range checkOrder {
		checks[name] = checkResult([]string{fmt.Sprintf("report generation failed: %v", cause)}, nil, nil)
	}
	return aggregate(identityID, checks)
}

// FixResult lists which repairs were applied and which failed.
type FixResult struct {
	Fixed  []string `json:"fixed"`
	Failed []string `json:"failed"`
}

const fixCompletionFlags = "completion_flags"

// AutoFix applies the one repair the verifier is allowed to make: when the
// overall status is warning and every structural check (profile, role,
// clinic, professional, link) is individually valid, the completion markers
// are flipped. Anything structural requires re-running the saga, never a
// repair here.
func (v *Verifier) AutoFix(ctx context.Context, identityID string) (FixResult, error) {
	res := FixResult{Fixed: []string{}, Failed: []string{}}

	report, err := v.VerifyUser(ctx, identityID)
	if err != nil {
		return res, err
	}
	if report.OverallStatus != StatusWarning {
		return res, nil
	}
	for _, name := range []string{CheckProfile, CheckRole, CheckClinic, CheckProfessional, CheckClinicLink} {
		if !report.Checks[name].IsValid {
			return res, nil
		}
	}

	profile, err := v.repos.Profiles.GetByIdentityID(ctx, identityID)
	if err != nil {
		res.Failed = append(res.Failed, fixCompletionFlags)
		return res, nil
	}
	completedAt := profile.OnboardingCompletedAt
	if completedAt == nil {
		now := time.Now()
		completedAt = &now
	}
	if err := v.repos.Profiles.SetCompletion(ctx, identityID, false, completedAt); err != nil {
		v.logger.WithError(err).WithField("identity_id", identityID).Error("auto-fix failed")
		res.Failed = append(res.Failed, fixCompletionFlags)
		return res, nil
	}

	v.logger.WithField("identity_id", identityID).Info("auto-fix applied: completion flags finalized")
	res.Fixed = append(res.Fixed, fixCompletionFlags)
	return res, nil
}
