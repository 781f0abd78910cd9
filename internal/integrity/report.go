package integrity

import "time"

type Status string

const (
	StatusValid   Status = "valid"
	StatusWarning Status = "warning"
	StatusInvalid Status = "invalid"
)

// Check names, in the order they are evaluated and reported.
const (
	CheckProfile      = "profile"
	CheckRole         = "role"
	CheckClinic       = "clinic"
	CheckProfessional = "professional"
	CheckClinicLink   = "clinic_link"
	CheckTemplates    = "templates"
	CheckCompletion   = "completion"
)

var checkOrder = []string{
	CheckProfile,
	CheckRole,
	CheckClinic,
	CheckProfessional,
	CheckClinicLink,
	CheckTemplates,
	CheckCompletion,
}

// CheckResult is one check's finding. Findings are classifications, not
// exceptions: a check never fails the report generation itself.
type CheckResult struct {
	IsValid  bool           `json:"is_valid"`
	Errors   []string       `json:"errors"`
	Warnings []string       `json:"warnings"`
	Details  map[string]any `json:"details,omitempty"`
}

// Report is the full integrity picture for one identity.
type Report struct {
	IdentityID      string                 `json:"identity_id"`
	GeneratedAt     time.Time              `json:"generated_at"`
	OverallStatus   Status                 `json:"overall_status"`
	Checks          map[string]CheckResult `json:"checks"`
	ErrorChecks     int                    `json:"error_checks"`
	WarningChecks   int                    `json:"warning_checks"`
	Recommendations []string               `json:"recommendations"`
}

// One fixed recommendation per check kind. Derivation is deterministic:
// a check contributes its line when it carries errors or warnings.
var recommendations = map[string]string{
	CheckProfile:      "Complete your profile information in account settings",
	CheckRole:         "Re-run onboarding to restore your access role",
	CheckClinic:       "Re-run onboarding to create your clinic, or complete its contact details",
	CheckProfessional: "Re-run onboarding to restore your professional record",
	CheckClinicLink:   "Re-run onboarding to reconnect you to your clinic",
	CheckTemplates:    "Create procedure templates to speed up scheduling",
	CheckCompletion:   "Finish the onboarding wizard to unlock all features",
}

func aggregate(identityID string, checks map[string]CheckResult) Report {
	r := Report{
		IdentityID:  identityID,
		GeneratedAt: time.Now().UTC(),
		Checks:      checks,
	}
	for _, name := range checkOrder {
		c := checks[name]
		if len(c.Errors) > 0 {
			r.ErrorChecks++
		}
		if len(c.Warnings) > 0 {
			r.WarningChecks++
		}
		if len(c.Errors) > 0 || len(c.Warnings) > 0 {
			r.Recommendations = append(r.Recommendations, recommendations[name])
		}
	}
	switch {
	case r.ErrorChecks > 0:
		r.OverallStatus = StatusInvalid
	case r.WarningChecks > 0:
		r.OverallStatus = StatusWarning
	default:
		r.OverallStatus = StatusValid
	}
	return r
}

func checkResult(errs, warns []string, details map[string]any) CheckResult {
	if errs == nil {
		errs = []string{}
	}
	if warns == nil {
		warns = []string{}
	}
	return CheckResult{IsValid: len(errs) == 0, Errors: errs, Warnings: warns, Details: details}
}
