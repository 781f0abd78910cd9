package wizard

import (
	"strings"
	"time"

	"github.com/clinsys/onboarding/pkg/validation"
)

// Step indices. StepDone is a pure display state: it can be neither
// navigated to nor away from through the state machine.
const (
	StepWelcome = iota
	StepProfile
	StepClinic
	StepProfessional
	StepSchedule
	StepDone
)

const timeLayout = "15:04"

// Result is the outcome of validating one step against the accumulated
// wizard data.
type Result struct {
	IsValid        bool              `json:"is_valid"`
	Errors         map[string]string `json:"errors"`
	RequiredFields []string          `json:"required_fields"`
}

// Step declares one wizard screen: its navigation flags and its pure,
// synchronous validation rule. Rules never touch the network.
type Step struct {
	Name            string
	Title           string
	CanNavigateFrom bool
	CanNavigateTo   bool
	Validate        func(Data) Result
}

var validate = validation.New()

// Steps is the fixed, ordered rules table consumed by the state machine.
var Steps = []Step{
	{
		Name:            "welcome",
		Title:           "Welcome",
		CanNavigateFrom: true,
		CanNavigateTo:   true,
		Validate: func(Data) Result {
			return Result{IsValid: true, Errors: map[string]string{}, RequiredFields: []string{}}
		},
	},
	{
		Name:            "profile",
		Title:           "Personal information",
		CanNavigateFrom: true,
		CanNavigateTo:   true,
		Validate:        validateProfile,
	},
	{
		Name:            "clinic",
		Title:           "Clinic setup",
		CanNavigateFrom: true,
		CanNavigateTo:   true,
		Validate:        validateClinic,
	},
	{
		Name:            "professional",
		Title:           "Professional profile",
		CanNavigateFrom: true,
		CanNavigateTo:   true,
		Validate:        validateProfessional,
	},
	{
		Name:            "schedule",
		Title:           "Opening hours",
		CanNavigateFrom: true,
		CanNavigateTo:   true,
		Validate:        validateSchedule,
	},
	{
		Name:  "done",
		Title: "All set",
		Validate: func(Data) Result {
			return Result{IsValid: true, Errors: map[string]string{}, RequiredFields: []string{}}
		},
	},
}

type profileFields struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func validateProfile(d Data) Result {
	errs := validation.ToDetails(validate.Struct(profileFields{Name: d.Name, Email: d.Email}))
	return newResult(errs, []string{"name", "email"})
}

type clinicFields struct {
	ClinicName         string `json:"clinic_name" validate:"required"`
	City               string `json:"city" validate:"required"`
	State              string `json:"state" validate:"required"`
	HasMultipleClinics bool   `json:"has_multiple_clinics"`
	NetworkName        string `json:"network_name" validate:"required_if=HasMultipleClinics true"`
}

func validateClinic(d Data) Result {
	errs := validation.ToDetails(validate.Struct(clinicFields{
		ClinicName:         d.ClinicName,
		City:               d.City,
		State:              d.State,
		HasMultipleClinics: d.HasMultipleClinics,
		NetworkName:        d.NetworkName,
	}))
	required := []string{"clinic_name", "city", "state"}
	if d.HasMultipleClinics {
		required = append(required, "network_name")
	}
	return newResult(errs, required)
}

type professionalFields struct {
	Specialties []string `json:"specialties" validate:"required,min=1"`
}

func validateProfessional(d Data) Result {
	errs := validation.ToDetails(validate.Struct(professionalFields{Specialties: d.Specialties}))
	return newResult(errs, []string{"specialties"})
}

type scheduleFields struct {
	OpeningTime string `json:"opening_time" validate:"required,datetime=15:04"`
	ClosingTime string `json:"closing_time" validate:"required,datetime=15:04"`
}

func validateSchedule(d Data) Result {
	errs := validation.ToDetails(validate.Struct(scheduleFields{
		OpeningTime: d.OpeningTime,
		ClosingTime: d.ClosingTime,
	}))
	// Range check only when both fields parse; the error lands on the
	// closing-time field.
	if len(errs) == 0 {
		open, err1 := time.Parse(timeLayout, strings.TrimSpace(d.OpeningTime))
		close, err2 := time.Parse(timeLayout, strings.TrimSpace(d.ClosingTime))
		if err1 == nil && err2 == nil && !open.Before(close) {
			errs = map[string]string{"closing_time": "must be after opening time"}
		}
	}
	return newResult(errs, []string{"opening_time", "closing_time"})
}

func newResult(errs map[string]string, required []string) Result {
	if errs == nil {
		errs = map[string]string{}
	}
	return Result{IsValid: len(errs) == 0, Errors: errs, RequiredFields: required}
}
