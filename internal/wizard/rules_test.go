package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeData() Data {
	return Data{
		Name:        "Ana Souza",
		Email:       "ana@example.com",
		Phone:       "+5511999990000",
		ClinicName:  "Clinica Bela Pele",
		City:        "Sao Paulo",
		State:       "SP",
		Specialties: []string{"dermatology"},
		OpeningTime: "08:00",
		ClosingTime: "18:00",
	}
}

func TestStepValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		step      int
		mutate    func(*Data)
		wantValid bool
		wantField string
	}{
		{
			name:      "welcome always valid",
			step:      StepWelcome,
			mutate:    func(d *Data) { *d = Data{} },
			wantValid: true,
		},
		{
			name:      "profile missing name",
			step:      StepProfile,
			mutate:    func(d *Data) { d.Name = "" },
			wantValid: false,
			wantField: "name",
		},
		{
			name:      "profile malformed email",
			step:      StepProfile,
			mutate:    func(d *Data) { d.Email = "not-an-email" },
			wantValid: false,
			wantField: "email",
		},
		{
			name:      "profile complete",
			step:      StepProfile,
			mutate:    func(d *Data) {},
			wantValid: true,
		},
		{
			name:      "clinic missing city",
			step:      StepClinic,
			mutate:    func(d *Data) { d.City = "" },
			wantValid: false,
			wantField: "city",
		},
		{
			name: "clinic network name required when multi-clinic",
			step: StepClinic,
			mutate: func(d *Data) {
				d.HasMultipleClinics = true
				d.NetworkName = ""
			},
			wantValid: false,
			wantField: "network_name",
		},
		{
			name: "clinic network name satisfied",
			step: StepClinic,
			mutate: func(d *Data) {
				d.HasMultipleClinics = true
				d.NetworkName = "Bela Pele Group"
			},
			wantValid: true,
		},
		{
			name:      "network name not required for single clinic",
			step:      StepClinic,
			mutate:    func(d *Data) { d.NetworkName = "" },
			wantValid: true,
		},
		{
			name:      "professional requires a specialty",
			step:      StepProfessional,
			mutate:    func(d *Data) { d.Specialties = nil },
			wantValid: false,
			wantField: "specialties",
		},
		{
			name:      "schedule rejects malformed time",
			step:      StepSchedule,
			mutate:    func(d *Data) { d.OpeningTime = "8am" },
			wantValid: false,
			wantField: "opening_time",
		},
		{
			name: "schedule rejects closing before opening",
			step: StepSchedule,
			mutate: func(d *Data) {
				d.OpeningTime = "18:00"
				d.ClosingTime = "08:00"
			},
			wantValid: false,
			wantField: "closing_time",
		},
		{
			name:      "schedule rejects equal opening and closing",
			step:      StepSchedule,
			mutate:    func(d *Data) { d.ClosingTime = d.OpeningTime },
			wantValid: false,
			wantField: "closing_time",
		},
		{
			name:      "schedule complete",
			step:      StepSchedule,
			mutate:    func(d *Data) {},
			wantValid: true,
		},
		{
			name:      "done step validates anything",
			step:      StepDone,
			mutate:    func(d *Data) { *d = Data{} },
			wantValid: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := completeData()
			tt.mutate(&data)

			res := Steps[tt.step].Validate(data)
			assert.Equal(t, tt.wantValid, res.IsValid)
			if tt.wantField != "" {
				assert.Contains(t, res.Errors, tt.wantField)
			}
			require.NotNil(t, res.Errors)
			require.NotNil(t, res.RequiredFields)
		})
	}
}

func TestRequiredFieldsFollowData(t *testing.T) {
	t.Parallel()

	single := Steps[StepClinic].Validate(Data{ClinicName: "A", City: "B", State: "C"})
	assert.NotContains(t, single.RequiredFields, "network_name")

	multi := Steps[StepClinic].Validate(Data{ClinicName: "A", City: "B", State: "C", HasMultipleClinics: true})
	assert.Contains(t, multi.RequiredFields, "network_name")
}

func TestStepsTableShape(t *testing.T) {
	t.Parallel()

	require.Len(t, Steps, StepDone+1)
	for _, s := range Steps {
		require.NotEmpty(t, s.Name)
		require.NotNil(t, s.Validate)
	}

	// Terminal step is display-only.
	assert.False(t, Steps[StepDone].CanNavigateFrom)
	assert.False(t, Steps[StepDone].CanNavigateTo)
}
