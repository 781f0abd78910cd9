package wizard

// Data is the flat set of fields collected across all wizard steps. It
// carries no server-side identifiers, so a serialized copy is safe to keep
// client-side between page reloads.
type Data struct {
	// profile
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	// clinic
	ClinicName         string `json:"clinic_name,omitempty"`
	ClinicAddress      string `json:"clinic_address,omitempty"`
	City               string `json:"city,omitempty"`
	State              string `json:"state,omitempty"`
	ClinicPhone        string `json:"clinic_phone,omitempty"`
	ClinicEmail        string `json:"clinic_email,omitempty"`
	HasMultipleClinics bool   `json:"has_multiple_clinics,omitempty"`
	NetworkName        string `json:"network_name,omitempty"`

	// professional
	Specialties []string `json:"specialties,omitempty"`
	RoleTitle   string   `json:"role_title,omitempty"`

	// schedule
	OpeningTime string   `json:"opening_time,omitempty"`
	ClosingTime string   `json:"closing_time,omitempty"`
	WorkingDays []string `json:"working_days,omitempty"`
}

// Patch carries a partial update: nil fields are left untouched.
type Patch struct {
	Name  *string
	Email *string
	Phone *string

	ClinicName         *string
	ClinicAddress      *string
	City               *string
	State              *string
	ClinicPhone        *string
	ClinicEmail        *string
	HasMultipleClinics *bool
	NetworkName        *string

	Specialties *[]string
	RoleTitle   *string

	OpeningTime *string
	ClosingTime *string
	WorkingDays *[]string
}

func (d Data) merge(p Patch) Data {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setStr(&d.Name, p.Name)
	setStr(&d.Email, p.Email)
	setStr(&d.Phone, p.Phone)
	setStr(&d.ClinicName, p.ClinicName)
	setStr(&d.ClinicAddress, p.ClinicAddress)
	setStr(&d.City, p.City)
	setStr(&d.State, p.State)
	setStr(&d.ClinicPhone, p.ClinicPhone)
	setStr(&d.ClinicEmail, p.ClinicEmail)
	setStr(&d.NetworkName, p.NetworkName)
	setStr(&d.RoleTitle, p.RoleTitle)
	setStr(&d.OpeningTime, p.OpeningTime)
	setStr(&d.ClosingTime, p.ClosingTime)
	if p.HasMultipleClinics != nil {
		d.HasMultipleClinics = *p.HasMultipleClinics
	}
	if p.Specialties != nil {
		d.Specialties = append([]string(nil), (*p.Specialties)...)
	}
	if p.WorkingDays != nil {
		d.WorkingDays = append([]string(nil), (*p.WorkingDays)...)
	}
	return d
}
