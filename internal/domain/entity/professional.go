package entity

import "time"

// Professional is the practitioner record, at most one per identity id.
type Professional struct {
	IdentityID  string
	Specialties []string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
