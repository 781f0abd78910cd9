package entity

import "time"

// ProcedureTemplate is a starter procedure seeded at onboarding. Templates
// are not required for a consistent data graph; the verifier only raises
// warnings about them.
type ProcedureTemplate struct {
	ID                string
	Kind              string
	Name              string
	DurationMinutes   int
	BasePrice         float64
	CreatorIdentityID string
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
