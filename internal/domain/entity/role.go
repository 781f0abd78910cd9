package entity

import "time"

const RoleKindOwner = "owner"

// Role is an access role attached to an identity. ClinicID is nullable on
// purpose: the saga creates the owner role before the clinic exists and
// attaches the clinic id in a later step.
type Role struct {
	ID         string
	IdentityID string
	Kind       string
	ClinicID   *string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
