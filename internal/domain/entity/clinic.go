package entity

import "time"

// Clinic is an organization record. Name is required; OwnerIdentityID is
// immutable after creation. The store enforces at most one active clinic per
// owner, which is what makes the saga's create-or-fetch step safe to rerun.
type Clinic struct {
	ID              string
	Name            string
	Address         string
	City            string
	State           string
	Phone           string
	Email           string
	OwnerIdentityID string
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
