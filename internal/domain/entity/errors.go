package entity

import "errors"

var (
	// ErrNotFound is returned by repositories when a lookup matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned by creation methods when the store's uniqueness
	// constraint rejects the row. The saga treats it as "already exists" and
	// resolves it by fetching the existing resource instead of failing.
	ErrConflict = errors.New("already exists")
)

var (
	ErrProfileNameRequired  = errors.New("profile name is required")
	ErrProfileEmailRequired = errors.New("profile email is required")
	ErrClinicNameRequired   = errors.New("clinic name is required")
	ErrSpecialtiesRequired  = errors.New("at least one specialty is required")
	ErrIdentityRequired     = errors.New("identity id is required")
)
