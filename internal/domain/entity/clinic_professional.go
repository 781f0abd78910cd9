package entity

import "time"

// ClinicProfessional links a professional to a clinic. The (ClinicID,
// IdentityID) pair is unique in the store.
type ClinicProfessional struct {
	ClinicID         string
	IdentityID       string
	RoleTitle        string
	CanCreateRecords bool
	CanEditRecords   bool
	CanViewFinance   bool
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
