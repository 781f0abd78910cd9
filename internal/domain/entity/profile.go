package entity

import "time"

// Profile is the per-identity user profile. Exactly one row exists per
// identity id; the onboarding saga upserts it and the integrity verifier
// reads it back.
//
// FirstAccess and OnboardingCompletedAt are the terminal onboarding markers:
// FirstAccess stays true until the saga's final step (or the verifier's
// narrow auto-fix) flips it and stamps the completion time.
type Profile struct {
	IdentityID            string
	Name                  string
	Email                 string
	Phone                 string
	FirstAccess           bool
	OnboardingCompletedAt *time.Time
	Active                bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
