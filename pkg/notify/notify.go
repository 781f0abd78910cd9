// Package notify defines the queue event payloads published to the
// notification sink. Delivery (email, push, toasts) is handled by external
// workers consuming the queue; this service only publishes.
package notify

import "time"

const (
	TypeOnboardingCompleted = "onboarding.completed"
	TypeOnboardingFailed    = "onboarding.failed"
	TypeIntegrityInvalid    = "integrity.invalid"
)

// Event is the JSON payload put on the RabbitMQ events queue.
type Event struct {
	Type       string    `json:"type"`
	IdentityID string    `json:"identity_id"`
	ClinicID   string    `json:"clinic_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func OnboardingCompleted(identityID, clinicID string) Event {
	return Event{
		Type:       TypeOnboardingCompleted,
		IdentityID: identityID,
		ClinicID:   clinicID,
		OccurredAt: time.Now().UTC(),
	}
}

func OnboardingFailed(identityID, detail string) Event {
	return Event{
		Type:       TypeOnboardingFailed,
		IdentityID: identityID,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}
}

func IntegrityInvalid(identityID, detail string) Event {
	return Event{
		Type:       TypeIntegrityInvalid,
		IdentityID: identityID,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}
}
