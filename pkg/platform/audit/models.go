// Package audit captures security-relevant actions from domain logic. Events
// are transport-agnostic so stores and sinks can fan out.
package audit

import (
	"context"
	"time"

	id "haulpass/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose, enabling
// different retention and routing per category.
type EventCategory string

const (
	// CategorySecurity covers events relevant to security monitoring and
	// forensics: identity creation, verification failures.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility: routine issuance and presentation activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Actor     id.ActorRole  `json:"actor,omitempty"`
	DID       id.DID        `json:"did,omitempty"`
	Action    string        `json:"action"`
	Reason    string        `json:"reason,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventIdentityCreated      AuditEvent = "identity_created"
	EventCredentialIssued     AuditEvent = "credential_issued"
	EventPresentationCreated  AuditEvent = "presentation_created"
	EventPresentationVerified AuditEvent = "presentation_verified"
	EventVerificationFailed   AuditEvent = "verification_failed"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventIdentityCreated:      CategorySecurity,
	EventCredentialIssued:     CategoryOperations,
	EventPresentationCreated:  CategoryOperations,
	EventPresentationVerified: CategoryOperations,
	EventVerificationFailed:   CategorySecurity,
}

// CategoryFor returns the category for an event name, defaulting to
// operations for unknown actions.
func CategoryFor(action AuditEvent) EventCategory {
	if c, ok := eventCategories[action]; ok {
		return c
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actor id.ActorRole) ([]Event, error)
}

// Publisher is the emitting side consumed by domain services.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
