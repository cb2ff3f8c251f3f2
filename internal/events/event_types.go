package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/dealership/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIdentityRegistered  EventType = "identity_registered"
	EventStaffCreated        EventType = "staff_created"
	EventIdentityRoleChanged EventType = "identity_role_changed"
	EventIdentityActivity    EventType = "identity_activity_changed"
	EventPasswordChanged     EventType = "password_changed"
)

// Event represents an identity lifecycle event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	IdentityID string      `json:"identity_id"`
	ActorID    string      `json:"actor_id,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, identityID, actorID string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		IdentityID: identityID,
		ActorID:    actorID,
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
}

// IdentityRegisteredPayload payload.
type IdentityRegisteredPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// RoleChangedPayload payload.
type RoleChangedPayload struct {
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
}

// ActivityChangedPayload payload.
type ActivityChangedPayload struct {
	Active bool `json:"active"`
}
