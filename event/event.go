package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Payload is the typed body of a domain event. Each lifecycle transition
// declares its own payload struct in the owning slice package; the struct
// reports the catalogue type it belongs to via EventType.
type Payload interface {
	EventType() string
}

// Event is the immutable envelope published on the bus. Handlers receive it
// read-only and must not mutate the payload.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	// OrganizationID scopes the event to a tenant. It is nil only for
	// platform-level events.
	OrganizationID *int    `json:"organization_id,omitempty"`
	Data           Payload `json:"data"`
}

// New constructs an event envelope for the given payload. The event id and
// timestamp are assigned here, at publish time.
func New(organizationID *int, data Payload) (Event, error) {
	if data == nil {
		return Event{}, fmt.Errorf("event payload must not be nil")
	}
	if data.EventType() == "" {
		return Event{}, fmt.Errorf("event payload %T reports an empty event type", data)
	}
	return Event{
		ID:             uuid.New(),
		Type:           data.EventType(),
		Timestamp:      time.Now(),
		OrganizationID: organizationID,
		Data:           data,
	}, nil
}

// OrgID is a convenience for building the envelope's organization scope.
func OrgID(id int) *int { return &id }
