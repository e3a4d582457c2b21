package eventbus

import (
	"fmt"

	"github.com/google/uuid"
)

// HandlerError records one subscriber's failure to process an event. It is
// internal to the bus: logged and counted, never returned from Publish.
type HandlerError struct {
	EventID      uuid.UUID
	EventType    string
	SubscriberID string
	Err          error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("subscriber %q failed on %s event %s: %v", e.SubscriberID, e.EventType, e.EventID, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }
