package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventKind tags a notification event emitted by the engine.
type EventKind string

const (
	EventApplicationSubmitted EventKind = "application_submitted"
	EventConnectionStatus     EventKind = "connection_status_changed"
	EventReadingFlagged       EventKind = "reading_flagged"
	EventBillGenerated        EventKind = "bill_generated"
	EventPaymentReceived      EventKind = "payment_received"
	EventLoadViolation        EventKind = "load_violation"
	EventCriticalPowerAlert   EventKind = "critical_power_alert"
)

// Event is a fire-and-forget notification handed to the notifier
// collaborator. Delivery failure never rolls back the originating
// operation.
type Event struct {
	Kind         EventKind         `json:"kind"`
	ConnectionID uuid.UUID         `json:"connection_id"`
	OccurredAt   time.Time         `json:"occurred_at"`
	Data         map[string]string `json:"data,omitempty"`
}
