package events

import "time"

// Event type codes emitted by the contribution lifecycle. The notification
// worker subscribes to these to push status updates and send receipts.
const (
	TypeContributionCreated  = "CONTRIBUTION_CREATED"
	TypeContributionPaid     = "CONTRIBUTION_PAID"
	TypeContributionFailed   = "CONTRIBUTION_FAILED"
	TypeContributionRefunded = "CONTRIBUTION_REFUNDED"

	TypeProjectFunded = "PROJECT_FUNDED"

	TypeSystemBroadcast = "SYSTEM_BROADCAST"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CONTRIBUTION_PAID").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used by publishers.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
