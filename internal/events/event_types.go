package events

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers. Values double as AMQP routing keys.
type EventType string

const (
	EventTicketCreated         EventType = "ticket.created"
	EventTicketStatusChanged   EventType = "ticket.status_changed"
	EventTicketPriorityChanged EventType = "ticket.priority_changed"
	EventTicketAssigned        EventType = "ticket.assigned"
	EventTicketMessageAdded    EventType = "ticket.message_added"
	EventTicketDeleted         EventType = "ticket.deleted"
)

// AllEventTypes lists every event the ticket service emits.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketStatusChanged,
	EventTicketPriorityChanged,
	EventTicketAssigned,
	EventTicketMessageAdded,
	EventTicketDeleted,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role  domain.SenderRole `json:"role"`
	Name  string            `json:"name"`
	Email string            `json:"email,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	TenantID  string    `json:"tenant_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
	Category domain.TicketCategory `json:"category"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus   domain.TicketStatus `json:"old_status"`
	NewStatus   domain.TicketStatus `json:"new_status"`
	DuplicateOf *string             `json:"duplicate_of,omitempty"`
	ResolvedAt  *time.Time          `json:"resolved_at,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	PreviousName  *string `json:"previous_name,omitempty"`
	AssigneeName  string  `json:"assignee_name"`
	AssigneeEmail *string `json:"assignee_email,omitempty"`
}

// TicketMessageAddedPayload payload. Recipient is the party that should be told about
// the message.
type TicketMessageAddedPayload struct {
	MessageID   string            `json:"message_id"`
	SenderRole  domain.SenderRole `json:"sender_role"`
	Recipient   domain.SenderRole `json:"recipient"`
	BodyPreview string            `json:"body_preview"`
	Attachments int               `json:"attachments"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	DeletedAt time.Time `json:"deleted_at"`
}
