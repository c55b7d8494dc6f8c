package domain

import (
	"strings"
	"time"

	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// Assignee is the responder a ticket is assigned to.
type Assignee struct {
	Name  *string
	Email *string
}

// AssignTicket sets the ticket's assignee and returns the previous one. Status is never
// changed and reassignment is always allowed.
func AssignTicket(ticket *Ticket, name, email string, now time.Time) (Assignee, error) {
	previous := Assignee{Name: cloneString(ticket.AssigneeName), Email: cloneString(ticket.AssigneeEmail)}

	name = strings.TrimSpace(name)
	if name == "" {
		return previous, apperrors.NewInvalidAssignment("assignee name required", map[string]any{"ticket_id": ticket.ID})
	}

	ticket.AssigneeName = &name
	ticket.AssigneeEmail = StringPtr(email)
	ticket.UpdatedAt = now
	return previous, nil
}
