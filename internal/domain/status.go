package domain

import (
	"strings"
	"time"

	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// TransitionRequest describes a requested status change.
type TransitionRequest struct {
	To              TicketStatus
	DuplicateOf     string
	ResolutionNotes string
}

// ValidateTransition checks a transition against the ticket without mutating it.
// Any status may follow any other; re-entering the current status is rejected.
func ValidateTransition(ticket *Ticket, req TransitionRequest) error {
	if !req.To.Valid() {
		return apperrors.NewInvalidTransition("unknown status", map[string]any{"status": req.To})
	}
	if req.To == ticket.Status {
		return apperrors.NewInvalidTransition("ticket already has this status", map[string]any{
			"ticket_id": ticket.ID,
			"status":    req.To,
		})
	}
	if req.To == TicketStatusDuplicate {
		ref := strings.TrimSpace(req.DuplicateOf)
		if ref == "" {
			return apperrors.NewInvalidTransition("duplicate_of is required", map[string]any{"ticket_id": ticket.ID})
		}
		if ref == ticket.ID {
			return apperrors.NewInvalidTransition("ticket cannot duplicate itself", map[string]any{"ticket_id": ticket.ID})
		}
	}
	return nil
}

// ApplyTransition validates and applies req, returning the previous status.
// The ticket is left untouched when validation fails.
func ApplyTransition(ticket *Ticket, req TransitionRequest, now time.Time) (TicketStatus, error) {
	if err := ValidateTransition(ticket, req); err != nil {
		return ticket.Status, err
	}
	from := ticket.Status
	ticket.Status = req.To

	if req.To == TicketStatusDuplicate {
		ref := strings.TrimSpace(req.DuplicateOf)
		ticket.DuplicateOf = &ref
	} else {
		ticket.DuplicateOf = nil
	}

	if req.To.IsResolution() {
		if ticket.ResolvedAt == nil {
			resolvedAt := now
			if resolvedAt.Before(ticket.CreatedAt) {
				resolvedAt = ticket.CreatedAt
			}
			ticket.ResolvedAt = &resolvedAt
		}
		if notes := StringPtr(req.ResolutionNotes); notes != nil {
			ticket.ResolutionNotes = notes
		}
	} else {
		ticket.ResolvedAt = nil
	}

	ticket.UpdatedAt = now
	return from, nil
}
