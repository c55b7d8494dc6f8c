package domain

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

func newTicket(status TicketStatus) *Ticket {
	return &Ticket{
		ID:        "t-1",
		TenantID:  "tenant-a",
		Status:    status,
		Priority:  TicketPriorityMedium,
		Category:  CategoryOther,
		CreatedAt: t0,
		UpdatedAt: t0,
	}
}

func TestApplyTransition_SameStatusRejected(t *testing.T) {
	for _, s := range []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed} {
		ticket := newTicket(s)
		if _, err := ApplyTransition(ticket, TransitionRequest{To: s}, t0.Add(time.Hour)); !errors.Is(err, apperrors.ErrInvalidTransition) {
			t.Errorf("%s -> %s: err = %v, want invalid transition", s, s, err)
		}
		if !ticket.UpdatedAt.Equal(t0) {
			t.Errorf("%s: ticket mutated on rejected transition", s)
		}
	}
}

func TestApplyTransition_Table(t *testing.T) {
	later := t0.Add(3 * time.Hour)

	tests := []struct {
		name         string
		from         TicketStatus
		req          TransitionRequest
		wantErr      bool
		wantResolved bool
		wantDup      string
	}{
		{name: "open to in progress", from: TicketStatusOpen, req: TransitionRequest{To: TicketStatusInProgress}},
		{name: "open to resolved", from: TicketStatusOpen, req: TransitionRequest{To: TicketStatusResolved}, wantResolved: true},
		{name: "closed reopened", from: TicketStatusClosed, req: TransitionRequest{To: TicketStatusOpen}},
		{name: "in progress to closed", from: TicketStatusInProgress, req: TransitionRequest{To: TicketStatusClosed}, wantResolved: true},
		{name: "duplicate with reference", from: TicketStatusOpen, req: TransitionRequest{To: TicketStatusDuplicate, DuplicateOf: "t-2"}, wantDup: "t-2"},
		{name: "duplicate without reference", from: TicketStatusOpen, req: TransitionRequest{To: TicketStatusDuplicate}, wantErr: true},
		{name: "duplicate of itself", from: TicketStatusOpen, req: TransitionRequest{To: TicketStatusDuplicate, DuplicateOf: "t-1"}, wantErr: true},
		{name: "unknown status", from: TicketStatusOpen, req: TransitionRequest{To: "PENDING"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := newTicket(tt.from)
			from, err := ApplyTransition(ticket, tt.req, later)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if ticket.Status != tt.from {
					t.Fatalf("status changed to %s on error", ticket.Status)
				}
				return
			}
			if from != tt.from {
				t.Errorf("from = %s, want %s", from, tt.from)
			}
			if ticket.Status != tt.req.To {
				t.Errorf("status = %s, want %s", ticket.Status, tt.req.To)
			}
			if (ticket.ResolvedAt != nil) != tt.wantResolved {
				t.Errorf("resolvedAt = %v, want set=%v", ticket.ResolvedAt, tt.wantResolved)
			}
			if tt.wantDup == "" && ticket.DuplicateOf != nil {
				t.Errorf("duplicateOf = %q, want nil", *ticket.DuplicateOf)
			}
			if tt.wantDup != "" && (ticket.DuplicateOf == nil || *ticket.DuplicateOf != tt.wantDup) {
				t.Errorf("duplicateOf = %v, want %q", ticket.DuplicateOf, tt.wantDup)
			}
			if !ticket.UpdatedAt.Equal(later) {
				t.Errorf("updatedAt = %v, want %v", ticket.UpdatedAt, later)
			}
		})
	}
}

func TestApplyTransition_ResolvedAtLifecycle(t *testing.T) {
	ticket := newTicket(TicketStatusInProgress)

	resolvedAt := t0.Add(time.Hour)
	if _, err := ApplyTransition(ticket, TransitionRequest{To: TicketStatusResolved, ResolutionNotes: "patched"}, resolvedAt); err != nil {
		t.Fatal(err)
	}
	if ticket.ResolutionNotes == nil || *ticket.ResolutionNotes != "patched" {
		t.Fatalf("resolution notes = %v", ticket.ResolutionNotes)
	}

	// RESOLVED -> CLOSED keeps the original resolution time
	if _, err := ApplyTransition(ticket, TransitionRequest{To: TicketStatusClosed}, t0.Add(2*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if !ticket.ResolvedAt.Equal(resolvedAt) {
		t.Fatalf("resolvedAt = %v, want %v", ticket.ResolvedAt, resolvedAt)
	}

	if _, err := ApplyTransition(ticket, TransitionRequest{To: TicketStatusOpen}, t0.Add(3*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if ticket.ResolvedAt != nil {
		t.Fatal("reopening must clear resolvedAt")
	}
}

func TestApplyTransition_DuplicateClearedOnLeave(t *testing.T) {
	ticket := newTicket(TicketStatusOpen)
	if _, err := ApplyTransition(ticket, TransitionRequest{To: TicketStatusDuplicate, DuplicateOf: "t-9"}, t0); err != nil {
		t.Fatal(err)
	}
	if _, err := ApplyTransition(ticket, TransitionRequest{To: TicketStatusInProgress}, t0); err != nil {
		t.Fatal(err)
	}
	if ticket.DuplicateOf != nil {
		t.Fatal("duplicateOf must be cleared when leaving DUPLICATE")
	}
}

func TestApplyTransition_ResolvedAtNeverBeforeCreation(t *testing.T) {
	ticket := newTicket(TicketStatusOpen)
	if _, err := ApplyTransition(ticket, TransitionRequest{To: TicketStatusResolved}, t0.Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}
	if ticket.ResolvedAt.Before(ticket.CreatedAt) {
		t.Fatalf("resolvedAt %v before createdAt %v", ticket.ResolvedAt, ticket.CreatedAt)
	}
}
