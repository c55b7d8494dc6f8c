package domain

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

func validMessage() MessageInput {
	return MessageInput{
		SenderRole:  SenderBusiness,
		SenderName:  "Ana",
		SenderEmail: "ana@acme.io",
		Body:        "Any update?",
	}
}

func TestAppendMessage_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MessageInput)
	}{
		{name: "empty body", mutate: func(m *MessageInput) { m.Body = "  " }},
		{name: "empty sender name", mutate: func(m *MessageInput) { m.SenderName = "" }},
		{name: "empty sender email", mutate: func(m *MessageInput) { m.SenderEmail = "" }},
		{name: "unknown role", mutate: func(m *MessageInput) { m.SenderRole = "robot" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := newTicket(TicketStatusOpen)
			in := validMessage()
			tt.mutate(&in)
			if _, err := AppendMessage(ticket, "m-1", in, t0); !errors.Is(err, apperrors.ErrInvalidMessage) {
				t.Fatalf("err = %v, want invalid message", err)
			}
			if len(ticket.Messages) != 0 {
				t.Fatal("message appended despite validation failure")
			}
		})
	}
}

func TestAppendMessage_KeepsStatusAndPriority(t *testing.T) {
	ticket := newTicket(TicketStatusInProgress)
	ticket.Priority = TicketPriorityHigh

	msg, err := AppendMessage(ticket, "m-1", validMessage(), t0.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if ticket.Status != TicketStatusInProgress || ticket.Priority != TicketPriorityHigh {
		t.Fatalf("status/priority changed: %s/%s", ticket.Status, ticket.Priority)
	}
	if msg.Attachments == nil || len(msg.Attachments) != 0 {
		t.Fatalf("attachments = %#v, want empty slice", msg.Attachments)
	}
	if !ticket.UpdatedAt.Equal(t0.Add(time.Minute)) {
		t.Fatalf("updatedAt = %v", ticket.UpdatedAt)
	}
}

func TestAppendMessage_BodyStoredVerbatim(t *testing.T) {
	ticket := newTicket(TicketStatusOpen)
	in := validMessage()
	in.Body = "    indented code\n"

	msg, err := AppendMessage(ticket, "m-1", in, t0)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Body != in.Body || ticket.Messages[0].Body != in.Body {
		t.Fatalf("body = %q, stored %q, want %q", msg.Body, ticket.Messages[0].Body, in.Body)
	}
}

func TestAppendMessage_MonotonicTimestamps(t *testing.T) {
	ticket := newTicket(TicketStatusOpen)
	if _, err := AppendMessage(ticket, "m-1", validMessage(), t0.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	// clock stepped backwards
	second, err := AppendMessage(ticket, "m-2", validMessage(), t0.Add(30*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if second.Timestamp.Before(ticket.Messages[0].Timestamp) {
		t.Fatalf("timestamp %v earlier than previous %v", second.Timestamp, ticket.Messages[0].Timestamp)
	}
	if len(ticket.Messages) != 2 || ticket.Messages[1].ID != "m-2" {
		t.Fatalf("messages = %+v", ticket.Messages)
	}
}

func TestAssignTicket(t *testing.T) {
	ticket := newTicket(TicketStatusOpen)

	if _, err := AssignTicket(ticket, "   ", "x@y.z", t0.Add(time.Hour)); !errors.Is(err, apperrors.ErrInvalidAssignment) {
		t.Fatalf("err = %v, want invalid assignment", err)
	}
	if ticket.AssigneeName != nil || ticket.AssigneeEmail != nil || !ticket.UpdatedAt.Equal(t0) {
		t.Fatal("ticket mutated by rejected assignment")
	}

	prev, err := AssignTicket(ticket, " Dana ", "", t0.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if prev.Name != nil {
		t.Fatalf("previous assignee = %v, want nil", *prev.Name)
	}
	if *ticket.AssigneeName != "Dana" || ticket.AssigneeEmail != nil {
		t.Fatalf("assignee = %v/%v", ticket.AssigneeName, ticket.AssigneeEmail)
	}
	if ticket.Status != TicketStatusOpen {
		t.Fatalf("assignment changed status to %s", ticket.Status)
	}

	prev, err = AssignTicket(ticket, "Eli", "eli@support.io", t0.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if prev.Name == nil || *prev.Name != "Dana" {
		t.Fatalf("previous assignee = %v, want Dana", prev.Name)
	}
}

func TestTicketClone_Independent(t *testing.T) {
	ticket := newTicket(TicketStatusOpen)
	ticket.Tags = []string{"a"}
	ticket.Metadata = map[string]any{"k": "v"}
	if _, err := AppendMessage(ticket, "m-1", validMessage(), t0); err != nil {
		t.Fatal(err)
	}

	cp := ticket.Clone()
	cp.Tags[0] = "b"
	cp.Metadata["k"] = "w"
	cp.Messages[0].Body = "changed"

	if ticket.Tags[0] != "a" || ticket.Metadata["k"] != "v" || ticket.Messages[0].Body != "Any update?" {
		t.Fatal("clone shares state with original")
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" vip ", "", "vip", "billing"})
	if len(got) != 2 || got[0] != "vip" || got[1] != "billing" {
		t.Fatalf("NormalizeTags = %v", got)
	}
}
