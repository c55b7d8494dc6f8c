package domain

import (
	"strings"
	"time"

	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// MessageInput is a message as submitted by a sender.
type MessageInput struct {
	SenderRole  SenderRole
	SenderName  string
	SenderEmail string
	Body        string
	Attachments []AttachmentReference
	Metadata    map[string]any
}

// ValidateMessage checks the required sender and body fields.
func ValidateMessage(in MessageInput) error {
	missing := []string{}
	if strings.TrimSpace(in.Body) == "" {
		missing = append(missing, "body")
	}
	if strings.TrimSpace(in.SenderName) == "" {
		missing = append(missing, "sender_name")
	}
	if strings.TrimSpace(in.SenderEmail) == "" {
		missing = append(missing, "sender_email")
	}
	if len(missing) > 0 {
		return apperrors.NewInvalidMessage("required message fields missing", map[string]any{"fields": missing})
	}
	if !in.SenderRole.Valid() {
		return apperrors.NewInvalidMessage("unknown sender role", map[string]any{"sender_role": in.SenderRole})
	}
	return nil
}

// AppendMessage adds a message to the end of the thread. The timestamp is never earlier
// than the previous message's so the thread stays ordered even if the clock steps back.
func AppendMessage(ticket *Ticket, id string, in MessageInput, now time.Time) (*Message, error) {
	if err := ValidateMessage(in); err != nil {
		return nil, err
	}

	ts := now
	if n := len(ticket.Messages); n > 0 && ts.Before(ticket.Messages[n-1].Timestamp) {
		ts = ticket.Messages[n-1].Timestamp
	}

	msg := Message{
		ID:          id,
		SenderRole:  in.SenderRole,
		SenderName:  strings.TrimSpace(in.SenderName),
		SenderEmail: strings.TrimSpace(in.SenderEmail),
		Body:        in.Body,
		Attachments: append([]AttachmentReference{}, in.Attachments...),
		Timestamp:   ts,
		Metadata:    cloneMetadata(in.Metadata),
	}
	ticket.Messages = append(ticket.Messages, msg)
	ticket.UpdatedAt = ts

	appended := msg.clone()
	return &appended, nil
}
