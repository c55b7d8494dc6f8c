package domain

import "time"

// SenderRole indicates which side of the conversation authored a message.
type SenderRole string

const (
	SenderBusiness SenderRole = "business"
	SenderSupport  SenderRole = "support"
)

// Valid reports whether r is a known role.
func (r SenderRole) Valid() bool {
	return r == SenderBusiness || r == SenderSupport
}

// Counterpart returns the party that should be notified about r's activity.
func (r SenderRole) Counterpart() SenderRole {
	if r == SenderSupport {
		return SenderBusiness
	}
	return SenderSupport
}

// Message captures communications in a ticket thread.
type Message struct {
	ID          string
	SenderRole  SenderRole
	SenderName  string
	SenderEmail string
	Body        string
	Attachments []AttachmentReference
	Timestamp   time.Time
	Metadata    map[string]any
}

// AttachmentReference points at an uploaded file held by the media collaborator.
type AttachmentReference struct {
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

func (m Message) clone() Message {
	cp := m
	cp.Attachments = append([]AttachmentReference{}, m.Attachments...)
	cp.Metadata = cloneMetadata(m.Metadata)
	return cp
}

// Caller identifies who invokes a ticket operation and which tenant it is scoped to.
type Caller struct {
	TenantID   string
	TenantName string
	UserID     string
	Name       string
	Email      string
	Role       SenderRole
}
