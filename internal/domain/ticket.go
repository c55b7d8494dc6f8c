package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusDuplicate  TicketStatus = "DUPLICATE"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed, TicketStatusDuplicate:
		return true
	}
	return false
}

// IsResolution reports whether s marks the ticket as resolved for resolvedAt bookkeeping.
func (s TicketStatus) IsResolution() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// TicketCategory classifies what a ticket is about.
type TicketCategory string

const (
	CategoryTechnical      TicketCategory = "technical"
	CategoryBilling        TicketCategory = "billing"
	CategoryBug            TicketCategory = "bug"
	CategoryFeatureRequest TicketCategory = "feature_request"
	CategoryAccount        TicketCategory = "account"
	CategoryTraining       TicketCategory = "training"
	CategoryOther          TicketCategory = "other"
)

// Valid reports whether c is a known category.
func (c TicketCategory) Valid() bool {
	switch c {
	case CategoryTechnical, CategoryBilling, CategoryBug, CategoryFeatureRequest,
		CategoryAccount, CategoryTraining, CategoryOther:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests raised by a tenant.
type Ticket struct {
	ID              string
	TenantID        string
	TenantName      string
	Title           string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	Category        TicketCategory
	Tags            []string
	CreatorID       *string
	CreatorName     string
	CreatorEmail    string
	AssigneeName    *string
	AssigneeEmail   *string
	ResolutionNotes *string
	ResolvedAt      *time.Time
	DuplicateOf     *string
	Messages        []Message
	Deleted         bool
	DeletedAt       *time.Time
	Metadata        map[string]any
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsActive reports whether the ticket counts towards the active workload.
func (t *Ticket) IsActive() bool {
	return t.Status == TicketStatusOpen || t.Status == TicketStatusInProgress
}

// Clone returns a deep copy so callers can mutate without touching shared snapshots.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Tags = append([]string(nil), t.Tags...)
	cp.CreatorID = cloneString(t.CreatorID)
	cp.AssigneeName = cloneString(t.AssigneeName)
	cp.AssigneeEmail = cloneString(t.AssigneeEmail)
	cp.ResolutionNotes = cloneString(t.ResolutionNotes)
	cp.DuplicateOf = cloneString(t.DuplicateOf)
	cp.ResolvedAt = cloneTime(t.ResolvedAt)
	cp.DeletedAt = cloneTime(t.DeletedAt)
	cp.Metadata = cloneMetadata(t.Metadata)
	if t.Messages != nil {
		cp.Messages = make([]Message, len(t.Messages))
		for i := range t.Messages {
			cp.Messages[i] = t.Messages[i].clone()
		}
	}
	return &cp
}

// NormalizeTags trims, drops empties and removes duplicates keeping first occurrence.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// StringPtr returns a pointer to s, or nil when s is blank.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
