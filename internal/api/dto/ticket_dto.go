package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    domain.TicketCategory `json:"category"`
	Tags        []string              `json:"tags"`
	Metadata    map[string]any        `json:"metadata"`
}

// TransitionRequest payload.
type TransitionRequest struct {
	Status          domain.TicketStatus `json:"status"`
	DuplicateOf     string              `json:"duplicate_of"`
	ResolutionNotes string              `json:"resolution_notes"`
}

// PriorityRequest payload.
type PriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// AssignRequest payload.
type AssignRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateMessageRequest payload. Sender identity comes from the bearer token.
type CreateMessageRequest struct {
	Body        string                       `json:"body"`
	Attachments []domain.AttachmentReference `json:"attachments"`
	Metadata    map[string]any               `json:"metadata"`
}

// SLAResponse is the SLA view of a ticket.
type SLAResponse struct {
	Priority       domain.TicketPriority `json:"priority"`
	AllowanceHours float64               `json:"allowance_hours"`
	ElapsedHours   float64               `json:"elapsed_hours"`
	RemainingHours float64               `json:"remaining_hours"`
	Percentage     float64               `json:"percentage"`
	IsBreached     bool                  `json:"is_breached"`
	Deadline       time.Time             `json:"deadline"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           string                `json:"id"`
	TenantID     string                `json:"tenant_id"`
	TenantName   string                `json:"tenant_name"`
	Title        string                `json:"title"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	Category     domain.TicketCategory `json:"category"`
	Tags         []string              `json:"tags"`
	AssigneeName *string               `json:"assignee_name"`
	MessageCount int                   `json:"message_count"`
	Deleted      bool                  `json:"deleted,omitempty"`
	SLA          SLAResponse           `json:"sla"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID              string                `json:"id"`
	TenantID        string                `json:"tenant_id"`
	TenantName      string                `json:"tenant_name"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	Category        domain.TicketCategory `json:"category"`
	Tags            []string              `json:"tags"`
	CreatorName     string                `json:"creator_name"`
	CreatorEmail    string                `json:"creator_email"`
	AssigneeName    *string               `json:"assignee_name"`
	AssigneeEmail   *string               `json:"assignee_email"`
	ResolutionNotes *string               `json:"resolution_notes"`
	ResolvedAt      *time.Time            `json:"resolved_at"`
	DuplicateOf     *string               `json:"duplicate_of"`
	Metadata        map[string]any        `json:"metadata"`
	SLA             SLAResponse           `json:"sla"`
	Messages        []MessageResponse     `json:"messages"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// MessageResponse represents thread message.
type MessageResponse struct {
	ID          string                       `json:"id"`
	SenderRole  domain.SenderRole            `json:"sender_role"`
	SenderName  string                       `json:"sender_name"`
	SenderEmail string                       `json:"sender_email"`
	Body        string                       `json:"body"`
	Attachments []domain.AttachmentReference `json:"attachments"`
	Metadata    map[string]any               `json:"metadata,omitempty"`
	Timestamp   time.Time                    `json:"timestamp"`
}

// HistoryResponse is one audit entry.
type HistoryResponse struct {
	ID            string                  `json:"id"`
	ChangeType    domain.TicketChangeType `json:"change_type"`
	ChangedByRole domain.SenderRole       `json:"changed_by_role"`
	ChangedByName string                  `json:"changed_by_name"`
	OldValue      map[string]any          `json:"old_value"`
	NewValue      map[string]any          `json:"new_value"`
	CreatedAt     time.Time               `json:"created_at"`
}

// StatsResponse mirrors domain.TicketStats.
type StatsResponse struct {
	Total          int                    `json:"total"`
	Open           int                    `json:"open"`
	InProgress     int                    `json:"in_progress"`
	Resolved       int                    `json:"resolved"`
	Closed         int                    `json:"closed"`
	Duplicate      int                    `json:"duplicate"`
	ResolutionRate float64                `json:"resolution_rate"`
	ActiveWorkload int                    `json:"active_workload"`
	WorkloadLevel  domain.WorkloadLevel   `json:"workload_level"`
	Breached       int                    `json:"breached"`
	ByPriority     []domain.PriorityCount `json:"by_priority"`
	ByCategory     []domain.CategoryCount `json:"by_category"`
}
