package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/lock"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets         repository.TicketRepository
	history         repository.TicketHistoryRepository
	locker          lock.Locker
	dispatcher      events.Dispatcher
	clock           domain.Clock
	sla             *domain.SLACalculator
	duplicateBucket domain.TicketStatus
	newID           func() string
	metrics         *observability.Metrics
	logger          *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service. Only TicketRepo is
// required; everything else falls back to an in-process default.
type TicketDependencies struct {
	TicketRepo      repository.TicketRepository
	HistoryRepo     repository.TicketHistoryRepository
	Locker          lock.Locker
	Dispatcher      events.Dispatcher
	Clock           domain.Clock
	SLAPolicy       domain.SLAPolicy
	DuplicateBucket domain.TicketStatus
	IDGenerator     func() string
	Metrics         *observability.Metrics
	Logger          *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    domain.TicketCategory
	Tags        []string
	Metadata    map[string]any
}

// TicketQuery narrows a ticket listing. Text is matched against the searchable fields
// after the storage filter is applied.
type TicketQuery struct {
	Statuses       []domain.TicketStatus
	Priorities     []domain.TicketPriority
	Categories     []domain.TicketCategory
	AssigneeName   *string
	Text           string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		tickets:         deps.TicketRepo,
		history:         deps.HistoryRepo,
		locker:          deps.Locker,
		dispatcher:      deps.Dispatcher,
		clock:           deps.Clock,
		sla:             domain.NewSLACalculator(deps.SLAPolicy),
		duplicateBucket: deps.DuplicateBucket,
		newID:           deps.IDGenerator,
		metrics:         deps.Metrics,
		logger:          deps.Logger,
	}
	if s.locker == nil {
		s.locker = lock.NewMemoryLocker()
	}
	if s.clock == nil {
		s.clock = domain.SystemClock{}
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// CreateTicket opens a ticket on behalf of the caller's tenant.
func (s *TicketService) CreateTicket(ctx context.Context, caller domain.Caller, input TicketCreateInput) (*domain.Ticket, error) {
	ticket, err := s.newTicket(caller, input)
	if err == nil {
		err = s.tickets.Save(ctx, ticket)
	}
	s.metrics.RecordTicketOperation("create", err)
	if err != nil {
		return nil, err
	}

	s.recordChange(ctx, caller, ticket, domain.ChangeTypeCreated, nil, map[string]any{
		"status":   ticket.Status,
		"priority": ticket.Priority,
	})
	s.publishEvent(ctx, caller, ticket, events.EventTicketCreated, events.TicketCreatedPayload{
		Title:    ticket.Title,
		Priority: ticket.Priority,
		Category: ticket.Category,
	})
	return ticket, nil
}

func (s *TicketService) newTicket(caller domain.Caller, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	creatorName := strings.TrimSpace(caller.Name)
	creatorEmail := strings.TrimSpace(caller.Email)

	missing := []string{}
	if strings.TrimSpace(caller.TenantID) == "" {
		missing = append(missing, "tenant_id")
	}
	if title == "" {
		missing = append(missing, "title")
	}
	if description == "" {
		missing = append(missing, "description")
	}
	if creatorName == "" {
		missing = append(missing, "creator_name")
	}
	if creatorEmail == "" {
		missing = append(missing, "creator_email")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("required ticket fields missing", map[string]any{"fields": missing})
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}
	category := input.Category
	if category == "" {
		category = domain.CategoryOther
	}
	if !category.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": category})
	}

	now := s.clock.Now()
	metadata := map[string]any{}
	for k, v := range input.Metadata {
		metadata[k] = v
	}
	return &domain.Ticket{
		ID:           s.newID(),
		TenantID:     caller.TenantID,
		TenantName:   strings.TrimSpace(caller.TenantName),
		Title:        title,
		Description:  description,
		Status:       domain.TicketStatusOpen,
		Priority:     priority,
		Category:     category,
		Tags:         domain.NormalizeTags(input.Tags),
		CreatorID:    domain.StringPtr(caller.UserID),
		CreatorName:  creatorName,
		CreatorEmail: creatorEmail,
		Messages:     []domain.Message{},
		Metadata:     metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// TransitionStatus moves a ticket to req.To. A DUPLICATE target must reference an
// existing ticket of the same tenant.
func (s *TicketService) TransitionStatus(ctx context.Context, caller domain.Caller, ticketID string, req domain.TransitionRequest) (*domain.Ticket, error) {
	var from domain.TicketStatus
	ticket, err := s.mutate(ctx, "transition", caller, ticketID, func(t *domain.Ticket, now time.Time) error {
		if err := domain.ValidateTransition(t, req); err != nil {
			return err
		}
		if req.To == domain.TicketStatusDuplicate {
			if err := s.checkDuplicateReference(ctx, t, strings.TrimSpace(req.DuplicateOf)); err != nil {
				return err
			}
		}
		var err error
		from, err = domain.ApplyTransition(t, req, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	newValue := map[string]any{"status": ticket.Status}
	if ticket.DuplicateOf != nil {
		newValue["duplicate_of"] = *ticket.DuplicateOf
	}
	if ticket.ResolutionNotes != nil && ticket.Status.IsResolution() {
		newValue["resolution_notes"] = *ticket.ResolutionNotes
	}
	s.recordChange(ctx, caller, ticket, domain.ChangeTypeStatus, map[string]any{"status": from}, newValue)
	s.publishEvent(ctx, caller, ticket, events.EventTicketStatusChanged, events.TicketStatusChangedPayload{
		OldStatus:   from,
		NewStatus:   ticket.Status,
		DuplicateOf: ticket.DuplicateOf,
		ResolvedAt:  ticket.ResolvedAt,
	})
	return ticket, nil
}

func (s *TicketService) checkDuplicateReference(ctx context.Context, ticket *domain.Ticket, refID string) error {
	ref, err := s.tickets.Load(ctx, refID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && ref.Deleted) {
		return apperrors.NewNotFound("ticket", map[string]any{"duplicate_of": refID})
	}
	if err != nil {
		return err
	}
	if ref.TenantID != ticket.TenantID {
		return apperrors.NewTenantMismatch(map[string]any{"duplicate_of": refID})
	}
	return nil
}

// ChangePriority sets a new priority. Status and SLA start time are untouched; the SLA
// simply re-evaluates against the new allowance.
func (s *TicketService) ChangePriority(ctx context.Context, caller domain.Caller, ticketID string, priority domain.TicketPriority) (*domain.Ticket, error) {
	var from domain.TicketPriority
	ticket, err := s.mutate(ctx, "change_priority", caller, ticketID, func(t *domain.Ticket, now time.Time) error {
		if !priority.Valid() {
			return apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
		}
		if priority == t.Priority {
			return apperrors.NewValidationError("ticket already has this priority", map[string]any{"priority": priority})
		}
		from = t.Priority
		t.Priority = priority
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordChange(ctx, caller, ticket, domain.ChangeTypePriority,
		map[string]any{"priority": from},
		map[string]any{"priority": ticket.Priority})
	s.publishEvent(ctx, caller, ticket, events.EventTicketPriorityChanged, events.TicketPriorityChangedPayload{
		OldPriority: from,
		NewPriority: ticket.Priority,
	})
	return ticket, nil
}

// AssignTicket records the responder handling a ticket. Reassignment is always allowed.
func (s *TicketService) AssignTicket(ctx context.Context, caller domain.Caller, ticketID, name, email string) (*domain.Ticket, error) {
	var previous domain.Assignee
	ticket, err := s.mutate(ctx, "assign", caller, ticketID, func(t *domain.Ticket, now time.Time) error {
		var err error
		previous, err = domain.AssignTicket(t, name, email, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordChange(ctx, caller, ticket, domain.ChangeTypeAssignee,
		assigneeValue(previous.Name, previous.Email),
		assigneeValue(ticket.AssigneeName, ticket.AssigneeEmail))
	s.publishEvent(ctx, caller, ticket, events.EventTicketAssigned, events.TicketAssignedPayload{
		PreviousName:  previous.Name,
		AssigneeName:  *ticket.AssigneeName,
		AssigneeEmail: ticket.AssigneeEmail,
	})
	return ticket, nil
}

func assigneeValue(name, email *string) map[string]any {
	value := map[string]any{"assignee_name": nil, "assignee_email": nil}
	if name != nil {
		value["assignee_name"] = *name
	}
	if email != nil {
		value["assignee_email"] = *email
	}
	return value
}

// AppendMessage adds a message to the ticket thread and notifies the other party.
func (s *TicketService) AppendMessage(ctx context.Context, caller domain.Caller, ticketID string, input domain.MessageInput) (*domain.Message, error) {
	var msg *domain.Message
	ticket, err := s.mutate(ctx, "append_message", caller, ticketID, func(t *domain.Ticket, now time.Time) error {
		var err error
		msg, err = domain.AppendMessage(t, s.newID(), input, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, caller, ticket, events.EventTicketMessageAdded, events.TicketMessageAddedPayload{
		MessageID:   msg.ID,
		SenderRole:  msg.SenderRole,
		Recipient:   msg.SenderRole.Counterpart(),
		BodyPreview: stringPreview(msg.Body, 120),
		Attachments: len(msg.Attachments),
	})
	return msg, nil
}

// DeleteTicket soft-deletes a ticket. A deleted ticket can no longer be read or mutated.
func (s *TicketService) DeleteTicket(ctx context.Context, caller domain.Caller, ticketID string) error {
	ticket, err := s.mutate(ctx, "delete", caller, ticketID, func(t *domain.Ticket, now time.Time) error {
		t.Deleted = true
		t.DeletedAt = &now
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return err
	}

	s.recordChange(ctx, caller, ticket, domain.ChangeTypeDeleted,
		map[string]any{"deleted": false},
		map[string]any{"deleted": true})
	s.publishEvent(ctx, caller, ticket, events.EventTicketDeleted, events.TicketDeletedPayload{
		DeletedAt: *ticket.DeletedAt,
	})
	return nil
}

// GetTicket returns a ticket of the tenant.
func (s *TicketService) GetTicket(ctx context.Context, tenantID, ticketID string) (*domain.Ticket, error) {
	return s.loadForTenant(ctx, tenantID, ticketID)
}

// Now reports the service clock.
func (s *TicketService) Now() time.Time {
	return s.clock.Now()
}

// GetSLA evaluates the ticket's SLA at the current time.
func (s *TicketService) GetSLA(ctx context.Context, tenantID, ticketID string) (domain.SLAStatus, error) {
	ticket, err := s.loadForTenant(ctx, tenantID, ticketID)
	if err != nil {
		return domain.SLAStatus{}, err
	}
	return s.EvaluateSLA(ticket), nil
}

// EvaluateSLA computes the SLA view of an already loaded ticket.
func (s *TicketService) EvaluateSLA(ticket *domain.Ticket) domain.SLAStatus {
	return s.sla.ForTicket(ticket, s.clock.Now())
}

// ListHistory returns the audit trail of a ticket, oldest first.
func (s *TicketService) ListHistory(ctx context.Context, tenantID, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	if _, err := s.loadForTenant(ctx, tenantID, ticketID); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	return s.history.ListByTicket(ctx, ticketID, limit, offset)
}

// QueryTickets lists tickets of a tenant ordered by priority then recency. An empty
// tenantID spans all tenants.
func (s *TicketService) QueryTickets(ctx context.Context, tenantID string, q TicketQuery) ([]domain.Ticket, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.Query(ctx, tenantID, repository.TicketFilter{
		Statuses:       q.Statuses,
		Priorities:     q.Priorities,
		Categories:     q.Categories,
		AssigneeName:   q.AssigneeName,
		CreatedFrom:    q.CreatedFrom,
		CreatedTo:      q.CreatedTo,
		IncludeDeleted: q.IncludeDeleted,
	})
	s.metrics.RecordTicketOperation("query", err)
	if err != nil {
		return nil, err
	}

	result := domain.SortByPriorityThenRecency(domain.FilterByText(tickets, q.Text))
	return paginate(result, q.Limit, q.Offset), nil
}

// Stats aggregates the tickets matched by q. Pagination fields are ignored.
func (s *TicketService) Stats(ctx context.Context, tenantID string, q TicketQuery) (domain.TicketStats, error) {
	q.Limit, q.Offset = 0, 0
	tickets, err := s.QueryTickets(ctx, tenantID, q)
	if err != nil {
		return domain.TicketStats{}, err
	}
	return domain.AggregateStats(tickets, domain.StatsOptions{
		DuplicateBucket: s.duplicateBucket,
		SLA:             s.sla,
		Now:             s.clock.Now(),
	}), nil
}

func validateQuery(q TicketQuery) error {
	for _, status := range q.Statuses {
		if !status.Valid() {
			return apperrors.NewValidationError("unknown status", map[string]any{"status": status})
		}
	}
	for _, priority := range q.Priorities {
		if !priority.Valid() {
			return apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
		}
	}
	for _, category := range q.Categories {
		if !category.Valid() {
			return apperrors.NewValidationError("unknown category", map[string]any{"category": category})
		}
	}
	return nil
}

func paginate(tickets []domain.Ticket, limit, offset int) []domain.Ticket {
	if offset > 0 {
		if offset >= len(tickets) {
			return []domain.Ticket{}
		}
		tickets = tickets[offset:]
	}
	if limit > 0 && limit < len(tickets) {
		tickets = tickets[:limit]
	}
	return tickets
}

// mutate runs fn on a fresh copy of the ticket while holding the ticket's lock and saves
// the result. Nothing is written when fn fails.
func (s *TicketService) mutate(ctx context.Context, op string, caller domain.Caller, ticketID string, fn func(*domain.Ticket, time.Time) error) (ticket *domain.Ticket, err error) {
	defer func() { s.metrics.RecordTicketOperation(op, err) }()

	unlock, err := s.locker.Lock(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ticket, err = s.loadForTenant(ctx, caller.TenantID, ticketID)
	if err != nil {
		return nil, err
	}
	if err := fn(ticket, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.tickets.Save(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) loadForTenant(ctx context.Context, tenantID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.Load(ctx, ticketID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && ticket.Deleted) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if err != nil {
		return nil, err
	}
	if ticket.TenantID != tenantID {
		return nil, apperrors.NewTenantMismatch(map[string]any{"ticket_id": ticketID})
	}
	return ticket, nil
}

func (s *TicketService) recordChange(ctx context.Context, caller domain.Caller, ticket *domain.Ticket, changeType domain.TicketChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	entry := &domain.TicketHistory{
		ID:            s.newID(),
		TicketID:      ticket.ID,
		TenantID:      ticket.TenantID,
		ChangedByRole: caller.Role,
		ChangedByName: caller.Name,
		ChangeType:    changeType,
		OldValue:      oldValue,
		NewValue:      newValue,
		CreatedAt:     ticket.UpdatedAt,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Error("record ticket history",
			zap.String("ticket_id", ticket.ID),
			zap.String("change_type", string(changeType)),
			zap.Error(err))
	}
}

func (s *TicketService) publishEvent(ctx context.Context, caller domain.Caller, ticket *domain.Ticket, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        s.newID(),
		Type:      eventType,
		TicketID:  ticket.ID,
		TenantID:  ticket.TenantID,
		Actor:     events.Actor{Role: caller.Role, Name: caller.Name, Email: caller.Email},
		Timestamp: s.clock.Now(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event_type", string(eventType)),
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
	}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) <= max {
		return body
	}
	runes := []rune(body)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
