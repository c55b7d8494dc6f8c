package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/export"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

const maxPageSize = 200

// TicketsHandler exposes the ticket service over HTTP.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), principal.Caller, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TicketPriority(strings.ToUpper(string(req.Priority))),
		Category:    domain.TicketCategory(strings.ToLower(string(req.Category))),
		Tags:        req.Tags,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.ticketDetail(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	tenantID, err := scopedTenant(c, principal)
	if err != nil {
		return err
	}
	query, err := parseTicketQuery(c)
	if err != nil {
		return err
	}

	tickets, err := h.service.QueryTickets(c.UserContext(), tenantID, query)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, h.ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Stats GET /tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	tenantID, err := scopedTenant(c, principal)
	if err != nil {
		return err
	}
	query, err := parseTicketQuery(c)
	if err != nil {
		return err
	}

	stats, err := h.service.Stats(c.UserContext(), tenantID, query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatsResponse{
		Total:          stats.Total,
		Open:           stats.Open,
		InProgress:     stats.InProgress,
		Resolved:       stats.Resolved,
		Closed:         stats.Closed,
		Duplicate:      stats.Duplicate,
		ResolutionRate: stats.ResolutionRate,
		ActiveWorkload: stats.ActiveWorkload,
		WorkloadLevel:  stats.WorkloadLevel,
		Breached:       stats.Breached,
		ByPriority:     stats.ByPriority,
		ByCategory:     stats.ByCategory,
	}})
}

// Export GET /tickets/export.xlsx.
func (h *TicketsHandler) Export(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	tenantID, err := scopedTenant(c, principal)
	if err != nil {
		return err
	}
	query, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	query.Limit, query.Offset = 0, 0

	tickets, err := h.service.QueryTickets(c.UserContext(), tenantID, query)
	if err != nil {
		return err
	}
	data, err := export.TicketsXLSX(tickets, h.service.EvaluateSLA)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	filename := "tickets-" + h.service.Now().UTC().Format("20060102-150405") + ".xlsx"
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), principal.Caller.TenantID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketDetail(ticket)})
}

// GetSLA GET /tickets/:id/sla.
func (h *TicketsHandler) GetSLA(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	sla, err := h.service.GetSLA(c.UserContext(), principal.Caller.TenantID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": slaResponse(sla)})
}

// ListHistory GET /tickets/:id/history.
func (h *TicketsHandler) ListHistory(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	limit, offset, err := parsePage(c)
	if err != nil {
		return err
	}
	history, err := h.service.ListHistory(c.UserContext(), principal.Caller.TenantID, c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.HistoryResponse, 0, len(history))
	for _, entry := range history {
		items = append(items, dto.HistoryResponse{
			ID:            entry.ID,
			ChangeType:    entry.ChangeType,
			ChangedByRole: entry.ChangedByRole,
			ChangedByName: entry.ChangedByName,
			OldValue:      entry.OldValue,
			NewValue:      entry.NewValue,
			CreatedAt:     entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// TransitionStatus POST /tickets/:id/status.
func (h *TicketsHandler) TransitionStatus(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.TransitionStatus(c.UserContext(), principal.Caller, c.Params("id"), domain.TransitionRequest{
		To:              domain.TicketStatus(strings.ToUpper(strings.TrimSpace(string(req.Status)))),
		DuplicateOf:     req.DuplicateOf,
		ResolutionNotes: req.ResolutionNotes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketDetail(ticket)})
}

// ChangePriority POST /tickets/:id/priority.
func (h *TicketsHandler) ChangePriority(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.PriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	priority := domain.TicketPriority(strings.ToUpper(strings.TrimSpace(string(req.Priority))))
	ticket, err := h.service.ChangePriority(c.UserContext(), principal.Caller, c.Params("id"), priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketDetail(ticket)})
}

// AssignTicket POST /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.AssignTicket(c.UserContext(), principal.Caller, c.Params("id"), req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketDetail(ticket)})
}

// AddMessage POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg, err := h.service.AppendMessage(c.UserContext(), principal.Caller, c.Params("id"), domain.MessageInput{
		SenderRole:  principal.Caller.Role,
		SenderName:  principal.Caller.Name,
		SenderEmail: principal.Caller.Email,
		Body:        req.Body,
		Attachments: req.Attachments,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": messageResponse(*msg)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTicket(c.UserContext(), principal.Caller, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

// scopedTenant returns the tenant a listing is restricted to. Support may pass
// scope=all to span every tenant.
func scopedTenant(c *fiber.Ctx, principal *auth.Principal) (string, error) {
	if c.Query("scope") != "all" {
		return principal.Caller.TenantID, nil
	}
	if !principal.IsSupport() {
		return "", apperrors.NewForbidden("only support may query all tenants")
	}
	return "", nil
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketQuery, error) {
	query := service.TicketQuery{
		Text:           c.Query("q"),
		IncludeDeleted: c.QueryBool("include_deleted", false),
	}
	for _, part := range splitList(c.Query("status")) {
		query.Statuses = append(query.Statuses, domain.TicketStatus(strings.ToUpper(part)))
	}
	for _, part := range splitList(c.Query("priority")) {
		query.Priorities = append(query.Priorities, domain.TicketPriority(strings.ToUpper(part)))
	}
	for _, part := range splitList(c.Query("category")) {
		query.Categories = append(query.Categories, domain.TicketCategory(strings.ToLower(part)))
	}
	if assignee := strings.TrimSpace(c.Query("assignee")); assignee != "" {
		query.AssigneeName = &assignee
	}

	var err error
	if query.CreatedFrom, err = parseTimeParam(c, "created_from"); err != nil {
		return query, err
	}
	if query.CreatedTo, err = parseTimeParam(c, "created_to"); err != nil {
		return query, err
	}
	if query.Limit, query.Offset, err = parsePage(c); err != nil {
		return query, err
	}
	return query, nil
}

func parsePage(c *fiber.Ctx) (int, int, error) {
	limit, offset := 0, 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return 0, 0, apperrors.NewValidationError("invalid limit", map[string]any{"limit": raw})
		}
		limit = v
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if raw := c.Query("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return 0, 0, apperrors.NewValidationError("invalid offset", map[string]any{"offset": raw})
		}
		offset = v
	}
	return limit, offset, nil
}

func parseTimeParam(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid "+key, map[string]any{key: raw})
	}
	return &parsed, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (h *TicketsHandler) ticketSummary(t *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           t.ID,
		TenantID:     t.TenantID,
		TenantName:   t.TenantName,
		Title:        t.Title,
		Status:       t.Status,
		Priority:     t.Priority,
		Category:     t.Category,
		Tags:         nonNilStrings(t.Tags),
		AssigneeName: t.AssigneeName,
		MessageCount: len(t.Messages),
		Deleted:      t.Deleted,
		SLA:          slaResponse(h.service.EvaluateSLA(t)),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (h *TicketsHandler) ticketDetail(t *domain.Ticket) dto.TicketDetailResponse {
	messages := make([]dto.MessageResponse, 0, len(t.Messages))
	for _, msg := range t.Messages {
		messages = append(messages, messageResponse(msg))
	}
	return dto.TicketDetailResponse{
		ID:              t.ID,
		TenantID:        t.TenantID,
		TenantName:      t.TenantName,
		Title:           t.Title,
		Description:     t.Description,
		Status:          t.Status,
		Priority:        t.Priority,
		Category:        t.Category,
		Tags:            nonNilStrings(t.Tags),
		CreatorName:     t.CreatorName,
		CreatorEmail:    t.CreatorEmail,
		AssigneeName:    t.AssigneeName,
		AssigneeEmail:   t.AssigneeEmail,
		ResolutionNotes: t.ResolutionNotes,
		ResolvedAt:      t.ResolvedAt,
		DuplicateOf:     t.DuplicateOf,
		Metadata:        t.Metadata,
		SLA:             slaResponse(h.service.EvaluateSLA(t)),
		Messages:        messages,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func messageResponse(msg domain.Message) dto.MessageResponse {
	attachments := msg.Attachments
	if attachments == nil {
		attachments = []domain.AttachmentReference{}
	}
	return dto.MessageResponse{
		ID:          msg.ID,
		SenderRole:  msg.SenderRole,
		SenderName:  msg.SenderName,
		SenderEmail: msg.SenderEmail,
		Body:        msg.Body,
		Attachments: attachments,
		Metadata:    msg.Metadata,
		Timestamp:   msg.Timestamp,
	}
}

func slaResponse(s domain.SLAStatus) dto.SLAResponse {
	return dto.SLAResponse{
		Priority:       s.Priority,
		AllowanceHours: s.AllowanceHours,
		ElapsedHours:   s.ElapsedHours,
		RemainingHours: s.RemainingHours,
		Percentage:     s.Percentage,
		IsBreached:     s.IsBreached,
		Deadline:       s.Deadline,
	}
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
