package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// ErrNotFound is returned when a ticket id does not exist.
var ErrNotFound = errors.New("ticket not found")

// TicketFilter captures query criteria applied within a tenant.
type TicketFilter struct {
	Statuses       []domain.TicketStatus
	Priorities     []domain.TicketPriority
	Categories     []domain.TicketCategory
	AssigneeName   *string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// TicketRepository encapsulates ticket persistence. Save must be atomic per ticket.
type TicketRepository interface {
	Load(ctx context.Context, id string) (*domain.Ticket, error)
	Save(ctx context.Context, ticket *domain.Ticket) error
	// Query lists tickets of tenantID matching filter, newest first. An empty tenantID
	// spans all tenants.
	Query(ctx context.Context, tenantID string, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the postgres repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, tenant_id, tenant_name, title, description, status, priority, category, tags,
       creator_id, creator_name, creator_email, assignee_name, assignee_email, resolution_notes,
       resolved_at, duplicate_of, deleted, deleted_at, metadata, created_at, updated_at`

func (r *ticketRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	const upsert = `
        INSERT INTO tickets (id, tenant_id, tenant_name, title, description, status, priority, category, tags,
            creator_id, creator_name, creator_email, assignee_name, assignee_email, resolution_notes,
            resolved_at, duplicate_of, deleted, deleted_at, metadata, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
        ON CONFLICT (id) DO UPDATE SET
            tenant_name=EXCLUDED.tenant_name, title=EXCLUDED.title, description=EXCLUDED.description,
            status=EXCLUDED.status, priority=EXCLUDED.priority, category=EXCLUDED.category, tags=EXCLUDED.tags,
            assignee_name=EXCLUDED.assignee_name, assignee_email=EXCLUDED.assignee_email,
            resolution_notes=EXCLUDED.resolution_notes, resolved_at=EXCLUDED.resolved_at,
            duplicate_of=EXCLUDED.duplicate_of, deleted=EXCLUDED.deleted, deleted_at=EXCLUDED.deleted_at,
            metadata=EXCLUDED.metadata, updated_at=EXCLUDED.updated_at`
	const insertMessage = `
        INSERT INTO ticket_messages (id, ticket_id, seq, sender_role, sender_name, sender_email, body, attachments, metadata, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (id) DO NOTHING`

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsert,
			ticket.ID,
			ticket.TenantID,
			ticket.TenantName,
			ticket.Title,
			ticket.Description,
			ticket.Status,
			ticket.Priority,
			ticket.Category,
			ticket.Tags,
			ticket.CreatorID,
			ticket.CreatorName,
			ticket.CreatorEmail,
			ticket.AssigneeName,
			ticket.AssigneeEmail,
			ticket.ResolutionNotes,
			ticket.ResolvedAt,
			ticket.DuplicateOf,
			ticket.Deleted,
			ticket.DeletedAt,
			metadataOrEmpty(ticket.Metadata),
			ticket.CreatedAt,
			ticket.UpdatedAt,
		); err != nil {
			return fmt.Errorf("upsert ticket %s: %w", ticket.ID, err)
		}

		batch := &pgx.Batch{}
		for i, msg := range ticket.Messages {
			batch.Queue(insertMessage,
				msg.ID,
				ticket.ID,
				i,
				msg.SenderRole,
				msg.SenderName,
				msg.SenderEmail,
				msg.Body,
				msg.Attachments,
				metadataOrEmpty(msg.Metadata),
				msg.Timestamp,
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert messages for ticket %s: %w", ticket.ID, err)
		}
		return nil
	})
}

func (r *ticketRepository) Load(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	tickets, err := scanTickets(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, ErrNotFound
	}
	if err := r.attachMessages(ctx, tickets); err != nil {
		return nil, err
	}
	return &tickets[0], nil
}

func (r *ticketRepository) Query(ctx context.Context, tenantID string, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if tenantID != "" {
		args = append(args, tenantID)
		clauses = append(clauses, fmt.Sprintf("tenant_id=$%d", len(args)))
	}
	if !filter.IncludeDeleted {
		clauses = append(clauses, "deleted = FALSE")
	}
	if len(filter.Statuses) > 0 {
		args = append(args, toStrings(filter.Statuses))
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if len(filter.Priorities) > 0 {
		args = append(args, toStrings(filter.Priorities))
		clauses = append(clauses, fmt.Sprintf("priority = ANY($%d)", len(args)))
	}
	if len(filter.Categories) > 0 {
		args = append(args, toStrings(filter.Categories))
		clauses = append(clauses, fmt.Sprintf("category = ANY($%d)", len(args)))
	}
	if filter.AssigneeName != nil {
		args = append(args, *filter.AssigneeName)
		clauses = append(clauses, fmt.Sprintf("assignee_name=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC, id`,
		ticketColumns, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	tickets, err := scanTickets(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if err := r.attachMessages(ctx, tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketRepository) attachMessages(ctx context.Context, tickets []domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	index := make(map[string]int, len(tickets))
	ids := make([]string, len(tickets))
	for i := range tickets {
		index[tickets[i].ID] = i
		ids[i] = tickets[i].ID
	}

	const query = `
        SELECT id, ticket_id, sender_role, sender_name, sender_email, body, attachments, metadata, created_at
        FROM ticket_messages WHERE ticket_id = ANY($1) ORDER BY ticket_id, seq ASC`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			msg      domain.Message
			ticketID string
		)
		if err := rows.Scan(
			&msg.ID,
			&ticketID,
			&msg.SenderRole,
			&msg.SenderName,
			&msg.SenderEmail,
			&msg.Body,
			&msg.Attachments,
			&msg.Metadata,
			&msg.Timestamp,
		); err != nil {
			return err
		}
		if i, ok := index[ticketID]; ok {
			tickets[i].Messages = append(tickets[i].Messages, msg)
		}
	}
	return rows.Err()
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TenantID,
			&ticket.TenantName,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.Category,
			&ticket.Tags,
			&ticket.CreatorID,
			&ticket.CreatorName,
			&ticket.CreatorEmail,
			&ticket.AssigneeName,
			&ticket.AssigneeEmail,
			&ticket.ResolutionNotes,
			&ticket.ResolvedAt,
			&ticket.DuplicateOf,
			&ticket.Deleted,
			&ticket.DeletedAt,
			&ticket.Metadata,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func metadataOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
