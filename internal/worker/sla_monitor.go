package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

// TicketSource is the read side of the ticket service the monitor needs.
type TicketSource interface {
	QueryTickets(ctx context.Context, tenantID string, q service.TicketQuery) ([]domain.Ticket, error)
	EvaluateSLA(ticket *domain.Ticket) domain.SLAStatus
}

// SLAGauges receives the outcome of every sweep.
type SLAGauges interface {
	SetSLASnapshot(active, breached map[string]int, at time.Time)
}

// SLASnapshot counts active and breached tickets per priority at one instant.
type SLASnapshot struct {
	Active   map[string]int
	Breached map[string]int
	At       time.Time
}

// SLAMonitor periodically evaluates the SLA of every active ticket across all tenants.
// It only reads; tickets are never modified.
type SLAMonitor struct {
	source  TicketSource
	gauges  SLAGauges
	clock   domain.Clock
	logger  *zap.Logger
	timeout time.Duration

	mu        sync.Mutex
	scheduler *cron.Cron
}

// NewSLAMonitor builds a monitor. gauges may be nil.
func NewSLAMonitor(source TicketSource, gauges SLAGauges, clock domain.Clock, logger *zap.Logger) *SLAMonitor {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &SLAMonitor{
		source:  source,
		gauges:  gauges,
		clock:   clock,
		logger:  logger,
		timeout: time.Minute,
	}
}

// Sweep evaluates every open or in-progress ticket once.
func (m *SLAMonitor) Sweep(ctx context.Context) (SLASnapshot, error) {
	tickets, err := m.source.QueryTickets(ctx, "", service.TicketQuery{
		Statuses: []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress},
	})
	if err != nil {
		return SLASnapshot{}, fmt.Errorf("load active tickets: %w", err)
	}

	snapshot := SLASnapshot{
		Active:   make(map[string]int, len(domain.PriorityOrder)),
		Breached: make(map[string]int, len(domain.PriorityOrder)),
		At:       m.clock.Now(),
	}
	for _, p := range domain.PriorityOrder {
		snapshot.Active[string(p)] = 0
		snapshot.Breached[string(p)] = 0
	}
	for i := range tickets {
		priority := string(tickets[i].Priority)
		snapshot.Active[priority]++
		if m.source.EvaluateSLA(&tickets[i]).IsBreached {
			snapshot.Breached[priority]++
		}
	}

	if m.gauges != nil {
		m.gauges.SetSLASnapshot(snapshot.Active, snapshot.Breached, snapshot.At)
	}
	return snapshot, nil
}

// Start schedules Sweep using a cron spec such as "@every 5m" or "*/10 * * * *".
func (m *SLAMonitor) Start(schedule string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scheduler != nil {
		return fmt.Errorf("sla monitor already started")
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, m.run); err != nil {
		return fmt.Errorf("invalid sla monitor schedule %q: %w", schedule, err)
	}
	scheduler.Start()
	m.scheduler = scheduler
	m.logger.Info("sla monitor started", zap.String("schedule", schedule))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (m *SLAMonitor) Stop() {
	m.mu.Lock()
	scheduler := m.scheduler
	m.scheduler = nil
	m.mu.Unlock()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
}

func (m *SLAMonitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	snapshot, err := m.Sweep(ctx)
	if err != nil {
		m.logger.Error("sla sweep failed", zap.Error(err))
		return
	}
	breached := 0
	for _, n := range snapshot.Breached {
		breached += n
	}
	m.logger.Info("sla sweep completed", zap.Int("breached", breached))
}
