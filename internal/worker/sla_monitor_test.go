package worker

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
)

type recordedGauges struct {
	active, breached map[string]int
	calls            int
}

func (g *recordedGauges) SetSLASnapshot(active, breached map[string]int, _ time.Time) {
	g.active, g.breached = active, breached
	g.calls++
}

func TestSLAMonitor_Sweep(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	now := t0
	clock := domain.ClockFunc(func() time.Time { return now })

	repo := repository.NewMemoryTicketRepository()
	svc := service.NewTicketService(service.TicketDependencies{TicketRepo: repo, Clock: clock})
	ctx := context.Background()
	caller := domain.Caller{TenantID: "acme", Name: "Bea", Email: "bea@acme.test", Role: domain.SenderBusiness}
	other := domain.Caller{TenantID: "globex", Name: "Gil", Email: "gil@globex.test", Role: domain.SenderBusiness}

	create := func(c domain.Caller, p domain.TicketPriority) *domain.Ticket {
		ticket, err := svc.CreateTicket(ctx, c, service.TicketCreateInput{Title: "t", Description: "d", Priority: p})
		if err != nil {
			t.Fatal(err)
		}
		return ticket
	}
	create(caller, domain.TicketPriorityUrgent)
	create(other, domain.TicketPriorityUrgent)
	create(caller, domain.TicketPriorityLow)
	resolved := create(caller, domain.TicketPriorityUrgent)
	if _, err := svc.TransitionStatus(ctx, caller, resolved.ID, domain.TransitionRequest{To: domain.TicketStatusResolved}); err != nil {
		t.Fatal(err)
	}

	now = t0.Add(3 * time.Hour)
	gauges := &recordedGauges{}
	monitor := NewSLAMonitor(svc, gauges, clock, zap.NewNop())

	before, _ := repo.Query(ctx, "", repository.TicketFilter{})
	snapshot, err := monitor.Sweep(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if snapshot.Active["URGENT"] != 2 || snapshot.Active["LOW"] != 1 || snapshot.Active["HIGH"] != 0 {
		t.Errorf("active = %v", snapshot.Active)
	}
	if snapshot.Breached["URGENT"] != 2 || snapshot.Breached["LOW"] != 0 {
		t.Errorf("breached = %v", snapshot.Breached)
	}
	if gauges.calls != 1 || gauges.breached["URGENT"] != 2 {
		t.Errorf("gauges = %+v", gauges)
	}

	after, _ := repo.Query(ctx, "", repository.TicketFilter{})
	for i := range before {
		if !before[i].UpdatedAt.Equal(after[i].UpdatedAt) || before[i].Status != after[i].Status {
			t.Fatalf("sweep modified ticket %s", before[i].ID)
		}
	}
}

func TestSLAMonitor_StartRejectsBadSchedule(t *testing.T) {
	monitor := NewSLAMonitor(nil, nil, nil, zap.NewNop())
	if err := monitor.Start("every tuesday"); err == nil {
		t.Fatal("expected schedule error")
	}
	monitor.Stop()
}

func TestSLAMonitor_StartStop(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	svc := service.NewTicketService(service.TicketDependencies{TicketRepo: repo})
	monitor := NewSLAMonitor(svc, nil, nil, zap.NewNop())

	if err := monitor.Start("@every 1h"); err != nil {
		t.Fatal(err)
	}
	if err := monitor.Start("@every 1h"); err == nil {
		t.Error("second Start should fail")
	}
	monitor.Stop()
	monitor.Stop()
}
