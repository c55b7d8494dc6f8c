package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/support-desk/internal/domain"
)

func TestTicketsXLSX(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	dana := "Dana"
	tickets := []domain.Ticket{
		{
			ID: "t-1", TenantID: "acme", TenantName: "Acme Corp", Title: "Outage",
			Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh, Category: domain.CategoryTechnical,
			AssigneeName: &dana, Tags: []string{"prod", "db"}, CreatedAt: t0, UpdatedAt: t0,
		},
		{
			ID: "t-2", TenantID: "globex", Title: "Invoice",
			Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow, Category: domain.CategoryBilling,
			CreatedAt: t0, UpdatedAt: t0,
		},
	}
	calc := domain.NewSLACalculator(nil)
	now := t0.Add(9 * time.Hour)

	data, err := TicketsXLSX(tickets, func(ticket *domain.Ticket) domain.SLAStatus {
		return calc.ForTicket(ticket, now)
	})
	if err != nil {
		t.Fatalf("TicketsXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][len(Columns)-1] != "Breached" {
		t.Errorf("header = %v", rows[0])
	}

	first := rows[1]
	checks := map[int]string{0: "t-1", 1: "Acme Corp", 4: "HIGH", 6: "Dana", 7: "prod, db", 8: "2024-03-01 09:00:00", 12: "9", 13: "0", 14: "100", 15: "TRUE"}
	for col, want := range checks {
		if first[col] != want {
			t.Errorf("row 1 col %s = %q, want %q", Columns[col], first[col], want)
		}
	}
	if rows[2][1] != "globex" {
		t.Errorf("tenant fallback = %q", rows[2][1])
	}
	if rows[2][15] != "FALSE" {
		t.Errorf("low ticket breached = %q", rows[2][15])
	}
}
