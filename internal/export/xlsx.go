// Package export renders ticket listings as spreadsheets.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/support-desk/internal/domain"
)

const sheetName = "Tickets"

// Columns is the header row of the ticket export.
var Columns = []string{
	"ID", "Tenant", "Title", "Status", "Priority", "Category", "Assignee", "Tags",
	"Created", "Updated", "Resolved", "Messages", "SLA Elapsed (h)", "SLA Remaining (h)",
	"SLA %", "Breached",
}

// SLAFunc evaluates a ticket's SLA at export time.
type SLAFunc func(ticket *domain.Ticket) domain.SLAStatus

// TicketsXLSX writes one row per ticket, in the given order, and returns the workbook
// bytes.
func TicketsXLSX(tickets []domain.Ticket, sla SLAFunc) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for i, col := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for rowIdx := range tickets {
		row := ticketRow(&tickets[rowIdx], sla)
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", rowIdx+2, err)
		}
	}

	for i := range Columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, 15); err != nil {
			return nil, err
		}
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func ticketRow(t *domain.Ticket, sla SLAFunc) []any {
	assignee := ""
	if t.AssigneeName != nil {
		assignee = *t.AssigneeName
	}
	resolved := ""
	if t.ResolvedAt != nil {
		resolved = formatTime(*t.ResolvedAt)
	}
	tenant := t.TenantName
	if tenant == "" {
		tenant = t.TenantID
	}

	row := []any{
		t.ID, tenant, t.Title, string(t.Status), string(t.Priority), string(t.Category), assignee,
		strings.Join(t.Tags, ", "), formatTime(t.CreatedAt), formatTime(t.UpdatedAt), resolved,
		len(t.Messages),
	}
	if sla == nil {
		return append(row, "", "", "", "")
	}
	status := sla(t)
	return append(row,
		round2(status.ElapsedHours),
		round2(status.RemainingHours),
		round2(status.Percentage),
		status.IsBreached,
	)
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
