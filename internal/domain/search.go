package domain

import (
	"sort"
	"strings"
)

// FilterByText keeps tickets where any searchable field contains text, ignoring case.
// Blank text returns the input slice as is.
func FilterByText(tickets []Ticket, text string) []Ticket {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return tickets
	}
	out := make([]Ticket, 0, len(tickets))
	for i := range tickets {
		if ticketMatches(&tickets[i], needle) {
			out = append(out, tickets[i])
		}
	}
	return out
}

func ticketMatches(t *Ticket, needle string) bool {
	fields := []string{t.Title, t.Description, t.CreatorName, t.CreatorEmail, t.TenantName}
	if t.AssigneeName != nil {
		fields = append(fields, *t.AssigneeName)
	}
	fields = append(fields, t.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// SortByPriorityThenRecency orders tickets most urgent first, newest first within a
// priority. The input is not modified and equal keys keep their relative order.
func SortByPriorityThenRecency(tickets []Ticket) []Ticket {
	sorted := append([]Ticket(nil), tickets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		wi, wj := sorted[i].Priority.Weight(), sorted[j].Priority.Weight()
		if wi != wj {
			return wi > wj
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}
