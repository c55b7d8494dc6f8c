package domain

import (
	"sort"
	"time"
)

// WorkloadLevel classifies the number of active tickets.
type WorkloadLevel string

const (
	WorkloadLow    WorkloadLevel = "Low"
	WorkloadMedium WorkloadLevel = "Medium"
	WorkloadHigh   WorkloadLevel = "High"
)

// ClassifyWorkload maps an active ticket count to a level: ≤20 Low, 21–50 Medium, >50 High.
func ClassifyWorkload(active int) WorkloadLevel {
	switch {
	case active <= 20:
		return WorkloadLow
	case active <= 50:
		return WorkloadMedium
	default:
		return WorkloadHigh
	}
}

// PriorityCount is one row of the per-priority breakdown.
type PriorityCount struct {
	Priority TicketPriority `json:"priority"`
	Count    int            `json:"count"`
}

// CategoryCount is one row of the per-category breakdown.
type CategoryCount struct {
	Category TicketCategory `json:"category"`
	Count    int            `json:"count"`
}

// TicketStats summarises a ticket snapshot.
type TicketStats struct {
	Total          int
	Open           int
	InProgress     int
	Resolved       int
	Closed         int
	Duplicate      int
	ResolutionRate float64
	ActiveWorkload int
	WorkloadLevel  WorkloadLevel
	Breached       int
	ByPriority     []PriorityCount
	ByCategory     []CategoryCount
}

// StatsOptions tunes aggregation.
type StatsOptions struct {
	// DuplicateBucket names the status bucket DUPLICATE tickets are added to. Empty
	// counts them in Total only.
	DuplicateBucket TicketStatus
	// SLA and Now enable the Breached count; a nil SLA skips it.
	SLA *SLACalculator
	Now time.Time
}

// AggregateStats computes counts and rates over tickets. It never fails and does not
// modify its input.
func AggregateStats(tickets []Ticket, opts StatsOptions) TicketStats {
	stats := TicketStats{Total: len(tickets)}
	byPriority := make(map[TicketPriority]int, len(PriorityOrder))
	byCategory := make(map[TicketCategory]int)

	for i := range tickets {
		t := &tickets[i]
		status := t.Status
		if status == TicketStatusDuplicate {
			stats.Duplicate++
			status = opts.DuplicateBucket
		}
		switch status {
		case TicketStatusOpen:
			stats.Open++
		case TicketStatusInProgress:
			stats.InProgress++
		case TicketStatusResolved:
			stats.Resolved++
		case TicketStatusClosed:
			stats.Closed++
		}

		byPriority[t.Priority]++
		byCategory[t.Category]++

		if opts.SLA != nil && t.IsActive() && opts.SLA.ForTicket(t, opts.Now).IsBreached {
			stats.Breached++
		}
	}

	if stats.Total > 0 {
		stats.ResolutionRate = float64(stats.Resolved) / float64(stats.Total) * 100
	}
	stats.ActiveWorkload = stats.Open + stats.InProgress
	stats.WorkloadLevel = ClassifyWorkload(stats.ActiveWorkload)

	stats.ByPriority = make([]PriorityCount, 0, len(PriorityOrder))
	for _, p := range PriorityOrder {
		stats.ByPriority = append(stats.ByPriority, PriorityCount{Priority: p, Count: byPriority[p]})
	}

	stats.ByCategory = make([]CategoryCount, 0, len(byCategory))
	for c, n := range byCategory {
		stats.ByCategory = append(stats.ByCategory, CategoryCount{Category: c, Count: n})
	}
	sort.Slice(stats.ByCategory, func(i, j int) bool {
		if stats.ByCategory[i].Count != stats.ByCategory[j].Count {
			return stats.ByCategory[i].Count > stats.ByCategory[j].Count
		}
		return stats.ByCategory[i].Category < stats.ByCategory[j].Category
	})

	return stats
}
