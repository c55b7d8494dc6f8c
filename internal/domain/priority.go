package domain

import "time"

// PriorityOrder lists priorities from most to least urgent.
var PriorityOrder = []TicketPriority{
	TicketPriorityUrgent,
	TicketPriorityHigh,
	TicketPriorityMedium,
	TicketPriorityLow,
}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	return p.Weight() > 0
}

// Weight returns the relative urgency used for ordering. Unknown values weigh 0.
func (p TicketPriority) Weight() int {
	switch p {
	case TicketPriorityUrgent:
		return 4
	case TicketPriorityHigh:
		return 3
	case TicketPriorityMedium:
		return 2
	case TicketPriorityLow:
		return 1
	}
	return 0
}

// SLAPolicy maps each priority to the time allowed before the ticket is in breach.
type SLAPolicy map[TicketPriority]time.Duration

// DefaultSLAPolicy returns the standard allowance table.
func DefaultSLAPolicy() SLAPolicy {
	return SLAPolicy{
		TicketPriorityUrgent: 2 * time.Hour,
		TicketPriorityHigh:   8 * time.Hour,
		TicketPriorityMedium: 24 * time.Hour,
		TicketPriorityLow:    72 * time.Hour,
	}
}

// Allowance returns the SLA allowance for p. Levels missing from the policy fall back to
// the default table; unknown priorities get the MEDIUM allowance.
func (sp SLAPolicy) Allowance(p TicketPriority) time.Duration {
	if d, ok := sp[p]; ok && d > 0 {
		return d
	}
	defaults := DefaultSLAPolicy()
	if d, ok := defaults[p]; ok {
		return d
	}
	return defaults[TicketPriorityMedium]
}
