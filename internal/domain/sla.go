package domain

import (
	"math"
	"time"
)

// SLAStatus is the read model of a ticket's progress against its allowance.
type SLAStatus struct {
	Priority       TicketPriority
	AllowanceHours float64
	ElapsedHours   float64
	RemainingHours float64
	Percentage     float64
	IsBreached     bool
	Deadline       time.Time
}

// SLACalculator derives SLA figures from priority, creation time and an explicit now.
type SLACalculator struct {
	policy SLAPolicy
}

// NewSLACalculator builds a calculator over policy; nil uses the default table.
func NewSLACalculator(policy SLAPolicy) *SLACalculator {
	if policy == nil {
		policy = DefaultSLAPolicy()
	}
	return &SLACalculator{policy: policy}
}

// Policy returns the allowance table in use.
func (c *SLACalculator) Policy() SLAPolicy {
	return c.policy
}

// Evaluate computes the SLA status at now. A now before createdAt counts as zero elapsed.
func (c *SLACalculator) Evaluate(priority TicketPriority, createdAt, now time.Time) SLAStatus {
	allowance := c.policy.Allowance(priority)
	elapsed := now.Sub(createdAt)
	if elapsed < 0 {
		elapsed = 0
	}

	allowanceHours := allowance.Hours()
	elapsedHours := elapsed.Hours()

	return SLAStatus{
		Priority:       priority,
		AllowanceHours: allowanceHours,
		ElapsedHours:   elapsedHours,
		RemainingHours: math.Max(0, allowanceHours-elapsedHours),
		Percentage:     math.Min(100, elapsedHours/allowanceHours*100),
		IsBreached:     elapsedHours > allowanceHours,
		Deadline:       createdAt.Add(allowance),
	}
}

// ForTicket evaluates the ticket's SLA at now.
func (c *SLACalculator) ForTicket(ticket *Ticket, now time.Time) SLAStatus {
	return c.Evaluate(ticket.Priority, ticket.CreatedAt, now)
}
