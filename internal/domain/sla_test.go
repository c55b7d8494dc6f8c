package domain

import (
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSLAEvaluate_AtCreation(t *testing.T) {
	calc := NewSLACalculator(nil)
	for _, p := range PriorityOrder {
		got := calc.Evaluate(p, t0, t0)
		if got.ElapsedHours != 0 {
			t.Errorf("%s: elapsed = %v, want 0", p, got.ElapsedHours)
		}
		if got.IsBreached {
			t.Errorf("%s: breached at creation", p)
		}
		if got.Percentage != 0 {
			t.Errorf("%s: percentage = %v, want 0", p, got.Percentage)
		}
	}
}

func TestSLAEvaluate_PastAllowance(t *testing.T) {
	calc := NewSLACalculator(nil)
	policy := DefaultSLAPolicy()
	for _, p := range PriorityOrder {
		now := t0.Add(policy[p] + time.Minute)
		got := calc.Evaluate(p, t0, now)
		if !got.IsBreached {
			t.Errorf("%s: expected breach after allowance", p)
		}
		if got.Percentage != 100 {
			t.Errorf("%s: percentage = %v, want 100", p, got.Percentage)
		}
		if got.RemainingHours != 0 {
			t.Errorf("%s: remaining = %v, want 0", p, got.RemainingHours)
		}
	}
}

func TestSLAEvaluate_ExactlyAtAllowanceIsNotBreached(t *testing.T) {
	calc := NewSLACalculator(nil)
	got := calc.Evaluate(TicketPriorityUrgent, t0, t0.Add(2*time.Hour))
	if got.IsBreached {
		t.Fatal("breach must require elapsed strictly greater than allowance")
	}
	if got.Percentage != 100 {
		t.Fatalf("percentage = %v, want 100", got.Percentage)
	}
}

func TestSLAEvaluate_HighPriorityScenario(t *testing.T) {
	calc := NewSLACalculator(nil)

	tests := []struct {
		name      string
		offset    time.Duration
		elapsed   float64
		remaining float64
		pct       float64
		breached  bool
	}{
		{name: "half way", offset: 4 * time.Hour, elapsed: 4, remaining: 4, pct: 50},
		{name: "overdue", offset: 9 * time.Hour, elapsed: 9, remaining: 0, pct: 100, breached: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Evaluate(TicketPriorityHigh, t0, t0.Add(tt.offset))
			if !almostEqual(got.ElapsedHours, tt.elapsed) {
				t.Errorf("elapsed = %v, want %v", got.ElapsedHours, tt.elapsed)
			}
			if !almostEqual(got.RemainingHours, tt.remaining) {
				t.Errorf("remaining = %v, want %v", got.RemainingHours, tt.remaining)
			}
			if !almostEqual(got.Percentage, tt.pct) {
				t.Errorf("percentage = %v, want %v", got.Percentage, tt.pct)
			}
			if got.IsBreached != tt.breached {
				t.Errorf("breached = %v, want %v", got.IsBreached, tt.breached)
			}
			if !got.Deadline.Equal(t0.Add(8 * time.Hour)) {
				t.Errorf("deadline = %v", got.Deadline)
			}
		})
	}
}

func TestSLAEvaluate_NowBeforeCreation(t *testing.T) {
	got := NewSLACalculator(nil).Evaluate(TicketPriorityLow, t0, t0.Add(-time.Hour))
	if got.ElapsedHours != 0 || got.Percentage != 0 || got.IsBreached {
		t.Fatalf("unexpected status for clock skew: %+v", got)
	}
	if got.RemainingHours != 72 {
		t.Fatalf("remaining = %v, want 72", got.RemainingHours)
	}
}

func TestSLAPolicy_CustomTable(t *testing.T) {
	calc := NewSLACalculator(SLAPolicy{TicketPriorityUrgent: time.Hour})
	got := calc.Evaluate(TicketPriorityUrgent, t0, t0.Add(90*time.Minute))
	if !got.IsBreached {
		t.Fatal("expected breach with 1h urgent allowance")
	}
	// levels absent from the custom table use the defaults
	if calc.Policy().Allowance(TicketPriorityHigh) != 8*time.Hour {
		t.Fatalf("high allowance = %v", calc.Policy().Allowance(TicketPriorityHigh))
	}
}

func TestPriorityWeightOrder(t *testing.T) {
	for i := 1; i < len(PriorityOrder); i++ {
		if PriorityOrder[i-1].Weight() <= PriorityOrder[i].Weight() {
			t.Errorf("%s must outweigh %s", PriorityOrder[i-1], PriorityOrder[i])
		}
	}
	if TicketPriority("CRITICAL").Valid() {
		t.Error("unknown priority reported valid")
	}
}
