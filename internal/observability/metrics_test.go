package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_TicketOperations(t *testing.T) {
	m := NewMetrics()
	m.RecordTicketOperation("create", nil)
	m.RecordTicketOperation("create", nil)
	m.RecordTicketOperation("create", errors.New("boom"))

	if got := testutil.ToFloat64(m.ticketOperations.WithLabelValues("create", "ok")); got != 2 {
		t.Errorf("ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ticketOperations.WithLabelValues("create", "error")); got != 1 {
		t.Errorf("error = %v, want 1", got)
	}
}

func TestMetrics_SLASnapshotReplacesPrevious(t *testing.T) {
	m := NewMetrics()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	m.SetSLASnapshot(map[string]int{"HIGH": 3, "LOW": 1}, map[string]int{"HIGH": 2}, at)
	m.SetSLASnapshot(map[string]int{"HIGH": 1}, map[string]int{}, at.Add(time.Minute))

	if got := testutil.CollectAndCount(m.slaActive); got != 1 {
		t.Errorf("active series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(m.slaActive.WithLabelValues("HIGH")); got != 1 {
		t.Errorf("active HIGH = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.slaLastSweep); got != float64(at.Add(time.Minute).Unix()) {
		t.Errorf("last sweep = %v", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, time.Millisecond)
	m.RecordError("/x", "GET", "NOT_FOUND")
	m.RecordTicketOperation("create", nil)
	m.SetSLASnapshot(nil, nil, time.Now())
}
