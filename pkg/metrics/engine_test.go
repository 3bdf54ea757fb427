package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEngineMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEngineMetrics(reg)

	m.ObserveSettlement("committed", 120*time.Millisecond)
	m.ObserveSettlement("insufficient_funds", 5*time.Millisecond)
	m.AddTicketsIssued(3)
	m.IncReevaluation()
	m.IncStatusTransition("winning")

	if got := testutil.ToFloat64(m.settlements.WithLabelValues("committed")); got != 1 {
		t.Fatalf("expected 1 committed settlement, got %v", got)
	}
	if got := testutil.ToFloat64(m.ticketsIssued); got != 3 {
		t.Fatalf("expected 3 tickets issued, got %v", got)
	}
	if got := testutil.ToFloat64(m.reevaluations); got != 1 {
		t.Fatalf("expected 1 reevaluation, got %v", got)
	}
	if got := testutil.ToFloat64(m.statusTransitions.WithLabelValues("winning")); got != 1 {
		t.Fatalf("expected 1 winning transition, got %v", got)
	}
}

func TestEngineMetricsNilSafe(t *testing.T) {
	var m *EngineMetrics
	m.ObserveSettlement("committed", time.Second)
	m.AddTicketsIssued(1)
	m.IncReevaluation()
	m.IncStatusTransition("active")
	m.ObserveRankingRebuild(time.Second)

	empty := NewEngineMetrics(nil)
	empty.ObserveSettlement("committed", time.Second)
	empty.IncReevaluation()
}
