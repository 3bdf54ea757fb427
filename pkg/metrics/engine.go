package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records settlement and re-evaluation activity.
type EngineMetrics struct {
	settlements        *prometheus.CounterVec
	settlementDuration *prometheus.HistogramVec
	ticketsIssued      prometheus.Counter
	reevaluations      prometheus.Counter
	statusTransitions  *prometheus.CounterVec
	rankingDuration    prometheus.Histogram
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_total",
		Help: "Settlement attempts by result.",
	}, []string{"result"})
	settlementDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_duration_seconds",
		Help:    "Duration of settlement transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	ticketsIssued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tickets_issued_total",
		Help: "Tickets created by successful settlements.",
	})
	reevaluations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reevaluation_runs_total",
		Help: "Status re-evaluation passes triggered by draw mutations.",
	})
	statusTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ticket_status_transitions_total",
		Help: "Ticket status transitions applied by re-evaluation.",
	}, []string{"to"})
	rankingDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ranking_rebuild_duration_seconds",
		Help:    "Duration of full ranking snapshot rebuilds in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(
		settlements,
		settlementDuration,
		ticketsIssued,
		reevaluations,
		statusTransitions,
		rankingDuration,
	)
	return &EngineMetrics{
		settlements:        settlements,
		settlementDuration: settlementDuration,
		ticketsIssued:      ticketsIssued,
		reevaluations:      reevaluations,
		statusTransitions:  statusTransitions,
		rankingDuration:    rankingDuration,
	}
}

// ObserveSettlement records one settlement attempt with its outcome label.
func (m *EngineMetrics) ObserveSettlement(result string, duration time.Duration) {
	if m == nil || m.settlements == nil {
		return
	}
	m.settlements.WithLabelValues(normalizeLabel(result)).Inc()
	m.settlementDuration.WithLabelValues(normalizeLabel(result)).Observe(duration.Seconds())
}

// AddTicketsIssued counts tickets created by a committed settlement.
func (m *EngineMetrics) AddTicketsIssued(n int) {
	if m == nil || m.ticketsIssued == nil || n <= 0 {
		return
	}
	m.ticketsIssued.Add(float64(n))
}

// IncReevaluation counts one status re-evaluation pass.
func (m *EngineMetrics) IncReevaluation() {
	if m == nil || m.reevaluations == nil {
		return
	}
	m.reevaluations.Inc()
}

// IncStatusTransition counts a status change applied by re-evaluation.
func (m *EngineMetrics) IncStatusTransition(to string) {
	if m == nil || m.statusTransitions == nil {
		return
	}
	m.statusTransitions.WithLabelValues(normalizeLabel(to)).Inc()
}

// ObserveRankingRebuild records the duration of a snapshot rebuild.
func (m *EngineMetrics) ObserveRankingRebuild(duration time.Duration) {
	if m == nil || m.rankingDuration == nil {
		return
	}
	m.rankingDuration.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
