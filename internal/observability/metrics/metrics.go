package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for slot derivation and
// booking flows.
type SchedulingMetrics struct {
	slotComputations *prometheus.CounterVec
	rollForwardDepth prometheus.Histogram
	templateReplaces prometheus.Counter
	bookingAdmits    *prometheus.CounterVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		slotComputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "schedule",
			Name:      "slot_computations_total",
			Help:      "Total slot derivations by outcome and request mode",
		}, []string{"outcome", "mode"}),
		rollForwardDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "schedule",
			Name:      "roll_forward_days",
			Help:      "Days advanced past the requested date before availability was found",
			Buckets:   []float64{0, 1, 2, 3, 5, 7, 10, 14},
		}),
		templateReplaces: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "availability",
			Name:      "template_replaces_total",
			Help:      "Total weekly template replacements",
		}),
		bookingAdmits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "appointments",
			Name:      "admissions_total",
			Help:      "Total booking admissions by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.slotComputations, m.rollForwardDepth, m.templateReplaces, m.bookingAdmits)
	return m
}

func (m *SchedulingMetrics) ObserveSlotComputation(outcome, mode string) {
	if m == nil {
		return
	}
	m.slotComputations.WithLabelValues(outcome, mode).Inc()
}

func (m *SchedulingMetrics) ObserveRollForward(days int) {
	if m == nil {
		return
	}
	m.rollForwardDepth.Observe(float64(days))
}

func (m *SchedulingMetrics) ObserveTemplateReplace() {
	if m == nil {
		return
	}
	m.templateReplaces.Inc()
}

func (m *SchedulingMetrics) ObserveAdmission(result string) {
	if m == nil {
		return
	}
	m.bookingAdmits.WithLabelValues(result).Inc()
}
