package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the chat and lead flows.
type ChatMetrics struct {
	chatTotal    *prometheus.CounterVec
	chatLatency  *prometheus.HistogramVec
	leadsTotal   *prometheus.CounterVec
	widgetEvents *prometheus.CounterVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		chatTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "maru",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total chat turns by responder mode and status",
		}, []string{"mode", "status"}),
		chatLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "maru",
			Subsystem: "chat",
			Name:      "request_latency_seconds",
			Help:      "Latency of chat turn processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		leadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "maru",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Total lead submissions by outcome",
		}, []string{"outcome"}),
		widgetEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "maru",
			Subsystem: "widget",
			Name:      "events_total",
			Help:      "Widget session events",
		}, []string{"event"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.chatTotal, m.chatLatency, m.leadsTotal, m.widgetEvents)
	return m
}

func (m *ChatMetrics) ObserveChat(mode, status string, seconds float64) {
	if m == nil {
		return
	}
	m.chatTotal.WithLabelValues(mode, status).Inc()
	m.chatLatency.WithLabelValues(mode).Observe(seconds)
}

func (m *ChatMetrics) ObserveLead(outcome string) {
	if m == nil {
		return
	}
	m.leadsTotal.WithLabelValues(outcome).Inc()
}

func (m *ChatMetrics) ObserveWidgetEvent(event string) {
	if m == nil {
		return
	}
	m.widgetEvents.WithLabelValues(event).Inc()
}
