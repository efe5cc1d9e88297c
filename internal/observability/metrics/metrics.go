package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// IntakeMetrics exposes counters/histograms for intake, lifecycle and chat flows.
type IntakeMetrics struct {
	submissionsTotal *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	chatMessages     *prometheus.CounterVec
	requestLatency   *prometheus.HistogramVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llc",
			Subsystem: "intake",
			Name:      "submissions_total",
			Help:      "Total application and contact submissions by outcome",
		}, []string{"kind", "outcome"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llc",
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Application status transitions attempted by operators",
		}, []string{"from", "to", "outcome"}),
		chatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llc",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Chat messages answered, by matched category and language",
		}, []string{"category", "language"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "llc",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.transitionsTotal, m.chatMessages, m.requestLatency)
	return m
}

func (m *IntakeMetrics) ObserveSubmission(kind, outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *IntakeMetrics) ObserveTransition(from, to, outcome string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to, outcome).Inc()
}

func (m *IntakeMetrics) ObserveChatMessage(category, language string) {
	if m == nil {
		return
	}
	m.chatMessages.WithLabelValues(category, language).Inc()
}

func (m *IntakeMetrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestLatency.WithLabelValues(method, route, status).Observe(seconds)
}

// CategoryCount is the number of chat messages answered from one category.
type CategoryCount struct {
	Category string  `json:"category"`
	Language string  `json:"language"`
	Count    float64 `json:"count"`
}

// ChatCategoryCounts reads the chat counter back from the collector,
// sorted by count descending then category.
func (m *IntakeMetrics) ChatCategoryCounts() []CategoryCount {
	if m == nil {
		return nil
	}
	ch := make(chan prometheus.Metric, 64)
	go func() {
		m.chatMessages.Collect(ch)
		close(ch)
	}()

	out := []CategoryCount{}
	for metric := range ch {
		var pb dto.Metric
		if err := metric.Write(&pb); err != nil || pb.Counter == nil {
			continue
		}
		cc := CategoryCount{Count: pb.Counter.GetValue()}
		for _, lp := range pb.GetLabel() {
			switch lp.GetName() {
			case "category":
				cc.Category = lp.GetValue()
			case "language":
				cc.Language = lp.GetValue()
			}
		}
		out = append(out, cc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Language < out[j].Language
	})
	return out
}
