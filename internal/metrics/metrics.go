package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	CampaignsCreated   prometheus.Counter
	CampaignsDuplicate prometheus.Counter
	CampaignsSent      prometheus.Counter
	CampaignsFailed    prometheus.Counter
	SendLatency        prometheus.Histogram
	PassDuration       *prometheus.HistogramVec
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CampaignsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campaigns_created_total",
			Help: "Total number of campaigns created by the schedule pass.",
		}),
		CampaignsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campaigns_duplicate_total",
			Help: "Total number of candidates absorbed by the dedup lookback window.",
		}),
		CampaignsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campaigns_sent_total",
			Help: "Total number of campaigns delivered to the mail provider.",
		}),
		CampaignsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campaigns_failed_total",
			Help: "Total number of campaigns marked failed after a send error.",
		}),
		SendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "campaign_send_seconds",
			Help:    "Per-campaign latency from dequeue to provider ack.",
			Buckets: prometheus.DefBuckets,
		}),
		PassDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pass_duration_seconds",
			Help:    "Wall-clock duration of one schedule or dispatch pass.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"pass"}),
	}

	reg.MustRegister(
		m.CampaignsCreated,
		m.CampaignsDuplicate,
		m.CampaignsSent,
		m.CampaignsFailed,
		m.SendLatency,
		m.PassDuration,
	)

	return m
}

// SchedulerHooks returns the metric callbacks expected by the orchestrator.
// Centralises the prometheus observation calls so the scheduler package
// stays metrics-agnostic.
func (m *Metrics) SchedulerHooks() (onCreated, onDuplicate func()) {
	onCreated = func() { m.CampaignsCreated.Inc() }
	onDuplicate = func() { m.CampaignsDuplicate.Inc() }
	return
}

// DispatchHooks returns the metric callbacks expected by the dispatcher.
func (m *Metrics) DispatchHooks() (onSent func(time.Duration), onFailed func()) {
	onSent = func(latency time.Duration) {
		m.CampaignsSent.Inc()
		m.SendLatency.Observe(latency.Seconds())
	}
	onFailed = func() { m.CampaignsFailed.Inc() }
	return
}

// ObservePass records the duration of one named pass.
func (m *Metrics) ObservePass(pass string, d time.Duration) {
	m.PassDuration.WithLabelValues(pass).Observe(d.Seconds())
}
