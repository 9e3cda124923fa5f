package server

import (
	"hubsync-backend/internal/scrapers/hub"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	records        *prometheus.GaugeVec
	registrations  *prometheus.CounterVec
	lastSync       prometheus.Gauge
	scheduledSyncs *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hubsync",
			Name:      "http_requests_total",
			Help:      "API requests by route and status code",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hubsync",
			Name:      "http_request_duration_seconds",
			Help:      "API request latency, dominated by browser work",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"route"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "hubsync",
			Name:      "extracted_records",
			Help:      "Records returned by the last extraction of each kind",
		}, []string{"kind"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hubsync",
			Name:      "registration_attempts_total",
			Help:      "Event registration attempts by outcome",
		}, []string{"outcome"}),
		lastSync: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hubsync",
			Name:      "last_sync_timestamp_seconds",
			Help:      "Unix timestamp of the last successful full sync",
		}),
		scheduledSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hubsync",
			Name:      "scheduled_syncs_total",
			Help:      "Background syncs by result",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.requests, m.duration, m.records, m.registrations, m.lastSync,
		m.scheduledSyncs,
	)
	return m
}

func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(seconds float64) {
			m.duration.WithLabelValues(route(c)).Observe(seconds)
		}))
		c.Next()
		timer.ObserveDuration()
		m.requests.WithLabelValues(route(c), strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func route(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}

func (m *metrics) observeSync(snap hub.SyncSnapshot) {
	m.lastSync.Set(float64(snap.Timestamp.Unix()))
	m.records.WithLabelValues("registrations").Set(float64(len(snap.Registrations.Events)))
	m.records.WithLabelValues("upcoming_events").Set(float64(len(snap.UpcomingEvents.Events)))
	m.records.WithLabelValues("event_search").Set(float64(len(snap.EventSearch.Events)))
	m.records.WithLabelValues("groups").Set(float64(len(snap.MyGroups.Groups)))
}
