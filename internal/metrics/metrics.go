package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "salonbook"

var (
	once sync.Once

	appointmentCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_created_total",
			Help:      "Count of appointment writes by status.",
		},
		[]string{"status"},
	)

	appointmentCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_cancelled_total",
			Help:      "Count of appointments removed by admins.",
		},
	)

	wizardEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wizard_events_total",
			Help:      "Count of scheduling wizard events by name and result.",
		},
		[]string{"event", "result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "wizard_sessions_active",
			Help:      "Number of live wizard sessions.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(appointmentCreated, appointmentCancelled, wizardEvents, httpRequests, activeSessions)
	})
}

func IncAppointmentCreated(status string) {
	appointmentCreated.WithLabelValues(status).Inc()
}

func IncAppointmentCancelled() {
	appointmentCancelled.Inc()
}

func IncWizardEvent(event, result string) {
	wizardEvents.WithLabelValues(event, result).Inc()
}

func IncHTTPRequest(route, method, code string) {
	httpRequests.WithLabelValues(route, method, code).Inc()
}

func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
