// Package metrics exposes Prometheus counters for attendance activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "attendance"

var (
	// AttendanceMarks counts appended entries by subject (teacher|student) and status.
	AttendanceMarks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "marks_total",
		Help:      "Attendance entries appended, by subject and status.",
	}, []string{"subject", "status"})

	// Notifications counts absence emails by outcome (sent|failed|skipped).
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Absence notifications, by outcome.",
	}, []string{"outcome"})

	// SecurityRejections counts self-attendance attempts rejected by the IP or face check.
	SecurityRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "security_rejections_total",
		Help:      "Self-attendance attempts rejected, by reason.",
	}, []string{"reason"})

	// Logins counts login attempts by result (ok|invalid).
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Teacher login attempts, by result.",
	}, []string{"result"})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
