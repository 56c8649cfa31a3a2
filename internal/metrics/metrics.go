// Package metrics holds Prometheus instruments used across the site.  All
// collectors are registered with the global registry, so mounting
// promhttp.Handler() on /metrics is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for FormSubmissions.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

var (
	FormSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "form_submissions_total",
			Help:      "Form submissions by form and outcome (accepted, rejected).",
		}, []string{"form", "outcome"})

	FormActionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "form_action_errors_total",
			Help:      "Post-submit actions that failed, by form and action.",
		}, []string{"form", "action"})

	CSRFRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "csrf_rejections_total",
			Help:      "Unsafe requests rejected for a missing or invalid CSRF token.",
		})

	PageViews = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "launchpad",
			Name:      "page_views_total",
			Help:      "Rendered pages by template name.",
		}, []string{"page"})
)

func init() {
	prometheus.MustRegister(
		FormSubmissions,
		FormActionErrors,
		CSRFRejections,
		PageViews,
	)
}
