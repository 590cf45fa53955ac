package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"debo-engineering/job-portal/internal/apperrors"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ApplicationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_application_transitions_total",
			Help: "Total number of accepted application status transitions",
		},
		[]string{"from", "to"},
	)

	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_emails_total",
			Help: "Total number of notification emails attempted",
		},
		[]string{"template", "result"},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_rate_limited_total",
			Help: "Total number of requests rejected by a rate limit",
		},
		[]string{"scope"},
	)
)

func RecordTransition(from, to string) {
	ApplicationTransitions.WithLabelValues(from, to).Inc()
}

func RecordEmail(template string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	EmailsTotal.WithLabelValues(template, result).Inc()
}

func RecordRateLimited(scope string) {
	RateLimitedTotal.WithLabelValues(scope).Inc()
}

// Middleware records request counts and latency per matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = apperrors.HTTPStatus(err)
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
		}

		route := c.Route().Path
		HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())

		return err
	}
}
