package monitor

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lppm",
			Name:      "form_submissions_total",
			Help:      "Form submissions by form type and outcome.",
		},
		[]string{"form_type", "outcome"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lppm",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(submissionsTotal, requestDuration)
}

// ObserveSubmission counts one finished submission attempt.
func ObserveSubmission(formType, outcome string) {
	submissionsTotal.WithLabelValues(formType, outcome).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// RegisterMonitorRoutes exposes the health probe and the Prometheus endpoint.
func RegisterMonitorRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "LPPM Form API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
