package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var documentsRegistered = promauto.NewCounter(prometheus.CounterOpts{
	Name: "documents_registered_total",
	Help: "Documents accepted into the content registry",
})

var duplicateUploads = promauto.NewCounter(prometheus.CounterOpts{
	Name: "duplicate_uploads_total",
	Help: "Uploads rejected as duplicates by content hash",
})

var askDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ask_request_duration_seconds",
	Help:    "Total time spent answering a question.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls and pipeline stages.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 60},
}, []string{"service"})

// HttpStatusRecorder captures the status code a handler wrote so the
// request counter can be labelled with it.
type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func CountRegisteredDocument() {
	documentsRegistered.Inc()
}

func CountDuplicateUpload() {
	duplicateUploads.Inc()
}

func CaptureExecutionMetrics(label string, elapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(elapsed.Seconds())
}

func CaptureAskMetrics(status string, elapsed time.Duration) {
	askDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}
