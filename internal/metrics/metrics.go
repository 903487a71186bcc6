// Package metrics — метрики Prometheus сервиса изображений.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "charimg_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "charimg_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "charimg_uploads_total",
			Help: "Image uploads by outcome",
		},
		[]string{"result"},
	)

	uploadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "charimg_upload_bytes_total",
			Help: "Total bytes of accepted uploads",
		},
	)

	lookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "charimg_lookups_total",
			Help: "Image lookups by outcome",
		},
		[]string{"result"},
	)
)

// Handler отдаёт метрики для scrape.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware считает запросы и их длительность по шаблону маршрута chi.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordUpload учитывает попытку загрузки; байты считаются только для принятых.
func RecordUpload(result string, size int64) {
	uploadsTotal.WithLabelValues(result).Inc()
	if result == "ok" && size > 0 {
		uploadBytes.Add(float64(size))
	}
}

// RecordLookup учитывает поиск по исходу.
func RecordLookup(result string) {
	lookupsTotal.WithLabelValues(result).Inc()
}
