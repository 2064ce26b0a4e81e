package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	PipelinesTotal     uint64
	TTSFallbacks       uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// IncrementPipelines bumps the completed-pipeline counter
func IncrementPipelines() {
	atomic.AddUint64(&globalMetrics.PipelinesTotal, 1)
}

// IncrementTTSFallbacks bumps the secondary-synthesizer counter
func IncrementTTSFallbacks() {
	atomic.AddUint64(&globalMetrics.TTSFallbacks, 1)
}

// MetricsMiddleware counts requests and outcomes
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
		atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
		defer atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode < 500 {
			atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
		} else {
			atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
		}
	})
}

// MetricsHandler exposes the counters as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	snapshot := map[string]any{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"pipelines_total":      atomic.LoadUint64(&globalMetrics.PipelinesTotal),
		"tts_fallbacks":        atomic.LoadUint64(&globalMetrics.TTSFallbacks),
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"goroutines":           runtime.NumGoroutine(),
		"heap_alloc_bytes":     m.HeapAlloc,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snapshot)
}
