package metrics

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const maxLatencyRecords = 1000

// latencyRing holds the most recent request durations in milliseconds.
type latencyRing struct {
	mu    sync.Mutex
	buf   []int64
	next  int
	count int
}

var latencies = &latencyRing{buf: make([]int64, maxLatencyRecords)}

func (r *latencyRing) add(ms int64) {
	r.mu.Lock()
	r.buf[r.next] = ms
	r.next = (r.next + 1) % len(r.buf)
	r.count = min(r.count+1, len(r.buf))
	r.mu.Unlock()
}

// snapshot returns the recorded samples oldest first.
func (r *latencyRing) snapshot() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int64, 0, r.count)
	start := (r.next - r.count + len(r.buf)) % len(r.buf)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

func (r *latencyRing) reset() {
	r.mu.Lock()
	r.next, r.count = 0, 0
	r.mu.Unlock()
}

// GetLatencyP95 reports the 95th percentile request latency over the most
// recent requests, or 0 before any request has been served.
func GetLatencyP95() int64 {
	samples := latencies.snapshot()
	if len(samples) == 0 {
		return 0
	}
	slices.Sort(samples)
	return samples[min(len(samples)*95/100, len(samples)-1)]
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func unmetered(path string) bool {
	return path == "/metrics" || strings.HasPrefix(path, "/health")
}

// HTTPMetricsMiddleware records request counts, durations and response
// sizes per normalized route. Probe and scrape requests are not counted.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if unmetered(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		inFlight := HTTPRequestsInFlight.WithLabelValues(r.Method)
		inFlight.Inc()
		defer inFlight.Dec()

		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		elapsed := time.Since(start)

		labels := []string{r.Method, NormalizePath(r.URL.Path), strconv.Itoa(rw.status)}
		HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		HTTPRequestDuration.WithLabelValues(labels...).Observe(elapsed.Seconds())
		HTTPResponseSize.WithLabelValues(labels...).Observe(float64(rw.bytes))
		latencies.add(elapsed.Milliseconds())
	})
}
