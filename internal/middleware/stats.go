package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// APIStats tracks process-local request counters behind a single mutex.
// Counts are approximate under restart and are not part of the domain's
// consistency guarantees.
type APIStats struct {
	mu                sync.Mutex
	totalRequests     int64
	endpointStats     map[string]int64
	statusCodes       map[int]int64
	totalResponseTime time.Duration
}

func NewAPIStats() *APIStats {
	return &APIStats{
		endpointStats: make(map[string]int64),
		statusCodes:   make(map[int]int64),
	}
}

func (s *APIStats) record(path string, status int, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalRequests++
	s.endpointStats[path]++
	s.statusCodes[status]++
	s.totalResponseTime += elapsed
}

type StatsSnapshot struct {
	TotalRequests       int64            `json:"total_requests"`
	EndpointStats       map[string]int64 `json:"endpoint_stats"`
	StatusCodes         map[string]int64 `json:"status_codes"`
	AverageResponseTime float64          `json:"average_response_time"`
}

// Snapshot copies the counters into an export-safe view.
func (s *APIStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		TotalRequests: s.totalRequests,
		EndpointStats: make(map[string]int64, len(s.endpointStats)),
		StatusCodes:   make(map[string]int64, len(s.statusCodes)),
	}
	for path, count := range s.endpointStats {
		snap.EndpointStats[path] = count
	}
	for code, count := range s.statusCodes {
		snap.StatusCodes[fmt.Sprintf("%d", code)] = count
	}
	if s.totalRequests > 0 {
		avg := s.totalResponseTime.Seconds() / float64(s.totalRequests)
		snap.AverageResponseTime = float64(int(avg*1000+0.5)) / 1000
	}
	return snap
}

// timingRecorder stamps X-Process-Time just before the header is written,
// the last point at which headers can still change.
type timingRecorder struct {
	http.ResponseWriter
	start       time.Time
	statusCode  int
	wroteHeader bool
}

func (t *timingRecorder) WriteHeader(statusCode int) {
	if !t.wroteHeader {
		t.Header().Set("X-Process-Time", fmt.Sprintf("%.6f", time.Since(t.start).Seconds()))
		t.statusCode = statusCode
		t.wroteHeader = true
	}
	t.ResponseWriter.WriteHeader(statusCode)
}

func (t *timingRecorder) Write(b []byte) (int, error) {
	if !t.wroteHeader {
		t.WriteHeader(http.StatusOK)
	}
	return t.ResponseWriter.Write(b)
}

// Apply records per-request counters and sets the X-Process-Time header.
func (s *APIStats) Apply(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		recorder := &timingRecorder{
			ResponseWriter: w,
			start:          start,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(recorder, r)

		s.record(r.URL.Path, recorder.statusCode, time.Since(start))
	})
}

// Handler serves the current counters as JSON.
func (s *APIStats) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Snapshot())
}
