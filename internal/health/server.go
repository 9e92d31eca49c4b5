// Package health provides health check and monitoring for centerhub.
//
// This package implements:
//   - HTTP health check endpoint
//   - Refresh outcome tracking
//   - Uptime monitoring
package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status represents the application health status.
//
// This is returned by the /health endpoint for monitoring tools.
//
// Fields:
//   - Status: "healthy", or "degraded" when the last refresh failed
//   - Uptime: How long the application has been running
//   - LastRefreshTime: When the last refresh finished
//   - LastRefreshStatus: "success", "not started" or the error text
//   - Records: Number of centers currently served
type Status struct {
	Status            string `json:"status"`
	Uptime            string `json:"uptime"`
	LastRefreshTime   string `json:"last_refresh_time"`
	LastRefreshStatus string `json:"last_refresh_status"`
	Records           int    `json:"records"`
}

// Monitor tracks application health metrics.
//
// Thread-safety:
//   - All fields are protected by RWMutex
//   - Safe for concurrent updates from multiple goroutines
type Monitor struct {
	startTime         time.Time
	lastRefreshTime   time.Time
	lastRefreshStatus string
	records           int
	now               func() time.Time
	mu                sync.RWMutex
}

// NewMonitor creates a new health monitor.
func NewMonitor() *Monitor {
	return newMonitorAt(time.Now)
}

func newMonitorAt(now func() time.Time) *Monitor {
	return &Monitor{
		startTime:         now(),
		lastRefreshStatus: "not started",
		now:               now,
	}
}

// RecordRefresh stores the outcome of a refresh attempt.
//
// records is the number of centers served after the attempt; a failed
// refresh keeps the previous records, so it is reported as well.
func (m *Monitor) RecordRefresh(records int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRefreshTime = m.now()
	m.records = records
	if err != nil {
		m.lastRefreshStatus = "error: " + err.Error()
	} else {
		m.lastRefreshStatus = "success"
	}
}

// GetStatus returns the current health status.
func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := "healthy"
	if m.lastRefreshStatus != "success" && m.lastRefreshStatus != "not started" {
		status = "degraded"
	}

	last := ""
	if !m.lastRefreshTime.IsZero() {
		last = m.lastRefreshTime.Format("2006-01-02 15:04:05")
	}

	return Status{
		Status:            status,
		Uptime:            m.now().Sub(m.startTime).Truncate(time.Second).String(),
		LastRefreshTime:   last,
		LastRefreshStatus: m.lastRefreshStatus,
		Records:           m.records,
	}
}

// Handler serves the JSON health status.
//
// Example response:
//
//	{
//	  "status": "healthy",
//	  "uptime": "1h2m3s",
//	  "last_refresh_time": "2026-01-15 10:30:00",
//	  "last_refresh_status": "success",
//	  "records": 412
//	}
func (m *Monitor) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(m.GetStatus())
	})
}
