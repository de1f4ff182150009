package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics collects basic application counters exposed as JSON.
type Metrics struct {
	wsConnections   atomic.Int64
	totalPurchases  atomic.Int64
	totalExits      atomic.Int64
	totalDraws      atomic.Int64
	totalEvents     atomic.Int64
	autopilotSweeps atomic.Int64
	startTime       time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

func (m *Metrics) IncrWSConn()         { m.wsConnections.Add(1) }
func (m *Metrics) DecrWSConn()         { m.wsConnections.Add(-1) }
func (m *Metrics) IncrPurchase()       { m.totalPurchases.Add(1) }
func (m *Metrics) IncrExit()           { m.totalExits.Add(1) }
func (m *Metrics) IncrDraw()           { m.totalDraws.Add(1) }
func (m *Metrics) IncrEvent()          { m.totalEvents.Add(1) }
func (m *Metrics) IncrAutopilotSweep() { m.autopilotSweeps.Add(1) }

// ServeHTTP exposes metrics as JSON at /metrics.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	data := map[string]any{
		"uptime_seconds":   int(time.Since(m.startTime).Seconds()),
		"ws_connections":   m.wsConnections.Load(),
		"total_purchases":  m.totalPurchases.Load(),
		"total_exits":      m.totalExits.Load(),
		"total_draws":      m.totalDraws.Load(),
		"total_events":     m.totalEvents.Load(),
		"autopilot_sweeps": m.autopilotSweeps.Load(),
		"goroutines":       runtime.NumGoroutine(),
		"heap_alloc_mb":    mem.HeapAlloc / 1024 / 1024,
		"sys_mb":           mem.Sys / 1024 / 1024,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
}
