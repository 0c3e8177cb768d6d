// Package monitoring collects request metrics and streams query
// events to dashboard clients.
package monitoring

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Collector aggregates per-route request counters and latencies.
type Collector struct {
	mu        sync.RWMutex
	routes    map[string]*routeStats
	startTime time.Time
}

type routeStats struct {
	Count      int64
	Errors     int64 // status >= 400
	TotalMs    float64
	MaxMs      float64
	LastStatus int
	LastSeen   time.Time
}

// RouteSummary is the exported view of one route's counters.
type RouteSummary struct {
	Route      string    `json:"route"`
	Count      int64     `json:"count"`
	Errors     int64     `json:"errors"`
	AvgMs      float64   `json:"avg_ms"`
	MaxMs      float64   `json:"max_ms"`
	LastStatus int       `json:"last_status"`
	LastSeen   time.Time `json:"last_seen"`
}

func NewCollector() *Collector {
	return &Collector{
		routes:    make(map[string]*routeStats),
		startTime: time.Now(),
	}
}

// RecordRequest records one finished HTTP request.
func (c *Collector) RecordRequest(route string, status int, duration time.Duration) {
	ms := float64(duration.Microseconds()) / 1000

	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.routes[route]
	if !ok {
		stats = &routeStats{}
		c.routes[route] = stats
	}
	stats.Count++
	if status >= 400 {
		stats.Errors++
	}
	stats.TotalMs += ms
	if ms > stats.MaxMs {
		stats.MaxMs = ms
	}
	stats.LastStatus = status
	stats.LastSeen = time.Now()
}

// Summaries returns per-route counters, sorted by route.
func (c *Collector) Summaries() []RouteSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summaries := make([]RouteSummary, 0, len(c.routes))
	for route, stats := range c.routes {
		avg := 0.0
		if stats.Count > 0 {
			avg = stats.TotalMs / float64(stats.Count)
		}
		summaries = append(summaries, RouteSummary{
			Route:      route,
			Count:      stats.Count,
			Errors:     stats.Errors,
			AvgMs:      avg,
			MaxMs:      stats.MaxMs,
			LastStatus: stats.LastStatus,
			LastSeen:   stats.LastSeen,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Route < summaries[j].Route })
	return summaries
}

// Uptime returns how long the collector has been running.
func (c *Collector) Uptime() time.Duration {
	return time.Since(c.startTime)
}

// SystemStats returns process-level runtime figures for /stats.
func (c *Collector) SystemStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"uptime":     c.Uptime().String(),
		"goroutines": runtime.NumGoroutine(),
		"memory": map[string]interface{}{
			"alloc":      m.Alloc,
			"heap_alloc": m.HeapAlloc,
			"heap_sys":   m.HeapSys,
			"gc_count":   m.NumGC,
		},
		"num_cpu": runtime.NumCPU(),
	}
}

// ExportPrometheus renders the counters in Prometheus text exposition
// format.
func (c *Collector) ExportPrometheus() string {
	summaries := c.Summaries()

	var b strings.Builder
	b.WriteString("# HELP http_requests_total Requests handled per route\n")
	b.WriteString("# TYPE http_requests_total counter\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "http_requests_total{route=%q} %d\n", s.Route, s.Count)
	}
	b.WriteString("# HELP http_request_errors_total Requests with status >= 400 per route\n")
	b.WriteString("# TYPE http_request_errors_total counter\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "http_request_errors_total{route=%q} %d\n", s.Route, s.Errors)
	}
	b.WriteString("# HELP http_request_duration_ms_avg Mean request latency per route\n")
	b.WriteString("# TYPE http_request_duration_ms_avg gauge\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "http_request_duration_ms_avg{route=%q} %f\n", s.Route, s.AvgMs)
	}
	return b.String()
}
