package monitoring

import (
	"strings"
	"testing"
	"time"
)

func TestCollectorSummaries(t *testing.T) {
	c := NewCollector()

	c.RecordRequest("POST /analyze", 200, 10*time.Millisecond)
	c.RecordRequest("POST /analyze", 400, 30*time.Millisecond)
	c.RecordRequest("GET /health", 200, time.Millisecond)

	summaries := c.Summaries()
	if len(summaries) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(summaries))
	}

	// sorted by route: GET /health first
	if summaries[0].Route != "GET /health" {
		t.Fatalf("unexpected order: %v", summaries)
	}

	analyze := summaries[1]
	if analyze.Count != 2 || analyze.Errors != 1 {
		t.Fatalf("unexpected counters: %+v", analyze)
	}
	if analyze.AvgMs < 19 || analyze.AvgMs > 21 {
		t.Fatalf("unexpected average latency: %f", analyze.AvgMs)
	}
	if analyze.MaxMs < 29 || analyze.MaxMs > 31 {
		t.Fatalf("unexpected max latency: %f", analyze.MaxMs)
	}
	if analyze.LastStatus != 400 {
		t.Fatalf("unexpected last status: %d", analyze.LastStatus)
	}
}

func TestExportPrometheus(t *testing.T) {
	c := NewCollector()
	c.RecordRequest("POST /analyze", 200, 5*time.Millisecond)

	out := c.ExportPrometheus()
	for _, want := range []string{
		`http_requests_total{route="POST /analyze"} 1`,
		`http_request_errors_total{route="POST /analyze"} 0`,
		"# TYPE http_requests_total counter",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q:\n%s", want, out)
		}
	}
}

func TestSystemStats(t *testing.T) {
	c := NewCollector()
	stats := c.SystemStats()
	if stats["goroutines"].(int) <= 0 {
		t.Fatal("expected goroutine count")
	}
	if c.Uptime() < 0 {
		t.Fatal("uptime went backwards")
	}
}
