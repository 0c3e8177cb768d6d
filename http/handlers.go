package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"codonlens/dataset"
	"codonlens/db"
	"codonlens/ml"
	"codonlens/monitoring"
)

// Handler dependencies. Set once at startup; tests inject fakes
// through the setters.
var (
	store       *dataset.Store
	model       *ml.GBTModel
	evalMetrics *ml.EvalMetrics
	collector   *monitoring.Collector
	hub         *monitoring.Hub

	analysisCache *lru.Cache[string, []byte]
)

// SetStore sets the usage table store. Cached analysis responses are
// computed from the table, so a hot reload drops them.
func SetStore(s *dataset.Store) {
	store = s
	if s != nil {
		s.OnSwap(func(*dataset.Table) {
			if analysisCache != nil {
				analysisCache.Purge()
			}
		})
	}
}

// SetModel sets the trained classifier. May stay nil; analysis then
// runs without model weights or explanations.
func SetModel(m *ml.GBTModel) { model = m }

// SetEvalMetrics sets the static evaluation record.
func SetEvalMetrics(m *ml.EvalMetrics) { evalMetrics = m }

// SetCollector sets the request metrics collector.
func SetCollector(c *monitoring.Collector) { collector = c }

// SetHub sets the query event stream hub.
func SetHub(h *monitoring.Hub) { hub = h }

// SetCacheSize (re)creates the analysis response cache. Size <= 0
// disables caching.
func SetCacheSize(size int) {
	if size <= 0 {
		analysisCache = nil
		return
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		zap.S().Errorw("failed to create analysis cache", "error", err)
		return
	}
	analysisCache = cache
}

// RegisterHandlers registers the analysis and service routes.
func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("POST /analyze", handleAnalyze)
	mux.HandleFunc("GET /history", handleHistory)
	mux.HandleFunc("GET /stats", handleStats)
	mux.HandleFunc("GET /metrics", handleMetrics)
	mux.HandleFunc("GET /ws/stats", handleStatsSocket)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	table := currentTable()
	status := map[string]interface{}{
		"status":         "ok",
		"dataset_loaded": table != nil,
		"model_loaded":   model != nil,
	}
	if table != nil {
		status["rows"] = table.NumRows()
		status["codons"] = len(table.Codons())
	}
	respondJSON(w, status)
}

func handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 500 {
		limit = 500
	}

	records, err := db.LoadHistory(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	respondJSON(w, map[string]interface{}{
		"queries": records,
		"count":   len(records),
	})
}

func handleStats(w http.ResponseWriter, r *http.Request) {
	if collector == nil {
		respondError(w, http.StatusServiceUnavailable, "metrics collector not initialized")
		return
	}
	stats := map[string]interface{}{
		"routes": collector.Summaries(),
		"system": collector.SystemStats(),
	}
	if hub != nil {
		stats["stream_clients"] = hub.ClientCount()
	}
	respondJSON(w, stats)
}

func handleMetrics(w http.ResponseWriter, r *http.Request) {
	if collector == nil {
		respondError(w, http.StatusServiceUnavailable, "metrics collector not initialized")
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.Write([]byte(collector.ExportPrometheus()))
}

func handleStatsSocket(w http.ResponseWriter, r *http.Request) {
	if hub == nil {
		respondError(w, http.StatusServiceUnavailable, "stream hub not initialized")
		return
	}
	hub.HandleWebSocket(w, r)
}

func currentTable() *dataset.Table {
	if store == nil {
		return nil
	}
	return store.Get()
}

// respondJSON writes data as a JSON response.
func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.S().Errorw("failed to encode JSON", "error", err)
	}
}

// respondError writes a JSON error body with the given status.
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
