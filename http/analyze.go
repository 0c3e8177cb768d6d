package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"codonlens/dataset"
	"codonlens/db"
	"codonlens/genetics"
	"codonlens/ml"
	"codonlens/monitoring"
)

const topN = 5

type analyzeRequest struct {
	AminoAcid   string `json:"amino_acid"`
	Codon       string `json:"codon"`
	HostSpecies string `json:"host_species"`
}

type rankedCodon struct {
	Rank      int     `json:"rank"`
	Codon     string  `json:"codon"`
	Frequency float64 `json:"frequency"`
	MLWeight  float64 `json:"ml_weight"`
}

type explanation struct {
	Codon       string                   `json:"codon"`
	Class       string                   `json:"class"`
	BaseValue   float64                  `json:"base_value"`
	Output      float64                  `json:"output"`
	TopFeatures []ml.FeatureContribution `json:"top_features"`
	Remainder   float64                  `json:"remainder"`
}

type analyzeResponse struct {
	CodonRanking            []rankedCodon          `json:"codon_ranking"`
	SelectedRank            *int                   `json:"selected_rank"`
	TopSpecies              []dataset.SpeciesScore `json:"top_species"`
	SpeciesSpecificAnalysis *dataset.Preference    `json:"species_specific_analysis"`
	HostAwareOptimization   *dataset.HostResult    `json:"host_aware_optimization"`
	CodonBiasScore          *dataset.BiasResult    `json:"codon_bias_score"`
	CrossKingdomComparison  []dataset.KingdomMean  `json:"cross_kingdom_comparison"`
	ModelMetrics            *ml.EvalMetrics        `json:"model_metrics"`
	Explanation             *explanation           `json:"explanation,omitempty"`
}

func handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	aa := strings.ToUpper(strings.TrimSpace(req.AminoAcid))
	codon := strings.ToUpper(strings.TrimSpace(req.Codon))
	host := strings.TrimSpace(req.HostSpecies)

	table := currentTable()
	if table == nil {
		respondError(w, http.StatusServiceUnavailable, "dataset not loaded")
		return
	}

	if !genetics.ValidAminoAcid(aa) {
		respondError(w, http.StatusBadRequest, "Invalid amino acid (use single-letter code like L, K, F)")
		recordQuery(aa, codon, host, http.StatusBadRequest, start, false)
		return
	}

	codons := table.PresentCodons(genetics.SynonymousCodons(aa[0]))
	if len(codons) == 0 {
		respondError(w, http.StatusBadRequest, "No codon data available for this amino acid")
		recordQuery(aa, codon, host, http.StatusBadRequest, start, false)
		return
	}

	cacheKey := aa + "|" + codon + "|" + strings.ToLower(host)
	if analysisCache != nil {
		if cached, ok := analysisCache.Get(cacheKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			recordQuery(aa, codon, host, http.StatusOK, start, true)
			return
		}
	}

	resp := buildAnalysis(table, aa[0], codons, codon, host)

	payload, err := json.Marshal(resp)
	if err != nil {
		zap.S().Errorw("failed to encode analysis", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	if analysisCache != nil {
		analysisCache.Add(cacheKey, payload)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
	recordQuery(aa, codon, host, http.StatusOK, start, false)
}

// buildAnalysis assembles the full analysis bundle the way the service
// has always reported it: ranking, species views, bias, kingdoms,
// model metrics and the attribution explanation.
func buildAnalysis(table *dataset.Table, aa byte, codons []string, codon, host string) *analyzeResponse {
	var importance map[string]float64
	if model != nil {
		importance = model.ImportanceWeight()
	}

	ranking := table.RankCodons(codons)
	ranked := make([]rankedCodon, len(ranking))
	var selectedRank *int
	for i, entry := range ranking {
		ranked[i] = rankedCodon{
			Rank:      entry.Rank,
			Codon:     entry.Codon,
			Frequency: entry.Frequency,
			MLWeight:  importance[genetics.DNA(entry.Codon)],
		}
		if codon != "" && entry.Codon == codon {
			rank := entry.Rank
			selectedRank = &rank
		}
	}

	resp := &analyzeResponse{
		CodonRanking:            ranked,
		SelectedRank:            selectedRank,
		TopSpecies:              table.TopSpecies(codons, codon, topN),
		SpeciesSpecificAnalysis: table.PreferenceAnalysis(aa, codons, codon, topN),
		HostAwareOptimization:   table.HostOptimization(codons, host),
		CodonBiasScore:          table.BiasScore(codon, topN),
		CrossKingdomComparison:  table.KingdomComparison(codon),
		ModelMetrics:            evalMetrics,
	}

	if model != nil && len(ranking) > 0 {
		target := ranking[0].Codon
		if codon != "" && table.HasCodon(codon) && containsCodon(codons, codon) {
			target = codon
		}
		resp.Explanation = buildExplanation(table, target)
	}

	return resp
}

// buildExplanation runs the attribution for one codon class over the
// dataset-wide mean usage vector. Nil when the model does not know the
// codon as a class.
func buildExplanation(table *dataset.Table, codon string) *explanation {
	class, ok := model.ClassIndex(genetics.DNA(codon))
	if !ok {
		return nil
	}

	wf, err := model.WaterfallData(modelVector(table), class, topN)
	if err != nil {
		zap.S().Errorw("attribution failed", "codon", codon, "error", err)
		return nil
	}

	return &explanation{
		Codon:       codon,
		Class:       wf.Class,
		BaseValue:   wf.BaseValue,
		Output:      wf.Output,
		TopFeatures: wf.Steps,
		Remainder:   wf.Remainder,
	}
}

// modelVector maps the table's mean usage onto the model's feature
// order. Features without a table column fall back to the model's
// background value.
func modelVector(table *dataset.Table) []float64 {
	means := table.MeanVector()
	meanFor := make(map[string]float64, len(means))
	for i, c := range table.Codons() {
		meanFor[c] = means[i]
	}

	vec := make([]float64, len(model.Features))
	for i, f := range model.Features {
		if v, ok := meanFor[genetics.RNA(f)]; ok {
			vec[i] = v
		} else if i < len(model.Background) {
			vec[i] = model.Background[i]
		}
	}
	return vec
}

func recordQuery(aa, codon, host string, status int, start time.Time, cached bool) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000

	if err := db.SaveQuery(db.QueryRecord{
		AminoAcid:   aa,
		Codon:       codon,
		HostSpecies: host,
		Status:      status,
		DurationMs:  durationMs,
	}); err != nil {
		zap.S().Warnw("failed to save query record", "error", err)
	}

	if hub != nil {
		hub.Publish(monitoring.QueryEvent{
			AminoAcid:   aa,
			Codon:       codon,
			HostSpecies: host,
			Status:      status,
			DurationMs:  durationMs,
			Cached:      cached,
		})
	}
}

func containsCodon(list []string, codon string) bool {
	for _, c := range list {
		if c == codon {
			return true
		}
	}
	return false
}
