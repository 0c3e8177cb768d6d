package http

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"codonlens/dataset"
	"codonlens/genetics"
)

// RegisterShapHandlers registers the attribution routes.
func RegisterShapHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /shap/importance", handleShapImportance)
	mux.HandleFunc("POST /shap/explain", handleShapExplain)
	mux.HandleFunc("POST /shap/compare", handleShapCompare)
	mux.HandleFunc("GET /shap/summary/{aa}", handleShapSummary)
}

type importanceEntry struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

func handleShapImportance(w http.ResponseWriter, r *http.Request) {
	if model == nil {
		respondError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}

	importance := model.ImportanceWeight()
	entries := make([]importanceEntry, 0, len(importance))
	for feature, weight := range importance {
		entries = append(entries, importanceEntry{Feature: feature, Weight: weight})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Weight != entries[j].Weight {
			return entries[i].Weight > entries[j].Weight
		}
		return entries[i].Feature < entries[j].Feature
	})

	respondJSON(w, map[string]interface{}{
		"importance_type": "weight",
		"features":        entries,
	})
}

type explainRequest struct {
	AminoAcid string `json:"amino_acid"`
	Codon     string `json:"codon"`
}

func handleShapExplain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	table, codons, ok := shapQueryContext(w, req.AminoAcid)
	if !ok {
		return
	}

	codon := strings.ToUpper(strings.TrimSpace(req.Codon))
	if codon == "" {
		// default to the highest-ranked codon of the amino acid
		ranking := table.RankCodons(codons)
		codon = ranking[0].Codon
	} else if !containsCodon(codons, codon) {
		respondError(w, http.StatusBadRequest, "codon is not synonymous with the amino acid")
		return
	}

	class, ok := model.ClassIndex(genetics.DNA(codon))
	if !ok {
		respondError(w, http.StatusBadRequest, "model has no class for this codon")
		return
	}

	vec := modelVector(table)
	waterfall, err := model.WaterfallData(vec, class, 10)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "attribution failed")
		return
	}
	force, err := model.ForceData(vec, class)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "attribution failed")
		return
	}

	respondJSON(w, map[string]interface{}{
		"codon":     codon,
		"waterfall": waterfall,
		"force":     force,
	})
}

type compareRequest struct {
	AminoAcid string `json:"amino_acid"`
	CodonA    string `json:"codon_a"`
	CodonB    string `json:"codon_b"`
}

func handleShapCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	table, codons, ok := shapQueryContext(w, req.AminoAcid)
	if !ok {
		return
	}

	codonA := strings.ToUpper(strings.TrimSpace(req.CodonA))
	codonB := strings.ToUpper(strings.TrimSpace(req.CodonB))
	if !containsCodon(codons, codonA) || !containsCodon(codons, codonB) {
		respondError(w, http.StatusBadRequest, "both codons must be synonymous with the amino acid")
		return
	}

	classA, okA := model.ClassIndex(genetics.DNA(codonA))
	classB, okB := model.ClassIndex(genetics.DNA(codonB))
	if !okA || !okB {
		respondError(w, http.StatusBadRequest, "model has no class for one of the codons")
		return
	}

	comparison, err := model.Compare(modelVector(table), classA, classB)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "attribution failed")
		return
	}
	respondJSON(w, comparison)
}

func handleShapSummary(w http.ResponseWriter, r *http.Request) {
	table, codons, ok := shapQueryContext(w, r.PathValue("aa"))
	if !ok {
		return
	}

	classes := make([]int, 0, len(codons))
	for _, c := range codons {
		if class, ok := model.ClassIndex(genetics.DNA(c)); ok {
			classes = append(classes, class)
		}
	}
	if len(classes) == 0 {
		respondError(w, http.StatusBadRequest, "model has no classes for this amino acid")
		return
	}

	summary, err := model.MeanAbsContributions(modelVector(table), classes)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "attribution failed")
		return
	}

	respondJSON(w, map[string]interface{}{
		"amino_acid":       strings.ToUpper(strings.TrimSpace(r.PathValue("aa"))),
		"codons":           codons,
		"mean_attribution": summary,
	})
}

// shapQueryContext validates the shared preconditions of the shap
// endpoints: model loaded, dataset loaded, amino acid known and backed
// by codon columns. Writes the error response itself on failure.
func shapQueryContext(w http.ResponseWriter, aminoAcid string) (*dataset.Table, []string, bool) {
	if model == nil {
		respondError(w, http.StatusServiceUnavailable, "model not loaded")
		return nil, nil, false
	}
	table := currentTable()
	if table == nil {
		respondError(w, http.StatusServiceUnavailable, "dataset not loaded")
		return nil, nil, false
	}

	aa := strings.ToUpper(strings.TrimSpace(aminoAcid))
	if !genetics.ValidAminoAcid(aa) {
		respondError(w, http.StatusBadRequest, "Invalid amino acid (use single-letter code like L, K, F)")
		return nil, nil, false
	}
	codons := table.PresentCodons(genetics.SynonymousCodons(aa[0]))
	if len(codons) == 0 {
		respondError(w, http.StatusBadRequest, "No codon data available for this amino acid")
		return nil, nil, false
	}
	return table, codons, true
}
