package ml

import (
	"encoding/json"
	"os"
)

// EvalMetrics is the static evaluation record produced when the model
// was trained. It is echoed verbatim in every analysis response.
type EvalMetrics struct {
	Top1Accuracy      float64 `json:"accuracy_top1"`
	Top2Accuracy      float64 `json:"accuracy_top2"`
	Top3Accuracy      float64 `json:"accuracy_top3"`
	Precision         float64 `json:"precision"`
	Recall            float64 `json:"recall"`
	F1Score           float64 `json:"f1_score"`
	Loss              float64 `json:"loss"`
	AccuracyClean     float64 `json:"accuracy_clean"`
	AccuracyNoisy     float64 `json:"accuracy_noisy"`
	AccuracyMissing   float64 `json:"accuracy_missing"`
	AccuracyCodonOnly float64 `json:"accuracy_codon_only"`
	AccuracyCodonBWT  float64 `json:"accuracy_codon_bwt"`
}

// MarshalJSON renders the response shape of the metrics block. The
// artifact stores the top-k figures as accuracy_topN; responses have
// always reported them as topN_accuracy.
func (m EvalMetrics) MarshalJSON() ([]byte, error) {
	type response struct {
		Top1Accuracy      float64 `json:"top1_accuracy"`
		Top2Accuracy      float64 `json:"top2_accuracy"`
		Top3Accuracy      float64 `json:"top3_accuracy"`
		Precision         float64 `json:"precision"`
		Recall            float64 `json:"recall"`
		F1Score           float64 `json:"f1_score"`
		Loss              float64 `json:"loss"`
		AccuracyClean     float64 `json:"accuracy_clean"`
		AccuracyNoisy     float64 `json:"accuracy_noisy"`
		AccuracyMissing   float64 `json:"accuracy_missing"`
		AccuracyCodonOnly float64 `json:"accuracy_codon_only"`
		AccuracyCodonBWT  float64 `json:"accuracy_codon_bwt"`
	}
	return json.Marshal(response(m))
}

// LoadEvalMetrics reads the evaluation metrics JSON written at
// training time.
func LoadEvalMetrics(path string) (*EvalMetrics, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var metrics EvalMetrics
	if err := json.Unmarshal(payload, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}
