package ml

// Model is the prediction surface of a trained classifier.
type Model interface {
	Predict(features []float64) (class int, confidence float64, err error)
}

// Explainer produces per-feature attributions for one prediction.
type Explainer interface {
	Contributions(features []float64, class int) ([]float64, error)
	ExpectedValue(class int) float64
}
