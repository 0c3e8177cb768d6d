package ml

import (
	"fmt"
	"math"
	"sort"
)

// FeatureContribution is one feature's share of a prediction.
type FeatureContribution struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
}

// Waterfall is the data behind a waterfall plot: ordered steps from the
// expected value to the model output. Remainder collects the features
// that did not make the cut.
type Waterfall struct {
	Class     string                `json:"class"`
	BaseValue float64               `json:"base_value"`
	Output    float64               `json:"output"`
	Steps     []FeatureContribution `json:"steps"`
	Remainder float64               `json:"remainder"`
}

// Force is the data behind a force plot: contributions split by sign.
type Force struct {
	Class     string                `json:"class"`
	BaseValue float64               `json:"base_value"`
	Output    float64               `json:"output"`
	Positive  []FeatureContribution `json:"positive"`
	Negative  []FeatureContribution `json:"negative"`
}

// Comparison contrasts the attributions of two classes on the same
// input.
type Comparison struct {
	ClassA string                `json:"class_a"`
	ClassB string                `json:"class_b"`
	Deltas []FeatureContribution `json:"deltas"`
}

// contributionsSorted pairs contributions with feature names, ordered
// by absolute contribution, largest first.
func (m *GBTModel) contributionsSorted(features []float64, class int) ([]FeatureContribution, error) {
	contrib, err := m.Contributions(features, class)
	if err != nil {
		return nil, err
	}
	out := make([]FeatureContribution, len(contrib))
	for i := range contrib {
		out[i] = FeatureContribution{
			Feature:      m.Features[i],
			Value:        features[i],
			Contribution: contrib[i],
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Contribution) > math.Abs(out[j].Contribution)
	})
	return out, nil
}

// WaterfallData builds waterfall plot data for class, keeping the topN
// strongest features and folding the rest into Remainder.
func (m *GBTModel) WaterfallData(features []float64, class, topN int) (*Waterfall, error) {
	sorted, err := m.contributionsSorted(features, class)
	if err != nil {
		return nil, err
	}
	base := m.ExpectedValue(class)

	output := base
	for _, fc := range sorted {
		output += fc.Contribution
	}

	if topN > len(sorted) {
		topN = len(sorted)
	}
	remainder := 0.0
	for _, fc := range sorted[topN:] {
		remainder += fc.Contribution
	}

	return &Waterfall{
		Class:     m.Classes[class],
		BaseValue: base,
		Output:    output,
		Steps:     sorted[:topN],
		Remainder: remainder,
	}, nil
}

// ForceData builds force plot data for class: non-zero contributions
// split into pushes toward and away from the prediction.
func (m *GBTModel) ForceData(features []float64, class int) (*Force, error) {
	sorted, err := m.contributionsSorted(features, class)
	if err != nil {
		return nil, err
	}
	base := m.ExpectedValue(class)

	force := &Force{Class: m.Classes[class], BaseValue: base, Output: base}
	for _, fc := range sorted {
		force.Output += fc.Contribution
		switch {
		case fc.Contribution > 0:
			force.Positive = append(force.Positive, fc)
		case fc.Contribution < 0:
			force.Negative = append(force.Negative, fc)
		}
	}
	return force, nil
}

// Compare contrasts what drives classA against classB on the same
// input. Deltas are classA contribution minus classB contribution,
// ordered by absolute delta.
func (m *GBTModel) Compare(features []float64, classA, classB int) (*Comparison, error) {
	a, err := m.Contributions(features, classA)
	if err != nil {
		return nil, err
	}
	b, err := m.Contributions(features, classB)
	if err != nil {
		return nil, err
	}

	deltas := make([]FeatureContribution, len(a))
	for i := range a {
		deltas[i] = FeatureContribution{
			Feature:      m.Features[i],
			Value:        features[i],
			Contribution: a[i] - b[i],
		}
	}
	sort.SliceStable(deltas, func(i, j int) bool {
		return math.Abs(deltas[i].Contribution) > math.Abs(deltas[j].Contribution)
	})

	return &Comparison{
		ClassA: m.Classes[classA],
		ClassB: m.Classes[classB],
		Deltas: deltas,
	}, nil
}

// MeanAbsContributions averages the absolute attribution of every
// feature across the given classes, for summary views. Classes missing
// from the model are skipped; an error is returned when none match.
func (m *GBTModel) MeanAbsContributions(features []float64, classes []int) ([]FeatureContribution, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("no classes to summarize")
	}
	sums := make([]float64, len(m.Features))
	for _, class := range classes {
		contrib, err := m.Contributions(features, class)
		if err != nil {
			return nil, err
		}
		for i, c := range contrib {
			sums[i] += math.Abs(c)
		}
	}

	out := make([]FeatureContribution, len(sums))
	for i := range sums {
		out[i] = FeatureContribution{
			Feature:      m.Features[i],
			Value:        features[i],
			Contribution: sums[i] / float64(len(classes)),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Contribution > out[j].Contribution
	})
	return out, nil
}
