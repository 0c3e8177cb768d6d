package ml

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// TreeNode is one node of a regression tree. Leaves carry the margin
// contribution of the tree for inputs that reach them.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	LeafValue  float64 `json:"leaf_value"`
	IsLeaf     bool    `json:"is_leaf"`
}

// Tree is one boosted tree, voting for one class of the ensemble.
type Tree struct {
	Class int        `json:"class"`
	Nodes []TreeNode `json:"nodes"`
}

// GBTModel is a pre-trained gradient-boosted tree classifier exported
// to JSON. Classes and features are DNA codon labels; the usage table
// is RNA-keyed, callers convert with genetics.DNA.
type GBTModel struct {
	Classes    []string  `json:"classes"`
	Features   []string  `json:"features"`
	BaseValues []float64 `json:"base_values"`
	Background []float64 `json:"background"`
	Trees      []Tree    `json:"trees"`

	featureIdx map[string]int
	classIdx   map[string]int

	expOnce  sync.Once
	expCache [][]float64
}

// Validate checks structural consistency after loading. Tree node
// links are checked so Predict can walk them without bounds errors.
func (m *GBTModel) Validate() error {
	if len(m.Classes) == 0 {
		return errors.New("model has no classes")
	}
	if len(m.Features) == 0 {
		return errors.New("model has no features")
	}
	if len(m.BaseValues) != len(m.Classes) {
		return errors.New("base_values/classes size mismatch")
	}
	if len(m.Background) != 0 && len(m.Background) != len(m.Features) {
		return errors.New("background/features size mismatch")
	}
	for ti, tree := range m.Trees {
		if tree.Class < 0 || tree.Class >= len(m.Classes) {
			return fmt.Errorf("tree %d: class out of range", ti)
		}
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d: empty", ti)
		}
		for ni, node := range tree.Nodes {
			if node.IsLeaf {
				continue
			}
			if node.FeatureIdx < 0 || node.FeatureIdx >= len(m.Features) {
				return fmt.Errorf("tree %d node %d: feature index out of range", ti, ni)
			}
			if node.LeftChild < 0 || node.LeftChild >= len(tree.Nodes) ||
				node.RightChild < 0 || node.RightChild >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d: invalid child link", ti, ni)
			}
		}
	}

	m.featureIdx = make(map[string]int, len(m.Features))
	for i, f := range m.Features {
		m.featureIdx[f] = i
	}
	m.classIdx = make(map[string]int, len(m.Classes))
	for i, c := range m.Classes {
		m.classIdx[c] = i
	}
	return nil
}

// ClassIndex returns the class index for a DNA codon label.
func (m *GBTModel) ClassIndex(label string) (int, bool) {
	i, ok := m.classIdx[label]
	return i, ok
}

// FeatureIndex returns the feature index for a DNA codon label.
func (m *GBTModel) FeatureIndex(label string) (int, bool) {
	i, ok := m.featureIdx[label]
	return i, ok
}

// Margins returns the raw per-class margins for a feature vector:
// base value plus the leaf values of every tree voting for the class.
func (m *GBTModel) Margins(features []float64) ([]float64, error) {
	if len(features) != len(m.Features) {
		return nil, fmt.Errorf("expected %d features, got %d", len(m.Features), len(features))
	}
	margins := append([]float64(nil), m.BaseValues...)
	for _, tree := range m.Trees {
		leaf, err := tree.walk(features)
		if err != nil {
			return nil, err
		}
		margins[tree.Class] += tree.Nodes[leaf].LeafValue
	}
	return margins, nil
}

// Predict returns the highest-margin class and its softmax probability.
func (m *GBTModel) Predict(features []float64) (int, float64, error) {
	margins, err := m.Margins(features)
	if err != nil {
		return 0, 0, err
	}

	best := 0
	for i := range margins {
		if margins[i] > margins[best] {
			best = i
		}
	}

	// softmax, shifted by the max margin for numerical stability
	sum := 0.0
	for _, v := range margins {
		sum += math.Exp(v - margins[best])
	}
	return best, 1 / sum, nil
}

// ImportanceWeight counts how often each feature is used as a split
// across the ensemble, keyed by feature label. Matches the booster's
// "weight" importance type.
func (m *GBTModel) ImportanceWeight() map[string]float64 {
	importance := make(map[string]float64)
	for _, tree := range m.Trees {
		for _, node := range tree.Nodes {
			if !node.IsLeaf {
				importance[m.Features[node.FeatureIdx]]++
			}
		}
	}
	return importance
}

// walk follows the decision path for features and returns the index of
// the leaf reached.
func (t *Tree) walk(features []float64) (int, error) {
	idx := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return idx, nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
	return 0, errors.New("tree walk did not terminate")
}
