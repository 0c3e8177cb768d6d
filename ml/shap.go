package ml

import "fmt"

// Path-based additive attribution over the tree ensemble. Each decision
// on the way to a leaf moves the expected output of the tree; that move
// is credited to the split feature. The invariant callers rely on:
//
//	ExpectedValue(class) + sum(Contributions(x, class)) == margin(x, class)

// expected returns the per-tree subtree expectations, computed once.
func (m *GBTModel) expected() [][]float64 {
	m.expOnce.Do(func() {
		m.expCache = make([][]float64, len(m.Trees))
		for ti := range m.Trees {
			m.expCache[ti] = treeExpectations(&m.Trees[ti])
		}
	})
	return m.expCache
}

// treeExpectations computes, for every node, the mean leaf value of
// its subtree.
func treeExpectations(t *Tree) []float64 {
	exp := make([]float64, len(t.Nodes))
	visited := make([]bool, len(t.Nodes))

	var walk func(i int) float64
	walk = func(i int) float64 {
		if visited[i] {
			return exp[i]
		}
		visited[i] = true
		node := t.Nodes[i]
		if node.IsLeaf {
			exp[i] = node.LeafValue
		} else {
			exp[i] = (walk(node.LeftChild) + walk(node.RightChild)) / 2
		}
		return exp[i]
	}
	walk(0)
	return exp
}

// ExpectedValue returns the model output for class before any feature
// is known: the class base value plus every class tree's root
// expectation.
func (m *GBTModel) ExpectedValue(class int) float64 {
	exp := m.expected()
	value := m.BaseValues[class]
	for ti, tree := range m.Trees {
		if tree.Class == class {
			value += exp[ti][0]
		}
	}
	return value
}

// Contributions attributes the margin of class for features across the
// model's features. The result is indexed like Features.
func (m *GBTModel) Contributions(features []float64, class int) ([]float64, error) {
	if len(features) != len(m.Features) {
		return nil, fmt.Errorf("expected %d features, got %d", len(m.Features), len(features))
	}
	if class < 0 || class >= len(m.Classes) {
		return nil, fmt.Errorf("class %d out of range", class)
	}

	exp := m.expected()
	contrib := make([]float64, len(m.Features))
	for ti := range m.Trees {
		tree := &m.Trees[ti]
		if tree.Class != class {
			continue
		}
		idx := 0
		for !tree.Nodes[idx].IsLeaf {
			node := tree.Nodes[idx]
			next := node.LeftChild
			if features[node.FeatureIdx] > node.Threshold {
				next = node.RightChild
			}
			contrib[node.FeatureIdx] += exp[ti][next] - exp[ti][idx]
			idx = next
		}
	}
	return contrib, nil
}
