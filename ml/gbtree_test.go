package ml

import (
	"math"
	"testing"
)

// testModel builds a small two-class ensemble over two codon features.
// Class 0 (AAA) gains margin when feature 0 is high, class 1 (AAG)
// when feature 1 is high.
func testModel(t *testing.T) *GBTModel {
	t.Helper()
	model := &GBTModel{
		Classes:    []string{"AAA", "AAG"},
		Features:   []string{"AAA", "AAG"},
		BaseValues: []float64{0.5, 0.5},
		Background: []float64{0.2, 0.2},
		Trees: []Tree{
			{
				Class: 0,
				Nodes: []TreeNode{
					{FeatureIdx: 0, Threshold: 0.25, LeftChild: 1, RightChild: 2},
					{IsLeaf: true, LeafValue: -0.4},
					{IsLeaf: true, LeafValue: 0.6},
				},
			},
			{
				Class: 1,
				Nodes: []TreeNode{
					{FeatureIdx: 1, Threshold: 0.25, LeftChild: 1, RightChild: 2},
					{IsLeaf: true, LeafValue: -0.2},
					{FeatureIdx: 0, Threshold: 0.5, LeftChild: 3, RightChild: 4},
					{IsLeaf: true, LeafValue: 0.8},
					{IsLeaf: true, LeafValue: 0.2},
				},
			},
		},
	}
	if err := model.Validate(); err != nil {
		t.Fatal(err)
	}
	return model
}

func TestMargins(t *testing.T) {
	model := testModel(t)

	margins, err := model.Margins([]float64{0.3, 0.1})
	if err != nil {
		t.Fatal(err)
	}
	// class 0: 0.5 + 0.6, class 1: 0.5 - 0.2
	if math.Abs(margins[0]-1.1) > 1e-9 || math.Abs(margins[1]-0.3) > 1e-9 {
		t.Fatalf("unexpected margins: %v", margins)
	}
}

func TestPredict(t *testing.T) {
	model := testModel(t)

	class, confidence, err := model.Predict([]float64{0.3, 0.1})
	if err != nil {
		t.Fatal(err)
	}
	if class != 0 {
		t.Fatalf("expected class 0, got %d", class)
	}
	if confidence <= 0.5 || confidence >= 1 {
		t.Fatalf("unexpected confidence: %f", confidence)
	}

	class, _, err = model.Predict([]float64{0.1, 0.4})
	if err != nil {
		t.Fatal(err)
	}
	if class != 1 {
		t.Fatalf("expected class 1, got %d", class)
	}
}

func TestPredictFeatureCountMismatch(t *testing.T) {
	model := testModel(t)
	if _, _, err := model.Predict([]float64{0.1}); err == nil {
		t.Fatal("expected error for short feature vector")
	}
}

func TestImportanceWeight(t *testing.T) {
	model := testModel(t)
	importance := model.ImportanceWeight()

	if importance["AAA"] != 2 {
		t.Errorf("AAA split count = %f, expected 2", importance["AAA"])
	}
	if importance["AAG"] != 1 {
		t.Errorf("AAG split count = %f, expected 1", importance["AAG"])
	}
}

func TestValidateRejectsBrokenModels(t *testing.T) {
	broken := []*GBTModel{
		{},
		{Classes: []string{"AAA"}, Features: []string{"AAA"}},
		{
			Classes: []string{"AAA"}, Features: []string{"AAA"}, BaseValues: []float64{0},
			Trees: []Tree{{Class: 3, Nodes: []TreeNode{{IsLeaf: true}}}},
		},
		{
			Classes: []string{"AAA"}, Features: []string{"AAA"}, BaseValues: []float64{0},
			Trees: []Tree{{Class: 0, Nodes: []TreeNode{{FeatureIdx: 0, LeftChild: 7, RightChild: 0}}}},
		},
	}
	for i, model := range broken {
		if err := model.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestClassAndFeatureIndex(t *testing.T) {
	model := testModel(t)
	if i, ok := model.ClassIndex("AAG"); !ok || i != 1 {
		t.Fatalf("ClassIndex(AAG) = %d, %v", i, ok)
	}
	if _, ok := model.ClassIndex("GGG"); ok {
		t.Fatal("expected miss for unknown class")
	}
	if i, ok := model.FeatureIndex("AAA"); !ok || i != 0 {
		t.Fatalf("FeatureIndex(AAA) = %d, %v", i, ok)
	}
}
