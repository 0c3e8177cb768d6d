package dataset

import (
	"math"
	"testing"
)

// testTable has the two K codons (AAA, AAG) and the two F codons
// (UUU, UUC) over four species in two kingdoms.
func testTable() *Table {
	return NewTable(
		[]string{"AAA", "AAG", "UUU", "UUC"},
		[]Species{
			{Name: "Escherichia coli", Kingdom: "bct", Freqs: []float64{0.30, 0.10, 0.20, 0.15}},
			{Name: "Homo sapiens", Kingdom: "pri", Freqs: []float64{0.10, 0.40, 0.10, 0.25}},
			{Name: "Mus musculus", Kingdom: "rod", Freqs: []float64{0.20, 0.30, 0.00, 0.20}},
			{Name: "Homo sapiens neanderthalensis", Kingdom: "pri", Freqs: []float64{0.12, 0.38, 0.00, 0.22}},
		},
	)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRankCodonsSortedDescending(t *testing.T) {
	table := testTable()
	ranking := table.RankCodons([]string{"AAA", "AAG"})

	if len(ranking) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ranking))
	}
	// mean(AAG) = 0.295, mean(AAA) = 0.18
	if ranking[0].Codon != "AAG" || ranking[1].Codon != "AAA" {
		t.Fatalf("unexpected order: %v", ranking)
	}
	if ranking[0].Rank != 1 || ranking[1].Rank != 2 {
		t.Fatalf("unexpected ranks: %v", ranking)
	}
	if !almostEqual(ranking[0].Frequency, 0.295) {
		t.Errorf("mean(AAG) = %f, expected 0.295", ranking[0].Frequency)
	}
	for i := 1; i < len(ranking); i++ {
		if ranking[i].Frequency > ranking[i-1].Frequency {
			t.Fatalf("ranking not descending at %d", i)
		}
	}
}

func TestRankCodonsIgnoresMissingColumns(t *testing.T) {
	table := testTable()
	ranking := table.RankCodons([]string{"AAA", "AAG", "GGG"})
	if len(ranking) != 2 {
		t.Fatalf("expected missing codon to be dropped, got %v", ranking)
	}
}

func TestTopSpeciesSumVsSelected(t *testing.T) {
	table := testTable()

	// sum score: E. coli = 0.40, H. sapiens = 0.50, M. musculus = 0.50, neanderthalensis = 0.50
	top := table.TopSpecies([]string{"AAA", "AAG"}, "", 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 species, got %d", len(top))
	}
	if !almostEqual(top[0].Score, 0.50) {
		t.Errorf("top score = %f, expected 0.50", top[0].Score)
	}

	// selected codon: AAA alone, E. coli leads with 0.30
	top = table.TopSpecies([]string{"AAA", "AAG"}, "AAA", 1)
	if top[0].SpeciesName != "Escherichia coli" || !almostEqual(top[0].Score, 0.30) {
		t.Fatalf("unexpected leader: %v", top[0])
	}

	// a selected codon outside the synonymous set falls back to the sum
	top = table.TopSpecies([]string{"AAA", "AAG"}, "UUU", 1)
	if !almostEqual(top[0].Score, 0.50) {
		t.Fatalf("expected sum score, got %v", top[0])
	}
}

func TestPreferenceAnalysisNormalized(t *testing.T) {
	table := testTable()
	pref := table.PreferenceAnalysis('K', []string{"AAA", "AAG"}, "AAA", 4)
	if pref == nil {
		t.Fatal("expected a preference result")
	}
	if len(pref.UsedCodons) != 1 || pref.UsedCodons[0] != "AAA" {
		t.Fatalf("unexpected used codons: %v", pref.UsedCodons)
	}
	if !almostEqual(pref.TopSpecies[0].Score, 1.0) {
		t.Errorf("top preference should be normalized to 1, got %f", pref.TopSpecies[0].Score)
	}
	if pref.BottomSpecies[0].Score > pref.TopSpecies[0].Score {
		t.Error("bottom species scored above top species")
	}

	if table.PreferenceAnalysis('K', nil, "", 4) != nil {
		t.Error("expected nil without codon columns")
	}
}

func TestHostOptimization(t *testing.T) {
	table := testTable()

	host := table.HostOptimization([]string{"AAA", "AAG"}, "homo sapiens")
	if host == nil {
		t.Fatal("expected a host result")
	}
	if host.MatchedRows != 2 {
		t.Fatalf("expected 2 matched rows, got %d", host.MatchedRows)
	}
	// means over the two sapiens rows: AAG = 0.39, AAA = 0.11
	if host.OptimalCodon != "AAG" {
		t.Fatalf("unexpected optimal codon: %s", host.OptimalCodon)
	}
	if !almostEqual(host.CodonRanking[0].Frequency, 0.39) {
		t.Errorf("mean(AAG|host) = %f, expected 0.39", host.CodonRanking[0].Frequency)
	}

	if table.HostOptimization([]string{"AAA"}, "") != nil {
		t.Error("expected nil for empty host")
	}
	if table.HostOptimization([]string{"AAA"}, "saccharomyces") != nil {
		t.Error("expected nil for unmatched host")
	}
}

func TestBiasScore(t *testing.T) {
	table := testTable()

	bias := table.BiasScore("AAA", 4)
	if bias == nil {
		t.Fatal("expected a bias result")
	}
	if !almostEqual(bias.GlobalAverage, 0.18) {
		t.Fatalf("global average = %f, expected 0.18", bias.GlobalAverage)
	}
	// E. coli: 0.30 / 0.18
	if bias.TopBiasSpecies[0].SpeciesName != "Escherichia coli" {
		t.Fatalf("unexpected top bias species: %v", bias.TopBiasSpecies[0])
	}
	if !almostEqual(bias.TopBiasSpecies[0].Score, 0.30/0.18) {
		t.Errorf("bias = %f, expected %f", bias.TopBiasSpecies[0].Score, 0.30/0.18)
	}

	if table.BiasScore("GGG", 4) != nil {
		t.Error("expected nil for missing codon")
	}
}

func TestBiasScoreZeroMeanUndefined(t *testing.T) {
	table := NewTable([]string{"AAA"}, []Species{
		{Name: "a", Freqs: []float64{0}},
		{Name: "b", Freqs: []float64{0}},
	})
	if table.BiasScore("AAA", 4) != nil {
		t.Error("bias must be undefined when the global mean is zero")
	}
}

func TestKingdomComparison(t *testing.T) {
	table := testTable()

	groups := table.KingdomComparison("AAA")
	if len(groups) != 3 {
		t.Fatalf("expected 3 kingdoms, got %v", groups)
	}
	seen := map[string]float64{}
	for _, g := range groups {
		seen[g.Kingdom] = g.Mean
	}
	if !almostEqual(seen["bct"], 0.30) {
		t.Errorf("bct mean = %f", seen["bct"])
	}
	if !almostEqual(seen["pri"], 0.11) {
		t.Errorf("pri mean = %f", seen["pri"])
	}
	if !almostEqual(seen["rod"], 0.20) {
		t.Errorf("rod mean = %f", seen["rod"])
	}

	if got := table.KingdomComparison("GGG"); len(got) != 0 {
		t.Errorf("expected empty result for missing codon, got %v", got)
	}
}

func TestMeanVector(t *testing.T) {
	table := testTable()
	means := table.MeanVector()
	if len(means) != 4 {
		t.Fatalf("expected 4 means, got %d", len(means))
	}
	if !almostEqual(means[0], 0.18) {
		t.Errorf("mean[AAA] = %f, expected 0.18", means[0])
	}
}
