package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// CodonRank is one entry of a codon ranking, ordered by mean frequency.
type CodonRank struct {
	Rank      int     `json:"rank"`
	Codon     string  `json:"codon"`
	Frequency float64 `json:"frequency"`
}

// SpeciesScore pairs a species name with an aggregation score.
type SpeciesScore struct {
	SpeciesName string  `json:"species_name"`
	Score       float64 `json:"score"`
}

// Preference is the species-specific preference breakdown: which
// organisms use the queried codon(s) the most and the least.
type Preference struct {
	UsedCodons    []string       `json:"used_codons"`
	TopSpecies    []SpeciesScore `json:"top_species"`
	BottomSpecies []SpeciesScore `json:"bottom_species"`
	Explanation   string         `json:"explanation"`
}

// HostResult is the host-aware optimization result: the codon ranking
// restricted to species matching the host name.
type HostResult struct {
	HostSpecies  string      `json:"host_species"`
	MatchedRows  int         `json:"matched_rows"`
	OptimalCodon string      `json:"optimal_codon"`
	CodonRanking []CodonRank `json:"codon_ranking"`
}

// BiasResult is the bias score of one codon: per-species usage
// relative to the dataset-wide mean.
type BiasResult struct {
	Codon          string         `json:"codon"`
	GlobalAverage  float64        `json:"global_average"`
	TopBiasSpecies []SpeciesScore `json:"top_bias_species"`
}

// KingdomMean is the mean usage of one codon within one kingdom.
type KingdomMean struct {
	Kingdom string  `json:"kingdom"`
	Mean    float64 `json:"mean"`
}

// RankCodons ranks codons by their dataset-wide mean frequency,
// descending. Codons without a table column are ignored.
func (t *Table) RankCodons(codons []string) []CodonRank {
	ranking := make([]CodonRank, 0, len(codons))
	for _, c := range codons {
		mean, ok := t.Mean(c)
		if !ok {
			continue
		}
		ranking = append(ranking, CodonRank{Codon: c, Frequency: mean})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Frequency > ranking[j].Frequency
	})
	for i := range ranking {
		ranking[i].Rank = i + 1
	}
	return ranking
}

// scoreRows computes the per-row score: the selected codon's value when
// selected is one of codons and present in the table, otherwise the sum
// over all codons. Mirrors how the ranking treats a selected codon.
func (t *Table) scoreRows(codons []string, selected string) ([]float64, []string) {
	used := codons
	if selected != "" && t.HasCodon(selected) && contains(codons, selected) {
		used = []string{selected}
	}
	scores := make([]float64, t.NumRows())
	for i := range scores {
		for _, c := range used {
			scores[i] += t.Value(i, c)
		}
	}
	return scores, used
}

// TopSpecies returns the n species with the highest combined usage of
// codons (or of the selected codon alone when given).
func (t *Table) TopSpecies(codons []string, selected string, n int) []SpeciesScore {
	scores, _ := t.scoreRows(codons, selected)
	return t.topByScore(scores, n, false)
}

// PreferenceAnalysis normalizes the per-species score by its maximum
// and reports the n most and least preferring species.
func (t *Table) PreferenceAnalysis(aa byte, codons []string, selected string, n int) *Preference {
	if len(codons) == 0 {
		return nil
	}
	scores, used := t.scoreRows(codons, selected)

	maxScore := 0.0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore > 0 {
		for i := range scores {
			scores[i] /= maxScore
		}
	}

	return &Preference{
		UsedCodons:    used,
		TopSpecies:    t.topByScore(scores, n, false),
		BottomSpecies: t.topByScore(scores, n, true),
		Explanation: fmt.Sprintf(
			"Species-specific codon preference highlights how organisms differ in using codon(s) %s for amino acid %c.",
			strings.Join(used, ", "), aa),
	}
}

// HostOptimization ranks codons over the subset of species whose name
// contains host (case-insensitive). Returns nil when host is empty or
// nothing matches.
func (t *Table) HostOptimization(codons []string, host string) *HostResult {
	host = strings.TrimSpace(host)
	if host == "" || len(codons) == 0 {
		return nil
	}

	needle := strings.ToLower(host)
	var matched []int
	for i := range t.rows {
		if strings.Contains(strings.ToLower(t.rows[i].Name), needle) {
			matched = append(matched, i)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	ranking := make([]CodonRank, 0, len(codons))
	for _, c := range codons {
		if !t.HasCodon(c) {
			continue
		}
		sum := 0.0
		for _, i := range matched {
			sum += t.Value(i, c)
		}
		ranking = append(ranking, CodonRank{Codon: c, Frequency: sum / float64(len(matched))})
	}
	if len(ranking) == 0 {
		return nil
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Frequency > ranking[j].Frequency
	})
	for i := range ranking {
		ranking[i].Rank = i + 1
	}

	return &HostResult{
		HostSpecies:  host,
		MatchedRows:  len(matched),
		OptimalCodon: ranking[0].Codon,
		CodonRanking: ranking,
	}
}

// BiasScore computes per-species bias of codon relative to its global
// mean. Undefined (nil) when the codon is absent or the mean is zero.
func (t *Table) BiasScore(codon string, n int) *BiasResult {
	mean, ok := t.Mean(codon)
	if !ok || mean == 0 {
		return nil
	}

	bias := make([]float64, t.NumRows())
	for i := range bias {
		bias[i] = t.Value(i, codon) / mean
	}

	return &BiasResult{
		Codon:          codon,
		GlobalAverage:  mean,
		TopBiasSpecies: t.topByScore(bias, n, false),
	}
}

// KingdomComparison groups rows by kingdom and reports each group's
// mean usage of codon. Empty when the codon is absent or no row
// carries a kingdom.
func (t *Table) KingdomComparison(codon string) []KingdomMean {
	if !t.HasCodon(codon) {
		return []KingdomMean{}
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range t.rows {
		k := t.rows[i].Kingdom
		if k == "" {
			continue
		}
		sums[k] += t.Value(i, codon)
		counts[k]++
	}

	result := make([]KingdomMean, 0, len(sums))
	for k, sum := range sums {
		result = append(result, KingdomMean{Kingdom: k, Mean: sum / float64(counts[k])})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Kingdom < result[j].Kingdom })
	return result
}

// topByScore returns the n best rows by score (lowest when ascending).
func (t *Table) topByScore(scores []float64, n int, ascending bool) []SpeciesScore {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if ascending {
			return scores[order[a]] < scores[order[b]]
		}
		return scores[order[a]] > scores[order[b]]
	})

	if n > len(order) {
		n = len(order)
	}
	top := make([]SpeciesScore, n)
	for i := 0; i < n; i++ {
		top[i] = SpeciesScore{SpeciesName: t.rows[order[i]].Name, Score: scores[order[i]]}
	}
	return top
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
