// Package dataset holds the codon usage table and the aggregation
// queries that run against it. The table is loaded once from CSV and
// never mutated; hot reloads swap the whole table through a Store.
package dataset

// Species is one row of the usage table: a species with its taxonomic
// kingdom and its relative usage frequency for every codon column.
type Species struct {
	Name    string
	Kingdom string
	Freqs   []float64
}

// Table is the in-memory codon usage table. Frequencies are indexed
// by the codon order returned by Codons.
type Table struct {
	codons   []string
	codonIdx map[string]int
	rows     []Species
}

// NewTable builds a table from a codon column list and rows. Rows with
// a frequency slice of the wrong length are rejected by the loader, so
// this constructor assumes consistent input.
func NewTable(codons []string, rows []Species) *Table {
	idx := make(map[string]int, len(codons))
	for i, c := range codons {
		idx[c] = i
	}
	return &Table{codons: codons, codonIdx: idx, rows: rows}
}

// Codons returns the codon columns present in the table.
func (t *Table) Codons() []string {
	return t.codons
}

// HasCodon reports whether the table has a column for codon.
func (t *Table) HasCodon(codon string) bool {
	_, ok := t.codonIdx[codon]
	return ok
}

// NumRows returns the number of species rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// Rows returns the species rows. Callers must not modify them.
func (t *Table) Rows() []Species {
	return t.rows
}

// Value returns the frequency of codon for row i, or 0 when the
// codon has no column.
func (t *Table) Value(i int, codon string) float64 {
	idx, ok := t.codonIdx[codon]
	if !ok {
		return 0
	}
	return t.rows[i].Freqs[idx]
}

// Mean returns the dataset-wide mean frequency of codon. The second
// return is false when the codon has no column or the table is empty.
func (t *Table) Mean(codon string) (float64, bool) {
	idx, ok := t.codonIdx[codon]
	if !ok || len(t.rows) == 0 {
		return 0, false
	}
	sum := 0.0
	for i := range t.rows {
		sum += t.rows[i].Freqs[idx]
	}
	return sum / float64(len(t.rows)), true
}

// MeanVector returns the dataset-wide mean of every codon column, in
// column order. Used as the model input for dataset-level explanations.
func (t *Table) MeanVector() []float64 {
	means := make([]float64, len(t.codons))
	if len(t.rows) == 0 {
		return means
	}
	for i := range t.rows {
		for j, v := range t.rows[i].Freqs {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(len(t.rows))
	}
	return means
}

// PresentCodons filters codons down to the ones that exist as table
// columns, preserving order.
func (t *Table) PresentCodons(codons []string) []string {
	present := make([]string, 0, len(codons))
	for _, c := range codons {
		if t.HasCodon(c) {
			present = append(present, c)
		}
	}
	return present
}
