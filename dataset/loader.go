package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"codonlens/genetics"
)

// Column names after normalization. The source CSV uses mixed-case
// headers, some exports pad them with whitespace.
const (
	colSpeciesName = "SPECIESNAME"
	colKingdom     = "KINGDOM"
)

// LoadCSV reads the codon usage table from path. Headers are stripped
// and uppercased; every 3-letter ACGU column is treated as a codon
// frequency column. Species names can carry ISO-8859-1 accents, so the
// file is decoded through a charmap transformer before parsing.
func LoadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return parseCSV(transform.NewReader(file, charmap.ISO8859_1.NewDecoder()))
}

func parseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	nameIdx, kingdomIdx := -1, -1
	var codons []string
	var codonCols []int
	for i, col := range header {
		col = strings.ToUpper(strings.TrimSpace(col))
		switch {
		case col == colSpeciesName:
			nameIdx = i
		case col == colKingdom:
			kingdomIdx = i
		case genetics.IsCodon(col):
			codons = append(codons, col)
			codonCols = append(codonCols, i)
		}
	}
	if nameIdx == -1 {
		return nil, fmt.Errorf("missing %s column", colSpeciesName)
	}
	if len(codons) == 0 {
		return nil, fmt.Errorf("no codon columns found")
	}

	var rows []Species
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		freqs := make([]float64, len(codonCols))
		ok := true
		for j, col := range codonCols {
			if col >= len(record) {
				ok = false
				break
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
			if err != nil {
				ok = false
				break
			}
			freqs[j] = v
		}
		if !ok {
			skipped++
			continue
		}

		row := Species{Name: strings.TrimSpace(record[nameIdx]), Freqs: freqs}
		if kingdomIdx != -1 && kingdomIdx < len(record) {
			row.Kingdom = strings.TrimSpace(record[kingdomIdx])
		}
		rows = append(rows, row)
	}

	if skipped > 0 {
		zap.S().Warnw("skipped rows with unparsable frequencies", "count", skipped)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no usable rows in dataset")
	}

	return NewTable(codons, rows), nil
}
