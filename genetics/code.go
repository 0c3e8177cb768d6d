// Package genetics stores the standard genetic code and the
// amino acid <-> codon correspondence used by the analysis queries.
//
// Relevant documentation:
//
//	https://www.ncbi.nlm.nih.gov/Taxonomy/Utils/wprintgc.cgi?chapter=tgencodes#SG1
package genetics

import (
	"fmt"
	"sort"
	"strings"
)

// standard is NCBI translation table 1, keyed by RNA codon.
// Stop codons are kept here but excluded from the amino acid index.
var standard = map[string]byte{
	"UUU": 'F', "UUC": 'F', "UUA": 'L', "UUG": 'L',
	"CUU": 'L', "CUC": 'L', "CUA": 'L', "CUG": 'L',
	"AUU": 'I', "AUC": 'I', "AUA": 'I', "AUG": 'M',
	"GUU": 'V', "GUC": 'V', "GUA": 'V', "GUG": 'V',
	"UCU": 'S', "UCC": 'S', "UCA": 'S', "UCG": 'S',
	"CCU": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"ACU": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"GCU": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"UAU": 'Y', "UAC": 'Y', "UAA": '*', "UAG": '*',
	"CAU": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"AAU": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"GAU": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"UGU": 'C', "UGC": 'C', "UGA": '*', "UGG": 'W',
	"CGU": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',
	"AGU": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',
	"GGU": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

var synonymous map[byte][]string

func init() {
	synonymous = make(map[byte][]string)
	for codon, aa := range standard {
		if aa == '*' {
			continue
		}
		synonymous[aa] = append(synonymous[aa], codon)
	}
	// map iteration order is random, keep the lists deterministic
	for aa := range synonymous {
		sort.Strings(synonymous[aa])
	}
}

// ValidAminoAcid reports whether aa is one of the 20 standard
// single-letter amino acid codes.
func ValidAminoAcid(aa string) bool {
	if len(aa) != 1 {
		return false
	}
	_, ok := synonymous[aa[0]]
	return ok
}

// SynonymousCodons returns the RNA codons encoding aa, sorted
// alphabetically. The returned slice must not be modified.
func SynonymousCodons(aa byte) []string {
	return synonymous[aa]
}

// TranslateCodon returns the amino acid encoded by an RNA codon,
// or an error for stop codons and unknown sequences.
func TranslateCodon(codon string) (byte, error) {
	aa, ok := standard[strings.ToUpper(codon)]
	if !ok {
		return 0, fmt.Errorf("unknown codon %q", codon)
	}
	if aa == '*' {
		return 0, fmt.Errorf("stop codon %q", codon)
	}
	return aa, nil
}

// IsCodon reports whether s is a 3-letter RNA codon over the ACGU alphabet.
func IsCodon(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'U':
		default:
			return false
		}
	}
	return true
}

// DNA converts an RNA codon to its DNA spelling (U -> T). The trained
// model was fitted on DNA-keyed features, the usage table is RNA-keyed.
func DNA(codon string) string {
	return strings.ReplaceAll(strings.ToUpper(codon), "U", "T")
}

// RNA converts a DNA codon to its RNA spelling (T -> U).
func RNA(codon string) string {
	return strings.ReplaceAll(strings.ToUpper(codon), "T", "U")
}
