package genetics

import (
	"sort"
	"strings"
)

// ParseGenotype splits a genotype string into two alleles drawn from alleles.
//
// Candidates are tried longest first. For each allele that prefixes the genotype,
// the remainder must equal an allele exactly; if none does, the next prefix
// candidate is tried. The first successful pairing wins.
func ParseGenotype(genotype string, alleles []string) (AllelePair, error) {
	genotype = strings.TrimSpace(genotype)
	if genotype == "" {
		return AllelePair{}, &Error{Kind: KindEmptyGenotype, Alleles: alleles}
	}

	ordered := longestFirst(alleles)
	for _, first := range ordered {
		if first == "" || !strings.HasPrefix(genotype, first) {
			continue
		}
		rest := genotype[len(first):]
		for _, second := range ordered {
			if second == rest {
				return AllelePair{first, second}, nil
			}
		}
	}

	return AllelePair{}, &Error{
		Kind:     KindUnparseableGenotype,
		Genotype: genotype,
		Alleles:  alleles,
	}
}

// IsValidGenotype reports whether ParseGenotype succeeds.
func IsValidGenotype(genotype string, alleles []string) bool {
	_, err := ParseGenotype(genotype, alleles)
	return err == nil
}

func longestFirst(alleles []string) []string {
	ordered := make([]string, len(alleles))
	copy(ordered, alleles)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i]) > len(ordered[j])
	})
	return ordered
}
