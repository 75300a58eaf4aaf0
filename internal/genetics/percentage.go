package genetics

import "strings"

// ClassifyPercentageParent maps a percentage genotype to its class: "" is none,
// the allele twice is dom, "n" plus the allele is rec.
func ClassifyPercentageParent(genotype string, alleles []string) (Class, error) {
	genotype = strings.TrimSpace(genotype)
	if genotype == "" {
		return ClassNone, nil
	}
	if len(alleles) == 0 {
		return "", &Error{Kind: KindInvalidPercentageGenotype, Genotype: genotype, Alleles: alleles}
	}

	a := alleles[0]
	switch genotype {
	case a + a:
		return ClassDom, nil
	case "n" + a:
		return ClassRec, nil
	}
	return "", &Error{Kind: KindInvalidPercentageGenotype, Genotype: genotype, Alleles: alleles}
}

// IsValidPercentageGenotype reports whether genotype is "", the allele twice or
// "n" plus the allele. A gene without alleles accepts nothing.
func IsValidPercentageGenotype(genotype string, alleles []string) bool {
	if len(alleles) == 0 {
		return false
	}
	_, err := ClassifyPercentageParent(genotype, alleles)
	return err == nil
}

// PercentageOutcomeGenotype renders an outcome label as a genotype string.
func PercentageOutcomeGenotype(label Class, alleles []string) (string, error) {
	if label == ClassNone {
		return "", nil
	}
	if label != ClassDom && label != ClassRec {
		return "", &Error{Kind: KindInvalidOutcomeLabel, Label: string(label), Alleles: alleles}
	}
	if len(alleles) == 0 {
		return "", &Error{Kind: KindInvalidGeneSpec, Detail: "at least one allele is required"}
	}

	a := alleles[0]
	if label == ClassDom {
		return a + a, nil
	}
	return "n" + a, nil
}

// PercentageOutcomes crosses two parent classes through the band table. A missing
// or degenerate band yields a certain "none" outcome. Outcomes follow the label
// order dom, rec, none.
func PercentageOutcomes(sire, dam Class, alleles []string, odds PercentageOdds) ([]Outcome, error) {
	band, ok := odds[PairKey(sire, dam)]
	if !ok {
		band = fallbackBand()
	}

	total := band.total()
	if total <= 0 {
		band = fallbackBand()
		total = band.total()
	}

	outcomes := make([]Outcome, 0, len(band))
	for _, label := range band.labels() {
		genotype, err := PercentageOutcomeGenotype(label, alleles)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, Outcome{
			Genotype:    genotype,
			Probability: band[label] / total,
		})
	}
	return outcomes, nil
}
