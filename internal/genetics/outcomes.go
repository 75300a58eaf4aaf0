package genetics

import (
	"sort"
	"strings"
)

// keySeparator joins per-gene genotypes into an aggregation key. Genotype strings
// never contain NUL.
const keySeparator = "\x00"

type row struct {
	key         string
	probability float64
}

// BreedingOutcomes computes the combined offspring distribution for two parents.
//
// sire and dam are aligned with dict (see AssignTokensToGenes); missing trailing
// entries count as empty. A Punnett gene is skipped when either parent has no
// genotype for it. Percentage genes always contribute, an empty genotype counting
// as class none. The result is sorted by descending probability, ties broken by
// genotype tuple in byte order. An empty slice means no gene contributed.
func BreedingOutcomes(sire, dam []string, dict GeneDictionary, odds OddsConfig) ([]BreedingResult, error) {
	var perGene [][]Outcome

	for i, gene := range dict {
		s := strings.TrimSpace(at(sire, i))
		d := strings.TrimSpace(at(dam, i))

		switch gene.OddsType {
		case OddsPunnett:
			if s == "" || d == "" {
				continue
			}
			sp, err := ParseGenotype(s, gene.Alleles)
			if err != nil {
				return nil, withGene(err, gene.Name)
			}
			dp, err := ParseGenotype(d, gene.Alleles)
			if err != nil {
				return nil, withGene(err, gene.Name)
			}
			perGene = append(perGene, PunnettOutcomes(sp, dp, gene.Alleles, odds.Punnett))

		case OddsPercentage:
			sc, err := ClassifyPercentageParent(s, gene.Alleles)
			if err != nil {
				return nil, withGene(err, gene.Name)
			}
			dc, err := ClassifyPercentageParent(d, gene.Alleles)
			if err != nil {
				return nil, withGene(err, gene.Name)
			}
			outcomes, err := PercentageOutcomes(sc, dc, gene.Alleles, odds.Percentage)
			if err != nil {
				return nil, withGene(err, gene.Name)
			}
			perGene = append(perGene, outcomes)
		}
	}

	if len(perGene) == 0 {
		return []BreedingResult{}, nil
	}

	rows := combine(perGene)
	keys, totals := aggregate(rows)
	sortKeys(keys, totals)

	results := make([]BreedingResult, len(keys))
	for i, k := range keys {
		p := totals[k]
		results[i] = BreedingResult{
			Genotype:    strings.Split(k, keySeparator),
			Probability: p,
			Percentage:  FormatPercentage(p),
		}
	}
	return results, nil
}

// combine takes the cartesian product of the per-gene distributions, one gene at
// a time, multiplying probabilities.
func combine(perGene [][]Outcome) []row {
	rows := []row{{probability: 1}}
	for gi, outcomes := range perGene {
		next := make([]row, 0, len(rows)*len(outcomes))
		for _, r := range rows {
			for _, o := range outcomes {
				key := o.Genotype
				if gi > 0 {
					key = r.key + keySeparator + o.Genotype
				}
				next = append(next, row{key: key, probability: r.probability * o.Probability})
			}
		}
		rows = next
	}
	return rows
}

// aggregate sums probabilities per key, returning keys in first-seen order.
func aggregate(rows []row) ([]string, map[string]float64) {
	totals := make(map[string]float64, len(rows))
	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		if _, ok := totals[r.key]; !ok {
			keys = append(keys, r.key)
		}
		totals[r.key] += r.probability
	}
	return keys, totals
}

// sortKeys orders keys by tuple (byte order per position, shorter tuple first on
// a shared prefix) and then stably by descending probability.
func sortKeys(keys []string, totals map[string]float64) {
	sort.SliceStable(keys, func(i, j int) bool {
		return compareTuples(strings.Split(keys[i], keySeparator), strings.Split(keys[j], keySeparator)) < 0
	})
	sort.SliceStable(keys, func(i, j int) bool {
		return totals[keys[i]] > totals[keys[j]]
	})
}

func compareTuples(a, b []string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
