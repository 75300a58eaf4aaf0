package genetics

import (
	"sort"

	"github.com/shopspring/decimal"
)

// FormatGenotype orders the pair by dominance and concatenates it. Alleles missing
// from dominance rank as the most dominant.
func FormatGenotype(pair AllelePair, dominance []string) string {
	rank := func(allele string) int {
		for i, a := range dominance {
			if a == allele {
				return i
			}
		}
		return 0
	}

	out := pair
	sort.SliceStable(out[:], func(i, j int) bool {
		return rank(out[i]) < rank(out[j])
	})
	return out[0] + out[1]
}

// FormatPercentage renders a probability as a percentage rounded to two decimals
// with trailing zeros removed: 0.25 -> "25", 0.125 -> "12.5", 1/3 -> "33.33".
func FormatPercentage(probability float64) string {
	return decimal.NewFromFloat(probability).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		String()
}
