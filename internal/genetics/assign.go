package genetics

import (
	"regexp"
	"strings"
)

var tokenSeparators = regexp.MustCompile(`[/,\s]+`)

// Tokenize splits a free-text parent string on slashes, commas and whitespace.
// Empty pieces are dropped.
func Tokenize(raw string) []string {
	var tokens []string
	for _, t := range tokenSeparators.Split(strings.TrimSpace(raw), -1) {
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// AssignTokensToGenes maps unordered genotype tokens onto the dictionary.
//
// Each Punnett gene, in dictionary order, takes the first unused token that
// parses against its alleles; a Punnett gene with no match is an error. Each
// percentage gene then takes the first unused token that is a valid percentage
// genotype, or "" when none is. The result is aligned with dict.
//
// Matching is first-fit: a token claimed by an earlier gene is never reconsidered,
// so overlapping allele sets can fail where another assignment would succeed.
func AssignTokensToGenes(tokens []string, dict GeneDictionary) ([]string, error) {
	punnett := dict.PunnettGenes()
	if len(tokens) < len(punnett) {
		required := make([]string, len(punnett))
		for i, g := range punnett {
			required[i] = g.Name
		}
		return nil, &Error{
			Kind:     KindInsufficientTokens,
			Required: required,
			Need:     len(punnett),
			Got:      len(tokens),
		}
	}

	assigned := make([]string, len(dict))
	used := make([]bool, len(tokens))

	for i, gene := range dict {
		if gene.OddsType != OddsPunnett {
			continue
		}
		idx := firstUnused(tokens, used, func(t string) bool {
			return IsValidGenotype(t, gene.Alleles)
		})
		if idx < 0 {
			return nil, &Error{
				Kind:    KindUnassignableGene,
				Gene:    gene.Name,
				Alleles: gene.Alleles,
			}
		}
		used[idx] = true
		assigned[i] = tokens[idx]
	}

	for i, gene := range dict {
		if gene.OddsType != OddsPercentage {
			continue
		}
		idx := firstUnused(tokens, used, func(t string) bool {
			return IsValidPercentageGenotype(t, gene.Alleles)
		})
		if idx < 0 {
			continue
		}
		used[idx] = true
		assigned[i] = tokens[idx]
	}

	return assigned, nil
}

func firstUnused(tokens []string, used []bool, match func(string) bool) int {
	for i, t := range tokens {
		if !used[i] && match(t) {
			return i
		}
	}
	return -1
}
