package genetics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func equineDictionary() GeneDictionary {
	return GeneDictionary{
		{Name: "black", OddsType: OddsPunnett, Alleles: []string{"E", "e"}},
		{Name: "agouti", OddsType: OddsPunnett, Alleles: []string{"At", "A", "a"}},
		{Name: "silver", OddsType: OddsPercentage, Alleles: []string{"Z"}},
	}
}

func sumProbabilities(results []BreedingResult) float64 {
	total := 0.0
	for _, r := range results {
		total += r.Probability
	}
	return total
}

func TestPunnettOutcomes_Completeness(t *testing.T) {
	outcomes := PunnettOutcomes(AllelePair{"E", "e"}, AllelePair{"E", "e"}, []string{"E", "e"}, DefaultPunnettWeights())

	require.Len(t, outcomes, 4)
	expected := []string{"EE", "Ee", "Ee", "ee"}
	for i, o := range outcomes {
		assert.Equal(t, expected[i], o.Genotype)
		assert.InDelta(t, 0.25, o.Probability, 1e-9)
	}
}

func TestPunnettOutcomes_Weights(t *testing.T) {
	tests := []struct {
		name     string
		weights  PunnettWeights
		expected [4]float64
	}{
		{"nil weights default", nil, [4]float64{0.25, 0.25, 0.25, 0.25}},
		{"all zero falls back", PunnettWeights{Roll1: 0, Roll2: 0, Roll3: 0, Roll4: 0}, [4]float64{0.25, 0.25, 0.25, 0.25}},
		{"negative total falls back", PunnettWeights{Roll1: -10, Roll2: 0, Roll3: 0, Roll4: 0}, [4]float64{0.25, 0.25, 0.25, 0.25}},
		{"missing cell defaults to 25", PunnettWeights{Roll1: 50}, [4]float64{0.4, 0.2, 0.2, 0.2}},
		{"skewed grid", PunnettWeights{Roll1: 70, Roll2: 10, Roll3: 10, Roll4: 10}, [4]float64{0.7, 0.1, 0.1, 0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcomes := PunnettOutcomes(AllelePair{"E", "e"}, AllelePair{"E", "e"}, []string{"E", "e"}, tt.weights)
			require.Len(t, outcomes, 4)
			for i, o := range outcomes {
				assert.InDelta(t, tt.expected[i], o.Probability, 1e-9, "cell %d", i+1)
			}
		})
	}
}

func TestClassifyPercentageParent(t *testing.T) {
	alleles := []string{"Z"}
	tests := []struct {
		genotype string
		expected Class
	}{
		{"", ClassNone},
		{"  ", ClassNone},
		{"ZZ", ClassDom},
		{"nZ", ClassRec},
		{" nZ ", ClassRec},
	}

	for _, tt := range tests {
		t.Run(tt.genotype, func(t *testing.T) {
			class, err := ClassifyPercentageParent(tt.genotype, alleles)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, class)
			assert.True(t, IsValidPercentageGenotype(tt.genotype, alleles))
		})
	}

	for _, bad := range []string{"Z", "Zn", "nn", "ZZZ"} {
		_, err := ClassifyPercentageParent(bad, alleles)
		assert.True(t, IsKind(err, KindInvalidPercentageGenotype), bad)
		assert.False(t, IsValidPercentageGenotype(bad, alleles), bad)
	}

	assert.False(t, IsValidPercentageGenotype("", nil))
}

func TestPercentageOutcomes(t *testing.T) {
	alleles := []string{"Z"}
	odds := DefaultPercentageOdds()

	t.Run("rec x rec splits dom and rec", func(t *testing.T) {
		outcomes, err := PercentageOutcomes(ClassRec, ClassRec, alleles, odds)
		require.NoError(t, err)
		require.Len(t, outcomes, 2)
		assert.Equal(t, Outcome{Genotype: "ZZ", Probability: 0.5}, outcomes[0])
		assert.Equal(t, Outcome{Genotype: "nZ", Probability: 0.5}, outcomes[1])
	})

	t.Run("dom x none yields certain rec", func(t *testing.T) {
		outcomes, err := PercentageOutcomes(ClassDom, ClassNone, alleles, odds)
		require.NoError(t, err)
		require.Len(t, outcomes, 1)
		assert.Equal(t, "nZ", outcomes[0].Genotype)
		assert.InDelta(t, 1.0, outcomes[0].Probability, 1e-9)
	})

	t.Run("missing key falls back to none", func(t *testing.T) {
		outcomes, err := PercentageOutcomes(ClassNone, ClassDom, alleles, odds)
		require.NoError(t, err)
		assert.Equal(t, []Outcome{{Genotype: "", Probability: 1}}, outcomes)
	})

	t.Run("degenerate band falls back to none", func(t *testing.T) {
		outcomes, err := PercentageOutcomes(ClassRec, ClassRec, alleles, PercentageOdds{"recXrec": {ClassDom: 0, ClassRec: 0}})
		require.NoError(t, err)
		assert.Equal(t, []Outcome{{Genotype: "", Probability: 1}}, outcomes)
	})

	t.Run("labels emitted in canonical order", func(t *testing.T) {
		band := PercentageOdds{"recXnone": {ClassNone: 1, ClassRec: 1, ClassDom: 2}}
		outcomes, err := PercentageOutcomes(ClassRec, ClassNone, alleles, band)
		require.NoError(t, err)
		require.Len(t, outcomes, 3)
		assert.Equal(t, "ZZ", outcomes[0].Genotype)
		assert.Equal(t, "nZ", outcomes[1].Genotype)
		assert.Equal(t, "", outcomes[2].Genotype)
		assert.InDelta(t, 0.5, outcomes[0].Probability, 1e-9)
	})

	t.Run("unknown label", func(t *testing.T) {
		_, err := PercentageOutcomes(ClassRec, ClassRec, alleles, PercentageOdds{"recXrec": {"het": 10}})
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidOutcomeLabel))

		var gerr *Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, "het", gerr.Label)
	})
}

func TestAssignTokensToGenes(t *testing.T) {
	dict := equineDictionary()

	t.Run("order independent", func(t *testing.T) {
		expected := []string{"Ee", "Aa", "nZ"}
		for _, tokens := range [][]string{
			{"Ee", "Aa", "nZ"},
			{"nZ", "Aa", "Ee"},
			{"Aa", "nZ", "Ee"},
		} {
			assigned, err := AssignTokensToGenes(tokens, dict)
			require.NoError(t, err)
			assert.Equal(t, expected, assigned)
		}
	})

	t.Run("percentage gene left empty", func(t *testing.T) {
		assigned, err := AssignTokensToGenes([]string{"AtA", "ee"}, dict)
		require.NoError(t, err)
		assert.Equal(t, []string{"ee", "AtA", ""}, assigned)
	})

	t.Run("insufficient tokens", func(t *testing.T) {
		_, err := AssignTokensToGenes([]string{"Ee"}, dict)
		require.Error(t, err)

		var gerr *Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, KindInsufficientTokens, gerr.Kind)
		assert.Equal(t, []string{"black", "agouti"}, gerr.Required)
		assert.Equal(t, 2, gerr.Need)
		assert.Equal(t, 1, gerr.Got)
	})

	t.Run("unassignable gene", func(t *testing.T) {
		_, err := AssignTokensToGenes([]string{"Ee", "Xy"}, dict)
		require.Error(t, err)

		var gerr *Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, KindUnassignableGene, gerr.Kind)
		assert.Equal(t, "agouti", gerr.Gene)
		assert.Equal(t, []string{"At", "A", "a"}, gerr.Alleles)
	})

	t.Run("first fit does not backtrack", func(t *testing.T) {
		overlapping := GeneDictionary{
			{Name: "first", OddsType: OddsPunnett, Alleles: []string{"A", "a", "B"}},
			{Name: "second", OddsType: OddsPunnett, Alleles: []string{"A", "a"}},
		}
		_, err := AssignTokensToGenes([]string{"Aa", "AB"}, overlapping)
		assert.True(t, IsKind(err, KindUnassignableGene))
	})

	t.Run("tokens outside the dictionary are ignored", func(t *testing.T) {
		assigned, err := AssignTokensToGenes([]string{"Ee", "Aa", "Cr"}, dict)
		require.NoError(t, err)
		assert.Equal(t, []string{"Ee", "Aa", ""}, assigned)
	})
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		raw      string
		expected []string
	}{
		{"Ee/Aa nZ", []string{"Ee", "Aa", "nZ"}},
		{" Ee,, Aa //nZ ", []string{"Ee", "Aa", "nZ"}},
		{"Ee\tAa\nnZ", []string{"Ee", "Aa", "nZ"}},
		{"", nil},
		{" / ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.raw))
		})
	}
}

func TestBreedingOutcomes_BlackSilverScenario(t *testing.T) {
	dict := GeneDictionary{
		{Name: "black", OddsType: OddsPunnett, Alleles: []string{"E", "e"}},
		{Name: "silver", OddsType: OddsPercentage, Alleles: []string{"Z"}},
	}

	results, err := BreedingOutcomes([]string{"Ee", "nZ"}, []string{"Ee", "nZ"}, dict, DefaultOdds())
	require.NoError(t, err)
	require.Len(t, results, 6)

	expected := []struct {
		genotype    []string
		probability float64
		percentage  string
	}{
		{[]string{"Ee", "ZZ"}, 0.25, "25"},
		{[]string{"Ee", "nZ"}, 0.25, "25"},
		{[]string{"EE", "ZZ"}, 0.125, "12.5"},
		{[]string{"EE", "nZ"}, 0.125, "12.5"},
		{[]string{"ee", "ZZ"}, 0.125, "12.5"},
		{[]string{"ee", "nZ"}, 0.125, "12.5"},
	}
	for i, e := range expected {
		assert.Equal(t, e.genotype, results[i].Genotype, "row %d", i)
		assert.InDelta(t, e.probability, results[i].Probability, 1e-9, "row %d", i)
		assert.Equal(t, e.percentage, results[i].Percentage, "row %d", i)
	}
	assert.InDelta(t, 1.0, sumProbabilities(results), 1e-9)
}

func TestBreedingOutcomes_Aggregates(t *testing.T) {
	dict := GeneDictionary{{Name: "black", OddsType: OddsPunnett, Alleles: []string{"E", "e"}}}

	results, err := BreedingOutcomes([]string{"Ee"}, []string{"Ee"}, dict, DefaultOdds())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, []string{"Ee"}, results[0].Genotype)
	assert.InDelta(t, 0.5, results[0].Probability, 1e-9)
	assert.Equal(t, "50", results[0].Percentage)
	assert.Equal(t, []string{"EE"}, results[1].Genotype)
	assert.Equal(t, []string{"ee"}, results[2].Genotype)
}

func TestBreedingOutcomes_SkipsPunnettGeneWithEmptyParent(t *testing.T) {
	results, err := BreedingOutcomes(
		[]string{"EE", "", ""},
		[]string{"ee", "AtA", ""},
		equineDictionary(),
		DefaultOdds(),
	)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// black plus silver (none x none); agouti does not contribute.
	assert.Equal(t, []string{"Ee", ""}, results[0].Genotype)
	assert.InDelta(t, 1.0, results[0].Probability, 1e-9)
	assert.Equal(t, "100", results[0].Percentage)
}

func TestBreedingOutcomes_ShortParentSlicesCountAsEmpty(t *testing.T) {
	results, err := BreedingOutcomes([]string{"Ee"}, []string{"Ee"}, equineDictionary(), DefaultOdds())
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Len(t, r.Genotype, 2)
		assert.Equal(t, "", r.Genotype[1])
	}
}

func TestBreedingOutcomes_EmptyWhenNothingContributes(t *testing.T) {
	dict := GeneDictionary{{Name: "black", OddsType: OddsPunnett, Alleles: []string{"E", "e"}}}

	results, err := BreedingOutcomes(nil, nil, dict, DefaultOdds())
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)

	results, err = BreedingOutcomes(nil, nil, GeneDictionary{}, DefaultOdds())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBreedingOutcomes_Errors(t *testing.T) {
	tests := []struct {
		name string
		sire []string
		dam  []string
		kind ErrorKind
		gene string
	}{
		{"unparseable punnett", []string{"Xy", "Aa", ""}, []string{"Ee", "Aa", ""}, KindUnparseableGenotype, "black"},
		{"invalid percentage", []string{"Ee", "Aa", "Z"}, []string{"Ee", "Aa", ""}, KindInvalidPercentageGenotype, "silver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BreedingOutcomes(tt.sire, tt.dam, equineDictionary(), DefaultOdds())
			require.Error(t, err)

			var gerr *Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, tt.kind, gerr.Kind)
			assert.Equal(t, tt.gene, gerr.Gene)
		})
	}
}

func TestBreedingOutcomes_NormalizedAndDistinct(t *testing.T) {
	odds := OddsConfig{
		Punnett:    PunnettWeights{Roll1: 40, Roll2: 30, Roll3: 20, Roll4: 10},
		Percentage: DefaultPercentageOdds(),
	}
	results, err := BreedingOutcomes(
		[]string{"Ee", "Ata", "ZZ"},
		[]string{"ee", "Aa", "nZ"},
		equineDictionary(),
		odds,
	)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.InDelta(t, 1.0, sumProbabilities(results), 1e-9)

	seen := make(map[string]bool)
	for i, r := range results {
		key := r.Genotype[0] + "|" + r.Genotype[1] + "|" + r.Genotype[2]
		assert.False(t, seen[key], "duplicate tuple %s", key)
		seen[key] = true
		if i > 0 {
			assert.GreaterOrEqual(t, results[i-1].Probability, r.Probability)
		}
	}
}

func TestBreedingOutcomes_Idempotent(t *testing.T) {
	sire := []string{"Ee", "AtA", "nZ"}
	dam := []string{"Ee", "Aa", "nZ"}

	first, err := BreedingOutcomes(sire, dam, equineDictionary(), DefaultOdds())
	require.NoError(t, err)
	second, err := BreedingOutcomes(sire, dam, equineDictionary(), DefaultOdds())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBreedingOutcomes_IdempotentWithFractionalBand(t *testing.T) {
	dict := GeneDictionary{{Name: "silver", OddsType: OddsPercentage, Alleles: []string{"Z"}}}
	odds := OddsConfig{
		Percentage: PercentageOdds{
			"recXrec": {ClassDom: 0.1, ClassRec: 0.2, ClassNone: 0.3},
		},
	}

	first, err := BreedingOutcomes([]string{"nZ"}, []string{"nZ"}, dict, odds)
	require.NoError(t, err)
	require.Len(t, first, 3)

	for i := 0; i < 500; i++ {
		again, err := BreedingOutcomes([]string{"nZ"}, []string{"nZ"}, dict, odds)
		require.NoError(t, err)
		require.Equal(t, first, again, "run %d", i)
	}
}

func TestBandTotal_LabelOrder(t *testing.T) {
	band := Band{ClassNone: 0.3, ClassRec: 0.2, ClassDom: 0.1}
	want := floats.Sum([]float64{0.1, 0.2, 0.3})

	for i := 0; i < 200; i++ {
		require.Equal(t, want, band.total())
	}
}

func TestBreedingOutcomes_TieBreakByGenotypeBytes(t *testing.T) {
	dict := GeneDictionary{{Name: "agouti", OddsType: OddsPunnett, Alleles: []string{"At", "A", "a"}}}

	results, err := BreedingOutcomes([]string{"Ata"}, []string{"Aa"}, dict, DefaultOdds())
	require.NoError(t, err)
	require.Len(t, results, 4)

	genotypes := make([]string, len(results))
	for i, r := range results {
		genotypes[i] = r.Genotype[0]
	}
	assert.Equal(t, []string{"Aa", "AtA", "Ata", "aa"}, genotypes)
}

func TestCompareTuples(t *testing.T) {
	assert.Negative(t, compareTuples([]string{"EE"}, []string{"Ee"}))
	assert.Positive(t, compareTuples([]string{"ee"}, []string{"Ee"}))
	assert.Negative(t, compareTuples([]string{"Ee"}, []string{"Ee", ""}))
	assert.Zero(t, compareTuples([]string{"Ee", "nZ"}, []string{"Ee", "nZ"}))
}
