package testing

import "github.com/aristath/breeder/internal/genetics"

// NewEquineDictionary returns the black/agouti/silver dictionary used across tests
func NewEquineDictionary() genetics.GeneDictionary {
	return genetics.GeneDictionary{
		{Name: "black", OddsType: genetics.OddsPunnett, Alleles: []string{"E", "e"}},
		{Name: "agouti", OddsType: genetics.OddsPunnett, Alleles: []string{"At", "A", "a"}},
		{Name: "silver", OddsType: genetics.OddsPercentage, Alleles: []string{"Z"}},
	}
}

// NewCanineDictionary returns a second, unrelated dictionary with a multi-letter
// percentage marker
func NewCanineDictionary() genetics.GeneDictionary {
	return genetics.GeneDictionary{
		{Name: "brown", OddsType: genetics.OddsPunnett, Alleles: []string{"B", "b"}},
		{Name: "dilute", OddsType: genetics.OddsPunnett, Alleles: []string{"D", "d"}},
		{Name: "merle", OddsType: genetics.OddsPercentage, Alleles: []string{"M"}},
		{Name: "harlequin", OddsType: genetics.OddsPercentage, Alleles: []string{"Hq"}},
	}
}

// NewSkewedOdds returns non-default odds so tests can tell them apart from defaults
func NewSkewedOdds() genetics.OddsConfig {
	return genetics.OddsConfig{
		Punnett: genetics.PunnettWeights{
			genetics.Roll1: 40,
			genetics.Roll2: 30,
			genetics.Roll3: 20,
			genetics.Roll4: 10,
		},
		Percentage: genetics.PercentageOdds{
			"recXrec":   {genetics.ClassDom: 25, genetics.ClassRec: 50, genetics.ClassNone: 25},
			"noneXnone": {genetics.ClassNone: 100},
		},
	}
}
