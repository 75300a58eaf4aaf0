// Package genetics computes offspring genotype distributions for a pair of parents.
//
// A breeding is described by an ordered GeneDictionary and an OddsConfig. Every gene
// is inherited independently under one of two models:
//   - Punnett: a two-allele genotype per parent crossed through a weighted 2x2 grid
//   - Percentage: a single-allele marker present twice (dom), once (rec) or not at all
//     (none), crossed through a banded odds table keyed by the parents' classes
//
// The per-gene distributions are combined by cartesian product, duplicate genotype
// tuples are merged, and the result is sorted deterministically. All functions in
// this package are pure and safe for concurrent use.
package genetics

import (
	"fmt"
	"strings"
)

// MaxAlleleLength is the longest allele symbol a dictionary may declare.
const MaxAlleleLength = 64

// OddsType selects the inheritance model of a gene.
type OddsType int

const (
	// OddsPunnett crosses two-allele genotypes through a 2x2 grid.
	OddsPunnett OddsType = iota + 1
	// OddsPercentage crosses dom/rec/none classes through a band table.
	OddsPercentage
)

// String returns the canonical text form.
func (t OddsType) String() string {
	switch t {
	case OddsPunnett:
		return "punnett"
	case OddsPercentage:
		return "percentage"
	default:
		return fmt.Sprintf("OddsType(%d)", int(t))
	}
}

// ParseOddsType parses the text form of an odds type. "base" is accepted as a
// legacy alias of punnett.
func ParseOddsType(s string) (OddsType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "punnett", "base":
		return OddsPunnett, nil
	case "percentage":
		return OddsPercentage, nil
	default:
		return 0, fmt.Errorf("unknown odds type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t OddsType) MarshalText() ([]byte, error) {
	if t != OddsPunnett && t != OddsPercentage {
		return nil, fmt.Errorf("invalid odds type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *OddsType) UnmarshalText(text []byte) error {
	parsed, err := ParseOddsType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// GeneSpec describes one gene. Allele order encodes dominance: earlier alleles are
// more dominant.
type GeneSpec struct {
	Name     string   `json:"name" yaml:"name"`
	OddsType OddsType `json:"oddsType" yaml:"oddsType"`
	Alleles  []string `json:"alleles" yaml:"alleles"`
}

// GeneDictionary is the ordered set of genes a breeding is evaluated against.
// Order determines the position of each gene in result tuples and its precedence
// when results are sorted.
type GeneDictionary []GeneSpec

// Names returns the gene names in dictionary order.
func (d GeneDictionary) Names() []string {
	names := make([]string, len(d))
	for i, g := range d {
		names[i] = g.Name
	}
	return names
}

// Lookup returns the gene with the given name.
func (d GeneDictionary) Lookup(name string) (GeneSpec, bool) {
	for _, g := range d {
		if g.Name == name {
			return g, true
		}
	}
	return GeneSpec{}, false
}

// PunnettGenes returns the Punnett genes in dictionary order.
func (d GeneDictionary) PunnettGenes() []GeneSpec {
	var genes []GeneSpec
	for _, g := range d {
		if g.OddsType == OddsPunnett {
			genes = append(genes, g)
		}
	}
	return genes
}

// Validate checks the dictionary shape. maxGenes <= 0 disables the size cap.
func (d GeneDictionary) Validate(maxGenes int) error {
	if maxGenes > 0 && len(d) > maxGenes {
		return &Error{
			Kind:   KindInvalidGeneSpec,
			Need:   maxGenes,
			Got:    len(d),
			Detail: "too many genes",
		}
	}

	seen := make(map[string]struct{}, len(d))
	for _, g := range d {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return &Error{Kind: KindInvalidGeneSpec, Detail: "gene name is required"}
		}
		if _, dup := seen[name]; dup {
			return &Error{Kind: KindInvalidGeneSpec, Gene: name, Detail: "duplicate gene name"}
		}
		seen[name] = struct{}{}

		if g.OddsType != OddsPunnett && g.OddsType != OddsPercentage {
			return &Error{Kind: KindInvalidGeneSpec, Gene: name, Detail: "unknown odds type"}
		}
		if len(g.Alleles) == 0 {
			return &Error{Kind: KindInvalidGeneSpec, Gene: name, Detail: "at least one allele is required"}
		}
		for _, a := range g.Alleles {
			if a == "" {
				return &Error{Kind: KindInvalidGeneSpec, Gene: name, Alleles: g.Alleles, Detail: "allele must not be empty"}
			}
			if len(a) > MaxAlleleLength {
				return &Error{Kind: KindInvalidGeneSpec, Gene: name, Alleles: g.Alleles, Detail: "allele is too long"}
			}
		}
		if g.OddsType == OddsPercentage && len(g.Alleles) != 1 {
			return &Error{Kind: KindInvalidGeneSpec, Gene: name, Alleles: g.Alleles, Detail: "percentage genes take exactly one allele"}
		}
	}
	return nil
}

// AllelePair is a parsed two-allele genotype in input order.
type AllelePair [2]string

// Outcome is one entry of a single-gene distribution.
type Outcome struct {
	Genotype    string  `json:"genotype"`
	Probability float64 `json:"probability"`
}

// BreedingResult is one row of a combined distribution. Genotype holds one entry
// per contributing gene, in dictionary order.
type BreedingResult struct {
	Genotype    []string `json:"genotype" msgpack:"genotype"`
	Probability float64  `json:"probability" msgpack:"probability"`
	Percentage  string   `json:"percentage" msgpack:"percentage"`
}
