package dictionary

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aristath/breeder/internal/genetics"
)

// Error reports a dictionary document that could not be read or mapped.
type Error struct {
	Path  string
	Field string
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("dictionary")
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %s", e.Field)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func invalidField(path, field, reason string) error {
	return &Error{Path: path, Field: field, Err: errors.New(reason)}
}

// MapDocument converts the YAML DTO into engine types and validates the result.
func MapDocument(path string, dto YAMLDocument) (Document, error) {
	genes, err := mapGenes(path, &dto.Genes)
	if err != nil {
		return Document{}, err
	}
	if err := genes.Validate(0); err != nil {
		return Document{}, &Error{Path: path, Field: "genes", Err: err}
	}

	odds, err := mapOdds(path, dto.Odds)
	if err != nil {
		return Document{}, err
	}

	return Document{
		Name:  strings.TrimSpace(dto.Name),
		Genes: genes,
		Odds:  odds,
	}, nil
}

func mapGenes(path string, node *yaml.Node) (genetics.GeneDictionary, error) {
	switch node.Kind {
	case 0:
		return nil, invalidField(path, "genes", "genes are required")

	case yaml.MappingNode:
		genes := make(genetics.GeneDictionary, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			name := node.Content[i].Value
			var g YAMLGene
			if err := decodeStrict(node.Content[i+1], &g); err != nil {
				return nil, &Error{Path: path, Field: "genes." + name, Err: err}
			}
			g.Name = name
			spec, err := mapGene(path, "genes."+name, g)
			if err != nil {
				return nil, err
			}
			genes = append(genes, spec)
		}
		return genes, nil

	case yaml.SequenceNode:
		var entries []YAMLGene
		if err := decodeStrict(node, &entries); err != nil {
			return nil, &Error{Path: path, Field: "genes", Err: err}
		}
		genes := make(genetics.GeneDictionary, 0, len(entries))
		for i, g := range entries {
			spec, err := mapGene(path, fmt.Sprintf("genes[%d]", i), g)
			if err != nil {
				return nil, err
			}
			genes = append(genes, spec)
		}
		return genes, nil

	default:
		return nil, invalidField(path, "genes", "genes must be a mapping or a list")
	}
}

// decodeStrict decodes node rejecting unknown keys. yaml.Node.Decode does not
// inherit KnownFields from the document decoder.
func decodeStrict(node *yaml.Node, out interface{}) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

func mapGene(path, field string, g YAMLGene) (genetics.GeneSpec, error) {
	if strings.TrimSpace(g.Name) == "" {
		return genetics.GeneSpec{}, invalidField(path, field+".name", "gene name is required")
	}
	oddsType, err := genetics.ParseOddsType(g.OddsType)
	if err != nil {
		return genetics.GeneSpec{}, invalidField(path, field+".oddsType", err.Error())
	}
	return genetics.GeneSpec{
		Name:     strings.TrimSpace(g.Name),
		OddsType: oddsType,
		Alleles:  g.Alleles,
	}, nil
}

func mapOdds(path string, dto *YAMLOdds) (genetics.OddsConfig, error) {
	odds := genetics.DefaultOdds()
	if dto == nil {
		return odds, nil
	}

	if len(dto.Punnett) > 0 {
		weights := genetics.PunnettWeights{}
		for key, w := range dto.Punnett {
			switch key {
			case genetics.Roll1, genetics.Roll2, genetics.Roll3, genetics.Roll4:
				weights[key] = w
			default:
				return genetics.OddsConfig{}, invalidField(path, "odds.punnett."+key, "unknown cell, expected roll1..roll4")
			}
		}
		odds.Punnett = weights
	}

	if len(dto.Percentage) > 0 {
		table := genetics.PercentageOdds{}
		for key, band := range dto.Percentage {
			if !genetics.IsPairKey(key) {
				return genetics.OddsConfig{}, invalidField(path, "odds.percentage."+key, "unknown class pair")
			}
			b := genetics.Band{}
			for label, w := range band {
				switch genetics.Class(label) {
				case genetics.ClassDom, genetics.ClassRec, genetics.ClassNone:
				default:
					return genetics.OddsConfig{}, invalidField(path, "odds.percentage."+key+"."+label, "unknown outcome label")
				}
				b[genetics.Class(label)] = w
			}
			table[key] = b
		}
		odds.Percentage = table
	}

	return odds, nil
}
