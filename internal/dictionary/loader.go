// Package dictionary loads gene dictionaries and their odds from YAML documents.
//
// Genes may be written as a mapping (key order is dictionary order) or as a list
// of entries with explicit names:
//
//	genes:
//	  black:  {oddsType: punnett, alleles: [E, e]}
//	  silver: {oddsType: percentage, alleles: [Z]}
//
// Odds tables are optional; missing tables take the engine defaults.
package dictionary

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aristath/breeder/internal/genetics"
)

//go:embed data/realistic_equine.yaml
var realisticEquineYAML []byte

// Document is a parsed dictionary file.
type Document struct {
	Name  string
	Genes genetics.GeneDictionary
	Odds  genetics.OddsConfig
}

// Load reads and parses a dictionary file.
func Load(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, &Error{Path: path, Err: err}
	}
	doc, err := parse(path, b)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Parse parses a dictionary document held in memory.
func Parse(data []byte) (Document, error) {
	return parse("", data)
}

// Default returns the built-in Realistic Equine dictionary.
func Default() Document {
	doc, err := Parse(realisticEquineYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded dictionary is invalid: %v", err))
	}
	return doc
}

func parse(path string, data []byte) (Document, error) {
	var dto YAMLDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&dto); err != nil {
		return Document{}, &Error{Path: path, Err: err}
	}
	return MapDocument(path, dto)
}

// Marshal renders a dictionary and its odds back to YAML, genes as an ordered
// mapping.
func Marshal(name string, genes genetics.GeneDictionary, odds genetics.OddsConfig) ([]byte, error) {
	genesNode := &yaml.Node{Kind: yaml.MappingNode}
	for _, g := range genes {
		var value yaml.Node
		if err := value.Encode(YAMLGene{OddsType: g.OddsType.String(), Alleles: g.Alleles}); err != nil {
			return nil, fmt.Errorf("failed to encode gene %s: %w", g.Name, err)
		}
		genesNode.Content = append(genesNode.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: g.Name},
			&value,
		)
	}

	dto := YAMLDocument{
		Name:  name,
		Genes: *genesNode,
		Odds:  toYAMLOdds(odds),
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(dto); err != nil {
		return nil, fmt.Errorf("failed to encode dictionary: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode dictionary: %w", err)
	}
	return buf.Bytes(), nil
}

func toYAMLOdds(odds genetics.OddsConfig) *YAMLOdds {
	out := &YAMLOdds{
		Punnett:    map[string]float64(odds.Punnett),
		Percentage: make(map[string]map[string]float64, len(odds.Percentage)),
	}
	for key, band := range odds.Percentage {
		labels := make(map[string]float64, len(band))
		for label, w := range band {
			labels[string(label)] = w
		}
		out.Percentage[key] = labels
	}
	return out
}
