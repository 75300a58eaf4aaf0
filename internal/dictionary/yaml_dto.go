package dictionary

import "gopkg.in/yaml.v3"

// YAMLDocument is the on-disk shape of a dictionary file. Genes stays a raw node
// so mapping key order survives decoding.
type YAMLDocument struct {
	Name  string    `yaml:"name"`
	Genes yaml.Node `yaml:"genes"`
	Odds  *YAMLOdds `yaml:"odds"`
}

// YAMLGene is one gene entry. Name is only read in the list form.
type YAMLGene struct {
	Name     string   `yaml:"name,omitempty"`
	OddsType string   `yaml:"oddsType"`
	Alleles  []string `yaml:"alleles,flow"`
}

// YAMLOdds holds optional odds tables.
type YAMLOdds struct {
	Punnett    map[string]float64            `yaml:"punnett,omitempty"`
	Percentage map[string]map[string]float64 `yaml:"percentage,omitempty"`
}
