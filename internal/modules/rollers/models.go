// Package rollers manages named gene dictionaries ("rollers") with their odds,
// and runs breedings against them.
package rollers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aristath/breeder/internal/genetics"
)

// CoreSlug is the slug of the built-in roller seeded at startup.
const CoreSlug = "realistic-equine"

// Roller is a saved dictionary plus the odds its breedings use.
type Roller struct {
	ID             string                  `json:"id"`
	Slug           string                  `json:"slug"`
	Name           string                  `json:"name"`
	IsCore         bool                    `json:"is_core"`
	Dictionary     genetics.GeneDictionary `json:"dictionary"`
	PunnettOdds    genetics.PunnettWeights `json:"punnett_odds"`
	PercentageOdds genetics.PercentageOdds `json:"percentage_odds"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// Genetics returns the engine inputs for this roller.
func (r *Roller) Genetics() (genetics.GeneDictionary, genetics.OddsConfig) {
	return r.Dictionary, genetics.OddsConfig{
		Punnett:    r.PunnettOdds,
		Percentage: r.PercentageOdds,
	}
}

// CreateInput describes a new roller. Odds, when nil, are taken from the named
// templates (the "default" templates when the names are empty).
type CreateInput struct {
	Name               string                  `json:"name"`
	Dictionary         genetics.GeneDictionary `json:"dictionary"`
	Odds               *genetics.OddsConfig    `json:"odds,omitempty"`
	PunnettTemplate    string                  `json:"punnett_template,omitempty"`
	PercentageTemplate string                  `json:"percentage_template,omitempty"`
	IsCore             bool                    `json:"-"`
}

// RollResult is a completed breeding, as stored for the last-roll lookup.
type RollResult struct {
	Slug      string                    `json:"slug" msgpack:"slug"`
	Genes     []string                  `json:"genes" msgpack:"genes"`
	SireGenes []string                  `json:"sire_genes" msgpack:"sire_genes"`
	DamGenes  []string                  `json:"dam_genes" msgpack:"dam_genes"`
	Results   []genetics.BreedingResult `json:"results" msgpack:"results"`
	RolledAt  time.Time                 `json:"rolled_at" msgpack:"rolled_at"`
}

// Parent is one side of a stateless breeding: either free text to be tokenized
// and assigned, or genotypes already aligned with the dictionary.
type Parent struct {
	Text    string
	Aligned []string
	// IsAligned is set when the parent was given as an array
	IsAligned bool
}

// UnmarshalJSON accepts a string or an array of strings.
func (p *Parent) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*p = Parent{Text: text}
		return nil
	}
	var aligned []string
	if err := json.Unmarshal(data, &aligned); err != nil {
		return fmt.Errorf("parent must be a string or an array of strings")
	}
	*p = Parent{Aligned: aligned, IsAligned: true}
	return nil
}

// ComputeInput is a stateless breeding request.
type ComputeInput struct {
	Dictionary genetics.GeneDictionary `json:"dictionary"`
	Odds       *genetics.OddsConfig    `json:"odds,omitempty"`
	Sire       Parent                  `json:"sire"`
	Dam        Parent                  `json:"dam"`
}
