// Package odds stores named Punnett and percentage odds tables that rollers can
// start from.
package odds

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aristath/breeder/internal/genetics"
)

// TemplateType is the odds table a template holds.
type TemplateType string

const (
	TypePunnett    TemplateType = "punnett"
	TypePercentage TemplateType = "percentage"
)

// DefaultTemplateName names the templates seeded with the engine defaults.
const DefaultTemplateName = "default"

// ParseTemplateType validates a template type string.
func ParseTemplateType(s string) (TemplateType, error) {
	switch TemplateType(s) {
	case TypePunnett, TypePercentage:
		return TemplateType(s), nil
	}
	return "", fmt.Errorf("unknown odds template type %q", s)
}

// Template is a named odds table. Config holds PunnettWeights or PercentageOdds
// as JSON depending on Type.
type Template struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      TemplateType    `json:"type"`
	Config    json.RawMessage `json:"config"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Punnett decodes the config of a punnett template.
func (t *Template) Punnett() (genetics.PunnettWeights, error) {
	if t.Type != TypePunnett {
		return nil, fmt.Errorf("template %s is a %s template", t.Name, t.Type)
	}
	var w genetics.PunnettWeights
	if err := json.Unmarshal(t.Config, &w); err != nil {
		return nil, fmt.Errorf("failed to decode punnett template %s: %w", t.Name, err)
	}
	return w, nil
}

// Percentage decodes the config of a percentage template.
func (t *Template) Percentage() (genetics.PercentageOdds, error) {
	if t.Type != TypePercentage {
		return nil, fmt.Errorf("template %s is a %s template", t.Name, t.Type)
	}
	var o genetics.PercentageOdds
	if err := json.Unmarshal(t.Config, &o); err != nil {
		return nil, fmt.Errorf("failed to decode percentage template %s: %w", t.Name, err)
	}
	return o, nil
}

// Validate checks that Config decodes into a valid table for Type.
func (t *Template) Validate() error {
	switch t.Type {
	case TypePunnett:
		w, err := t.Punnett()
		if err != nil {
			return err
		}
		return w.Validate()
	case TypePercentage:
		o, err := t.Percentage()
		if err != nil {
			return err
		}
		return o.Validate()
	}
	_, err := ParseTemplateType(string(t.Type))
	return err
}
